// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"strconv"
	"strings"

	"github.com/bonial-oss/cve-prioritizer/internal/types"
)

// KEV column names. The cisa_kev column carries the exploited flag the
// priority was derived from; vulncheck_kev carries only the VulnCheck
// catalog match.
const (
	KEVColumnCISA      = "cisa_kev"
	KEVColumnVulnCheck = "vulncheck_kev"
)

func kevCell(r *types.PriorityResult, column string) string {
	if column == KEVColumnVulnCheck {
		return r.VulnCheckKEVLabel()
	}
	return r.KEVLabel()
}

const ellipsis = "..."

// Truncate shortens s to limit runes, replacing the tail with "..." when
// it does not fit. Strings that fit are returned unchanged.
func Truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 0 {
		return ""
	}
	if limit <= len(ellipsis) {
		return ellipsis[:limit]
	}
	return string(r[:limit-len(ellipsis)]) + ellipsis
}

// FormatScore prints a score with the shortest exact representation and
// at least one decimal: 10 -> "10.0", 0.97 -> "0.97".
func FormatScore(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// padRight pads s with spaces to width runes. Longer strings are kept.
func padRight(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
