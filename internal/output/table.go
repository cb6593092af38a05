// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	aqtable "github.com/aquasecurity/table"
	"github.com/aquasecurity/tml"
	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/bonial-oss/cve-prioritizer/internal/types"
)

// IsOutputToTerminal returns true if the writer is stdout connected to a
// character device (TTY).
func IsOutputToTerminal(output io.Writer) bool {
	return output == os.Stdout && term.IsTerminal(int(os.Stdout.Fd()))
}

// WriteSummary renders the scored results as a table sorted by priority,
// then CVE ID, preceded by a per-priority count. Nil entries are ignored.
func WriteSummary(w io.Writer, results []*types.PriorityResult, isTerminal bool) {
	rows := make([]*types.PriorityResult, 0, len(results))
	for _, r := range results {
		if r != nil {
			rows = append(rows, r)
		}
	}
	sortResults(rows)

	title := "Summary"
	if isTerminal {
		_ = tml.Fprintf(w, "\n<underline><bold>%s</bold></underline>\n", title)
	} else {
		fmt.Fprintf(w, "\n%s\n", title)
		fmt.Fprintln(w, strings.Repeat("=", utf8.RuneCountInString(title)))
	}
	fmt.Fprintln(w, prioritySummary(rows))
	fmt.Fprintln(w)

	tw := newTableWriter(w, isTerminal)
	tw.SetHeaders("Priority", "CVE", "CVSS", "Severity", "EPSS", "EPSS %ile", "KEV", "Vendor", "Product")
	for _, r := range rows {
		tw.AddRow(rowCells(r, isTerminal)...)
	}
	tw.Render()
}

// newTableWriter creates a table writer with borders, auto-merge, and row
// separators. When isTerminal is true, header and line styles use ANSI
// formatting.
func newTableWriter(w io.Writer, isTerminal bool) *aqtable.Table {
	tw := aqtable.New(w)
	if isTerminal {
		tw.SetHeaderStyle(aqtable.StyleBold)
		tw.SetLineStyle(aqtable.StyleDim)
	}
	tw.SetBorders(true)
	tw.SetAutoMerge(true)
	tw.SetRowLines(true)
	return tw
}

func rowCells(r *types.PriorityResult, isTerminal bool) []string {
	priority := r.Priority.String()
	if isTerminal {
		col := color.New(priorityColor(r.Priority))
		col.EnableColor()
		priority = col.Sprint(priority)
	}
	return []string{
		priority,
		r.CVEID,
		FormatScore(r.CVSS),
		r.CVSSSeverity,
		fmt.Sprintf("%.4f", r.EPSS),
		fmt.Sprintf("%d", r.Percentile),
		formatKEV(r),
		Truncate(r.Vendor, maxVendor),
		Truncate(r.Product, maxProduct),
	}
}

// prioritySummary returns a line like:
// Total: 5 (Priority 0: 1, Priority 1: 0, Priority 2: 2, Priority 3: 1, Priority 4: 1)
func prioritySummary(rows []*types.PriorityResult) string {
	var counts [types.Priority4 + 1]int
	for _, r := range rows {
		if r.Priority >= types.Priority0 && r.Priority <= types.Priority4 {
			counts[r.Priority]++
		}
	}
	parts := make([]string, len(counts))
	for p := range counts {
		parts[p] = fmt.Sprintf("%s: %d", types.Priority(p), counts[p])
	}
	return fmt.Sprintf("Total: %d (%s)", len(rows), strings.Join(parts, ", "))
}

// sortResults orders rows by priority (most urgent first), then CVE ID.
func sortResults(rows []*types.PriorityResult) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Priority != rows[j].Priority {
			return rows[i].Priority < rows[j].Priority
		}
		return rows[i].CVEID < rows[j].CVEID
	})
}

// formatKEV returns "YES" if the CVE is known exploited, "NO" otherwise.
func formatKEV(r *types.PriorityResult) string {
	if r.KEV {
		return "YES"
	}
	return "NO"
}
