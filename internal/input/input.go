// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package input

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

var cvePattern = regexp.MustCompile(`(?i)^CVE-\d{4}-\d{4,}$`)

// Request names where CVE IDs come from. The first non-empty field wins:
// Single, then List, then File.
type Request struct {
	Single string
	List   string
	File   io.Reader
}

// Batch is the outcome of collecting CVE IDs.
type Batch struct {
	// Valid holds normalized, de-duplicated IDs in first-seen order.
	Valid []string
	// Invalid holds the raw entries that are not CVE IDs.
	Invalid []string
}

// Normalize trims and upper-cases an ID.
func Normalize(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// IsCVE reports whether id looks like CVE-YYYY-NNNN.
func IsCVE(id string) bool {
	return cvePattern.MatchString(strings.TrimSpace(id))
}

// Collect reads the requested CVE IDs and splits them into valid and
// invalid entries. Blank entries are dropped.
func Collect(req Request) (*Batch, error) {
	var raw []string
	switch {
	case req.Single != "":
		raw = []string{req.Single}
	case req.List != "":
		raw = strings.Split(req.List, ",")
	case req.File != nil:
		lines, err := readLines(req.File)
		if err != nil {
			return nil, err
		}
		raw = lines
	}

	raw = lo.Filter(raw, func(s string, _ int) bool { return strings.TrimSpace(s) != "" })
	valid, invalid := lo.FilterReject(raw, func(s string, _ int) bool { return IsCVE(s) })

	return &Batch{
		Valid:   lo.Uniq(lo.Map(valid, func(s string, _ int) string { return Normalize(s) })),
		Invalid: invalid,
	}, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading CVE file: %w", err)
	}
	return lines, nil
}
