// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/aquasecurity/tml"
	"github.com/fatih/color"

	"github.com/bonial-oss/cve-prioritizer/internal/types"
)

// Column widths of the console layout.
const (
	widthCVE      = 18
	widthPriority = 13
	widthEPSS     = 9
	widthCVSS     = 6
	widthVersion  = 10
	widthSeverity = 10
	widthKEV      = 10
	widthVendor   = 18
	widthProduct  = 23

	maxVendor  = 15
	maxProduct = 20
)

// ConsoleOptions controls the console layout.
type ConsoleOptions struct {
	Verbose bool
	// Color enables ANSI colours for the priority column and a bold header.
	Color bool
	// KEVColumn is KEVColumnCISA or KEVColumnVulnCheck.
	KEVColumn string
}

// Console writes one padded line per result.
type Console struct {
	w    io.Writer
	opts ConsoleOptions
}

// NewConsole creates a console sink.
func NewConsole(w io.Writer, opts ConsoleOptions) *Console {
	if opts.KEVColumn == "" {
		opts.KEVColumn = KEVColumnCISA
	}
	return &Console{w: w, opts: opts}
}

// WriteHeader prints the column titles and an underline.
func (c *Console) WriteHeader() error {
	var b strings.Builder
	b.WriteString(padRight("CVE-ID", widthCVE))
	b.WriteString(padRight("PRIORITY", widthPriority))
	if c.opts.Verbose {
		b.WriteString(padRight("EPSS", widthEPSS))
		b.WriteString(padRight("CVSS", widthCVSS))
		b.WriteString(padRight("VERSION", widthVersion))
		b.WriteString(padRight("SEVERITY", widthSeverity))
		kev := "KEV"
		if c.opts.KEVColumn == KEVColumnVulnCheck {
			kev = "VC_KEV"
		}
		b.WriteString(padRight(kev, widthKEV))
		b.WriteString(padRight("VENDOR", widthVendor))
		b.WriteString(padRight("PRODUCT", widthProduct))
		b.WriteString("VECTOR")
	}
	title := strings.TrimRight(b.String(), " ")
	rule := strings.Repeat("-", len(title))

	var err error
	if c.opts.Color {
		_, err = fmt.Fprintln(c.w, tml.Sprintf("<bold>%s</bold>", title))
	} else {
		_, err = fmt.Fprintln(c.w, title)
	}
	if err != nil {
		return fmt.Errorf("writing console header: %w", err)
	}
	if _, err := fmt.Fprintln(c.w, rule); err != nil {
		return fmt.Errorf("writing console header: %w", err)
	}
	return nil
}

// Write prints one result line.
func (c *Console) Write(r *types.PriorityResult) error {
	if _, err := fmt.Fprintln(c.w, c.Line(r)); err != nil {
		return fmt.Errorf("writing console line: %w", err)
	}
	return nil
}

// Line formats a result without the trailing newline.
func (c *Console) Line(r *types.PriorityResult) string {
	var b strings.Builder
	b.WriteString(padRight(r.CVEID, widthCVE))
	b.WriteString(c.priority(r.Priority))
	if !c.opts.Verbose {
		return strings.TrimRight(b.String(), " ")
	}
	b.WriteString(padRight(FormatScore(r.EPSS), widthEPSS))
	b.WriteString(padRight(FormatScore(r.CVSS), widthCVSS))
	b.WriteString(padRight(string(r.CVSSVersion), widthVersion))
	b.WriteString(padRight(r.CVSSSeverity, widthSeverity))
	b.WriteString(padRight(kevCell(r, c.opts.KEVColumn), widthKEV))
	b.WriteString(padRight(Truncate(r.Vendor, maxVendor), widthVendor))
	b.WriteString(padRight(Truncate(r.Product, maxProduct), widthProduct))
	b.WriteString(r.Vector)
	return b.String()
}

// priority renders the padded priority label. Padding is added after the
// colour codes so columns stay aligned.
func (c *Console) priority(p types.Priority) string {
	label := p.String()
	pad := strings.Repeat(" ", max(widthPriority-len(label), 0))
	if !c.opts.Color {
		return label + pad
	}
	col := color.New(priorityColor(p))
	col.EnableColor()
	return col.Sprint(label) + pad
}

func priorityColor(p types.Priority) color.Attribute {
	switch p {
	case types.Priority0, types.Priority1:
		return color.FgRed
	case types.Priority2, types.Priority3:
		return color.FgYellow
	default:
		return color.FgGreen
	}
}
