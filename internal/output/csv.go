// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/bonial-oss/cve-prioritizer/internal/types"
)

// CSV appends one row per result to a file.
type CSV struct {
	f         *os.File
	w         *csv.Writer
	kevColumn string
}

// CSVHeader returns the column names for the given KEV column.
func CSVHeader(kevColumn string) []string {
	return []string{
		"cve_id", "priority", "epss", "cvss", "cvss_version", "cvss_severity",
		kevColumn, "cpe", "vendor", "product", "vector",
	}
}

// OpenCSV opens path for appending. The header row is written only when the
// file is new or empty, so repeated runs accumulate rows under one header.
func OpenCSV(path, kevColumn string) (*CSV, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening output file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("checking output file: %w", err)
	}

	s := &CSV{f: f, w: csv.NewWriter(f), kevColumn: kevColumn}
	if info.Size() == 0 {
		if err := s.writeRow(CSVHeader(kevColumn)); err != nil {
			f.Close()
			return nil, err
		}
	}
	return s, nil
}

// Write appends the row for r and flushes it.
func (s *CSV) Write(r *types.PriorityResult) error {
	return s.writeRow([]string{
		r.CVEID,
		r.Priority.String(),
		FormatScore(r.EPSS),
		FormatScore(r.CVSS),
		string(r.CVSSVersion),
		r.CVSSSeverity,
		kevCell(r, s.kevColumn),
		r.CPE,
		r.Vendor,
		r.Product,
		r.Vector,
	})
}

// Close flushes and closes the file.
func (s *CSV) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		s.f.Close()
		return fmt.Errorf("flushing output file: %w", err)
	}
	return s.f.Close()
}

func (s *CSV) writeRow(row []string) error {
	if err := s.w.Write(row); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	return nil
}
