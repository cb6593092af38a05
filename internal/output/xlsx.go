// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/bonial-oss/cve-prioritizer/internal/types"
)

// XLSXSheet is the name of the single worksheet.
const XLSXSheet = "CVE Priorities"

// WriteXLSX saves results as a spreadsheet with the CSV columns. Numeric
// columns are stored as numbers.
func WriteXLSX(path, kevColumn string, results []*types.PriorityResult) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", XLSXSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	for i, header := range CSVHeader(kevColumn) {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("locating header cell: %w", err)
		}
		if err := file.SetCellValue(XLSXSheet, cell, header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	row := 2
	for _, r := range results {
		if r == nil {
			continue
		}
		rowData := []interface{}{
			r.CVEID,
			r.Priority.String(),
			r.EPSS,
			r.CVSS,
			string(r.CVSSVersion),
			r.CVSSSeverity,
			kevCell(r, kevColumn),
			r.CPE,
			r.Vendor,
			r.Product,
			r.Vector,
		}
		if err := file.SetSheetRow(XLSXSheet, fmt.Sprintf("A%d", row), &rowData); err != nil {
			return fmt.Errorf("writing row for %s: %w", r.CVEID, err)
		}
		row++
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save excel to %s: %w", path, err)
	}
	return nil
}
