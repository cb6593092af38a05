// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package prioritizer

import (
	"strings"

	"github.com/bonial-oss/cve-prioritizer/internal/types"
)

// ExtractVendorProduct reads the vendor (field 3) and product (field 4) of
// a colon-delimited CPE string. Missing fields come back empty. Escaped
// colons are not handled.
func ExtractVendorProduct(cpe string) (vendor, product string) {
	parts := strings.Split(cpe, ":")
	if len(parts) > 3 {
		vendor = parts[3]
	}
	if len(parts) > 4 {
		product = parts[4]
	}
	return vendor, product
}

// BuildResult merges a vulnerability record and an EPSS record. Priority
// and KEV are left for the classifier.
func BuildResult(cveID string, vuln *types.VulnerabilityRecord, epss *types.EPSSRecord) types.PriorityResult {
	vendor, product := ExtractVendorProduct(vuln.CPE)
	return types.PriorityResult{
		CVEID:        cveID,
		EPSS:         epss.Score,
		Percentile:   epss.Percentile,
		CVSS:         vuln.BaseScore,
		CVSSVersion:  vuln.CVSSVersion,
		CVSSSeverity: vuln.Severity,
		CPE:          vuln.CPE,
		Vendor:       vendor,
		Product:      product,
		Vector:       vuln.Vector,
	}
}
