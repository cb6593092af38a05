// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package output

import "github.com/bonial-oss/cve-prioritizer/internal/types"

func log4shell() *types.PriorityResult {
	return &types.PriorityResult{
		CVEID:        "CVE-2021-44228",
		EPSS:         0.97,
		Percentile:   99,
		CVSS:         10,
		CVSSVersion:  types.CVSSv31,
		CVSSSeverity: "CRITICAL",
		CPE:          "cpe:2.3:a:apache:log4j:*:*:*:*:*:*:*:*",
		Vendor:       "apache",
		Product:      "log4j",
		Vector:       "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:C/C:H/I:H/A:H",
		Priority:     types.Priority0,
		KEV:          true,
	}
}

func lowResult() *types.PriorityResult {
	return &types.PriorityResult{
		CVEID:        "CVE-2024-0002",
		EPSS:         0.0123,
		Percentile:   42,
		CVSS:         4.3,
		CVSSVersion:  types.CVSSv2,
		CVSSSeverity: "MEDIUM",
		CPE:          "cpe:2.3:a:averyveryverylongvendorname:an_extremely_long_product_name:1.0",
		Vendor:       "averyveryverylongvendorname",
		Product:      "an_extremely_long_product_name",
		Vector:       "AV:N/AC:M/Au:N/C:N/I:P/A:N",
		Priority:     types.Priority4,
	}
}
