// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"encoding/json"

	nvdapi "github.com/pandatix/nvdapi/v2"
)

// NVDResponse is the subset of the NVD CVE API 2.0 response the tool reads.
type NVDResponse struct {
	TotalResults    int              `json:"totalResults"`
	Vulnerabilities []nvdapi.CVEItem `json:"vulnerabilities"`
}

// VulnCheckResponse is the VulnCheck nist-nvd2 index response.
type VulnCheckResponse struct {
	Meta struct {
		TotalDocuments int `json:"total_documents"`
	} `json:"_meta"`
	Data []VulnCheckCVE `json:"data"`
}

// VulnCheckCVE is an NVD 2.0 CVE object with VulnCheck's own
// applicability data next to NIST's.
type VulnCheckCVE struct {
	nvdapi.CVE
	VcConfigurations []nvdapi.Config `json:"vcConfigurations,omitempty"`
}

// VulnCheckKEVResponse is the VulnCheck KEV index response. Only the
// presence of data entries matters.
type VulnCheckKEVResponse struct {
	Data []json.RawMessage `json:"data"`
}

// EPSSResponse is the FIRST.org EPSS API response. Scores are encoded as strings.
type EPSSResponse struct {
	Total int `json:"total"`
	Data  []struct {
		CVE        string `json:"cve"`
		EPSS       string `json:"epss"`
		Percentile string `json:"percentile"`
		Date       string `json:"date"`
	} `json:"data"`
}
