// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package types

import "fmt"

// CVSSVersion labels the CVSS metric a record was built from.
type CVSSVersion string

const (
	CVSSv2  CVSSVersion = "CVSS 2.0"
	CVSSv30 CVSSVersion = "CVSS 3.0"
	CVSSv31 CVSSVersion = "CVSS 3.1"
)

// VulnerabilityRecord is the normalized vulnerability metadata a source
// adapter returns for a single CVE.
type VulnerabilityRecord struct {
	CVSSVersion CVSSVersion
	BaseScore   float64
	Severity    string
	CISAKEV     bool
	CPE         string
	Vector      string
}

// EPSSRecord holds the exploit prediction score for a CVE.
type EPSSRecord struct {
	Score      float64
	Percentile int // 0-100
}

// Priority is the bucket a CVE is classified into. Lower is more urgent.
type Priority int

const (
	Priority0 Priority = iota
	Priority1
	Priority2
	Priority3
	Priority4
)

func (p Priority) String() string {
	return fmt.Sprintf("Priority %d", int(p))
}

// PriorityResult is the final, immutable per-CVE output.
type PriorityResult struct {
	CVEID        string      `json:"cve_id"`
	EPSS         float64     `json:"epss"`
	Percentile   int         `json:"epss_percentile"`
	CVSS         float64     `json:"cvss"`
	CVSSVersion  CVSSVersion `json:"cvss_version"`
	CVSSSeverity string      `json:"cvss_severity"`
	CPE          string      `json:"cpe"`
	Vendor       string      `json:"vendor,omitempty"`
	Product      string      `json:"product,omitempty"`
	Vector       string      `json:"vector"`
	Priority     Priority    `json:"-"`
	// KEV is the known-exploited flag the priority was derived from.
	KEV bool `json:"-"`
	// VulnCheckKEV is set when the VulnCheck KEV catalog lists the CVE.
	VulnCheckKEV bool `json:"vulncheck_kev,omitempty"`
}

// KEVLabel renders the KEV flag the way the CSV and console output expect it.
func (r *PriorityResult) KEVLabel() string {
	return boolLabel(r.KEV)
}

// VulnCheckKEVLabel renders the VulnCheck catalog match as TRUE or FALSE.
func (r *PriorityResult) VulnCheckKEVLabel() string {
	return boolLabel(r.VulnCheckKEV)
}

func boolLabel(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// MarshalJSON emits priority and kev as their display strings.
func (r PriorityResult) MarshalJSON() ([]byte, error) {
	type plain PriorityResult
	return marshalWithLabels(plain(r), r.Priority.String(), r.KEVLabel())
}
