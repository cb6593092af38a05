// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package datasource

import (
	"fmt"
	"math"

	nvdapi "github.com/pandatix/nvdapi/v2"
	"github.com/samber/lo"

	"github.com/bonial-oss/cve-prioritizer/internal/cvss"
	"github.com/bonial-oss/cve-prioritizer/internal/types"
)

// PlaceholderCPE stands in when a source has no applicability data.
const PlaceholderCPE = "cpe:2.3:::::::::::"

// StatusAwaitingAnalysis is the NVD status of CVEs that have not been scored yet.
const StatusAwaitingAnalysis = "Awaiting Analysis"

const maxCVSSScore = 10.0

// metric is the part of a versioned CVSS metric a record is built from.
type metric struct {
	version  types.CVSSVersion
	vector   string
	score    float64
	severity string
}

// RecordFromCVE builds a VulnerabilityRecord from an NVD 2.0 CVE object.
// The first metric of the newest available CVSS version wins: 3.1, then
// 3.0, then 2.0. ErrNoMetrics is returned when none is present, and
// ErrMalformedResponse when the score is outside [0, 10].
func RecordFromCVE(cve nvdapi.CVE) (*types.VulnerabilityRecord, error) {
	m, ok := selectMetric(cve.Metrics)
	if !ok {
		switch status := lo.FromPtr(cve.VulnStatus); status {
		case "":
			return nil, ErrNoMetrics
		case StatusAwaitingAnalysis:
			return nil, ErrAwaitingAnalysis
		default:
			return nil, fmt.Errorf("%w (status: %s)", ErrNoMetrics, status)
		}
	}

	// A zero score next to a vector means the upstream omitted it.
	if m.score == 0 && m.vector != "" {
		if computed, err := cvss.BaseScore(m.vector); err == nil {
			m.score = computed
		}
	}
	if math.IsNaN(m.score) || m.score < 0 || m.score > maxCVSSScore {
		return nil, fmt.Errorf("%w: CVSS base score %v out of range [0, 10]", ErrMalformedResponse, m.score)
	}
	if m.severity == "" {
		m.severity = cvss.Severity(m.version, m.score)
	}

	return &types.VulnerabilityRecord{
		CVSSVersion: m.version,
		BaseScore:   m.score,
		Severity:    m.severity,
		CISAKEV:     lo.FromPtr(cve.CISAExploitAdd) != "",
		CPE:         FirstCPE(cve.Configurations),
		Vector:      m.vector,
	}, nil
}

// FirstRecord returns the record of the first CVE object that carries a
// usable CVSS metric. When none does, the last extraction error is returned.
func FirstRecord(cves []nvdapi.CVE) (*types.VulnerabilityRecord, error) {
	err := ErrNoMetrics
	for _, cve := range cves {
		rec, recErr := RecordFromCVE(cve)
		if recErr == nil {
			return rec, nil
		}
		err = recErr
	}
	return nil, err
}

func selectMetric(m *nvdapi.Metrics) (metric, bool) {
	if m == nil {
		return metric{}, false
	}
	switch {
	case len(m.CVSSMetricV31) > 0:
		data := m.CVSSMetricV31[0].CVSSData
		return metric{version: types.CVSSv31, vector: data.VectorString, score: data.BaseScore, severity: data.BaseSeverity}, true
	case len(m.CVSSMetricV30) > 0:
		data := m.CVSSMetricV30[0].CVSSData
		return metric{version: types.CVSSv30, vector: data.VectorString, score: data.BaseScore, severity: data.BaseSeverity}, true
	case len(m.CVSSMetricV2) > 0:
		// CVSS 2.0 keeps its severity on the metric rather than inside cvssData.
		v2 := m.CVSSMetricV2[0]
		return metric{version: types.CVSSv2, vector: v2.CVSSData.VectorString, score: v2.CVSSData.BaseScore, severity: lo.FromPtr(v2.BaseSeverity)}, true
	}
	return metric{}, false
}

// FirstCPE returns the criteria of the first CPE match of the first node of
// the first configuration, or PlaceholderCPE when any level is missing.
func FirstCPE(configs []nvdapi.Config) string {
	if len(configs) == 0 || len(configs[0].Nodes) == 0 {
		return PlaceholderCPE
	}
	matches := configs[0].Nodes[0].CPEMatch
	if len(matches) == 0 || matches[0].Criteria == "" {
		return PlaceholderCPE
	}
	return matches[0].Criteria
}
