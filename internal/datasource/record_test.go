// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package datasource

import (
	"encoding/json"
	"testing"

	nvdapi "github.com/pandatix/nvdapi/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonial-oss/cve-prioritizer/internal/types"
)

func mustCVE(t *testing.T, raw string) nvdapi.CVE {
	t.Helper()
	var cve nvdapi.CVE
	require.NoError(t, json.Unmarshal([]byte(raw), &cve))
	return cve
}

func TestRecordFromCVE_PrefersV31OverV2(t *testing.T) {
	item := mustCVE(t, `{
	  "id": "CVE-2024-1234",
	  "vulnStatus": "Analyzed",
	  "metrics": {
	    "cvssMetricV2": [{"cvssData": {"vectorString": "AV:N/AC:L/Au:N/C:P/I:P/A:P", "baseScore": 7.5}, "baseSeverity": "HIGH"}],
	    "cvssMetricV31": [
	      {"cvssData": {"vectorString": "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H", "baseScore": 9.8, "baseSeverity": "CRITICAL"}},
	      {"cvssData": {"vectorString": "CVSS:3.1/AV:L/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H", "baseScore": 8.4, "baseSeverity": "HIGH"}}
	    ]
	  },
	  "configurations": [{"nodes": [{"cpeMatch": [{"criteria": "cpe:2.3:a:vendor1:product1:1.0"}]}]}]
	}`)

	rec, err := RecordFromCVE(item)
	require.NoError(t, err)
	assert.Equal(t, types.CVSSv31, rec.CVSSVersion)
	assert.InDelta(t, 9.8, rec.BaseScore, 1e-9)
	assert.Equal(t, "CRITICAL", rec.Severity)
	assert.Equal(t, "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H", rec.Vector)
	assert.Equal(t, "cpe:2.3:a:vendor1:product1:1.0", rec.CPE)
	assert.False(t, rec.CISAKEV)
}

func TestRecordFromCVE_V30(t *testing.T) {
	item := mustCVE(t, `{
	  "metrics": {
	    "cvssMetricV30": [{"cvssData": {"vectorString": "CVSS:3.0/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H", "baseScore": 9.8, "baseSeverity": "CRITICAL"}}],
	    "cvssMetricV2": [{"cvssData": {"vectorString": "AV:N/AC:L/Au:N/C:P/I:P/A:P", "baseScore": 7.5}, "baseSeverity": "HIGH"}]
	  }
	}`)

	rec, err := RecordFromCVE(item)
	require.NoError(t, err)
	assert.Equal(t, types.CVSSv30, rec.CVSSVersion)
}

func TestRecordFromCVE_V2SeverityFromMetric(t *testing.T) {
	item := mustCVE(t, `{
	  "cisaExploitAdd": "2022-03-25",
	  "metrics": {
	    "cvssMetricV2": [{"cvssData": {"vectorString": "AV:N/AC:L/Au:N/C:P/I:P/A:P", "baseScore": 7.5}, "baseSeverity": "HIGH"}]
	  }
	}`)

	rec, err := RecordFromCVE(item)
	require.NoError(t, err)
	assert.Equal(t, types.CVSSv2, rec.CVSSVersion)
	assert.Equal(t, "HIGH", rec.Severity)
	assert.True(t, rec.CISAKEV)
	assert.Equal(t, PlaceholderCPE, rec.CPE)
}

func TestRecordFromCVE_ScoreFromVector(t *testing.T) {
	item := mustCVE(t, `{
	  "metrics": {
	    "cvssMetricV31": [{"cvssData": {"vectorString": "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:C/C:H/I:H/A:H"}}]
	  }
	}`)

	rec, err := RecordFromCVE(item)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, rec.BaseScore, 1e-9)
	assert.Equal(t, "CRITICAL", rec.Severity)
}

func TestRecordFromCVE_NoMetrics(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
		wantMsg string
	}{
		{name: "awaiting analysis", raw: `{"vulnStatus": "Awaiting Analysis", "metrics": {}}`, wantErr: ErrAwaitingAnalysis},
		{name: "other status", raw: `{"vulnStatus": "Received"}`, wantMsg: "(status: Received)"},
		{name: "no status", raw: `{}`, wantMsg: "no CVSS metrics"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RecordFromCVE(mustCVE(t, tt.raw))
			require.ErrorIs(t, err, ErrNoMetrics)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestRecordFromCVE_ScoreOutOfRange(t *testing.T) {
	tests := []struct {
		name    string
		metrics string
		wantErr bool
	}{
		{name: "above ten", metrics: `"cvssMetricV31": [{"cvssData": {"vectorString": "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H", "baseScore": 10.5, "baseSeverity": "CRITICAL"}}]`, wantErr: true},
		{name: "negative", metrics: `"cvssMetricV30": [{"cvssData": {"vectorString": "CVSS:3.0/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H", "baseScore": -1, "baseSeverity": "LOW"}}]`, wantErr: true},
		{name: "v2 above ten", metrics: `"cvssMetricV2": [{"cvssData": {"vectorString": "AV:N/AC:L/Au:N/C:C/I:C/A:C", "baseScore": 11}, "baseSeverity": "HIGH"}]`, wantErr: true},
		{name: "upper bound", metrics: `"cvssMetricV31": [{"cvssData": {"vectorString": "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:C/C:H/I:H/A:H", "baseScore": 10.0, "baseSeverity": "CRITICAL"}}]`},
		{name: "zero without vector", metrics: `"cvssMetricV31": [{"cvssData": {"baseScore": 0, "baseSeverity": "NONE"}}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := RecordFromCVE(mustCVE(t, `{"metrics": {`+tt.metrics+`}}`))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformedResponse)
				assert.Contains(t, err.Error(), "out of range")
				return
			}
			require.NoError(t, err)
			assert.GreaterOrEqual(t, rec.BaseScore, 0.0)
			assert.LessOrEqual(t, rec.BaseScore, 10.0)
		})
	}
}

func TestFirstCPE(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"no configurations", `[]`, PlaceholderCPE},
		{"no nodes", `[{"nodes": []}]`, PlaceholderCPE},
		{"no matches", `[{"nodes": [{"cpeMatch": []}]}]`, PlaceholderCPE},
		{"empty criteria", `[{"nodes": [{"cpeMatch": [{"criteria": ""}]}]}]`, PlaceholderCPE},
		{
			"first of many",
			`[{"nodes": [{"cpeMatch": [{"criteria": "cpe:2.3:a:a:b:1"}, {"criteria": "cpe:2.3:a:c:d:2"}]}]}, {"nodes": [{"cpeMatch": [{"criteria": "cpe:2.3:a:e:f:3"}]}]}]`,
			"cpe:2.3:a:a:b:1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var configs []nvdapi.Config
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &configs))
			assert.Equal(t, tt.want, FirstCPE(configs))
		})
	}
}

func TestFirstRecord_SkipsUnscored(t *testing.T) {
	items := []nvdapi.CVE{
		mustCVE(t, `{"vulnStatus": "Awaiting Analysis"}`),
		mustCVE(t, `{"metrics": {"cvssMetricV30": [{"cvssData": {"vectorString": "CVSS:3.0/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H", "baseScore": 9.8, "baseSeverity": "CRITICAL"}}]}}`),
	}

	rec, err := FirstRecord(items)
	require.NoError(t, err)
	assert.Equal(t, types.CVSSv30, rec.CVSSVersion)

	_, err = FirstRecord(items[:1])
	assert.ErrorIs(t, err, ErrNoMetrics)

	_, err = FirstRecord(nil)
	assert.ErrorIs(t, err, ErrNoMetrics)
}
