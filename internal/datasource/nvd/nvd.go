// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package nvd

import (
	"context"
	"net/http"
	"net/url"

	nvdapi "github.com/pandatix/nvdapi/v2"
	"github.com/samber/lo"

	"github.com/bonial-oss/cve-prioritizer/internal/datasource"
	"github.com/bonial-oss/cve-prioritizer/internal/types"
)

const (
	// DefaultBaseURL is the NIST NVD CVE API 2.0 endpoint.
	DefaultBaseURL = "https://services.nvd.nist.gov/rest/json/cves/2.0"
	// SourceName is how NVD is referred to in diagnostics.
	SourceName = "NIST NVD"
)

// Source fetches CVE metadata from NIST NVD. The API key is optional and
// only raises the upstream rate limit.
type Source struct {
	fetcher *datasource.Fetcher
	baseURL string
	apiKey  string
}

// NewSource creates an NVD source. An empty baseURL selects DefaultBaseURL.
func NewSource(baseURL, apiKey string, opts datasource.Options) *Source {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Source{
		fetcher: datasource.NewFetcher(SourceName, opts),
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// Name returns the source name.
func (s *Source) Name() string { return SourceName }

// Lookup fetches and normalizes the record for cveID.
func (s *Source) Lookup(ctx context.Context, cveID string) (*types.VulnerabilityRecord, error) {
	var header http.Header
	if s.apiKey != "" {
		header = http.Header{"apiKey": {s.apiKey}}
	}

	var resp types.NVDResponse
	if err := s.fetcher.GetJSON(ctx, s.baseURL, url.Values{"cveId": {cveID}}, header, &resp); err != nil {
		return nil, err
	}
	if resp.TotalResults == 0 || len(resp.Vulnerabilities) == 0 {
		return nil, &datasource.NotFoundError{Source: SourceName, CVEID: cveID}
	}

	cves := lo.Map(resp.Vulnerabilities, func(v nvdapi.CVEItem, _ int) nvdapi.CVE { return v.CVE })
	return datasource.FirstRecord(cves)
}
