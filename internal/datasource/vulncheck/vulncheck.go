// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package vulncheck

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
	// DefaultBaseURL is VulnCheck's NVD 2.0 mirror index ("NVD++").
	DefaultBaseURL = "https://api.vulncheck.com/v3/index/nist-nvd2"
	// SourceName is how VulnCheck is referred to in diagnostics.
	SourceName = "VulnCheck"
)

// Source fetches CVE metadata from VulnCheck's NVD index.
type Source struct {
	fetcher *datasource.Fetcher
	baseURL string
	apiKey  string
}

// NewSource creates a VulnCheck source. The API key is mandatory.
func NewSource(baseURL, apiKey string, opts datasource.Options) (*Source, error) {
	if apiKey == "" {
		return nil, datasource.ErrMissingAPIKey
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Source{
		fetcher: datasource.NewFetcher(SourceName, opts),
		baseURL: baseURL,
		apiKey:  apiKey,
	}, nil
}

// Name returns the source name.
func (s *Source) Name() string { return SourceName }

// Lookup fetches and normalizes the record for cveID.
func (s *Source) Lookup(ctx context.Context, cveID string) (*types.VulnerabilityRecord, error) {
	var resp types.VulnCheckResponse
	query := url.Values{"cve": {cveID}, "token": {s.apiKey}}
	header := http.Header{"Accept": {"application/json"}}
	if err := s.fetcher.GetJSON(ctx, s.baseURL, query, header, &resp); err != nil {
		return nil, err
	}
	if resp.Meta.TotalDocuments == 0 || len(resp.Data) == 0 {
		return nil, &datasource.NotFoundError{Source: SourceName, CVEID: cveID}
	}
	return datasource.FirstRecord(lo.Map(resp.Data, func(item types.VulnCheckCVE, _ int) nvdapi.CVE {
		cve := item.CVE
		// VulnCheck backfills applicability data NIST has not published yet.
		if datasource.FirstCPE(cve.Configurations) == datasource.PlaceholderCPE {
			cve.Configurations = item.VcConfigurations
		}
		return cve
	}))
}
