// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package kev

import (
	"context"
	"net/http"
	"net/url"

	"github.com/bonial-oss/cve-prioritizer/internal/datasource"
	"github.com/bonial-oss/cve-prioritizer/internal/types"
)

const (
	// DefaultBaseURL is the VulnCheck KEV index endpoint.
	DefaultBaseURL = "https://api.vulncheck.com/v3/index/vulncheck-kev"
	sourceName     = "VulnCheck KEV"
)

// Source checks CVEs against the VulnCheck Known Exploited Vulnerabilities catalog.
type Source struct {
	fetcher *datasource.Fetcher
	baseURL string
	apiKey  string
}

// NewSource creates a VulnCheck KEV source. The API key is mandatory.
func NewSource(baseURL, apiKey string, opts datasource.Options) (*Source, error) {
	if apiKey == "" {
		return nil, datasource.ErrMissingAPIKey
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Source{
		fetcher: datasource.NewFetcher(sourceName, opts),
		baseURL: baseURL,
		apiKey:  apiKey,
	}, nil
}

// Listed reports whether the catalog has any entry for cveID.
func (s *Source) Listed(ctx context.Context, cveID string) (bool, error) {
	var resp types.VulnCheckKEVResponse
	query := url.Values{"cve": {cveID}, "token": {s.apiKey}}
	header := http.Header{"Accept": {"application/json"}}
	if err := s.fetcher.GetJSON(ctx, s.baseURL, query, header, &resp); err != nil {
		return false, err
	}
	return len(resp.Data) > 0, nil
}
