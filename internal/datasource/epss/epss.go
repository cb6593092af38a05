// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package epss

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/bonial-oss/cve-prioritizer/internal/datasource"
	"github.com/bonial-oss/cve-prioritizer/internal/types"
)

const (
	// DefaultBaseURL is the FIRST.org EPSS API endpoint.
	DefaultBaseURL = "https://api.first.org/data/v1/epss"
	sourceName     = "EPSS"
)

// Source looks up EPSS scores one CVE at a time.
type Source struct {
	fetcher *datasource.Fetcher
	baseURL string
}

// NewSource creates an EPSS source. An empty baseURL selects DefaultBaseURL.
func NewSource(baseURL string, opts datasource.Options) *Source {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Source{
		fetcher: datasource.NewFetcher(sourceName, opts),
		baseURL: baseURL,
	}
}

// Lookup returns the EPSS record for cveID. A response without data yields
// a *datasource.NotFoundError.
func (s *Source) Lookup(ctx context.Context, cveID string) (*types.EPSSRecord, error) {
	var resp types.EPSSResponse
	if err := s.fetcher.GetJSON(ctx, s.baseURL, url.Values{"cve": {cveID}}, nil, &resp); err != nil {
		return nil, err
	}
	return parseRecord(resp, cveID)
}

// parseRecord converts the first data entry. Percentile is scaled from
// 0-1 to an integer 0-100, truncating.
func parseRecord(resp types.EPSSResponse, cveID string) (*types.EPSSRecord, error) {
	if resp.Total == 0 || len(resp.Data) == 0 {
		return nil, &datasource.NotFoundError{Source: sourceName, CVEID: cveID}
	}
	entry := resp.Data[0]

	score, err := parseProbability("score", entry.EPSS)
	if err != nil {
		return nil, fmt.Errorf("%w: EPSS %v for %s", datasource.ErrMalformedResponse, err, cveID)
	}
	percentile, err := parseProbability("percentile", entry.Percentile)
	if err != nil {
		return nil, fmt.Errorf("%w: EPSS %v for %s", datasource.ErrMalformedResponse, err, cveID)
	}

	return &types.EPSSRecord{
		Score:      score,
		Percentile: int(percentile * 100),
	}, nil
}

// parseProbability parses a value that must lie in [0, 1]. NaN is rejected.
func parseProbability(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not a number", field, raw)
	}
	if math.IsNaN(v) || v < 0 || v > 1 {
		return 0, fmt.Errorf("%s %s out of range [0, 1]", field, raw)
	}
	return v, nil
}
