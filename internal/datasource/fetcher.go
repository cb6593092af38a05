// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
)

const (
	// DefaultTimeout bounds every upstream request.
	DefaultTimeout  = 30 * time.Second
	maxResponseSize = 10 * 1024 * 1024 // 10 MB

	breakerTrips    = 5
	defaultCooldown = 30 * time.Second
)

// Options configures the Fetcher of one adapter.
type Options struct {
	// Timeout bounds every request. Zero selects DefaultTimeout.
	Timeout time.Duration
	// Concurrency is the number of requests let through while the breaker
	// is half-open. It should match the number of concurrent workers.
	Concurrency int
	// Cooldown is how long the breaker stays open. Zero selects 30s.
	Cooldown time.Duration
	Logger   *slog.Logger
}

// Fetcher issues GET requests against one upstream source. Requests share
// an http.Client with a per-request timeout and a circuit breaker that opens
// after consecutive connectivity failures.
type Fetcher struct {
	source  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewFetcher creates a Fetcher for the named source. A nil logger discards
// debug output.
func NewFetcher(source string, opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = defaultCooldown
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	f := &Fetcher{
		source: source,
		client: &http.Client{Timeout: opts.Timeout},
		logger: logger,
	}
	f.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        source,
		MaxRequests: uint32(max(opts.Concurrency, 1)),
		Timeout:     opts.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTrips
		},
		// Only transport failures count against the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || !IsConnectivity(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Debug("circuit breaker state changed", "source", name, "from", from.String(), "to", to.String())
		},
	})
	return f
}

// GetJSON requests baseURL with query and header and decodes a 200 response
// body into dst.
func (f *Fetcher) GetJSON(ctx context.Context, baseURL string, query url.Values, header http.Header, dst any) error {
	_, err := f.breaker.Execute(func() (interface{}, error) {
		return nil, f.get(ctx, baseURL, query, header, dst)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &ConnectivityError{Source: f.source, Err: fmt.Errorf("%w: %v", ErrBreakerOpen, err)}
	}
	return err
}

func (f *Fetcher) get(ctx context.Context, baseURL string, query url.Values, header http.Header, dst any) error {
	reqURL := baseURL
	if len(query) > 0 {
		reqURL = baseURL + "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", f.source, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &ConnectivityError{Source: f.source, Err: err}
	}
	defer resp.Body.Close()

	// The query may carry an API token, so only the base URL is logged.
	f.logger.Debug("upstream response", "source", f.source, "url", baseURL,
		"status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Source: f.source, Code: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(dst); err != nil {
		return fmt.Errorf("%w from %s: %v", ErrMalformedResponse, f.source, err)
	}
	return nil
}
