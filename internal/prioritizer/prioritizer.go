// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package prioritizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/bonial-oss/cve-prioritizer/internal/datasource"
	"github.com/bonial-oss/cve-prioritizer/internal/types"
)

// DefaultMaxInFlight is the default number of CVEs processed concurrently.
const DefaultMaxInFlight = 100

// VulnerabilitySource resolves CVSS metadata for a CVE. Name labels the
// source in diagnostics.
type VulnerabilitySource interface {
	Name() string
	Lookup(ctx context.Context, cveID string) (*types.VulnerabilityRecord, error)
}

// KEVSource reports whether a CVE is in a known-exploited catalog.
type KEVSource interface {
	Listed(ctx context.Context, cveID string) (bool, error)
}

// EPSSSource resolves the EPSS score for a CVE.
type EPSSSource interface {
	Lookup(ctx context.Context, cveID string) (*types.EPSSRecord, error)
}

// Sink receives every scored result as soon as it is available.
type Sink interface {
	Write(result *types.PriorityResult) error
}

// Sources bundles the adapters for one run. KEV is nil unless the
// VulnCheck KEV catalog should be consulted.
type Sources struct {
	Vulnerability VulnerabilitySource
	KEV           KEVSource
	EPSS          EPSSSource
}

// Config holds the run options.
type Config struct {
	Thresholds  Thresholds
	MaxInFlight int
	// AbortOnNotFound stops the whole run on the first CVE a source does
	// not know. Otherwise the CVE is skipped.
	AbortOnNotFound bool
	// Throttle paces worker dispatch. Nil disables pacing.
	Throttle *rate.Limiter
	// Diagnostics receives one human-readable line per skipped CVE.
	Diagnostics io.Writer
	Sinks       []Sink
	Logger      *slog.Logger
}

// Prioritizer scores CVEs against the configured sources.
type Prioritizer struct {
	sources Sources
	cfg     Config
	logger  *slog.Logger

	// mu serializes diagnostics and sink writes so lines never interleave.
	mu sync.Mutex
}

// New creates a Prioritizer.
func New(sources Sources, cfg Config) *Prioritizer {
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = DefaultMaxInFlight
	}
	if cfg.Diagnostics == nil {
		cfg.Diagnostics = io.Discard
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Prioritizer{sources: sources, cfg: cfg, logger: logger}
}

// Run scores every CVE in cveIDs. One worker is dispatched per CVE, with at
// most MaxInFlight running at once. The returned slice has one slot per
// input; slots of skipped CVEs stay nil.
//
// When AbortOnNotFound is set and a source reports a CVE as unknown, the
// run is cancelled and the *datasource.NotFoundError is returned alongside
// whatever results completed.
func (p *Prioritizer) Run(ctx context.Context, cveIDs []string) ([]*types.PriorityResult, error) {
	results := make([]*types.PriorityResult, len(cveIDs))

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	sem := semaphore.NewWeighted(int64(p.cfg.MaxInFlight))
	var wg sync.WaitGroup

	for i, cveID := range cveIDs {
		if p.cfg.Throttle != nil {
			if err := p.cfg.Throttle.Wait(ctx); err != nil {
				break
			}
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			p.work(ctx, cancel, results, i, cveID)
		}()
	}
	wg.Wait()

	if err := context.Cause(ctx); err != nil {
		return results, err
	}
	return results, nil
}

// work processes one CVE and stores the result at results[idx]. Failures
// are reported and never propagate past this frame.
func (p *Prioritizer) work(ctx context.Context, abort context.CancelCauseFunc, results []*types.PriorityResult, idx int, cveID string) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Debug("worker panic", "cve", cveID, "panic", r)
			p.diagf("Error retrieving priority for %s", cveID)
		}
	}()

	if ctx.Err() != nil {
		return
	}
	result, err := p.Prioritize(ctx, cveID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.report(cveID, err, abort)
		return
	}

	results[idx] = result
	p.emit(result)
}

// Prioritize fetches, merges and classifies a single CVE.
func (p *Prioritizer) Prioritize(ctx context.Context, cveID string) (*types.PriorityResult, error) {
	var listed bool
	if p.sources.KEV != nil {
		var err error
		listed, err = p.sources.KEV.Listed(ctx, cveID)
		if err != nil {
			return nil, err
		}
	}

	vuln, err := p.sources.Vulnerability.Lookup(ctx, cveID)
	if err != nil {
		return nil, err
	}
	exploited := listed || vuln.CISAKEV

	epss, err := p.sources.EPSS.Lookup(ctx, cveID)
	if err != nil {
		return nil, err
	}

	result := BuildResult(cveID, vuln, epss)
	result.Priority = Classify(p.cfg.Thresholds, exploited, vuln.BaseScore, epss.Score)
	result.KEV = exploited
	result.VulnCheckKEV = listed
	p.logger.Debug("classified", "cve", cveID, "source", p.sources.Vulnerability.Name(),
		"priority", result.Priority.String(), "cvss", vuln.BaseScore, "epss", epss.Score, "kev", exploited)
	return &result, nil
}

func (p *Prioritizer) report(cveID string, err error, abort context.CancelCauseFunc) {
	var (
		notFound *datasource.NotFoundError
		status   *datasource.StatusError
		conn     *datasource.ConnectivityError
	)
	switch {
	case errors.As(err, &notFound):
		p.diagf("%-18sNot Found in %s.", cveID, notFound.Source)
		if p.cfg.AbortOnNotFound {
			abort(err)
		}
	case errors.As(err, &status):
		p.diagf("%-18sError code %d from %s", cveID, status.Code, status.Source)
	case errors.As(err, &conn) && errors.Is(err, datasource.ErrBreakerOpen):
		p.diagf("%-18sSkipped, %s is unreachable after repeated connection failures", cveID, conn.Source)
	case errors.As(err, &conn):
		p.diagf("Unable to connect to %s for %s, check your Internet connection or try again", conn.Source, cveID)
	case errors.Is(err, datasource.ErrAwaitingAnalysis):
		p.diagf("%-18s%s Status: %s", cveID, p.sources.Vulnerability.Name(), datasource.StatusAwaitingAnalysis)
	case errors.Is(err, datasource.ErrNoMetrics), errors.Is(err, datasource.ErrMalformedResponse):
		p.diagf("%-18s%v", cveID, err)
	default:
		p.logger.Debug("unexpected error", "cve", cveID, "source", p.sources.Vulnerability.Name(), "error", err)
		p.diagf("Error retrieving priority for %s", cveID)
	}
}

func (p *Prioritizer) emit(result *types.PriorityResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, sink := range p.cfg.Sinks {
		if err := sink.Write(result); err != nil {
			fmt.Fprintf(p.cfg.Diagnostics, "warning: writing result for %s: %v\n", result.CVEID, err)
		}
	}
}

func (p *Prioritizer) diagf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.cfg.Diagnostics, format+"\n", args...)
}
