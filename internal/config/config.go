// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/bonial-oss/cve-prioritizer/internal/datasource"
	"github.com/bonial-oss/cve-prioritizer/internal/prioritizer"
)

// DefaultPath is read when no config file is named explicitly.
const DefaultPath = "cve-prio.yaml"

// Source selects the vulnerability metadata backend.
type Source string

const (
	SourceNVD          Source = "nvd"
	SourceVulnCheck    Source = "vulncheck"
	SourceVulnCheckKEV Source = "vulncheck-kev"
)

// NotFoundPolicy decides what happens when a source does not know a CVE.
type NotFoundPolicy string

const (
	NotFoundAbort NotFoundPolicy = "abort"
	NotFoundSkip  NotFoundPolicy = "skip"
)

// Large unauthenticated NVD batches are paced well below the public rate limit.
const (
	largeBatchSize    = 75
	nvdSlowInterval   = 6 * time.Second
	nvdInterval       = time.Second
	vulnCheckInterval = 50 * time.Millisecond
)

var (
	// ErrMissingCredential is returned when a VulnCheck mode has no API key.
	ErrMissingCredential = errors.New("VulnCheck requires an API key")
	// ErrWrongKey is returned when a VulnCheck key is used against NVD.
	ErrWrongKey = errors.New("wrong API key provided (VulnCheck)")
)

// Endpoints overrides the upstream base URLs. Empty fields use the
// adapter defaults.
type Endpoints struct {
	NVD          string `yaml:"nvd"`
	VulnCheck    string `yaml:"vulncheck"`
	VulnCheckKEV string `yaml:"vulncheck_kev"`
	EPSS         string `yaml:"epss"`
}

// Keys holds the upstream API keys.
type Keys struct {
	NIST      string `yaml:"nist_api"`
	VulnCheck string `yaml:"vulncheck_api"`
}

// Config is the full run configuration.
type Config struct {
	CVSSThreshold float64        `yaml:"cvss_threshold"`
	EPSSThreshold float64        `yaml:"epss_threshold"`
	Source        Source         `yaml:"source"`
	Threads       int            `yaml:"threads"`
	Timeout       time.Duration  `yaml:"timeout"`
	NotFound      NotFoundPolicy `yaml:"not_found"`
	NoThrottle    bool           `yaml:"no_throttle"`
	Endpoints     Endpoints      `yaml:"endpoints"`
	Keys          Keys           `yaml:"keys"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		CVSSThreshold: prioritizer.DefaultCVSSThreshold,
		EPSSThreshold: prioritizer.DefaultEPSSThreshold,
		Source:        SourceNVD,
		Threads:       prioritizer.DefaultMaxInFlight,
		Timeout:       datasource.DefaultTimeout,
		NotFound:      NotFoundAbort,
	}
}

// Load reads a YAML file over the defaults. A missing file is an error
// only when required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges and credentials. It makes no network calls.
func (c Config) Validate() error {
	if c.CVSSThreshold < 0 || c.CVSSThreshold > 10 {
		return fmt.Errorf("cvss threshold %g out of range [0, 10]", c.CVSSThreshold)
	}
	if c.EPSSThreshold < 0 || c.EPSSThreshold > 1 {
		return fmt.Errorf("epss threshold %g out of range [0, 1]", c.EPSSThreshold)
	}
	if c.Threads < 1 {
		return fmt.Errorf("threads must be at least 1, got %d", c.Threads)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	switch c.NotFound {
	case NotFoundAbort, NotFoundSkip:
	default:
		return fmt.Errorf("unknown not-found policy %q (want abort or skip)", c.NotFound)
	}

	switch c.Source {
	case SourceNVD:
		if strings.Contains(strings.ToLower(c.Keys.NIST), "vulncheck") {
			return ErrWrongKey
		}
	case SourceVulnCheck, SourceVulnCheckKEV:
		if c.Keys.VulnCheck == "" {
			return ErrMissingCredential
		}
	default:
		return fmt.Errorf("unknown source %q", c.Source)
	}
	return nil
}

// Thresholds returns the classifier cut-offs.
func (c Config) Thresholds() prioritizer.Thresholds {
	return prioritizer.Thresholds{CVSS: c.CVSSThreshold, EPSS: c.EPSSThreshold}
}

// FetchOptions returns the HTTP settings shared by every source adapter.
// The breaker admits as many half-open requests as there are workers.
func (c Config) FetchOptions(logger *slog.Logger) datasource.Options {
	return datasource.Options{Timeout: c.Timeout, Concurrency: c.Threads, Logger: logger}
}

// LargeBatch reports whether n CVEs against keyless NVD will be slowed down.
func (c Config) LargeBatch(n int) bool {
	return c.Source == SourceNVD && c.Keys.NIST == "" && n > largeBatchSize
}

// Throttle returns the dispatch pacing for a batch of n CVEs, or nil when
// pacing is disabled.
func (c Config) Throttle(n int) *rate.Limiter {
	if c.NoThrottle {
		return nil
	}
	interval := vulnCheckInterval
	if c.Source == SourceNVD {
		interval = nvdInterval
		if c.LargeBatch(n) {
			interval = nvdSlowInterval
		}
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}
