// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/bonial-oss/cve-prioritizer/internal/config"
	"github.com/bonial-oss/cve-prioritizer/internal/credentials"
	"github.com/bonial-oss/cve-prioritizer/internal/datasource"
	"github.com/bonial-oss/cve-prioritizer/internal/datasource/epss"
	"github.com/bonial-oss/cve-prioritizer/internal/datasource/kev"
	"github.com/bonial-oss/cve-prioritizer/internal/datasource/nvd"
	"github.com/bonial-oss/cve-prioritizer/internal/datasource/vulncheck"
	"github.com/bonial-oss/cve-prioritizer/internal/input"
	"github.com/bonial-oss/cve-prioritizer/internal/output"
	"github.com/bonial-oss/cve-prioritizer/internal/prioritizer"
	"github.com/bonial-oss/cve-prioritizer/internal/types"
)

// Version is set at build time via ldflags.
var Version = "dev"

// ExitError signals a non-zero exit code with an optional message.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

const (
	warnNoNISTKey  = "Warning: Using this tool without specifying a NIST API may result in errors"
	warnLargeBatch = "Large number of CVEs detected, requests will be throttle to avoid API issues"
)

// Options holds all CLI flag values.
type Options struct {
	APIKey        string
	CVE           string
	List          string
	File          string
	EPSSThreshold float64
	CVSSThreshold float64
	Output        string
	Threads       int
	Verbose       bool
	NoColor       bool
	VulnCheck     bool
	VulnCheckKEV  bool
	OnNotFound    string
	Timeout       time.Duration
	NoThrottle    bool
	ConfigPath    string
	EnvFile       string
	JSONOutput    string
	XLSXOutput    string
	Summary       bool
	Debug         bool
}

// NewRootCommand creates the root cobra command with all flags.
func NewRootCommand() *cobra.Command {
	opts := &Options{}
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:     "cve-prio",
		Short:   "Prioritize CVEs by CVSS, EPSS and known exploitation",
		Version: Version,
		Long: `cve-prio looks up each CVE in NIST NVD or VulnCheck, fetches its EPSS score
from FIRST.org and sorts it into a priority bucket:

  Priority 0  known exploited (CISA or VulnCheck KEV)
  Priority 1  CVSS and EPSS at or above their thresholds
  Priority 2  CVSS at or above threshold, EPSS below
  Priority 3  CVSS below threshold, EPSS at or above
  Priority 4  both below

Usage:
  cve-prio -c CVE-2021-44228 -v
  cve-prio -l CVE-2021-44228,CVE-2014-0160 -o results.csv
  cve-prio -f cves.txt --vulncheck-kev --summary`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.APIKey, "api", "a", "", "API key for the selected source (overrides .env)")
	flags.StringVarP(&opts.CVE, "cve", "c", "", "Single CVE ID")
	flags.StringVarP(&opts.List, "list", "l", "", "Comma separated list of CVEs")
	flags.StringVarP(&opts.File, "file", "f", "", "File with one CVE per line (- for stdin)")
	flags.Float64VarP(&opts.EPSSThreshold, "epss", "e", defaults.EPSSThreshold, "EPSS threshold")
	flags.Float64VarP(&opts.CVSSThreshold, "cvss", "n", defaults.CVSSThreshold, "CVSS threshold")
	flags.StringVarP(&opts.Output, "output", "o", "", "Append results as CSV to this file")
	flags.IntVarP(&opts.Threads, "threads", "t", defaults.Threads, "Number of CVEs processed concurrently")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "Show scores, versions, vendor and product")
	flags.BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")
	flags.BoolVar(&opts.VulnCheck, "vulncheck", false, "Use VulnCheck NVD++ instead of NIST NVD (requires VulnCheck API key)")
	flags.BoolVar(&opts.VulnCheckKEV, "vulncheck-kev", false, "Use VulnCheck KEV with NVD++ (requires VulnCheck API key)")
	flags.StringVar(&opts.OnNotFound, "on-not-found", string(defaults.NotFound), "What to do with unknown CVEs: abort or skip")
	flags.DurationVar(&opts.Timeout, "timeout", defaults.Timeout, "Per-request timeout")
	flags.BoolVar(&opts.NoThrottle, "no-throttle", false, "Dispatch lookups without pacing")
	flags.StringVar(&opts.ConfigPath, "config", "", "YAML config file (default ./"+config.DefaultPath+" if present)")
	flags.StringVar(&opts.EnvFile, "env-file", credentials.DefaultFile, "Dotenv file with NIST_API / VULNCHECK_API")
	flags.StringVar(&opts.JSONOutput, "json-output", "", "Also write results as JSON to this file")
	flags.StringVar(&opts.XLSXOutput, "xlsx-output", "", "Also write results as an Excel workbook to this file")
	flags.BoolVar(&opts.Summary, "summary", false, "Print a summary table after all CVEs are processed")
	flags.BoolVar(&opts.Debug, "debug", false, "Log HTTP requests and classification details to stderr")
	cmd.MarkFlagsMutuallyExclusive("cve", "list", "file")

	cmd.AddCommand(newSetAPICommand())
	return cmd
}

// run orchestrates one prioritization pass.
func run(cmd *cobra.Command, opts *Options) error {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}

	batch, err := collectCVEs(cmd, opts)
	if err != nil {
		return err
	}
	if len(batch.Valid) == 0 && len(batch.Invalid) == 0 {
		return usageError("no CVEs provided: use --cve, --list or --file")
	}

	logger := newLogger(stderr, opts.Debug)
	sources, err := buildSources(cfg, logger)
	if err != nil {
		return usageError("%v", err)
	}

	kevColumn := output.KEVColumnCISA
	if cfg.Source == config.SourceVulnCheckKEV {
		kevColumn = output.KEVColumnVulnCheck
	}
	useColor := !opts.NoColor && output.IsOutputToTerminal(stdout)

	if cfg.Source == config.SourceNVD && cfg.Keys.NIST == "" {
		if cfg.LargeBatch(len(batch.Valid)) {
			fmt.Fprintln(stdout, warnLargeBatch)
		}
		fmt.Fprintln(stdout, warnNoNISTKey)
		fmt.Fprintln(stdout)
	}

	console := output.NewConsole(stdout, output.ConsoleOptions{
		Verbose:   opts.Verbose,
		Color:     useColor,
		KEVColumn: kevColumn,
	})
	if err := console.WriteHeader(); err != nil {
		return err
	}
	for _, id := range batch.Invalid {
		fmt.Fprintf(stdout, "%s Error: CVEs should be provided in the standard format CVE-0000-0000*\n", id)
	}

	sinks := []prioritizer.Sink{console}
	if opts.Output != "" {
		csvSink, err := output.OpenCSV(opts.Output, kevColumn)
		if err != nil {
			return err
		}
		defer func() {
			if err := csvSink.Close(); err != nil {
				fmt.Fprintf(stderr, "warning: %v\n", err)
			}
		}()
		sinks = append(sinks, csvSink)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	p := prioritizer.New(sources, prioritizer.Config{
		Thresholds:      cfg.Thresholds(),
		MaxInFlight:     cfg.Threads,
		AbortOnNotFound: cfg.NotFound == config.NotFoundAbort,
		Throttle:        cfg.Throttle(len(batch.Valid)),
		Diagnostics:     stdout,
		Sinks:           sinks,
		Logger:          logger,
	})
	results, runErr := p.Run(ctx, batch.Valid)
	scored := lo.Compact(results)

	if err := writeExports(stdout, opts, kevColumn, scored, useColor); err != nil {
		return err
	}

	switch {
	case runErr == nil:
		return nil
	case errors.Is(runErr, datasource.ErrNotFound):
		return &ExitError{Code: 1, Message: runErr.Error()}
	case errors.Is(runErr, context.Canceled):
		return &ExitError{Code: 1, Message: "interrupted"}
	default:
		return fmt.Errorf("prioritizing CVEs: %w", runErr)
	}
}

// resolveConfig layers defaults, the YAML file, the environment and
// explicitly set flags, in that order, then validates the result.
func resolveConfig(cmd *cobra.Command, opts *Options) (config.Config, error) {
	path := opts.ConfigPath
	required := path != ""
	if path == "" {
		path = config.DefaultPath
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return cfg, usageError("%v", err)
	}

	if err := credentials.Load(opts.EnvFile); err != nil {
		return cfg, usageError("%v", err)
	}
	keys := credentials.FromEnv()
	if keys.NIST != "" {
		cfg.Keys.NIST = keys.NIST
	}
	if keys.VulnCheck != "" {
		cfg.Keys.VulnCheck = keys.VulnCheck
	}

	flags := cmd.Flags()
	switch {
	case opts.VulnCheckKEV:
		cfg.Source = config.SourceVulnCheckKEV
	case opts.VulnCheck:
		cfg.Source = config.SourceVulnCheck
	}
	if flags.Changed("api") {
		if cfg.Source == config.SourceNVD {
			cfg.Keys.NIST = opts.APIKey
		} else {
			cfg.Keys.VulnCheck = opts.APIKey
		}
	}
	if flags.Changed("cvss") {
		cfg.CVSSThreshold = opts.CVSSThreshold
	}
	if flags.Changed("epss") {
		cfg.EPSSThreshold = opts.EPSSThreshold
	}
	if flags.Changed("threads") {
		cfg.Threads = opts.Threads
	}
	if flags.Changed("timeout") {
		cfg.Timeout = opts.Timeout
	}
	if flags.Changed("on-not-found") {
		cfg.NotFound = config.NotFoundPolicy(opts.OnNotFound)
	}
	if opts.NoThrottle {
		cfg.NoThrottle = true
	}

	if err := cfg.Validate(); err != nil {
		return cfg, usageError("%v", err)
	}
	return cfg, nil
}

func collectCVEs(cmd *cobra.Command, opts *Options) (*input.Batch, error) {
	req := input.Request{Single: opts.CVE, List: opts.List}
	switch opts.File {
	case "":
	case "-":
		req.File = cmd.InOrStdin()
	default:
		f, err := os.Open(opts.File)
		if err != nil {
			return nil, usageError("opening CVE file: %v", err)
		}
		defer f.Close()
		req.File = f
	}
	return input.Collect(req)
}

func buildSources(cfg config.Config, logger *slog.Logger) (prioritizer.Sources, error) {
	fetch := cfg.FetchOptions(logger)
	sources := prioritizer.Sources{
		EPSS: epss.NewSource(cfg.Endpoints.EPSS, fetch),
	}

	switch cfg.Source {
	case config.SourceNVD:
		sources.Vulnerability = nvd.NewSource(cfg.Endpoints.NVD, cfg.Keys.NIST, fetch)
	case config.SourceVulnCheck, config.SourceVulnCheckKEV:
		vc, err := vulncheck.NewSource(cfg.Endpoints.VulnCheck, cfg.Keys.VulnCheck, fetch)
		if err != nil {
			return sources, err
		}
		sources.Vulnerability = vc
		if cfg.Source == config.SourceVulnCheckKEV {
			k, err := kev.NewSource(cfg.Endpoints.VulnCheckKEV, cfg.Keys.VulnCheck, fetch)
			if err != nil {
				return sources, err
			}
			sources.KEV = k
		}
	default:
		return sources, fmt.Errorf("unknown source %q", cfg.Source)
	}
	return sources, nil
}

func writeExports(w io.Writer, opts *Options, kevColumn string, scored []*types.PriorityResult, useColor bool) error {
	if opts.JSONOutput != "" {
		if err := output.WriteJSONFile(opts.JSONOutput, scored); err != nil {
			return err
		}
	}
	if opts.XLSXOutput != "" {
		if err := output.WriteXLSX(opts.XLSXOutput, kevColumn, scored); err != nil {
			return err
		}
	}
	if opts.Summary {
		output.WriteSummary(w, scored, useColor)
	}
	return nil
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
