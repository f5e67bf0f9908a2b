// Package pipeline runs one generation: fetch endpoint records, extract
// rules, write the rule file. Stages run strictly in sequence.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/p4th0r/cloudrules/internal/config"
	"github.com/p4th0r/cloudrules/internal/endpoints"
	"github.com/p4th0r/cloudrules/internal/logging"
	"github.com/p4th0r/cloudrules/internal/metrics"
	"github.com/p4th0r/cloudrules/internal/rulefile"
	"github.com/p4th0r/cloudrules/internal/rules"
)

// Reporter is the logger plus the run-level reports the pipeline prints.
type Reporter interface {
	logging.Logger
	PrintRunSummary(s logging.RunSummary)
	DryRun(cfg logging.DryRunConfig)
}

// Options configures a Run.
type Options struct {
	Config     config.Config
	Reporter   Reporter         // nil discards all output
	HTTPClient *http.Client     // nil uses a default client
	Now        func() time.Time // nil uses time.Now
}

// Result describes a completed run.
type Result struct {
	Path  string // empty on dry runs
	Rules []rules.Rule
	Stats rules.Stats
}

// Run executes fetch → extract → write. Any stage failure aborts the run and
// is returned; nothing is written if fetching fails.
func Run(ctx context.Context, opts Options) (Result, error) {
	cfg := opts.Config
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	rep := opts.Reporter
	if rep == nil {
		rep = logging.NewLogger(io.Discard, true, false)
	}

	m := metrics.NewRun(cfg.Provider)
	if cfg.MetricsFile != "" {
		if err := m.Restore(cfg.MetricsFile); err != nil {
			rep.Warn("%v", err)
		}
	}
	started := now()

	fetcher := endpoints.NewFetcher(endpoints.FetcherConfig{
		BaseURL:      cfg.URL,
		Timeout:      cfg.TimeoutDuration(),
		NoIPv6:       cfg.NoIPv6,
		ServiceAreas: cfg.ServiceAreas,
		HTTPClient:   opts.HTTPClient,
		Logger:       rep,
	})

	records, err := fetcher.FetchRecords(ctx)
	if err != nil {
		m.MarkFailure("fetch")
		writeMetrics(cfg, m, rep)
		return Result{}, fmt.Errorf("fetching endpoint data: %w", err)
	}
	m.ObserveFetch(now().Sub(started), len(records))

	extractor := rules.NewExtractor(rules.ExtractorConfig{
		PortRules: cfg.PortRules,
		Logger:    rep,
	})
	rs, stats := extractor.Extract(records)
	m.ObserveRules(stats.Domains, stats.Hosts, stats.Addresses, stats.Rejected)

	summary := logging.RunSummary{
		Provider:  cfg.Provider,
		Records:   stats.Records,
		Rules:     stats.Rules,
		Domains:   stats.Domains,
		Hosts:     stats.Hosts,
		Addresses: stats.Addresses,
		Rejected:  stats.Rejected,
		Blank:     stats.Blank,
	}

	if cfg.DryRun {
		lines := make([]string, 0, len(rs))
		for _, r := range rs {
			lines = append(lines, r.String())
		}
		rep.DryRun(logging.DryRunConfig{
			URL:          cfg.URL,
			Provider:     cfg.Provider,
			OutputPath:   rulefile.Path(cfg.OutputDir, cfg.Provider),
			PortRules:    cfg.PortRules,
			Timeout:      cfg.Timeout,
			NoIPv6:       cfg.NoIPv6,
			ServiceAreas: cfg.ServiceAreas,
			MetricsFile:  cfg.MetricsFile,
			Summary:      summary,
			RuleLines:    lines,
		})
		return Result{Rules: rs, Stats: stats}, nil
	}

	rep.Info("Generating rule file for %s...", cfg.Provider)
	path, err := rulefile.Write(cfg.OutputDir, cfg.Provider, rulefile.New(cfg.Provider, rs))
	if err != nil {
		m.MarkFailure("write")
		writeMetrics(cfg, m, rep)
		return Result{}, fmt.Errorf("writing rule file: %w", err)
	}

	m.MarkSuccess(now())
	writeMetrics(cfg, m, rep)

	summary.Path = path
	summary.Duration = now().Sub(started)
	rep.PrintRunSummary(summary)

	return Result{Path: path, Rules: rs, Stats: stats}, nil
}

// writeMetrics exports the run metrics when a metrics file is configured.
// A failure here is reported but does not fail the run.
func writeMetrics(cfg config.Config, m *metrics.Run, rep Reporter) {
	if cfg.MetricsFile == "" {
		return
	}
	if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
		rep.Warn("%v", err)
		return
	}
	rep.Debug("Metrics written to %s", cfg.MetricsFile)
}
