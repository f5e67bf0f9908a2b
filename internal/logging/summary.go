package logging

import (
	"fmt"
	"strings"
	"time"
)

// RunSummary holds the statistics printed at the end of a generation run.
type RunSummary struct {
	Provider  string
	Records   int
	Rules     int
	Domains   int
	Hosts     int
	Addresses int
	Rejected  int // all skipped targets
	Blank     int // blank targets among Rejected
	Path      string
	Duration  time.Duration
}

// PrintRunSummary prints the end-of-run report.
func (l *StderrLogger) PrintRunSummary(s RunSummary) {
	if l.quiet {
		return
	}
	l.Separator()
	l.Info("Provider: %s | %d records → %d rules (%.1fs)", s.Provider, s.Records, s.Rules, s.Duration.Seconds())
	l.Info("  %s", kindBreakdown(s.Domains, s.Hosts, s.Addresses))
	if s.Rejected > 0 {
		l.Info("  %d targets skipped (%d non-standard wildcards, %d blank)", s.Rejected, s.Rejected-s.Blank, s.Blank)
	}
	if s.Path != "" {
		l.Info("Rule file: %s", s.Path)
	}
}

// DryRunConfig holds configuration for dry-run display.
type DryRunConfig struct {
	URL          string
	Provider     string
	OutputPath   string
	PortRules    bool
	Timeout      int
	NoIPv6       bool
	ServiceAreas []string
	MetricsFile  string
	Summary      RunSummary
	RuleLines    []string
}

// DryRun logs what a run would write without touching the filesystem.
func (l *StderrLogger) DryRun(cfg DryRunConfig) {
	l.Info("DRY RUN: no files will be written")
	l.Separator()
	l.Info("Source:      %s", cfg.URL)
	l.Info("Provider:    %s", cfg.Provider)
	l.Info("Output:      %s", cfg.OutputPath)
	if cfg.PortRules {
		l.Info("Port rules:  enabled")
	} else {
		l.Info("Port rules:  disabled")
	}
	l.Info("Timeout:     %ds", cfg.Timeout)
	if cfg.NoIPv6 {
		l.Info("IPv6:        excluded")
	}
	if len(cfg.ServiceAreas) > 0 {
		l.Info("Areas:       %s", strings.Join(cfg.ServiceAreas, ", "))
	}
	if cfg.MetricsFile != "" {
		l.Info("Metrics:     %s", cfg.MetricsFile)
	}

	l.Separator()
	l.Info("%d records → %d rules (%s)", cfg.Summary.Records, cfg.Summary.Rules,
		kindBreakdown(cfg.Summary.Domains, cfg.Summary.Hosts, cfg.Summary.Addresses))
	for _, line := range cfg.RuleLines {
		l.Debug("  %s", line)
	}
}

func kindBreakdown(domains, hosts, addresses int) string {
	return fmt.Sprintf("%d domains, %d hosts, %d addresses", domains, hosts, addresses)
}
