package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestStderrLogger_Levels(t *testing.T) {
	tests := []struct {
		name    string
		quiet   bool
		verbose bool
		log     func(l *StderrLogger)
		want    string
	}{
		{"info", false, false, func(l *StderrLogger) { l.Info("fetched %d", 3) }, "[cloudrules] fetched 3\n"},
		{"info quiet", true, false, func(l *StderrLogger) { l.Info("fetched") }, ""},
		{"warn", false, false, func(l *StderrLogger) { l.Warn("skipping %s", "*.*.x") }, "[cloudrules] Warning: skipping *.*.x\n"},
		{"warn quiet", true, false, func(l *StderrLogger) { l.Warn("skipping") }, ""},
		{"debug not verbose", false, false, func(l *StderrLogger) { l.Debug("detail") }, ""},
		{"debug verbose", false, true, func(l *StderrLogger) { l.Debug("detail") }, "[cloudrules] DEBUG: detail\n"},
		{"debug verbose quiet", true, true, func(l *StderrLogger) { l.Debug("detail") }, ""},
		{"error quiet", true, false, func(l *StderrLogger) { l.Error("boom") }, "[cloudrules] Error: boom\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(NewLogger(&buf, tt.quiet, tt.verbose))
			if got := buf.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOrNop(t *testing.T) {
	if _, ok := OrNop(nil).(Nop); !ok {
		t.Error("OrNop(nil) should return Nop")
	}
	l := NewLogger(&bytes.Buffer{}, false, false)
	if OrNop(l) != Logger(l) {
		t.Error("OrNop should return the given logger")
	}
}

func TestPrintRunSummary(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, false, false)
	l.PrintRunSummary(RunSummary{
		Provider:  "microsoft",
		Records:   2,
		Rules:     5,
		Domains:   1,
		Hosts:     2,
		Addresses: 2,
		Rejected:  3,
		Blank:     2,
		Path:      "rules/cloud_rules_microsoft.lsrules",
		Duration:  1500 * time.Millisecond,
	})

	out := buf.String()
	for _, want := range []string{
		"2 records → 5 rules",
		"1 domains, 2 hosts, 2 addresses",
		"3 targets skipped (1 non-standard wildcards, 2 blank)",
		"Rule file: rules/cloud_rules_microsoft.lsrules",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestDryRun(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, false, true)
	l.DryRun(DryRunConfig{
		URL:          "https://endpoints.office.com/endpoints/worldwide",
		Provider:     "microsoft",
		OutputPath:   "rules/cloud_rules_microsoft.lsrules",
		PortRules:    false,
		Timeout:      10,
		ServiceAreas: []string{"Exchange", "Skype"},
		Summary:      RunSummary{Records: 1, Rules: 1, Hosts: 1},
		RuleLines:    []string{"host     mail.contoso.com"},
	})

	out := buf.String()
	for _, want := range []string{
		"DRY RUN",
		"Port rules:  disabled",
		"Areas:       Exchange, Skype",
		"1 records → 1 rules",
		"DEBUG:   host     mail.contoso.com",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dry run output missing %q:\n%s", want, out)
		}
	}
}
