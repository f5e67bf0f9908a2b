package rules

import (
	"errors"
	"strconv"
	"strings"

	"github.com/p4th0r/cloudrules/internal/endpoints"
	"github.com/p4th0r/cloudrules/internal/logging"
)

// ExtractorConfig holds the parameters for an Extractor.
type ExtractorConfig struct {
	// PortRules emits one rule per declared protocol, carrying its port spec.
	// When false every target yields exactly one rule without protocol or ports.
	PortRules bool
	Logger    logging.Logger
}

// Stats counts what an extraction produced.
type Stats struct {
	Records   int
	Rules     int
	Domains   int
	Hosts     int
	Addresses int
	Rejected  int // targets skipped: non-standard wildcards and blank entries
	Blank     int // blank targets, included in Rejected
}

// Extractor maps endpoint records to allow-rules.
type Extractor struct {
	cfg    ExtractorConfig
	logger logging.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(cfg ExtractorConfig) *Extractor {
	return &Extractor{
		cfg:    cfg,
		logger: logging.OrNop(cfg.Logger),
	}
}

// Extract returns the rules for records in input order. Within a record URL
// targets come before IP targets. Duplicate records are not merged.
func (e *Extractor) Extract(records []endpoints.Record) ([]Rule, Stats) {
	e.logger.Info("Extracting rules from %d endpoint records...", len(records))

	var (
		out   []Rule
		stats Stats
	)
	stats.Records = len(records)

	for _, rec := range records {
		notes := BuildNotes(rec)
		protos := e.protocols(rec)

		for _, raw := range rec.URLs {
			kind, value, err := ClassifyURL(raw)
			if err != nil {
				stats.Rejected++
				if errors.Is(err, ErrUnsupportedWildcard) {
					e.logger.Warn("Non-standard wildcard domain encountered: %s. This rule will be skipped.", raw)
				} else {
					stats.Blank++
					e.logger.Warn("Skipping empty URL target in record %s", recordLabel(rec))
				}
				continue
			}
			if err := checkHostname(value); err != nil {
				e.logger.Warn("record %s: %v", recordLabel(rec), err)
			}
			out = appendExpanded(out, kind, value, notes, protos)
		}

		for _, ip := range rec.IPs {
			if strings.TrimSpace(ip) == "" {
				stats.Rejected++
				stats.Blank++
				e.logger.Warn("Skipping empty IP target in record %s", recordLabel(rec))
				continue
			}
			if _, err := parseAddress(ip); err != nil {
				e.logger.Warn("record %s: %v", recordLabel(rec), err)
			}
			out = appendExpanded(out, TargetAddress, ip, notes, protos)
		}
	}

	for _, r := range out {
		switch r.Kind {
		case TargetDomain:
			stats.Domains++
		case TargetHost:
			stats.Hosts++
		case TargetAddress:
			stats.Addresses++
		}
	}
	stats.Rules = len(out)

	e.logger.Info("Rules extraction complete: %d rules", stats.Rules)
	return out, stats
}

// protoPorts is one protocol/port-spec pair a target is expanded into.
// The zero value stands for a rule without protocol or ports.
type protoPorts struct {
	protocol string
	ports    string
}

// protocols returns the expansion set for a record: tcp and/or udp when port
// rules are enabled and declared, otherwise a single unconstrained entry.
func (e *Extractor) protocols(rec endpoints.Record) []protoPorts {
	if !e.cfg.PortRules {
		return []protoPorts{{}}
	}

	var out []protoPorts
	for _, p := range []protoPorts{
		{"tcp", strings.TrimSpace(rec.TCPPorts)},
		{"udp", strings.TrimSpace(rec.UDPPorts)},
	} {
		if p.ports == "" {
			continue
		}
		if _, err := ParsePortSpec(p.ports); err != nil {
			e.logger.Warn("record %s: %s ports %q: %v", recordLabel(rec), p.protocol, p.ports, err)
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return []protoPorts{{}}
	}
	return out
}

func appendExpanded(out []Rule, kind TargetKind, value, notes string, protos []protoPorts) []Rule {
	for _, p := range protos {
		out = append(out, Rule{
			Action:   ActionAllow,
			Process:  ProcessAny,
			Kind:     kind,
			Value:    value,
			Protocol: p.protocol,
			Ports:    p.ports,
			Notes:    notes,
		})
	}
	return out
}

func recordLabel(rec endpoints.Record) string {
	if rec.ID != nil {
		return "id " + strconv.Itoa(*rec.ID)
	}
	if rec.ServiceArea != "" {
		return rec.ServiceArea
	}
	return "(unnamed)"
}
