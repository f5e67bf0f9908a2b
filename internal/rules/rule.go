// Package rules derives Little Snitch allow-rules from endpoint records and
// answers whether a destination is covered by a rule set.
package rules

import (
	"encoding/json"
	"fmt"
)

// TargetKind indicates which remote selector a rule uses.
type TargetKind int

const (
	TargetDomain  TargetKind = iota // "contoso.com" from "*.contoso.com", matches subdomains
	TargetHost                      // "mail.contoso.com", exact host
	TargetAddress                   // "10.0.0.0/8" or "13.107.6.152"
)

// Key returns the rule-file field name for the kind.
func (k TargetKind) Key() string {
	switch k {
	case TargetDomain:
		return "remote-domains"
	case TargetHost:
		return "remote-hosts"
	case TargetAddress:
		return "remote-addresses"
	default:
		return "unknown"
	}
}

func (k TargetKind) String() string {
	switch k {
	case TargetDomain:
		return "domain"
	case TargetHost:
		return "host"
	case TargetAddress:
		return "address"
	default:
		return "unknown"
	}
}

const (
	ActionAllow = "allow"
	ProcessAny  = "ANY"
)

// Rule is a single allow-list entry.
type Rule struct {
	Action   string
	Process  string
	Kind     TargetKind
	Value    string
	Protocol string // "tcp", "udp" or empty
	Ports    string // port spec, set together with Protocol
	Notes    string
}

// String returns a one-line human-readable form of the rule.
func (r Rule) String() string {
	s := fmt.Sprintf("%-8s %s", r.Kind, r.Value)
	if r.Protocol != "" {
		s += fmt.Sprintf(" %s/%s", r.Protocol, r.Ports)
	}
	return s
}

// ruleJSON is the on-disk shape. Exactly one remote-* member is set.
type ruleJSON struct {
	Action          string     `json:"action"`
	Process         string     `json:"process"`
	RemoteDomains   stringList `json:"remote-domains,omitempty"`
	RemoteHosts     stringList `json:"remote-hosts,omitempty"`
	RemoteAddresses stringList `json:"remote-addresses,omitempty"`
	Notes           string     `json:"notes"`
	Protocol        string     `json:"protocol,omitempty"`
	Ports           string     `json:"ports,omitempty"`
}

// MarshalJSON encodes the rule with its target as a one-element array under
// the kind's key.
func (r Rule) MarshalJSON() ([]byte, error) {
	out := ruleJSON{
		Action:   r.Action,
		Process:  r.Process,
		Notes:    r.Notes,
		Protocol: r.Protocol,
		Ports:    r.Ports,
	}
	target := stringList{r.Value}
	switch r.Kind {
	case TargetDomain:
		out.RemoteDomains = target
	case TargetHost:
		out.RemoteHosts = target
	case TargetAddress:
		out.RemoteAddresses = target
	default:
		return nil, fmt.Errorf("rule %q: unknown target kind %d", r.Value, r.Kind)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a rule holding exactly one target.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var in ruleJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	var found int
	for _, sel := range []struct {
		kind   TargetKind
		values stringList
	}{
		{TargetDomain, in.RemoteDomains},
		{TargetHost, in.RemoteHosts},
		{TargetAddress, in.RemoteAddresses},
	} {
		if len(sel.values) == 0 {
			continue
		}
		found += len(sel.values)
		r.Kind = sel.kind
		r.Value = sel.values[0]
	}
	if found != 1 {
		return fmt.Errorf("rule must have exactly one remote target, got %d", found)
	}

	r.Action = in.Action
	r.Process = in.Process
	r.Notes = in.Notes
	r.Protocol = in.Protocol
	r.Ports = in.Ports
	return nil
}

// stringList accepts either a JSON string or an array of strings.
type stringList []string

func (s *stringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = stringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}
