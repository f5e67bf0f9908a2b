package rules

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/miekg/dns"
)

// Matcher checks hosts and IPs against a rule set, using the rule group
// semantics of the consuming application: remote-domains match the domain and
// every subdomain, remote-hosts match exactly, remote-addresses match an IP or
// any address inside a CIDR.
type Matcher struct {
	entries []matchEntry
	rules   []Rule
	skipped []error
}

type matchEntry struct {
	rule   Rule
	name   string       // canonical FQDN (for TargetDomain and TargetHost)
	prefix netip.Prefix // for TargetAddress
	ports  PortSpec     // nil when the rule carries no ports
}

// NewMatcher creates a Matcher from rules. Rules with unparseable addresses
// or port specs never match; they are reported by Skipped.
func NewMatcher(rules []Rule) *Matcher {
	m := &Matcher{rules: rules}

	for i, r := range rules {
		e, err := newMatchEntry(r)
		if err != nil {
			m.skipped = append(m.skipped, fmt.Errorf("rule %d (%s): %w", i, r, err))
			continue
		}
		m.entries = append(m.entries, e)
	}

	return m
}

func newMatchEntry(r Rule) (matchEntry, error) {
	e := matchEntry{rule: r}

	switch r.Kind {
	case TargetDomain, TargetHost:
		e.name = dns.CanonicalName(r.Value)
	case TargetAddress:
		p, err := parseAddress(r.Value)
		if err != nil {
			return e, err
		}
		// IPv4-mapped prefixes match plain IPv4 queries.
		if p.Addr().Is4In6() && p.Bits() >= 96 {
			p = netip.PrefixFrom(p.Addr().Unmap(), p.Bits()-96)
		}
		e.prefix = p
	default:
		return e, fmt.Errorf("unknown target kind %d", r.Kind)
	}

	if r.Ports != "" {
		ports, err := ParsePortSpec(r.Ports)
		if err != nil {
			return e, err
		}
		e.ports = ports
	}

	return e, nil
}

// Skipped returns one error per rule that could not be loaded.
func (m *Matcher) Skipped() []error {
	return m.skipped
}

// Query describes a destination to check. An empty Protocol or a zero Port
// matches any protocol or port constraint on a rule.
type Query struct {
	Target   string // hostname or IP address
	Protocol string
	Port     int
}

// Match returns the first rule allowing q.
func (m *Matcher) Match(q Query) (Rule, bool) {
	addr, addrErr := netip.ParseAddr(strings.TrimSpace(q.Target))
	isIP := addrErr == nil
	name := ""
	if !isIP {
		name = dns.CanonicalName(strings.TrimSpace(q.Target))
	}

	for _, e := range m.entries {
		if !e.allowsTransport(q.Protocol, q.Port) {
			continue
		}

		switch e.rule.Kind {
		case TargetDomain:
			if !isIP && dns.IsSubDomain(e.name, name) {
				return e.rule, true
			}
		case TargetHost:
			if !isIP && e.name == name {
				return e.rule, true
			}
		case TargetAddress:
			if isIP && e.prefix.Contains(addr.Unmap()) {
				return e.rule, true
			}
		}
	}

	return Rule{}, false
}

// Allows reports whether any rule permits q.
func (m *Matcher) Allows(q Query) bool {
	_, ok := m.Match(q)
	return ok
}

func (e matchEntry) allowsTransport(protocol string, port int) bool {
	if e.rule.Protocol != "" && protocol != "" && !strings.EqualFold(e.rule.Protocol, protocol) {
		return false
	}
	if e.ports != nil && port != 0 && !e.ports.Contains(port) {
		return false
	}
	return true
}

// Summary returns a human-readable summary: "5 domains, 2 hosts, 10 addresses"
func (m *Matcher) Summary() string {
	var domains, hosts, addresses int
	for _, r := range m.rules {
		switch r.Kind {
		case TargetDomain:
			domains++
		case TargetHost:
			hosts++
		case TargetAddress:
			addresses++
		}
	}

	parts := []string{}
	if domains > 0 {
		parts = append(parts, fmt.Sprintf("%d domains", domains))
	}
	if hosts > 0 {
		parts = append(parts, fmt.Sprintf("%d hosts", hosts))
	}
	if addresses > 0 {
		parts = append(parts, fmt.Sprintf("%d addresses", addresses))
	}

	if len(parts) == 0 {
		return "0 rules"
	}
	return strings.Join(parts, ", ")
}
