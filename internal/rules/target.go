package rules

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"

	"github.com/miekg/dns"
)

var (
	// ErrUnsupportedWildcard is returned for wildcard patterns other than a
	// single leading "*." label.
	ErrUnsupportedWildcard = errors.New("non-standard wildcard")

	// ErrEmptyTarget is returned for blank targets and for a bare "*.".
	ErrEmptyTarget = errors.New("empty target")
)

// ClassifyURL determines the rule kind and value for a URL pattern.
//
//	"mail.contoso.com" → TargetHost   "mail.contoso.com"
//	"*.contoso.com"    → TargetDomain "contoso.com"
//	"*.*.contoso.com"  → ErrUnsupportedWildcard
//	"autod*.contoso.com" → ErrUnsupportedWildcard
func ClassifyURL(raw string) (TargetKind, string, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, "", ErrEmptyTarget
	}

	if !strings.Contains(raw, "*") {
		return TargetHost, raw, nil
	}

	if strings.HasPrefix(raw, "*.") && strings.Count(raw, "*") == 1 {
		suffix := raw[2:]
		if strings.TrimSpace(suffix) == "" {
			return 0, "", ErrEmptyTarget
		}
		return TargetDomain, suffix, nil
	}

	return 0, "", fmt.Errorf("%w: %s", ErrUnsupportedWildcard, raw)
}

// checkHostname reports whether name is a syntactically valid domain name.
// Used for warnings only; the target is emitted either way.
func checkHostname(name string) error {
	if _, ok := dns.IsDomainName(name); !ok {
		return fmt.Errorf("%q is not a valid domain name", name)
	}
	return nil
}

// parseAddress parses an IP or CIDR target into a prefix.
// A bare IP becomes a single-address prefix.
func parseAddress(raw string) (netip.Prefix, error) {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "/") {
		p, err := netip.ParsePrefix(raw)
		if err != nil {
			return netip.Prefix{}, fmt.Errorf("invalid CIDR %q: %w", raw, err)
		}
		return p.Masked(), nil
	}
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("invalid IP %q: %w", raw, err)
	}
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}
