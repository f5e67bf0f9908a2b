package rules

import (
	"fmt"
	"strconv"
	"strings"
)

// PortRange is an inclusive range of ports. A single port has Lo == Hi.
type PortRange struct {
	Lo, Hi int
}

// PortSpec is a parsed port list such as "80,443,5061-5070".
type PortSpec []PortRange

// ParsePortSpec parses a comma-separated list of ports and lo-hi ranges.
// Returns an error if any entry is not a valid port (1-65535) or range.
func ParsePortSpec(spec string) (PortSpec, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}

	parts := strings.Split(spec, ",")
	ranges := make(PortSpec, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		lo, hi, isRange := strings.Cut(p, "-")
		loPort, err := parsePort(lo)
		if err != nil {
			return nil, err
		}
		hiPort := loPort
		if isRange {
			hiPort, err = parsePort(hi)
			if err != nil {
				return nil, err
			}
			if hiPort < loPort {
				return nil, fmt.Errorf("invalid port range %q", p)
			}
		}

		ranges = append(ranges, PortRange{Lo: loPort, Hi: hiPort})
	}

	return ranges, nil
}

func parsePort(s string) (int, error) {
	s = strings.TrimSpace(s)
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", s, err)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range (1-65535)", port)
	}
	return port, nil
}

// Contains reports whether port falls inside any range of the spec.
func (s PortSpec) Contains(port int) bool {
	for _, r := range s {
		if port >= r.Lo && port <= r.Hi {
			return true
		}
	}
	return false
}
