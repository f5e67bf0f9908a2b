package rules

import (
	"testing"
)

func buildMatcher(t *testing.T, rules ...Rule) *Matcher {
	t.Helper()
	m := NewMatcher(rules)
	if errs := m.Skipped(); len(errs) > 0 {
		t.Fatalf("matcher skipped rules: %v", errs)
	}
	return m
}

func domainRule(v string) Rule  { return Rule{Action: ActionAllow, Process: ProcessAny, Kind: TargetDomain, Value: v} }
func hostRule(v string) Rule    { return Rule{Action: ActionAllow, Process: ProcessAny, Kind: TargetHost, Value: v} }
func addressRule(v string) Rule { return Rule{Action: ActionAllow, Process: ProcessAny, Kind: TargetAddress, Value: v} }

func TestMatcherDomain(t *testing.T) {
	m := buildMatcher(t, domainRule("contoso.com"))

	tests := []struct {
		target string
		want   bool
	}{
		{"contoso.com", true},
		{"mail.contoso.com", true},
		{"deep.sub.contoso.com", true},
		{"MAIL.Contoso.COM", true},
		{"mail.contoso.com.", true},
		{"notcontoso.com", false},
		{"contoso.com.evil.net", false},
		{"10.0.0.1", false},
	}

	for _, tt := range tests {
		if got := m.Allows(Query{Target: tt.target}); got != tt.want {
			t.Errorf("Allows(%q) = %v, want %v", tt.target, got, tt.want)
		}
	}
}

func TestMatcherHost(t *testing.T) {
	m := buildMatcher(t, hostRule("outlook.office.com"))

	tests := []struct {
		target string
		want   bool
	}{
		{"outlook.office.com", true},
		{"Outlook.Office.com.", true},
		{"sub.outlook.office.com", false},
		{"office.com", false},
	}

	for _, tt := range tests {
		if got := m.Allows(Query{Target: tt.target}); got != tt.want {
			t.Errorf("Allows(%q) = %v, want %v", tt.target, got, tt.want)
		}
	}
}

func TestMatcherAddress(t *testing.T) {
	m := buildMatcher(t, addressRule("10.0.0.0/8"), addressRule("52.96.0.1"), addressRule("2603:1006::/40"))

	tests := []struct {
		target string
		want   bool
	}{
		{"10.1.2.3", true},
		{"11.0.0.1", false},
		{"52.96.0.1", true},
		{"52.96.0.2", false},
		{"2603:1006:1::1", true},
		{"2603:1007::1", false},
		{"::ffff:10.0.0.1", true},
		{"ten.example.com", false},
	}

	for _, tt := range tests {
		if got := m.Allows(Query{Target: tt.target}); got != tt.want {
			t.Errorf("Allows(%q) = %v, want %v", tt.target, got, tt.want)
		}
	}
}

func TestMatcherProtocolAndPorts(t *testing.T) {
	tcp := domainRule("lync.com")
	tcp.Protocol, tcp.Ports = "tcp", "443"
	udp := domainRule("lync.com")
	udp.Protocol, udp.Ports = "udp", "3478-3481"
	m := buildMatcher(t, tcp, udp)

	tests := []struct {
		name  string
		query Query
		want  bool
	}{
		{"tcp 443", Query{Target: "a.lync.com", Protocol: "tcp", Port: 443}, true},
		{"tcp 80", Query{Target: "a.lync.com", Protocol: "tcp", Port: 80}, false},
		{"udp in range", Query{Target: "a.lync.com", Protocol: "udp", Port: 3480}, true},
		{"udp 443", Query{Target: "a.lync.com", Protocol: "udp", Port: 443}, false},
		{"protocol uppercase", Query{Target: "a.lync.com", Protocol: "TCP", Port: 443}, true},
		{"any protocol", Query{Target: "a.lync.com", Port: 3478}, true},
		{"any port", Query{Target: "a.lync.com", Protocol: "udp"}, true},
		{"unconstrained", Query{Target: "lync.com"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Allows(tt.query); got != tt.want {
				t.Errorf("Allows(%+v) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestMatcherMatchReturnsRule(t *testing.T) {
	m := buildMatcher(t, hostRule("a.com"), addressRule("10.0.0.0/8"))
	r, ok := m.Match(Query{Target: "10.9.9.9"})
	if !ok {
		t.Fatal("expected a match")
	}
	if r.Kind != TargetAddress || r.Value != "10.0.0.0/8" {
		t.Errorf("matched %s, want address 10.0.0.0/8", r)
	}
}

func TestNewMatcherSkipsInvalid(t *testing.T) {
	badPorts := hostRule("a.com")
	badPorts.Protocol, badPorts.Ports = "tcp", "https"

	tests := []struct {
		name string
		rule Rule
	}{
		{"bad address", addressRule("not-an-ip")},
		{"bad ports", badPorts},
		{"unknown kind", Rule{Kind: TargetKind(5), Value: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatcher([]Rule{tt.rule, hostRule("b.com")})
			if got := len(m.Skipped()); got != 1 {
				t.Fatalf("Skipped() = %d errors, want 1", got)
			}
			if !m.Allows(Query{Target: "b.com"}) {
				t.Error("valid rule after an invalid one should still match")
			}
			if m.Allows(Query{Target: "a.com"}) {
				t.Error("invalid rule should not match")
			}
		})
	}
}

func TestMatcherMappedPrefix(t *testing.T) {
	m := buildMatcher(t, addressRule("::ffff:10.0.0.0/104"))

	tests := []struct {
		target string
		want   bool
	}{
		{"10.1.2.3", true},
		{"::ffff:10.1.2.3", true},
		{"11.0.0.1", false},
	}
	for _, tt := range tests {
		if got := m.Allows(Query{Target: tt.target}); got != tt.want {
			t.Errorf("Allows(%s) = %v, want %v", tt.target, got, tt.want)
		}
	}
}

func TestMatcherSummary(t *testing.T) {
	tests := []struct {
		rules []Rule
		want  string
	}{
		{nil, "0 rules"},
		{[]Rule{domainRule("a.com"), domainRule("b.com"), addressRule("1.2.3.4")}, "2 domains, 1 addresses"},
		{[]Rule{hostRule("a.com")}, "1 hosts"},
	}
	for _, tt := range tests {
		if got := buildMatcher(t, tt.rules...).Summary(); got != tt.want {
			t.Errorf("Summary() = %q, want %q", got, tt.want)
		}
	}
}
