package rules

import (
	"errors"
	"testing"
)

func TestClassifyURL(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantKind  TargetKind
		wantValue string
		wantErr   error
	}{
		{"exact host", "mail.contoso.com", TargetHost, "mail.contoso.com", nil},
		{"exact host kept verbatim", "Outlook.Office.COM", TargetHost, "Outlook.Office.COM", nil},
		{"leading wildcard", "*.contoso.com", TargetDomain, "contoso.com", nil},
		{"leading wildcard deep", "*.mail.protection.outlook.com", TargetDomain, "mail.protection.outlook.com", nil},
		{"double wildcard", "*.*.contoso.com", 0, "", ErrUnsupportedWildcard},
		{"inner wildcard", "autodiscover.*.onmicrosoft.com", 0, "", ErrUnsupportedWildcard},
		{"partial label wildcard", "*cdn.contoso.com", 0, "", ErrUnsupportedWildcard},
		{"label prefix wildcard", "autod*.contoso.com", 0, "", ErrUnsupportedWildcard},
		{"trailing wildcard", "contoso.*", 0, "", ErrUnsupportedWildcard},
		{"bare star", "*", 0, "", ErrUnsupportedWildcard},
		{"empty wildcard", "*.", 0, "", ErrEmptyTarget},
		{"empty", "", 0, "", ErrEmptyTarget},
		{"blank", "   ", 0, "", ErrEmptyTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, value, err := ClassifyURL(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ClassifyURL(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ClassifyURL(%q) unexpected error: %v", tt.input, err)
			}
			if kind != tt.wantKind {
				t.Errorf("ClassifyURL(%q) kind = %s, want %s", tt.input, kind, tt.wantKind)
			}
			if value != tt.wantValue {
				t.Errorf("ClassifyURL(%q) value = %q, want %q", tt.input, value, tt.wantValue)
			}
		})
	}
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"10.0.0.0/8", "10.0.0.0/8", false},
		{"13.107.6.152/31", "13.107.6.152/31", false},
		{"10.1.2.3/8", "10.0.0.0/8", false},
		{"2603:1006::/40", "2603:1006::/40", false},
		{"52.96.0.1", "52.96.0.1/32", false},
		{"2620:1ec:4::152", "2620:1ec:4::152/128", false},
		{"10.0.0.0/33", "", true},
		{"not-an-ip", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := parseAddress(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseAddress(%q) expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseAddress(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("parseAddress(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestCheckHostname(t *testing.T) {
	if err := checkHostname("outlook.office365.com"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := checkHostname("bad..name"); err == nil {
		t.Error("expected error for empty label")
	}
}
