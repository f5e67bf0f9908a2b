package rules

import (
	"reflect"
	"testing"
)

func TestParsePortSpec(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    PortSpec
		wantErr bool
	}{
		{"single port", "443", PortSpec{{443, 443}}, false},
		{"multiple ports", "80,443", PortSpec{{80, 80}, {443, 443}}, false},
		{"with range", "80,443,5061-5070", PortSpec{{80, 80}, {443, 443}, {5061, 5070}}, false},
		{"with spaces", " 80 , 3478-3481 ", PortSpec{{80, 80}, {3478, 3481}}, false},
		{"empty string", "", nil, false},
		{"trailing comma", "443,", PortSpec{{443, 443}}, false},
		{"port 65535", "65535", PortSpec{{65535, 65535}}, false},
		{"port 0", "0", nil, true},
		{"port 65536", "65536", nil, true},
		{"reversed range", "5070-5061", nil, true},
		{"open range", "5061-", nil, true},
		{"non-numeric", "https", nil, true},
		{"mixed valid invalid", "443,abc", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePortSpec(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParsePortSpec(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePortSpec(%q) unexpected error: %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParsePortSpec(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPortSpec_Contains(t *testing.T) {
	spec, err := ParsePortSpec("80,443,5061-5070")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		port int
		want bool
	}{
		{80, true},
		{443, true},
		{5061, true},
		{5065, true},
		{5070, true},
		{5071, false},
		{8080, false},
		{0, false},
	}
	for _, tt := range tests {
		if got := spec.Contains(tt.port); got != tt.want {
			t.Errorf("Contains(%d) = %v, want %v", tt.port, got, tt.want)
		}
	}
}
