// Package config provides the unified configuration struct for cloudrules.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for a generation run.
const (
	DefaultURL       = "https://endpoints.office.com/endpoints/worldwide"
	DefaultOutputDir = "rules"
	DefaultProvider  = "microsoft"
	DefaultTimeout   = 10
)

// serviceAreas are the values the endpoint web service accepts for ServiceAreas.
var serviceAreas = []string{"Common", "Exchange", "SharePoint", "Skype"}

// Config holds all settings for a cloudrules run. File-backed fields carry
// yaml tags; the rest only come from the command line.
type Config struct {
	URL          string   `yaml:"url"`
	OutputDir    string   `yaml:"output_dir"`
	Provider     string   `yaml:"provider"`
	PortRules    bool     `yaml:"port_rules"`
	Timeout      int      `yaml:"timeout"` // seconds
	NoIPv6       bool     `yaml:"no_ipv6"`
	ServiceAreas []string `yaml:"service_areas"`
	MetricsFile  string   `yaml:"metrics_file"`

	ConfigPath string `yaml:"-"`
	DryRun     bool   `yaml:"-"`
	Quiet      bool   `yaml:"-"`
	Verbose    bool   `yaml:"-"`
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{
		URL:       DefaultURL,
		OutputDir: DefaultOutputDir,
		Provider:  DefaultProvider,
		PortRules: true,
		Timeout:   DefaultTimeout,
	}
}

// LoadFile reads a YAML config file on top of Defaults.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg.ConfigPath = path
	return cfg, nil
}

// Overlay copies file-backed settings from file into c for every setting
// whose command-line flag was not explicitly given.
func (c *Config) Overlay(file Config, flagChanged func(name string) bool) {
	if !flagChanged("url") {
		c.URL = file.URL
	}
	if !flagChanged("output-dir") {
		c.OutputDir = file.OutputDir
	}
	if !flagChanged("provider") {
		c.Provider = file.Provider
	}
	if !flagChanged("port-rules") {
		c.PortRules = file.PortRules
	}
	if !flagChanged("timeout") {
		c.Timeout = file.Timeout
	}
	if !flagChanged("no-ipv6") {
		c.NoIPv6 = file.NoIPv6
	}
	if !flagChanged("service-areas") {
		c.ServiceAreas = file.ServiceAreas
	}
	if !flagChanged("metrics-file") {
		c.MetricsFile = file.MetricsFile
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid source URL %q: %w", c.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("source URL must be http or https (got %q)", c.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("source URL has no host: %q", c.URL)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive (got %d)", c.Timeout)
	}

	if c.OutputDir == "" {
		return fmt.Errorf("output directory must not be empty")
	}

	if c.Provider == "" {
		return fmt.Errorf("provider must not be empty")
	}
	for _, r := range c.Provider {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_') {
			return fmt.Errorf("invalid character %q in provider %q (use lowercase letters, digits, '-' and '_')", r, c.Provider)
		}
	}

	for i, area := range c.ServiceAreas {
		canonical, ok := canonicalServiceArea(area)
		if !ok {
			return fmt.Errorf("unknown service area %q (valid: %s)", area, strings.Join(serviceAreas, ", "))
		}
		c.ServiceAreas[i] = canonical
	}

	if c.Quiet && c.Verbose {
		return fmt.Errorf("--quiet and --verbose are mutually exclusive")
	}

	return nil
}

func canonicalServiceArea(area string) (string, bool) {
	area = strings.TrimSpace(area)
	for _, known := range serviceAreas {
		if strings.EqualFold(area, known) {
			return known, true
		}
	}
	return "", false
}

// TimeoutDuration returns the fetch timeout as a duration.
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}
