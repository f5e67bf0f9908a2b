// Package rulefile builds and writes Little Snitch rule group subscription
// files (.lsrules).
package rulefile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/p4th0r/cloudrules/internal/rules"
)

// Extension is the file extension the consuming application subscribes to.
const Extension = ".lsrules"

// Author tags every generated file.
const Author = "Automated Script"

// File is the top-level structure of a rule group file.
type File struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Author      string       `json:"author"`
	Rules       []rules.Rule `json:"rules"`
}

// New builds the rule file for provider.
func New(provider string, rs []rules.Rule) File {
	display := DisplayName(provider)
	if rs == nil {
		rs = []rules.Rule{}
	}
	return File{
		Name:        fmt.Sprintf("%s Cloud Access", display),
		Description: fmt.Sprintf("Allows outbound traffic to %s Cloud services.", display),
		Author:      Author,
		Rules:       rs,
	}
}

// DisplayName capitalises the provider name: "microsoft" → "Microsoft".
func DisplayName(provider string) string {
	if provider == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(provider)
	return string(unicode.ToUpper(r)) + strings.ToLower(provider[size:])
}

// FileName returns the rule file name for provider.
func FileName(provider string) string {
	return fmt.Sprintf("cloud_rules_%s%s", provider, Extension)
}

// Path returns the rule file path for provider inside dir.
func Path(dir, provider string) string {
	return filepath.Join(dir, FileName(provider))
}

// IOError reports a failure creating the output directory or writing the file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Marshal encodes f with four-space indentation and a trailing newline.
func Marshal(f File) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("marshaling rule file: %w", err)
	}
	return buf.Bytes(), nil
}

// Write writes f for provider into dir, creating dir if needed, and returns
// the file path. The file is written to a .tmp sibling and renamed into place;
// on failure the .tmp file may be left behind.
func Write(dir, provider string, f File) (string, error) {
	data, err := Marshal(f)
	if err != nil {
		return "", err
	}

	path := Path(dir, provider)
	tmpPath := path + ".tmp"

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &IOError{Op: "creating output directory", Path: dir, Err: err}
	}

	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return "", &IOError{Op: "writing", Path: tmpPath, Err: err}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		// Fallback: if rename fails (e.g., cross-device), just write directly
		os.Remove(tmpPath)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return "", &IOError{Op: "writing", Path: path, Err: err}
		}
	}

	return path, nil
}

// Read parses a rule file from path.
func Read(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, &IOError{Op: "reading", Path: path, Err: err}
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parsing rule file %s: %w", path, err)
	}
	return f, nil
}
