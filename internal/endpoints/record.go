// Package endpoints fetches and normalizes the provider's published
// network-endpoint metadata.
package endpoints

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is one endpoint set as published by the endpoint web service.
// Optional scalar fields are pointers so an absent field can be told apart
// from a zero value.
type Record struct {
	ID                     *int     `json:"id,omitempty"`
	ServiceArea            string   `json:"serviceArea,omitempty"`
	ServiceAreaDisplayName string   `json:"serviceAreaDisplayName,omitempty"`
	URLs                   []string `json:"urls,omitempty"`
	IPs                    []string `json:"ips,omitempty"`
	TCPPorts               string   `json:"tcpPorts,omitempty"`
	UDPPorts               string   `json:"udpPorts,omitempty"`
	Category               string   `json:"category,omitempty"`
	ExpressRoute           *bool    `json:"expressRoute,omitempty"`
	Required               *bool    `json:"required,omitempty"`
	Notes                  string   `json:"notes,omitempty"`
}

// valuesField is the member holding the record list when the feed is wrapped
// in an object instead of being a bare array.
const valuesField = "values"

// Normalize turns a raw feed document into records.
//
// A top-level array is decoded directly. A top-level object is expected to carry
// the array under "values"; when that member is missing the result is an empty
// collection, not an error. Any other JSON value also yields no records.
// Elements that are not record-shaped are reported as a ParseError.
func Normalize(raw json.RawMessage) ([]Record, error) {
	return normalize(raw, nil)
}

func normalize(raw json.RawMessage, warn func(format string, args ...interface{})) ([]Record, error) {
	if warn == nil {
		warn = func(string, ...interface{}) {}
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, &ParseError{Err: fmt.Errorf("empty document")}
	}
	if !json.Valid(trimmed) {
		return nil, &ParseError{Err: fmt.Errorf("invalid JSON document")}
	}

	switch trimmed[0] {
	case '[':
		return decodeRecords(trimmed)

	case '{':
		warn("endpoint data is not a list, reading records from %q", valuesField)
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, &ParseError{Err: err}
		}
		values, ok := wrapper[valuesField]
		if !ok || isNull(values) {
			warn("endpoint data has no %q member, treating as empty", valuesField)
			return []Record{}, nil
		}
		return decodeRecords(values)

	default:
		warn("endpoint data is neither a list nor an object, treating as empty")
		return []Record{}, nil
	}
}

func decodeRecords(data json.RawMessage) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &ParseError{Err: fmt.Errorf("decoding endpoint records: %w", err)}
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

func isNull(data json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}
