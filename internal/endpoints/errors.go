package endpoints

import "fmt"

// TransportError reports a failure to obtain a response from the metadata
// source: request construction, connection, timeout or a non-2xx status.
type TransportError struct {
	URL        string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError reports a response body that is not the expected JSON shape.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing endpoint data: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
