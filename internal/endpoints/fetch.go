package endpoints

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/p4th0r/cloudrules/internal/logging"
)

// DefaultURL is the Microsoft 365 endpoint web service for the worldwide instance.
const DefaultURL = "https://endpoints.office.com/endpoints/worldwide"

// DefaultTimeout bounds the single request made per run.
const DefaultTimeout = 10 * time.Second

// maxBodySize caps how much of the response is read (the worldwide feed is ~100KB).
const maxBodySize = 32 << 20

// FetcherConfig holds the parameters for a Fetcher.
type FetcherConfig struct {
	BaseURL      string
	Timeout      time.Duration
	NoIPv6       bool     // ask the service to omit IPv6 ranges
	ServiceAreas []string // restrict to these service areas (empty = all)
	HTTPClient   *http.Client
	Logger       logging.Logger

	// NewRequestID generates the clientrequestid; defaults to a random UUID.
	NewRequestID func() string
}

// Fetcher retrieves endpoint records from the metadata source.
type Fetcher struct {
	cfg    FetcherConfig
	client *http.Client
	logger logging.Logger
}

// NewFetcher creates a Fetcher, filling in defaults for unset fields.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.NewRequestID == nil {
		cfg.NewRequestID = func() string { return uuid.NewString() }
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &Fetcher{
		cfg:    cfg,
		client: client,
		logger: logging.OrNop(cfg.Logger),
	}
}

// RequestURL builds the URL for one request, tagged with requestID.
func (f *Fetcher) RequestURL(requestID string) (string, error) {
	u, err := url.Parse(f.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL %q: %w", f.cfg.BaseURL, err)
	}
	q := u.Query()
	q.Set("clientrequestid", requestID)
	if f.cfg.NoIPv6 {
		q.Set("NoIPv6", "true")
	}
	if len(f.cfg.ServiceAreas) > 0 {
		q.Set("ServiceAreas", strings.Join(f.cfg.ServiceAreas, ","))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fetch issues one GET to the metadata source and returns the JSON body.
// There is no retry: any failure is returned to the caller.
func (f *Fetcher) Fetch(ctx context.Context) (json.RawMessage, error) {
	requestID := f.cfg.NewRequestID()
	apiURL, err := f.RequestURL(requestID)
	if err != nil {
		return nil, &TransportError{URL: f.cfg.BaseURL, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, &TransportError{URL: apiURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	f.logger.Info("Fetching endpoint data (clientrequestid %s)...", requestID)
	f.logger.Debug("GET %s", apiURL)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: apiURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &TransportError{
			URL:        apiURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &TransportError{URL: apiURL, Err: fmt.Errorf("reading response body: %w", err)}
	}

	if !json.Valid(body) {
		return nil, &ParseError{Err: fmt.Errorf("response from %s is not valid JSON", apiURL)}
	}

	f.logger.Debug("Fetched %d bytes of endpoint data", len(body))
	return json.RawMessage(body), nil
}

// FetchRecords fetches the feed and normalizes it into records.
func (f *Fetcher) FetchRecords(ctx context.Context) ([]Record, error) {
	raw, err := f.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	records, err := normalize(raw, f.logger.Warn)
	if err != nil {
		return nil, err
	}
	f.logger.Info("Fetched %d endpoint records", len(records))
	return records, nil
}
