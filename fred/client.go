// Package fred downloads monthly series from the Federal Reserve Economic Data service.
package fred

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/sartorproj/pcestudy/timeseries"
)

// Default endpoints.
const (
	DefaultBaseURL  = "https://api.stlouisfed.org/fred/series/observations"
	DefaultGraphURL = "https://fred.stlouisfed.org/graph/fredgraph.csv"
)

// Acquisition sources.
const (
	SourceAPI   = "api"
	SourceGraph = "graph"
)

// missingValue is how FRED marks an absent observation.
const missingValue = "."

// ErrNoAPIKey is returned when the JSON API is used without a key.
var ErrNoAPIKey = errors.New("fred: api key required")

// StatusError reports an unexpected HTTP status.
type StatusError struct {
	Code int
	URL  string
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fred: %s returned %d: %s", e.URL, e.Code, e.Body)
}

// Retryable reports whether the request may succeed if repeated.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Options configures a Client.
type Options struct {
	APIKey          string
	BaseURL         string
	GraphURL        string
	Timeout         time.Duration
	MaxRetries      uint
	InitialInterval time.Duration
	HTTPClient      *http.Client
}

// Client fetches FRED series with retries.
type Client struct {
	httpClient      *http.Client
	apiKey          string
	baseURL         string
	graphURL        string
	maxTries        uint
	initialInterval time.Duration
	log             *logrus.Logger
}

// NewClient creates a Client. Zero options fall back to FRED's public endpoints,
// a 60 second timeout and 5 attempts.
func NewClient(opts Options, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	c := &Client{
		httpClient:      httpClient,
		apiKey:          opts.APIKey,
		baseURL:         opts.BaseURL,
		graphURL:        opts.GraphURL,
		maxTries:        opts.MaxRetries,
		initialInterval: opts.InitialInterval,
		log:             logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.graphURL == "" {
		c.graphURL = DefaultGraphURL
	}
	if c.maxTries == 0 {
		c.maxTries = 5
	}
	if c.initialInterval == 0 {
		c.initialInterval = 500 * time.Millisecond
	}
	return c
}

// HasAPIKey reports whether the JSON API can be used.
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

// Fetch downloads seriesID from source and names the result name.
// A zero start or end leaves that side of the window open.
func (c *Client) Fetch(ctx context.Context, source, seriesID, name string, start, end time.Time) (*timeseries.Series, error) {
	switch source {
	case SourceAPI:
		return c.FetchObservations(ctx, seriesID, name, start, end)
	case SourceGraph:
		return c.FetchGraphCSV(ctx, seriesID, name, start, end)
	}
	return nil, fmt.Errorf("fred: unknown source %q", source)
}

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// FetchObservations uses the series/observations JSON endpoint.
func (c *Client) FetchObservations(ctx context.Context, seriesID, name string, start, end time.Time) (*timeseries.Series, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	params := url.Values{}
	params.Set("series_id", seriesID)
	params.Set("api_key", c.apiKey)
	params.Set("file_type", "json")
	if !start.IsZero() {
		params.Set("observation_start", start.Format(timeseries.DateLayout))
	}
	if !end.IsZero() {
		params.Set("observation_end", end.Format(timeseries.DateLayout))
	}

	body, err := c.get(ctx, seriesID, c.baseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp observationsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("fred: decode %s observations: %w", seriesID, err)
	}

	series := &timeseries.Series{Name: name}
	for _, obs := range resp.Observations {
		value := strings.TrimSpace(obs.Value)
		if value == missingValue || value == "" {
			continue
		}
		d, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("fred: %s %s: parse value %q: %w", seriesID, obs.Date, value, err)
		}
		ts, err := timeseries.ParseDate(obs.Date, timeseries.DateLayout)
		if err != nil {
			return nil, fmt.Errorf("fred: %s: %w", seriesID, err)
		}
		series.Timestamps = append(series.Timestamps, ts)
		series.Values = append(series.Values, d.InexactFloat64())
	}
	if series.Len() == 0 {
		return nil, fmt.Errorf("fred: %s returned no observations", seriesID)
	}

	c.log.WithFields(logrus.Fields{"series_id": seriesID, "rows": series.Len(), "source": SourceAPI}).Info("fetched series")
	return series, nil
}

// FetchGraphCSV uses the keyless fredgraph CSV export.
func (c *Client) FetchGraphCSV(ctx context.Context, seriesID, name string, start, end time.Time) (*timeseries.Series, error) {
	params := url.Values{}
	params.Set("id", seriesID)
	if !start.IsZero() {
		params.Set("cosd", start.Format(timeseries.DateLayout))
	}
	if !end.IsZero() {
		params.Set("coed", end.Format(timeseries.DateLayout))
	}

	body, err := c.get(ctx, seriesID, c.graphURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	opts := timeseries.DefaultCSVOptions()
	opts.Name = name
	series, err := timeseries.LoadCSVFromReader(bytes.NewReader(body), opts)
	if err != nil {
		return nil, fmt.Errorf("fred: parse %s csv: %w", seriesID, err)
	}
	// The export may ignore cosd/coed; trim locally.
	series = series.Window(start, end)
	if series.Len() == 0 {
		return nil, fmt.Errorf("fred: %s has no observations in window", seriesID)
	}

	c.log.WithFields(logrus.Fields{"series_id": seriesID, "rows": series.Len(), "source": SourceGraph}).Info("fetched series")
	return series, nil
}

// get performs a GET with exponential backoff. 429 and 5xx responses and
// transport errors are retried; other statuses fail immediately.
func (c *Client) get(ctx context.Context, seriesID, rawURL string) ([]byte, error) {
	attempt := 0
	op := func() ([]byte, error) {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, backoff.Permanent(redactErr(err))
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			return nil, redactErr(err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			serr := &StatusError{Code: resp.StatusCode, URL: redact(rawURL), Body: truncate(string(body), 200)}
			if !serr.Retryable() {
				return nil, backoff.Permanent(serr)
			}
			return nil, serr
		}
		return body, nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval

	notify := func(err error, wait time.Duration) {
		c.log.WithFields(logrus.Fields{
			"series_id": seriesID,
			"attempt":   attempt,
			"wait":      wait.String(),
		}).WithError(err).Warn("request failed, retrying")
	}

	body, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(notify),
	)
	if err != nil {
		return nil, fmt.Errorf("fred: fetch %s after %d attempts: %w", seriesID, attempt, err)
	}
	return body, nil
}

// redact strips the api key from a URL before it reaches logs or errors.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Has("api_key") {
		q.Set("api_key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// redactErr hides the api key inside the URL a *url.Error carries.
func redactErr(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = redact(ue.URL)
	}
	return err
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
