package fred

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const observationsJSON = `{
  "observations": [
    {"date": "2015-01-01", "value": "234.747"},
    {"date": "2015-02-01", "value": "."},
    {"date": "2015-03-01", "value": "236.119"}
  ]
}`

const graphCSV = `observation_date,PCE
2014-12-01,12066.0
2015-01-01,12046.0
2015-02-01,12082.4
2015-03-01,12158.3
`

func newTestClient(srv *httptest.Server, key string) *Client {
	return NewClient(Options{
		APIKey:          key,
		BaseURL:         srv.URL + "/fred/series/observations",
		GraphURL:        srv.URL + "/graph/fredgraph.csv",
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
	}, nil)
}

func TestFetchObservations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "CPIAUCSL", q.Get("series_id"))
		assert.Equal(t, "key", q.Get("api_key"))
		assert.Equal(t, "json", q.Get("file_type"))
		assert.Equal(t, "2015-01-01", q.Get("observation_start"))
		assert.Empty(t, q.Get("observation_end"))
		fmt.Fprint(w, observationsJSON)
	}))
	defer srv.Close()

	start := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	s, err := newTestClient(srv, "key").Fetch(context.Background(), SourceAPI, "CPIAUCSL", "cpi", start, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, "cpi", s.Name)
	assert.Equal(t, []float64{234.747, 236.119}, s.Values)
	assert.Equal(t, time.March, s.Timestamps[1].Month())
}

func TestFetchObservationsWithoutKey(t *testing.T) {
	c := NewClient(Options{}, nil)
	assert.False(t, c.HasAPIKey())

	_, err := c.FetchObservations(context.Background(), "CPIAUCSL", "cpi", time.Time{}, time.Time{})
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestFetchGraphCSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PCE", r.URL.Query().Get("id"))
		fmt.Fprint(w, graphCSV)
	}))
	defer srv.Close()

	start := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2015, 2, 1, 0, 0, 0, 0, time.UTC)
	s, err := newTestClient(srv, "").Fetch(context.Background(), SourceGraph, "PCE", "pce", start, end)
	require.NoError(t, err)

	assert.Equal(t, "pce", s.Name)
	assert.Equal(t, []float64{12046.0, 12082.4}, s.Values)
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, observationsJSON)
	}))
	defer srv.Close()

	s, err := newTestClient(srv, "key").FetchObservations(context.Background(), "CPIAUCSL", "cpi", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetryGivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv, "key").FetchObservations(context.Background(), "CPIAUCSL", "cpi", time.Time{}, time.Time{})
	require.Error(t, err)

	var serr *StatusError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, http.StatusTooManyRequests, serr.Code)
	assert.NotContains(t, serr.URL, "key&")
	assert.Contains(t, serr.URL, "REDACTED")
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "Bad Request. The series does not exist.", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv, "key").FetchObservations(context.Background(), "NOPE", "cpi", time.Time{}, time.Time{})
	require.Error(t, err)

	var serr *StatusError
	require.True(t, errors.As(err, &serr))
	assert.False(t, serr.Retryable())
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(srv, "").FetchGraphCSV(ctx, "PCE", "pce", time.Time{}, time.Time{})
	assert.Error(t, err)
}

func TestFetchUnknownSource(t *testing.T) {
	_, err := NewClient(Options{}, nil).Fetch(context.Background(), "ftp", "PCE", "pce", time.Time{}, time.Time{})
	assert.Error(t, err)
}

func TestMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"observations":[{"date":"2015-01-01","value":"abc"}]}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv, "key").FetchObservations(context.Background(), "CPIAUCSL", "cpi", time.Time{}, time.Time{})
	assert.Error(t, err)
}

func TestTransportErrorRedactsKey(t *testing.T) {
	// Reserve a port, then close it so every dial is refused.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	var logs bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&logs)
	logger.SetLevel(logrus.DebugLevel)

	client := NewClient(Options{
		APIKey:          "SECRETKEY123",
		BaseURL:         "http://" + addr + "/fred/series/observations",
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
	}, logger)

	_, err = client.FetchObservations(context.Background(), "CPIAUCSL", "cpi", time.Time{}, time.Time{})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRETKEY123")
	assert.Contains(t, err.Error(), "REDACTED")
	assert.Contains(t, logs.String(), "request failed, retrying")
	assert.NotContains(t, logs.String(), "SECRETKEY123")
}

func TestRedact(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"http://x/obs?api_key=abc&series_id=CPI", "http://x/obs?api_key=REDACTED&series_id=CPI"},
		{"http://x/graph?id=PCE", "http://x/graph?id=PCE"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, redact(tt.in))
	}
}
