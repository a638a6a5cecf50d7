package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytscope/retry"
)

func fastClient() *Client {
	cfg := DefaultConfig()
	cfg.Retry = retry.Config{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
	cfg.RequestsPerSecond = 1000
	cfg.Burst = 1000
	return New(cfg)
}

func TestGetSuccess(t *testing.T) {
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		fmt.Fprint(w, "payload")
	}))
	t.Cleanup(srv.Close)

	c := fastClient()
	defer c.Close()

	resp, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "payload", string(resp.Body))
}

func TestRetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(nethttp.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "recovered")
	}))
	t.Cleanup(srv.Close)

	c := fastClient()
	defer c.Close()

	resp, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "recovered", string(resp.Body))
	assert.Equal(t, 3, attempts)
}

func TestClientErrorIsPermanent(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		attempts++
		w.WriteHeader(nethttp.StatusNotFound)
		fmt.Fprint(w, "nope")
	}))
	t.Cleanup(srv.Close)

	c := fastClient()
	defer c.Close()

	_, err := c.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, 1, attempts, "4xx responses are not retried")

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, nethttp.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, "nope", string(httpErr.Body))
}

func TestForbiddenBecomesRateLimitError(t *testing.T) {
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(nethttp.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	c := fastClient()
	defer c.Close()

	_, err := c.Get(context.Background(), srv.URL)
	require.Error(t, err)

	var rateErr *RateLimitError
	require.True(t, errors.As(err, &rateErr))
	assert.True(t, rateErr.IsBotDetection)
	assert.Equal(t, 7*time.Second, rateErr.RetryAfter)
}

func TestPostBodyIsReplayedAcrossRetries(t *testing.T) {
	var bodies []string
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		if len(bodies) < 2 {
			w.WriteHeader(nethttp.StatusInternalServerError)
			return
		}
		w.WriteHeader(nethttp.StatusOK)
	}))
	t.Cleanup(srv.Close)

	c := fastClient()
	defer c.Close()

	_, err := c.Do(context.Background(), nethttp.MethodPost, srv.URL, []byte(`{"k":"v"}`),
		map[string]string{"Content-Type": "application/json"})
	require.NoError(t, err)
	require.Len(t, bodies, 2)
	assert.Equal(t, `{"k":"v"}`, bodies[0])
	assert.Equal(t, `{"k":"v"}`, bodies[1], "request body is re-sent intact on retry")
}

func TestParseRetryAfter(t *testing.T) {
	h := nethttp.Header{}
	assert.Zero(t, parseRetryAfter(h))

	h.Set("Retry-After", "30")
	assert.Equal(t, 30*time.Second, parseRetryAfter(h))

	h.Set("Retry-After", "garbage")
	assert.Zero(t, parseRetryAfter(h))
}

func TestCanceledContext(t *testing.T) {
	c := fastClient()
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Get(ctx, "http://127.0.0.1:1")
	assert.ErrorIs(t, err, context.Canceled)
}
