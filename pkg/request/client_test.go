package request

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbpediafacts/pkg/config"
	"dbpediafacts/pkg/tracker"
)

func newTestClient(t *testing.T, cfg config.RequestConfig) (*Client, *tracker.Tracker) {
	t.Helper()
	trk := tracker.New()
	return New(cfg, trk), trk
}

func TestGet_Success(t *testing.T) {
	var gotUA, gotAccept atomic.Value
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
		gotAccept.Store(r.Header.Get("Accept"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer svr.Close()

	c, trk := newTestClient(t, config.RequestConfig{})
	body, err := c.GetWithHeaders(context.Background(), svr.URL, map[string]string{"Accept": "application/json"})
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, defaultUserAgent, gotUA.Load())
	assert.Equal(t, "application/json", gotAccept.Load())

	stats := trk.Snapshot()["127.0.0.1"]
	assert.Equal(t, int64(1), stats.APISuccess)
	assert.Equal(t, int64(0), stats.APIFailures)
}

func TestGet_UserAgent(t *testing.T) {
	var gotUA atomic.Value
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
	}))
	defer svr.Close()

	t.Run("FromConfig", func(t *testing.T) {
		c, _ := newTestClient(t, config.RequestConfig{UserAgent: "configured/1.0"})
		_, err := c.Get(context.Background(), svr.URL)
		require.NoError(t, err)
		assert.Equal(t, "configured/1.0", gotUA.Load())
	})

	t.Run("HeaderWins", func(t *testing.T) {
		c, _ := newTestClient(t, config.RequestConfig{UserAgent: "configured/1.0"})
		_, err := c.GetWithHeaders(context.Background(), svr.URL, map[string]string{"user-agent": "explicit/2.0"})
		require.NoError(t, err)
		assert.Equal(t, "explicit/2.0", gotUA.Load())
	})
}

func TestGet_StatusError(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"NotFound", http.StatusNotFound},
		{"ServerError", http.StatusInternalServerError},
		{"TooManyRequests", http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer svr.Close()

			c, trk := newTestClient(t, config.RequestConfig{})
			_, err := c.Get(context.Background(), svr.URL)
			require.Error(t, err)

			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.status, se.StatusCode)
			// Single attempt, no retry
			assert.Equal(t, int32(1), calls.Load())
			assert.Equal(t, int64(1), trk.Snapshot()["127.0.0.1"].APIFailures)
		})
	}
}

func TestGet_TransportError(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	u := svr.URL
	svr.Close()

	c, trk := newTestClient(t, config.RequestConfig{})
	_, err := c.Get(context.Background(), u)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
	assert.Equal(t, int64(1), trk.Snapshot()["127.0.0.1"].APIFailures)
}

func TestGet_Timeout(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer svr.Close()

	c, _ := newTestClient(t, config.RequestConfig{Timeout: config.Duration(20 * time.Millisecond)})
	_, err := c.Get(context.Background(), svr.URL)
	require.Error(t, err)
}

func TestGet_ContextCancelled(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer svr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c, _ := newTestClient(t, config.RequestConfig{})
	_, err := c.Get(ctx, svr.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGet_InvalidURL(t *testing.T) {
	c, _ := newTestClient(t, config.RequestConfig{})
	_, err := c.Get(context.Background(), "://bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid url")
}
