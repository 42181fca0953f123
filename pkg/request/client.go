package request

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"dbpediafacts/pkg/config"
	"dbpediafacts/pkg/logging"
	"dbpediafacts/pkg/tracker"
	"dbpediafacts/pkg/version"
)

var (
	defaultUserAgent = fmt.Sprintf("dbpediafacts/%s (+https://github.com/etalab/geozones)", version.Version)
)

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api error: status %d", e.StatusCode)
}

// Client performs single-attempt HTTP requests with a fixed User-Agent and per-provider tracking.
type Client struct {
	httpClient *http.Client
	tracker    *tracker.Tracker
	userAgent  string
}

// New creates a new Client. A zero timeout leaves requests bounded only by their context.
func New(cfg config.RequestConfig, t *tracker.Tracker) *Client {
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	if t == nil {
		t = tracker.New()
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout.Std()},
		tracker:    t,
		userAgent:  ua,
	}
}

// Tracker returns the tracker requests are counted against.
func (c *Client) Tracker() *tracker.Tracker {
	return c.tracker
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, u string) ([]byte, error) {
	return c.GetWithHeaders(ctx, u, nil)
}

// GetWithHeaders performs a GET request with custom headers.
// The full body is returned for 2xx responses; anything else is a *StatusError.
func (c *Client) GetWithHeaders(ctx context.Context, u string, headers map[string]string) ([]byte, error) {
	parsedURL, err := url.Parse(u)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	provider := NormalizeProvider(parsedURL.Host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	uaSet := false
	for k, v := range headers {
		req.Header.Set(k, v)
		if http.CanonicalHeaderKey(k) == "User-Agent" {
			uaSet = true
		}
	}
	if !uaSet {
		req.Header.Set("User-Agent", c.userAgent)
	}

	body, err := c.execute(req, provider)
	if err != nil {
		c.tracker.TrackAPIFailure(provider)
		return nil, err
	}
	c.tracker.TrackAPISuccess(provider)
	return body, nil
}

func (c *Client) execute(req *http.Request, provider string) ([]byte, error) {
	log := logging.Requests().With(
		"request_id", uuid.NewString(),
		"provider", provider,
		"host", req.URL.Host,
		"path", req.URL.Path,
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// A cancelled context is reported as-is, not as a transport failure
		if ctxErr := req.Context().Err(); ctxErr != nil {
			log.Warn("Request cancelled", "error", ctxErr)
			return nil, ctxErr
		}
		log.Warn("Request failed", "error", err, "elapsed", time.Since(start))
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn("Request rejected", "status", resp.StatusCode, "elapsed", time.Since(start))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("Response read failed", "error", err)
		return nil, fmt.Errorf("read error: %w", err)
	}

	log.Info("Request done", "status", resp.StatusCode, "bytes", len(body), "elapsed", time.Since(start))
	return body, nil
}

// NormalizeProvider groups hosts into the provider names used for tracking.
func NormalizeProvider(host string) string {
	host = strings.ToLower(host)
	if h, _, found := strings.Cut(host, ":"); found {
		host = h
	}
	switch {
	case host == "dbpedia.org" || strings.HasSuffix(host, ".dbpedia.org"):
		return "dbpedia"
	case host == "dbpedia.inria.fr":
		return "dbpedia"
	case host == "wikipedia.org" || strings.HasSuffix(host, ".wikipedia.org"):
		return "wikipedia"
	case host == "commons.wikimedia.org":
		return "commons"
	}
	return host
}
