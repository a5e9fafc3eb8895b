package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	GenresURL        = "https://www.raiplaysound.it/generi"
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "RaiPlaySound RSS/1.0"
)

var ErrHTTPStatus = errors.New("unexpected HTTP status")

// StatusError is returned when the catalog answers with a non-success status.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error for %s: %s", e.URL, e.Status)
}

func (e *StatusError) Unwrap() error {
	return ErrHTTPStatus
}

// Client fetches catalog documents. A single Client is meant to be shared by
// every fetch of a run so that its limiter caps the overall request rate.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
}

// NewClient builds a client allowing perMinute requests per minute.
// A non-positive rate disables limiting.
func NewClient(httpClient *http.Client, perMinute float64, userAgent string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if perMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(perMinute/60), 1)
	}

	return &Client{
		httpClient: httpClient,
		limiter:    limiter,
		userAgent:  userAgent,
	}
}

// FetchPage retrieves and decodes the JSON document behind pageURL.
func (c *Client) FetchPage(ctx context.Context, pageURL string) (*Page, error) {
	resp, err := c.get(ctx, pageURL+".json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var page Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode page JSON: %w", err)
	}

	return &page, nil
}

func (c *Client) get(ctx context.Context, target string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}

	slog.Debug("Catalog request", "url", target, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &StatusError{URL: target, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	return resp, nil
}
