package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTBBaseURL       = "https://www.hackthebox.com/api/v4"
	defaultRMBaseURL        = "https://api.www.root-me.org"
	defaultRMProfileBaseURL = "https://www.root-me.org"
	defaultTHMBaseURL       = "https://tryhackme.com/api"

	userAgent = "HackerRanker/1.0"

	// Client-side throttle between upstream calls, all three platforms
	// rate-limit aggressively.
	requestPace = 200 * time.Millisecond
)

// Client fetches per-member scores from the three platforms. Expected
// failures (network errors, unknown ids, malformed responses) collapse to a
// nil result with a logged warning; callers only see "unavailable".
type Client struct {
	httpClient *http.Client
	rmAPIKey   string
	pace       time.Duration

	// Base URLs are variable so tests can point the client at a local server.
	HTBBaseURL       string
	RMBaseURL        string
	RMProfileBaseURL string
	THMBaseURL       string
}

func NewClient(rmAPIKey string) *Client {
	return &Client{
		httpClient:       &http.Client{Timeout: 12 * time.Second},
		rmAPIKey:         rmAPIKey,
		pace:             requestPace,
		HTBBaseURL:       defaultHTBBaseURL,
		RMBaseURL:        defaultRMBaseURL,
		RMProfileBaseURL: defaultRMProfileBaseURL,
		THMBaseURL:       defaultTHMBaseURL,
	}
}

// pause yields for the pacing interval after an upstream call, returning
// early when the context is cancelled.
func (c *Client) pause(ctx context.Context) {
	if c.pace <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(c.pace):
	}
}

// getJSON performs a GET with the shared headers and decodes the body into
// out. Pacing is applied after the request regardless of outcome.
func (c *Client) getJSON(ctx context.Context, url string, cookies map[string]string, out any) error {
	defer c.pause(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	for name, value := range cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("http %d for %s", resp.StatusCode, url)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// flexInt decodes JSON integers that upstream sometimes serializes as
// strings (RootMe) or null/"" (missing ranks), all of which read as 0.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer %q", s)
	}
	*f = flexInt(n)
	return nil
}
