package kma

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://apihub.kma.go.kr/api/typ01/cgi-bin/url/nph-dfs_vsrt_grd"

// MissingValue is the agreed sentinel the API emits for cells that have no
// data yet.
const MissingValue = "-99.00"

// Option configures the Client.
type Option func(*Client)

// WithBaseURL sets a custom endpoint (for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// Client fetches ultra-short-range forecast grids from the KMA API hub.
type Client struct {
	authKey string
	baseURL string
	http    *http.Client
}

// NewClient creates a KMA API hub client.
func NewClient(authKey string, opts ...Option) *Client {
	c := &Client{
		authKey: authKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseTime formats the announcement time for a fetch: one hour before now,
// floored to the hour, which is the most recently guaranteed-complete grid.
func BaseTime(now time.Time) string {
	return now.Add(-time.Hour).Format("2006010215") + "00"
}

// FetchGrid retrieves the flattened forecast grid for one variable at the
// given announcement time (tmfc, format YYYYMMDDHHmm). The response is a
// `#`-commented text blob of whitespace- and comma-separated values; the
// returned slice holds the values in row-major order.
func (c *Client) FetchGrid(ctx context.Context, tmfc, variable string) ([]string, error) {
	params := url.Values{
		"tmfc":    {tmfc},
		"vars":    {variable},
		"authKey": {c.authKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "kma: build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "kma: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("kma: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "kma: read body")
	}

	return ParseGrid(string(body)), nil
}

// ParseGrid tokenizes the grid response text: comment lines (leading `#`)
// are dropped and commas are treated as whitespace.
func ParseGrid(text string) []string {
	var values []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		values = append(values, strings.Fields(strings.ReplaceAll(line, ",", " "))...)
	}
	return values
}

// ValueAt returns the grid value for cell (nx, ny) from a flattened
// row-major grid, or an error when the response is too short to contain it.
func ValueAt(values []string, nx, ny int) (string, error) {
	idx := (ny-1)*GridWidth + (nx - 1)
	if idx < 0 || idx >= len(values) {
		return "", eris.Errorf("kma: cell (%d,%d) needs index %d but grid has %d values", nx, ny, idx, len(values))
	}
	return values[idx], nil
}
