// Package seoulopen provides a client for the Seoul open data plaza,
// specifically the Arisu drinking fountain dataset (TbViewGisArisu).
package seoulopen

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "http://openapi.seoul.go.kr:8088"

// fountainService is the dataset identifier on the open data plaza.
const fountainService = "TbViewGisArisu"

// Option configures the Client.
type Option func(*Client)

// WithBaseURL sets a custom endpoint (for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// Client calls the Seoul open data plaza row-range API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Seoul open data client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 20 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fountain is one Arisu drinking fountain row. Coordinates arrive as
// string-encoded floats (XCRD = longitude, YCRD = latitude).
type Fountain struct {
	ParkName    string `json:"CN_PARK_NM"`
	RoadAddress string `json:"ROAD_NM_ADDR"`
	YCRD        string `json:"YCRD"`
	XCRD        string `json:"XCRD"`
}

type fountainEnvelope struct {
	Service *struct {
		Rows []Fountain `json:"row"`
	} `json:"TbViewGisArisu"`
	Result *struct {
		Code    string `json:"CODE"`
		Message string `json:"MESSAGE"`
	} `json:"RESULT"`
}

// Fountains fetches drinking fountain rows in the inclusive range
// [start, end] (1-based, per the plaza API convention).
func (c *Client) Fountains(ctx context.Context, start, end int) ([]Fountain, error) {
	reqURL := fmt.Sprintf("%s/%s/json/%s/%d/%d/", c.baseURL, c.apiKey, fountainService, start, end)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "seoulopen: build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "seoulopen: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("seoulopen: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "seoulopen: read body")
	}

	var env fountainEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, eris.Wrap(err, "seoulopen: parse response")
	}

	if env.Service == nil {
		msg := "unknown response shape"
		if env.Result != nil {
			msg = env.Result.Message
		}
		return nil, eris.Errorf("seoulopen: API error: %s", msg)
	}

	return env.Service.Rows, nil
}

// MaskKey replaces the API key in a URL with asterisks for safe logging.
func (c *Client) MaskKey(s string) string {
	if c.apiKey == "" {
		return s
	}
	return strings.ReplaceAll(s, c.apiKey, "********")
}
