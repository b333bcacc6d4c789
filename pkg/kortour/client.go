// Package kortour provides a client for the KorPetTourService2 API
// (pet-friendly travel facilities, Korea Tourism Organization).
package kortour

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://apis.data.go.kr/B551011/KorPetTourService2/areaBasedList2"

// mobileApp identifies this consumer to the data portal, as registered.
const mobileApp = "DogooDogoo"

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

// Client calls the KorPetTourService2 area-based list endpoint.
type Client struct {
	serviceKey string
	baseURL    string
	http       *http.Client
}

// NewClient creates a kortour client with the given data portal service key.
func NewClient(serviceKey string, opts ...Option) *Client {
	c := &Client{
		serviceKey: serviceKey,
		baseURL:    defaultBaseURL,
		http:       &http.Client{Timeout: 20 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Place is one pet-friendly facility entry. Coordinates arrive as
// string-encoded floats (mapx = longitude, mapy = latitude).
type Place struct {
	Title    string `json:"title"`
	Address  string `json:"addr1"`
	MapX     string `json:"mapx"`
	MapY     string `json:"mapy"`
	Tel      string `json:"tel"`
	Category string `json:"cat1"`
}

// envelope mirrors the data portal response nesting. items is a raw message
// because the portal sends an empty string instead of an object when there
// are no results.
type envelope struct {
	Response struct {
		Header struct {
			ResultCode string `json:"resultCode"`
			ResultMsg  string `json:"resultMsg"`
		} `json:"header"`
		Body struct {
			Items      json.RawMessage `json:"items"`
			TotalCount int             `json:"totalCount"`
		} `json:"body"`
	} `json:"response"`
}

type itemList struct {
	Item []Place `json:"item"`
}

// AreaBasedList fetches one page of pet-friendly facilities, title-sorted.
func (c *Client) AreaBasedList(ctx context.Context, pageNo, numOfRows int) ([]Place, error) {
	params := url.Values{
		"serviceKey": {c.serviceKey},
		"pageNo":     {strconv.Itoa(pageNo)},
		"numOfRows":  {strconv.Itoa(numOfRows)},
		"MobileOS":   {"ETC"},
		"MobileApp":  {mobileApp},
		"_type":      {"json"},
		"arrange":    {"A"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "kortour: build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "kortour: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("kortour: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "kortour: read body")
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, eris.Wrap(err, "kortour: parse response")
	}

	var items itemList
	if len(env.Response.Body.Items) > 0 {
		// Ignore the unmarshal error: "items": "" means an empty result set.
		_ = json.Unmarshal(env.Response.Body.Items, &items)
	}

	if len(items.Item) == 0 {
		return nil, eris.Errorf("kortour: no items in response (result: %s)", env.Response.Header.ResultMsg)
	}

	return items.Item, nil
}
