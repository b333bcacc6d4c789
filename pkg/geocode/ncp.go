package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultNCPBaseURL = "https://maps.apigw.ntruss.com/map-geocode/v2/geocode"

// ErrAuth signals that the geocoding provider rejected the credentials
// (HTTP 401/403). It is distinct from an ordinary miss and propagates to
// the batch layer so the circuit breaker can trip.
var ErrAuth = eris.New("geocode: authentication rejected")

// NCPOption configures the NCPClient.
type NCPOption func(*NCPClient)

// WithBaseURL sets a custom endpoint (for testing).
func WithBaseURL(u string) NCPOption {
	return func(c *NCPClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) NCPOption {
	return func(c *NCPClient) {
		c.http = hc
	}
}

// WithRateLimit caps outbound requests per second across all workers.
func WithRateLimit(rps float64) NCPOption {
	return func(c *NCPClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

// NCPClient geocodes one query at a time against the NCP Maps geocoding
// endpoint. The client and its credential headers are read-only after
// construction and safe for concurrent reuse.
type NCPClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	http         *http.Client
	limiter      *rate.Limiter
}

// NewNCPClient creates an NCPClient with the given NCP API gateway
// credentials.
func NewNCPClient(clientID, clientSecret string, opts ...NCPOption) *NCPClient {
	c := &NCPClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      defaultNCPBaseURL,
		http:         &http.Client{Timeout: 5 * time.Second},
		limiter:      rate.NewLimiter(10, 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ncpResponse is the JSON envelope of the NCP geocode endpoint. Coordinates
// arrive as string-encoded floats.
type ncpResponse struct {
	Status    string `json:"status"`
	Addresses []struct {
		X string `json:"x"` // longitude
		Y string `json:"y"` // latitude
	} `json:"addresses"`
}

// Geocode implements Client. Transport failures and malformed payloads are
// recovered locally as an unmatched Result; only credential rejection is
// surfaced as an error.
func (c *NCPClient) Geocode(ctx context.Context, query string) (Result, error) {
	if utf8.RuneCountInString(query) < 2 {
		return Result{}, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return Result{}, nil
	}

	params := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Result{}, nil
	}
	req.Header.Set("X-NCP-APIGW-API-KEY-ID", c.clientID)
	req.Header.Set("X-NCP-APIGW-API-KEY", c.clientSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		zap.L().Debug("geocode: request failed", zap.String("query", query), zap.Error(err))
		return Result{}, nil
	}
	defer resp.Body.Close() //nolint:errcheck

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return Result{}, ErrAuth
	case http.StatusOK:
	default:
		return Result{}, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, nil
	}

	var out ncpResponse
	if err := json.Unmarshal(body, &out); err != nil {
		zap.L().Debug("geocode: malformed response", zap.String("query", query), zap.Error(err))
		return Result{}, nil
	}

	if out.Status != "OK" || len(out.Addresses) == 0 {
		return Result{}, nil
	}

	first := out.Addresses[0]
	lat, latErr := strconv.ParseFloat(first.Y, 64)
	lng, lngErr := strconv.ParseFloat(first.X, 64)
	if latErr != nil || lngErr != nil {
		return Result{}, nil
	}

	return Result{Lat: lat, Lng: lng, Matched: true}, nil
}
