package geocode

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
)

// undergroundKeyword marks addresses of below-grade installations; the
// provider often matches the surface address once it is removed.
const undergroundKeyword = "지하"

// stationChar is the single character meaning "station".
const stationChar = "역"

// Resolver turns one Record into coordinates using a tiered fallback:
//
//	Tier 1: "<region> <city> <normalized address>"
//	Tier 2: Tier 1 with the underground keyword removed (only when present)
//	Tier 3: "<region> <city> <station name>" (only when the address or
//	        location detail references a station)
//
// Tiers run strictly sequentially per record; the first match wins. The
// shared Breaker is consulted before every network attempt.
type Resolver struct {
	client  Client
	norm    *Normalizer
	region  string
	breaker *Breaker
}

// NewResolver creates a Resolver. client may be nil when no provider
// credentials are configured, in which case every resolution returns
// unmatched without network calls.
func NewResolver(client Client, norm *Normalizer, region string, breaker *Breaker) *Resolver {
	if norm == nil {
		norm = NewNormalizer(nil)
	}
	if breaker == nil {
		breaker = &Breaker{}
	}
	return &Resolver{client: client, norm: norm, region: region, breaker: breaker}
}

// Breaker returns the resolver's circuit breaker.
func (r *Resolver) Breaker() *Breaker {
	return r.breaker
}

// Resolve resolves a single record. It never returns an error: failures of
// any kind collapse to an unmatched Result, and authentication failures
// additionally trip the shared breaker.
func (r *Resolver) Resolve(ctx context.Context, rec Record) Result {
	if r.client == nil || r.breaker.Tripped() {
		return Result{}
	}

	clean := r.norm.Normalize(rec.Address)
	if clean == "" {
		return Result{}
	}

	// Tier 1: full road-name address.
	if res, ok := r.attempt(ctx, r.query(rec.City, clean)); ok {
		return res
	}

	// Tier 2: retry without the underground keyword.
	if strings.Contains(clean, undergroundKeyword) && !r.breaker.Tripped() {
		retry := collapse(strings.ReplaceAll(clean, undergroundKeyword, ""))
		if res, ok := r.attempt(ctx, r.query(rec.City, retry)); ok {
			return res
		}
	}

	// Tier 3: fall back to the nearest station named in the source text.
	combined := rec.Address + " " + rec.LocationDesc
	if strings.Contains(combined, stationChar) && !r.breaker.Tripped() {
		if station, ok := StationName(combined); ok {
			if res, ok := r.attempt(ctx, r.query(rec.City, station)); ok {
				return res
			}
		}
	}

	return Result{}
}

// attempt issues one query. ok is true only on a positive match; an auth
// failure trips the breaker and reads as a miss here.
func (r *Resolver) attempt(ctx context.Context, query string) (Result, bool) {
	res, err := r.client.Geocode(ctx, query)
	if err != nil {
		if eris.Is(err, ErrAuth) {
			r.breaker.Trip()
		}
		return Result{}, false
	}
	return res, res.Matched
}

func (r *Resolver) query(city, address string) string {
	return collapse(r.region + " " + city + " " + address)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
