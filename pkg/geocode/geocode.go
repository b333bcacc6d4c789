// Package geocode resolves free-text Korean street addresses into
// latitude/longitude pairs via the NCP geocoding API, using a multi-tier
// fallback strategy executed concurrently across records.
package geocode

import "context"

// Record is one address to resolve. Fields come straight from the source
// dataset and are never mutated.
type Record struct {
	City         string // autonomous district name, e.g. "중구"
	Address      string // raw road-name address as exported
	LocationDesc string // free-text detail, e.g. "시청역 4번출구 앞"
}

// Result is the outcome of resolving one Record. Lat/Lng are only
// meaningful when Matched is true.
type Result struct {
	Lat     float64
	Lng     float64
	Matched bool
}

// Client issues a single geocoding query. Implementations return ErrAuth on
// credential rejection; ordinary misses and transport failures come back as
// an unmatched Result with a nil error.
type Client interface {
	Geocode(ctx context.Context, query string) (Result, error)
}
