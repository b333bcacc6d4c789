// Package etl implements the batch load jobs that feed the service
// database: pet-friendly places, street trash bins, drinking fountains,
// and the weather grid cache.
package etl

import (
	"context"
	"unicode/utf8"

	"github.com/twpayne/go-geom"

	"github.com/dogoodogoo/etl-cli/internal/db"
)

// Dataset is the common tabular shape every job produces: column names plus
// row values ready for COPY. Nil cell values load as SQL NULL.
type Dataset struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// Job is one independent extract-transform-load unit. Extract and Transform
// recover source-side problems (unreachable API, unreadable spreadsheet,
// missing columns) by producing an empty dataset so the run continues with
// zero output rows; only destination-side failures surface as errors.
type Job interface {
	Name() string
	Table() string
	Extract(ctx context.Context) (any, error)
	Transform(ctx context.Context, raw any) (*Dataset, error)
	Load(ctx context.Context, pool db.Pool, ds *Dataset) error
}

// koreaBounds is the plausible coordinate window for Korean POI data; rows
// outside it are provider glitches and get dropped.
var koreaBounds = geom.NewBounds(geom.XY).Set(120.0, 30.0, 135.0, 45.0)

// inKorea reports whether (lon, lat) falls inside the Korea bounding box.
func inKorea(lon, lat float64) bool {
	return koreaBounds.OverlapsPoint(geom.XY, geom.Coord{lon, lat})
}

// truncRunes caps s at n runes, leaving shorter strings untouched.
func truncRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
