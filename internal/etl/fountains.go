package etl

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dogoodogoo/etl-cli/internal/db"
	"github.com/dogoodogoo/etl-cli/pkg/seoulopen"
)

// fountainRange is the inclusive row range requested from the plaza API;
// the dataset is well under a thousand rows.
const (
	fountainStart = 1
	fountainEnd   = 1000
)

// Fountains loads the Arisu drinking fountain dataset into the
// drinking_fountains table. The source already carries coordinates as
// string-encoded floats; unparsable ones load as NULL.
type Fountains struct {
	client *seoulopen.Client
	log    *zap.Logger
}

// NewFountains creates the drinking fountain job. A nil client (missing API
// key) makes the job a no-op that loads zero rows.
func NewFountains(client *seoulopen.Client) *Fountains {
	return &Fountains{
		client: client,
		log:    zap.L().With(zap.String("job", "fountains")),
	}
}

func (j *Fountains) Name() string  { return "fountains" }
func (j *Fountains) Table() string { return "drinking_fountains" }

// Extract fetches the full fountain row range. Source-side failures are
// recovered as an empty result so the run continues with zero rows.
func (j *Fountains) Extract(ctx context.Context) (any, error) {
	if j.client == nil {
		j.log.Warn("no API key configured, skipping fetch")
		return []seoulopen.Fountain(nil), nil
	}
	rows, err := j.client.Fountains(ctx, fountainStart, fountainEnd)
	if err != nil {
		j.log.Warn("fetch failed", zap.Error(err))
		return []seoulopen.Fountain(nil), nil
	}
	return rows, nil
}

// Transform drops rows without a name or address and parses coordinates,
// keeping the row with NULLs when parsing fails.
func (j *Fountains) Transform(_ context.Context, raw any) (*Dataset, error) {
	rows := raw.([]seoulopen.Fountain)

	ds := &Dataset{
		Columns: []string{"fountain_name", "address", "latitude", "longitude"},
	}
	dropped := 0
	for _, f := range rows {
		name := strings.TrimSpace(f.ParkName)
		addr := strings.TrimSpace(f.RoadAddress)
		if name == "" || addr == "" {
			dropped++
			continue
		}

		var lat, lng any
		fLat, okLat := parseCoord(f.YCRD)
		fLng, okLng := parseCoord(f.XCRD)
		if okLat && okLng && inKorea(fLng, fLat) {
			lat, lng = fLat, fLng
		}

		ds.Rows = append(ds.Rows, []any{name, addr, lat, lng})
	}

	j.log.Info("transformed", zap.Int("rows", ds.Len()), zap.Int("dropped", dropped))
	return ds, nil
}

// Load replaces the drinking_fountains table contents with the dataset.
func (j *Fountains) Load(ctx context.Context, pool db.Pool, ds *Dataset) error {
	_, err := db.ReplaceAndLoad(ctx, pool, j.Table(), ds.Columns, ds.Rows)
	return err
}

// parseCoord parses a string-encoded coordinate, reporting ok on success.
func parseCoord(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}
