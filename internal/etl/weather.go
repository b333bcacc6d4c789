package etl

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dogoodogoo/etl-cli/internal/db"
	"github.com/dogoodogoo/etl-cli/pkg/kma"
)

// Seoul City Hall, the fixed point the forecast cache tracks.
const (
	seoulLat = 37.5665
	seoulLon = 126.9780
)

// weatherVariable is the ultra-short-range temperature grid.
const weatherVariable = "T1H"

// weatherGrid is the Extract output: the announcement time plus the
// flattened grid values.
type weatherGrid struct {
	tmfc   string
	values []string
}

// Weather caches the current temperature for Seoul City Hall in the
// weather_forecast_cache table. Unlike the POI jobs it upserts a single row
// instead of replacing the table.
type Weather struct {
	client *kma.Client
	now    func() time.Time
	log    *zap.Logger
}

// NewWeather creates the weather job. A nil client (missing auth key) makes
// the job a no-op that loads zero rows.
func NewWeather(client *kma.Client) *Weather {
	return &Weather{
		client: client,
		now:    time.Now,
		log:    zap.L().With(zap.String("job", "weather")),
	}
}

func (j *Weather) Name() string  { return "weather" }
func (j *Weather) Table() string { return "weather_forecast_cache" }

// Extract fetches the most recently complete temperature grid. Source-side
// failures are recovered as an empty result so the run continues.
func (j *Weather) Extract(ctx context.Context) (any, error) {
	if j.client == nil {
		j.log.Warn("no auth key configured, skipping fetch")
		return weatherGrid{}, nil
	}

	tmfc := kma.BaseTime(j.now())
	values, err := j.client.FetchGrid(ctx, tmfc, weatherVariable)
	if err != nil {
		j.log.Warn("fetch failed", zap.String("tmfc", tmfc), zap.Error(err))
		return weatherGrid{}, nil
	}
	return weatherGrid{tmfc: tmfc, values: values}, nil
}

// Transform picks the City Hall grid cell out of the flattened response.
// Missing-value cells and short grids produce an empty dataset.
func (j *Weather) Transform(_ context.Context, raw any) (*Dataset, error) {
	grid := raw.(weatherGrid)

	ds := &Dataset{
		Columns: []string{"nx", "ny", "category", "fcst_value", "base_date", "base_time"},
	}
	if len(grid.values) == 0 {
		return ds, nil
	}

	nx, ny := kma.ToGrid(seoulLat, seoulLon)
	value, err := kma.ValueAt(grid.values, nx, ny)
	if err != nil {
		j.log.Warn("grid too short", zap.Error(err))
		return ds, nil
	}
	if value == kma.MissingValue {
		j.log.Info("cell not announced yet, skipping",
			zap.Int("nx", nx), zap.Int("ny", ny), zap.String("tmfc", grid.tmfc))
		return ds, nil
	}

	baseDate, baseTime := grid.tmfc[:8], grid.tmfc[8:]
	ds.Rows = append(ds.Rows, []any{nx, ny, weatherVariable, value, baseDate, baseTime})
	j.log.Info("cell extracted",
		zap.Int("nx", nx), zap.Int("ny", ny), zap.String("value", value))
	return ds, nil
}

// Load upserts the cell so repeated runs within the same announcement window
// refresh the cached value in place.
func (j *Weather) Load(ctx context.Context, pool db.Pool, ds *Dataset) error {
	if ds.Len() == 0 {
		j.log.Info("nothing to load")
		return nil
	}
	for _, row := range ds.Rows {
		_, err := pool.Exec(ctx,
			`INSERT INTO weather_forecast_cache (nx, ny, category, fcst_value, base_date, base_time, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, now())
			 ON CONFLICT (nx, ny, base_date, base_time, category)
			 DO UPDATE SET fcst_value = EXCLUDED.fcst_value, updated_at = now()`,
			row...)
		if err != nil {
			return eris.Wrap(err, "weather: upsert")
		}
	}
	return nil
}
