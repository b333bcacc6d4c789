package etl

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dogoodogoo/etl-cli/internal/db"
	"github.com/dogoodogoo/etl-cli/internal/fetcher"
	"github.com/dogoodogoo/etl-cli/pkg/geocode"
)

// binHeaderSkip is how many banner rows precede the header in the Seoul
// trash bin spreadsheet export.
const binHeaderSkip = 4

// Source spreadsheet column headers.
const (
	colCity      = "자치구명"
	colAddress   = "설치위치(도로명 주소)"
	colLocation  = "세부 위치"
	colBinType   = "수거 쓰레기 종류"
	colPlaceType = "설치 장소 유형"
)

// TrashBins loads the Seoul street trash bin spreadsheet into the trash_bins
// table. The export carries no coordinates, so every row goes through the
// tiered geocoding resolver; rows that stay unresolved load with NULL
// coordinates and are written to the failure log for manual follow-up.
type TrashBins struct {
	rawDir   string
	resolver *geocode.Resolver
	workers  int
	faillog  *FailureLog
	log      *zap.Logger
}

// NewTrashBins creates the trash bin job reading the newest .xlsx under
// rawDir.
func NewTrashBins(rawDir string, resolver *geocode.Resolver, workers int, faillog *FailureLog) *TrashBins {
	return &TrashBins{
		rawDir:   rawDir,
		resolver: resolver,
		workers:  workers,
		faillog:  faillog,
		log:      zap.L().With(zap.String("job", "trashbins")),
	}
}

func (j *TrashBins) Name() string  { return "trashbins" }
func (j *TrashBins) Table() string { return "trash_bins" }

// Extract reads the newest spreadsheet export. A missing or unreadable file
// is recovered as an empty result so the run continues with zero rows.
func (j *TrashBins) Extract(_ context.Context) (any, error) {
	path, err := fetcher.LatestXLSX(j.rawDir)
	if err != nil {
		if eris.Is(err, fetcher.ErrNoFiles) {
			j.log.Info("no spreadsheet found, skipping", zap.String("dir", j.rawDir))
		} else {
			j.log.Warn("spreadsheet discovery failed", zap.Error(err))
		}
		return [][]string(nil), nil
	}

	rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{SkipRows: binHeaderSkip})
	if err != nil {
		j.log.Warn("spreadsheet unreadable", zap.String("path", path), zap.Error(err))
		return [][]string(nil), nil
	}

	j.log.Info("spreadsheet read", zap.String("path", path), zap.Int("rows", len(rows)))
	return rows, nil
}

// Transform maps the Korean headers to table columns, drops rows without an
// address, and resolves coordinates through the geocoder.
func (j *TrashBins) Transform(ctx context.Context, raw any) (*Dataset, error) {
	rows := raw.([][]string)

	ds := &Dataset{
		Columns: []string{"city_name", "address", "location_desc", "bin_type", "bin_place_type", "latitude", "longitude"},
	}
	if len(rows) == 0 {
		return ds, nil
	}

	idx := headerIndex(rows[0])
	cityIdx, okCity := idx[colCity]
	addrIdx, okAddr := idx[colAddress]
	if !okCity || !okAddr {
		j.log.Warn("required columns missing, skipping",
			zap.Strings("header", rows[0]),
		)
		return ds, nil
	}
	locIdx, hasLoc := idx[colLocation]
	typeIdx, hasType := idx[colBinType]
	placeIdx, hasPlace := idx[colPlaceType]

	type binRow struct {
		rec       geocode.Record
		binType   string
		placeType string
	}
	var bins []binRow
	var records []geocode.Record
	for _, row := range rows[1:] {
		addr := cell(row, addrIdx)
		if addr == "" || strings.EqualFold(addr, "nan") {
			continue
		}
		rec := geocode.Record{
			City:    cell(row, cityIdx),
			Address: addr,
		}
		if hasLoc {
			rec.LocationDesc = cell(row, locIdx)
		}
		b := binRow{rec: rec}
		if hasType {
			b.binType = cell(row, typeIdx)
		}
		if hasPlace {
			b.placeType = cell(row, placeIdx)
		}
		bins = append(bins, b)
		records = append(records, rec)
	}

	results := j.resolver.ResolveAll(ctx, records, j.workers)

	var failures [][]string
	matched := 0
	for i, b := range bins {
		var lat, lng any
		if results[i].Matched {
			lat, lng = results[i].Lat, results[i].Lng
			matched++
		} else {
			failures = append(failures, []string{b.rec.City, b.rec.Address, b.rec.LocationDesc})
		}
		ds.Rows = append(ds.Rows, []any{
			b.rec.City,
			b.rec.Address,
			b.rec.LocationDesc,
			b.binType,
			b.placeType,
			lat,
			lng,
		})
	}

	if len(failures) > 0 && j.faillog != nil {
		j.faillog.Write([]string{"city_name", "address", "location_desc"}, failures)
	}

	j.log.Info("geocoding done",
		zap.Int("rows", ds.Len()),
		zap.Int("matched", matched),
		zap.Int("unresolved", len(failures)),
	)
	return ds, nil
}

// Load replaces the trash_bins table contents with the dataset. Rows with
// NULL coordinates still load; the geom backfill skips them.
func (j *TrashBins) Load(ctx context.Context, pool db.Pool, ds *Dataset) error {
	_, err := db.ReplaceAndLoad(ctx, pool, j.Table(), ds.Columns, ds.Rows)
	return err
}

// headerIndex maps trimmed header names to their column positions.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

// cell returns the trimmed cell at i, or "" when the row is short.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
