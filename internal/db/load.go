package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// CopyFrom bulk-inserts rows into a table using the PostgreSQL COPY protocol.
func CopyFrom(ctx context.Context, pool Pool, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	copySource := pgx.CopyFromRows(rows)
	n, err := pool.CopyFrom(ctx, pgx.Identifier{table}, columns, copySource)
	if err != nil {
		return 0, eris.Wrapf(err, "db: COPY INTO %s", table)
	}

	return n, nil
}

// ReplaceAndLoad atomically replaces the contents of table with rows:
// TRUNCATE (restarting identity, cascading), COPY the new rows in, then
// back-fill the point geometry column for rows that carry coordinates.
// An empty rows slice is a no-op and leaves existing data untouched.
func ReplaceAndLoad(ctx context.Context, pool Pool, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		zap.L().Info("no rows to load, skipping replace", zap.String("table", table))
		return 0, nil
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrapf(err, "db: replace %s: begin tx", table)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	ident := pgx.Identifier{table}.Sanitize()

	if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", ident)); err != nil {
		return 0, eris.Wrapf(err, "db: replace %s: truncate", table)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, eris.Wrapf(err, "db: replace %s: COPY", table)
	}

	if hasCoordinateColumns(columns) {
		backfill := fmt.Sprintf(`
			UPDATE %s
			SET geom = ST_SetSRID(ST_MakePoint(longitude, latitude), 4326)
			WHERE geom IS NULL
			  AND latitude IS NOT NULL
			  AND longitude IS NOT NULL`, ident)
		if _, err := tx.Exec(ctx, backfill); err != nil {
			return 0, eris.Wrapf(err, "db: replace %s: backfill geom", table)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrapf(err, "db: replace %s: commit", table)
	}

	zap.L().Info("table replaced",
		zap.String("table", table),
		zap.Int64("rows", n),
	)
	return n, nil
}

func hasCoordinateColumns(columns []string) bool {
	var lat, lng bool
	for _, c := range columns {
		switch c {
		case "latitude":
			lat = true
		case "longitude":
			lng = true
		}
	}
	return lat && lng
}
