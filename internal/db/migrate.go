package db

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// migrations holds the idempotent destination schema, applied in order.
var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS postgis`,

	`CREATE TABLE IF NOT EXISTS pet_places (
		id            SERIAL PRIMARY KEY,
		facility_name VARCHAR(255) NOT NULL,
		address       TEXT NOT NULL,
		latitude      DOUBLE PRECISION,
		longitude     DOUBLE PRECISION,
		tel           VARCHAR(50),
		category      VARCHAR(50),
		geom          geometry(Point, 4326)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pet_places_geom ON pet_places USING gist (geom)`,

	`CREATE TABLE IF NOT EXISTS trash_bins (
		id             SERIAL PRIMARY KEY,
		city_name      TEXT NOT NULL,
		address        TEXT NOT NULL,
		location_desc  TEXT,
		bin_type       TEXT,
		bin_place_type TEXT,
		latitude       DOUBLE PRECISION,
		longitude      DOUBLE PRECISION,
		geom           geometry(Point, 4326)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_trash_bins_geom ON trash_bins USING gist (geom)`,

	`CREATE TABLE IF NOT EXISTS drinking_fountains (
		id            SERIAL PRIMARY KEY,
		fountain_name TEXT NOT NULL,
		address       TEXT NOT NULL,
		latitude      DOUBLE PRECISION,
		longitude     DOUBLE PRECISION,
		geom          geometry(Point, 4326)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_drinking_fountains_geom ON drinking_fountains USING gist (geom)`,

	`CREATE TABLE IF NOT EXISTS weather_forecast_cache (
		nx         INTEGER NOT NULL,
		ny         INTEGER NOT NULL,
		category   TEXT NOT NULL,
		fcst_value TEXT NOT NULL,
		base_date  TEXT NOT NULL,
		base_time  TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (nx, ny, base_date, base_time, category)
	)`,

	`CREATE TABLE IF NOT EXISTS etl_runs (
		id          TEXT PRIMARY KEY,
		job         TEXT NOT NULL,
		status      TEXT NOT NULL,
		rows_loaded BIGINT NOT NULL DEFAULT 0,
		error       TEXT,
		started_at  TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_etl_runs_started ON etl_runs (started_at DESC)`,
}

// Migrate creates the destination tables and indexes if they do not exist.
func Migrate(ctx context.Context, pool Pool) error {
	for _, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return eris.Wrap(err, "db: migrate")
		}
	}
	zap.L().Info("migrations applied", zap.Int("statements", len(migrations)))
	return nil
}
