package db

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS postgis`,
	`CREATE TABLE IF NOT EXISTS clients (
		id             TEXT PRIMARY KEY,
		company_name   TEXT NOT NULL,
		address        TEXT NOT NULL DEFAULT '',
		contact_person TEXT NOT NULL DEFAULT '',
		contact_phone  TEXT NOT NULL DEFAULT '',
		category       TEXT NOT NULL DEFAULT '',
		status         TEXT NOT NULL DEFAULT 'Active',
		location       GEOGRAPHY(POINT, 4326),
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS daily_records (
		id                  TEXT PRIMARY KEY,
		user_id             TEXT NOT NULL,
		work_date           DATE NOT NULL,
		start_time          TIMESTAMPTZ NOT NULL,
		end_time            TIMESTAMPTZ,
		start_lat           DOUBLE PRECISION NOT NULL,
		start_lng           DOUBLE PRECISION NOT NULL,
		end_lat             DOUBLE PRECISION,
		end_lng             DOUBLE PRECISION,
		km_travelled        DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (km_travelled >= 0),
		distance_incomplete BOOLEAN NOT NULL DEFAULT false,
		failed_legs         INTEGER NOT NULL DEFAULT 0,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS daily_records_user_day ON daily_records (user_id, work_date)`,
	`CREATE TABLE IF NOT EXISTS visits (
		id            TEXT PRIMARY KEY,
		sales_rep_id  TEXT NOT NULL,
		client_id     TEXT NOT NULL REFERENCES clients(id),
		check_in_time TIMESTAMPTZ NOT NULL,
		comment       TEXT NOT NULL DEFAULT '',
		duration_min  INTEGER CHECK (duration_min >= 0),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS visits_rep_check_in ON visits (sales_rep_id, check_in_time)`,
}

// EnsureSchema applies the idempotent DDL the services rely on.
func EnsureSchema(ctx context.Context, q Querier) error {
	for i, stmt := range schema {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
