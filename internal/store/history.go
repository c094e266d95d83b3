// Package store persists dataset load events in PostgreSQL.
//
// Only load metadata is stored. Indicator data is always served from the
// source file.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/envdash/internal/core"
)

// DefaultRecentLimit is used when RecentLoads is called with a non-positive limit.
const DefaultRecentLimit = 20

// MaxRecentLimit caps the number of rows RecentLoads returns.
const MaxRecentLimit = 500

// DBTX is the subset of pgxpool.Pool and pgx.Tx the store needs.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// History records and lists dataset loads.
// It implements core.LoadRecorder and core.LoadLister.
type History struct {
	db DBTX
}

// NewHistory creates a History on top of a pool or transaction.
func NewHistory(db DBTX) *History {
	return &History{db: db}
}

var (
	_ core.LoadRecorder = (*History)(nil)
	_ core.LoadLister   = (*History)(nil)
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS dataset_loads (
	id            UUID PRIMARY KEY,
	source        TEXT NOT NULL,
	source_size   BIGINT NOT NULL,
	mod_time      TIMESTAMPTZ,
	country       TEXT NOT NULL,
	raw_rows      INTEGER NOT NULL,
	country_rows  INTEGER NOT NULL,
	kept_rows     INTEGER NOT NULL,
	dropped_rows  INTEGER NOT NULL,
	duration_ms   BIGINT NOT NULL,
	loaded_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS dataset_loads_loaded_at_idx ON dataset_loads (loaded_at DESC);
`

// EnsureSchema creates the dataset_loads table if it does not exist.
func (h *History) EnsureSchema(ctx context.Context) error {
	if _, err := h.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create dataset_loads: %w", err)
	}
	return nil
}

const insertLoadSQL = `
INSERT INTO dataset_loads (
	id, source, source_size, mod_time, country,
	raw_rows, country_rows, kept_rows, dropped_rows, duration_ms, loaded_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (id) DO NOTHING`

// RecordLoad stores one load event. Recording the same event twice is a no-op.
func (h *History) RecordLoad(ctx context.Context, ev core.LoadEvent) error {
	if ev.ID == uuid.Nil {
		return errors.New("record load: event has no id")
	}

	loadedAt := ev.LoadedAt
	if loadedAt.IsZero() {
		loadedAt = time.Now()
	}

	_, err := h.db.Exec(ctx, insertLoadSQL,
		toPgUUID(ev.ID),
		ev.Source.Path,
		ev.Source.Size,
		toPgTimestamptz(ev.Source.ModTime),
		ev.Country,
		ev.RawRows,
		ev.CountryRows,
		ev.Kept,
		ev.Dropped,
		ev.Duration.Milliseconds(),
		toPgTimestamptz(loadedAt),
	)
	if err != nil {
		return fmt.Errorf("record load %s: %w", ev.ID, err)
	}
	return nil
}

const recentLoadsSQL = `
SELECT id, source, source_size, mod_time, country,
	raw_rows, country_rows, kept_rows, dropped_rows, duration_ms, loaded_at
FROM dataset_loads
ORDER BY loaded_at DESC
LIMIT $1`

// RecentLoads returns up to limit events, newest first.
func (h *History) RecentLoads(ctx context.Context, limit int) ([]core.LoadEvent, error) {
	limit = clampLimit(limit)

	rows, err := h.db.Query(ctx, recentLoadsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent loads: %w", err)
	}

	events, err := pgx.CollectRows(rows, scanLoadEvent)
	if err != nil {
		return nil, fmt.Errorf("scan recent loads: %w", err)
	}
	return events, nil
}

func scanLoadEvent(row pgx.CollectableRow) (core.LoadEvent, error) {
	var (
		ev         core.LoadEvent
		id         pgtype.UUID
		modTime    pgtype.Timestamptz
		loadedAt   pgtype.Timestamptz
		durationMS int64
	)
	err := row.Scan(
		&id,
		&ev.Source.Path,
		&ev.Source.Size,
		&modTime,
		&ev.Country,
		&ev.RawRows,
		&ev.CountryRows,
		&ev.Kept,
		&ev.Dropped,
		&durationMS,
		&loadedAt,
	)
	if err != nil {
		return core.LoadEvent{}, err
	}

	ev.ID = uuid.UUID(id.Bytes)
	ev.Source.ModTime = modTime.Time
	ev.LoadedAt = loadedAt.Time
	ev.Duration = time.Duration(durationMS) * time.Millisecond
	return ev, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecentLimit
	}
	return min(limit, MaxRecentLimit)
}

func toPgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func toPgTimestamptz(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}
