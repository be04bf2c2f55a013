package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thenexusengine/tne_adbridge/internal/journal"
)

// EventStore persists ad lifecycle events to the ad_events table. It
// implements journal.Sink so the recorder can flush batches straight into
// Postgres.
type EventStore struct {
	db *sql.DB
}

// NewEventStore creates a new event store
func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

// EnsureSchema creates the ad_events table when it does not exist
func (s *EventStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS ad_events (
			id            BIGSERIAL PRIMARY KEY,
			occurred_at   TIMESTAMPTZ NOT NULL,
			request_id    TEXT NOT NULL,
			placement_id  TEXT NOT NULL,
			format        TEXT NOT NULL,
			event         TEXT NOT NULL,
			error_code    TEXT NOT NULL DEFAULT '',
			reward_label  TEXT NOT NULL DEFAULT '',
			reward_amount INT NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS ad_events_occurred_at_idx ON ad_events (occurred_at DESC);
	`

	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create ad_events schema: %w", err)
	}
	return nil
}

// WriteEvents implements journal.Sink. The batch is written in one
// transaction so a mid-batch failure never leaves a partial flush behind.
func (s *EventStore) WriteEvents(ctx context.Context, events []journal.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO ad_events (
			occurred_at, request_id, placement_id, format, event,
			error_code, reward_label, reward_amount
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.ExecContext(ctx,
			e.Time, e.RequestID, e.PlacementID, e.Format, e.Event,
			e.ErrorCode, e.RewardLabel, e.RewardAmt,
		); err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit events: %w", err)
	}
	return nil
}

// ListRecent returns the newest events, most recent first
func (s *EventStore) ListRecent(ctx context.Context, limit int) ([]journal.Event, error) {
	if limit <= 0 {
		limit = 100
	}

	const query = `
		SELECT occurred_at, request_id, placement_id, format, event,
		       error_code, reward_label, reward_amount
		FROM ad_events
		ORDER BY occurred_at DESC, id DESC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := make([]journal.Event, 0, limit)
	for rows.Next() {
		var e journal.Event
		if err := rows.Scan(
			&e.Time, &e.RequestID, &e.PlacementID, &e.Format, &e.Event,
			&e.ErrorCode, &e.RewardLabel, &e.RewardAmt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}
