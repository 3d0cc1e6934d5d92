package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists provisioning events in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS provisioning_events (
			id TEXT PRIMARY KEY,
			room_name TEXT NOT NULL,
			room_sid TEXT NOT NULL DEFAULT '',
			outcome TEXT NOT NULL,
			dispatch_outcome TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_provisioning_events_created ON provisioning_events (created_at);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) Record(ctx context.Context, event Event) error {
	event = withDefaults(event)
	_, err := s.pool.Exec(ctx,
		`INSERT INTO provisioning_events (id, room_name, room_sid, outcome, dispatch_outcome, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		event.ID,
		event.RoomName,
		event.RoomSID,
		event.Outcome,
		event.DispatchOutcome,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record provisioning event: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func withDefaults(event Event) Event {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	return event
}
