package ledger

import (
	"context"
	"strings"
)

// NewStore creates a postgres-backed ledger when configured, otherwise a
// store that discards events.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return NopStore{}, nil
	}
	return NewPostgresStore(ctx, databaseURL)
}

// Mode names the backing store for status reporting.
func Mode(s Store) string {
	switch s.(type) {
	case *PostgresStore:
		return "postgres"
	case NopStore, *NopStore:
		return "disabled"
	default:
		return "custom"
	}
}
