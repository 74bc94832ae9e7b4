package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// InsertEvent inserts (provider, event_id) into the idempotency ledger.
// Returns false when the pair already exists, which means the event was
// accepted by an earlier delivery. Rows are never updated.
func (s *Store) InsertEvent(ctx context.Context, providerName, eventID string) (bool, error) {
	query := `
		INSERT INTO webhook_events (provider, event_id)
		VALUES ($1, $2)
		ON CONFLICT (provider, event_id) DO NOTHING
	`

	res, err := s.db.ExecContext(ctx, query, providerName, eventID)
	if err != nil {
		return false, fmt.Errorf("inserting webhook event: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking webhook event insert: %w", err)
	}

	return inserted == 1, nil
}

// PruneEventsBefore removes ledger rows older than the retention cutoff. The
// cutoff must exceed any plausible provider retry interval.
func (s *Store) PruneEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM webhook_events WHERE received_at < $1`

	res, err := s.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning webhook events: %w", err)
	}

	pruned, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned events: %w", err)
	}

	return pruned, nil
}
