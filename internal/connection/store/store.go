package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/driftwoodhq/ledgersync/internal/connection"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectConnectionColumns = `
	id, provider, account_name, api_key, client_id, client_secret,
	access_token, private_key, environment, profile_id,
	last_synced_at, created_at, updated_at
`

type scanner interface {
	Scan(dest ...any) error
}

func scanConnection(s scanner) (*connection.Connection, error) {
	var conn connection.Connection

	if err := s.Scan(
		&conn.ID, &conn.Provider, &conn.AccountName, &conn.APIKey, &conn.ClientID,
		&conn.ClientSecret, &conn.AccessToken, &conn.PrivateKey, &conn.Environment,
		&conn.ProfileID, &conn.LastSyncedAt, &conn.CreatedAt, &conn.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &conn, nil
}

func (s *Store) GetConnection(ctx context.Context, id uuid.UUID) (*connection.Connection, error) {
	query := `SELECT ` + selectConnectionColumns + ` FROM connections WHERE id = $1`

	conn, err := scanConnection(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, connection.ErrNotFound
		}

		return nil, fmt.Errorf("getting connection: %w", err)
	}

	return conn, nil
}

func (s *Store) ListConnections(ctx context.Context) ([]*connection.Connection, error) {
	query := `SELECT ` + selectConnectionColumns + ` FROM connections ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing connections: %w", err)
	}
	defer rows.Close()

	var conns []*connection.Connection

	for rows.Next() {
		conn, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning connection: %w", err)
		}

		conns = append(conns, conn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating connection rows: %w", err)
	}

	return conns, nil
}

// ListConnectionsByProvider returns all connections for one provider, oldest
// first. The webhook gateway uses this for its weak-matching fallback.
func (s *Store) ListConnectionsByProvider(ctx context.Context, provider string) ([]*connection.Connection, error) {
	query := `SELECT ` + selectConnectionColumns + ` FROM connections WHERE provider = $1 ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, provider)
	if err != nil {
		return nil, fmt.Errorf("listing connections by provider: %w", err)
	}
	defer rows.Close()

	var conns []*connection.Connection

	for rows.Next() {
		conn, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning connection: %w", err)
		}

		conns = append(conns, conn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating connection rows: %w", err)
	}

	return conns, nil
}

func (s *Store) UpdateLastSyncedAt(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE connections
		SET last_synced_at = $1, updated_at = NOW()
		WHERE id = $2
	`

	_, err := s.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("updating last_synced_at: %w", err)
	}

	return nil
}
