package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/driftwoodhq/ledgersync/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTransaction reads a transaction row from the scanner.
// Expected column order: id, connection_id, date, amount, currency, description, type, account, category, notes, running_balance, created_at
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var typeStr string

	if err := s.Scan(
		&tx.ID, &tx.ConnectionID, &tx.Date, &tx.Amount, &tx.Currency, &tx.Description,
		&typeStr, &tx.Account, &tx.Category, &tx.Notes, &tx.RunningBalance, &tx.CreatedAt,
	); err != nil {
		return nil, err
	}

	tx.Type = transaction.Type(typeStr)

	return &tx, nil
}

const selectTransactionColumns = `
	t.id, t.connection_id, t.date, t.amount, t.currency, t.description,
	t.type, t.account, t.category, t.notes, t.running_balance, t.created_at
`

// UpsertTransactions bulk-inserts the given transactions, ignoring rows whose
// deterministic id already exists. Returns the number of rows inserted.
func (s *Store) UpsertTransactions(ctx context.Context, txs []*transaction.Transaction) (int64, error) {
	if len(txs) == 0 {
		return 0, nil
	}

	const cols = 11

	var sb strings.Builder

	sb.WriteString(`
		INSERT INTO transactions (id, connection_id, date, amount, currency, description, type, account, category, notes, running_balance)
		VALUES `)

	args := make([]any, 0, len(txs)*cols)

	for i, tx := range txs {
		if i > 0 {
			sb.WriteString(", ")
		}

		base := i * cols

		sb.WriteString("(")

		for j := 1; j <= cols; j++ {
			if j > 1 {
				sb.WriteString(", ")
			}

			fmt.Fprintf(&sb, "$%d", base+j)
		}

		sb.WriteString(")")

		args = append(args,
			tx.ID, tx.ConnectionID, tx.Date, tx.Amount, tx.Currency, tx.Description,
			tx.Type, tx.Account, tx.Category, tx.Notes, tx.RunningBalance,
		)
	}

	sb.WriteString(" ON CONFLICT (id) DO NOTHING")

	res, err := s.db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("upserting transactions: %w", err)
	}

	written, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting upserted rows: %w", err)
	}

	return written, nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE 1=1`

	var args []any

	argIdx := 1

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND t.date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND t.date < $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	if filter.Account != nil {
		query += fmt.Sprintf(" AND t.account = $%d", argIdx)

		args = append(args, *filter.Account)
		argIdx++
	}

	if filter.Type != nil {
		query += fmt.Sprintf(" AND t.type = $%d", argIdx)

		args = append(args, *filter.Type)
		argIdx++
	}

	query += " ORDER BY t.date ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}

	return txs, nil
}
