package transaction

import (
	"context"
	"fmt"
	"time"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	UpsertTransactions(ctx context.Context, txs []*Transaction) (int64, error)
	GetTransaction(ctx context.Context, id string) (*Transaction, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
}

type ListFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Account   *string
	Type      *Type
}

const defaultBatchSize = 500

// Service is the idempotent writer: every write is an upsert keyed by the
// transaction's deterministic id, so replays and races converge on one row.
type Service struct {
	repo      Repository
	batchSize int
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, batchSize: defaultBatchSize}
}

// NewServiceWithBatchSize overrides the write batch size, which bounds
// single-statement payload size and lock duration.
func NewServiceWithBatchSize(repo Repository, batchSize int) *Service {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	return &Service{repo: repo, batchSize: batchSize}
}

// Write upserts the given transactions in batches and returns the number of
// rows actually inserted. Conflicting ids are ignored, never an error.
func (s *Service) Write(ctx context.Context, txs []*Transaction) (int64, error) {
	var written int64

	for start := 0; start < len(txs); start += s.batchSize {
		end := min(start+s.batchSize, len(txs))

		n, err := s.repo.UpsertTransactions(ctx, txs[start:end])
		if err != nil {
			return written, fmt.Errorf("writing batch at offset %d: %w", start, err)
		}

		written += n
	}

	return written, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}
