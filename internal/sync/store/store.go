package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/driftwoodhq/ledgersync/internal/sync"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectJobColumns = `
	id, connection_id, session_id, provider, job_type, status,
	chunk_start, chunk_end, cursor, priority, attempts, max_attempts,
	next_retry_at, records_processed, error_message, claimed_at,
	created_at, updated_at
`

func scanJob(s scanner) (*sync.Job, error) {
	var job sync.Job

	var jobType, status string

	if err := s.Scan(
		&job.ID, &job.ConnectionID, &job.SessionID, &job.Provider, &jobType, &status,
		&job.ChunkStart, &job.ChunkEnd, &job.Cursor, &job.Priority, &job.Attempts,
		&job.MaxAttempts, &job.NextRetryAt, &job.RecordsProcessed, &job.ErrorMessage,
		&job.ClaimedAt, &job.CreatedAt, &job.UpdatedAt,
	); err != nil {
		return nil, err
	}

	job.Type = sync.JobType(jobType)
	job.Status = sync.JobStatus(status)

	return &job, nil
}

func (s *Store) CreateSession(ctx context.Context, session *sync.Session) error {
	query := `
		INSERT INTO sync_sessions (connection_id, provider, sync_type, status, total_chunks)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		session.ConnectionID,
		session.Provider,
		session.SyncType,
		session.Status,
		session.TotalChunks,
	).Scan(&session.ID, &session.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	return nil
}

func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (*sync.Session, error) {
	query := `
		SELECT id, connection_id, provider, sync_type, status,
		       total_chunks, completed_chunks, total_records, note,
		       created_at, updated_at
		FROM sync_sessions
		WHERE id = $1
	`

	var session sync.Session

	var syncType, status string

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID, &session.ConnectionID, &session.Provider, &syncType, &status,
		&session.TotalChunks, &session.CompletedChunks, &session.TotalRecords,
		&session.Note, &session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sync.ErrSessionNotFound
		}

		return nil, fmt.Errorf("getting session: %w", err)
	}

	session.SyncType = sync.SyncType(syncType)
	session.Status = sync.SessionStatus(status)

	return &session, nil
}

// UpdateSessionProgress recomputes the session's aggregate counters from its
// live job rows in one statement, so redundant calls are harmless. The
// session reaches a terminal status only when every job is terminal; whether
// failed jobs fail the session or leave it completed-with-a-note is the
// caller's policy.
func (s *Store) UpdateSessionProgress(ctx context.Context, sessionID uuid.UUID, failOnJobFailure bool) error {
	query := `
		UPDATE sync_sessions s
		SET total_chunks = agg.total,
		    completed_chunks = agg.terminal,
		    total_records = agg.records,
		    status = CASE
		        WHEN agg.terminal < agg.total THEN 'running'
		        WHEN agg.failed > 0 AND $2 THEN 'failed'
		        ELSE 'completed'
		    END,
		    note = CASE
		        WHEN agg.failed > 0 AND agg.terminal = agg.total AND NOT $2
		            THEN agg.failed || ' of ' || agg.total || ' chunks failed'
		        ELSE s.note
		    END,
		    updated_at = NOW()
		FROM (
		    SELECT COUNT(*) AS total,
		           COUNT(*) FILTER (WHERE status IN ('completed', 'failed')) AS terminal,
		           COUNT(*) FILTER (WHERE status = 'failed') AS failed,
		           COALESCE(SUM(records_processed), 0) AS records
		    FROM sync_jobs
		    WHERE session_id = $1
		) agg
		WHERE s.id = $1
	`

	_, err := s.db.ExecContext(ctx, query, sessionID, failOnJobFailure)
	if err != nil {
		return fmt.Errorf("updating session progress: %w", err)
	}

	return nil
}

func (s *Store) CreateJobs(ctx context.Context, jobs []*sync.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	query := `
		INSERT INTO sync_jobs (connection_id, session_id, provider, job_type, status,
		                       chunk_start, chunk_end, cursor, priority, max_attempts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	for _, job := range jobs {
		err := dbTx.QueryRowContext(ctx, query,
			job.ConnectionID,
			job.SessionID,
			job.Provider,
			job.Type,
			job.Status,
			job.ChunkStart,
			job.ChunkEnd,
			job.Cursor,
			job.Priority,
			job.MaxAttempts,
		).Scan(&job.ID, &job.CreatedAt)
		if err != nil {
			return fmt.Errorf("creating job: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing jobs: %w", err)
	}

	return nil
}

// ClaimNextJob atomically claims the next eligible pending job. The inner
// SELECT takes a row lock and skips rows other workers hold, so two
// concurrent callers can never claim the same job. An empty queue returns
// (nil, nil).
func (s *Store) ClaimNextJob(ctx context.Context) (*sync.Job, error) {
	query := `
		UPDATE sync_jobs
		SET status = 'running', claimed_at = NOW(), attempts = attempts + 1, updated_at = NOW()
		WHERE id = (
		    SELECT id
		    FROM sync_jobs
		    WHERE status = 'pending'
		      AND (next_retry_at IS NULL OR next_retry_at <= NOW())
		    ORDER BY priority ASC, created_at ASC
		    LIMIT 1
		    FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + selectJobColumns

	job, err := scanJob(s.db.QueryRowContext(ctx, query))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("claiming job: %w", err)
	}

	return job, nil
}

// RescheduleJob parks a running job back in the queue with a saved cursor so
// the next claim continues the same window from where this page ended.
func (s *Store) RescheduleJob(ctx context.Context, id uuid.UUID, cursor *string, recordsDelta int64) error {
	query := `
		UPDATE sync_jobs
		SET status = 'pending', cursor = $2, records_processed = records_processed + $3,
		    claimed_at = NULL, next_retry_at = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'running'
	`

	if _, err := s.db.ExecContext(ctx, query, id, cursor, recordsDelta); err != nil {
		return fmt.Errorf("rescheduling job: %w", err)
	}

	return nil
}

func (s *Store) CompleteJob(ctx context.Context, id uuid.UUID, recordsDelta int64) error {
	query := `
		UPDATE sync_jobs
		SET status = 'completed', records_processed = records_processed + $2,
		    cursor = NULL, claimed_at = NULL, error_message = '', updated_at = NOW()
		WHERE id = $1 AND status = 'running'
	`

	if _, err := s.db.ExecContext(ctx, query, id, recordsDelta); err != nil {
		return fmt.Errorf("completing job: %w", err)
	}

	return nil
}

func (s *Store) RetryJob(ctx context.Context, id uuid.UUID, errMsg string, nextRetryAt time.Time) error {
	query := `
		UPDATE sync_jobs
		SET status = 'pending', error_message = $2, next_retry_at = $3,
		    claimed_at = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'running'
	`

	if _, err := s.db.ExecContext(ctx, query, id, errMsg, nextRetryAt); err != nil {
		return fmt.Errorf("scheduling retry: %w", err)
	}

	return nil
}

func (s *Store) FailJob(ctx context.Context, id uuid.UUID, errMsg string) error {
	query := `
		UPDATE sync_jobs
		SET status = 'failed', error_message = $2, claimed_at = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'running'
	`

	if _, err := s.db.ExecContext(ctx, query, id, errMsg); err != nil {
		return fmt.Errorf("failing job: %w", err)
	}

	return nil
}

// SplitJob shrinks the job's window to [chunk_start, midpoint), resets its
// cursor and requeues it, and inserts a sibling job covering [midpoint,
// chunk_end) under the same session and priority. Both changes commit
// together. Returns the sibling.
func (s *Store) SplitJob(ctx context.Context, id uuid.UUID, midpoint time.Time) (*sync.Job, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	// Lock the row and read the original window before shrinking it; the
	// sibling needs the pre-shrink chunk_end.
	lockQuery := `
		SELECT connection_id, session_id, provider, job_type, chunk_end, priority, max_attempts
		FROM sync_jobs
		WHERE id = $1
		FOR UPDATE
	`

	var (
		connectionID uuid.UUID
		sessionID    *uuid.UUID
		providerName string
		jobType      string
		chunkEnd     time.Time
		priority     int
		maxAttempts  int
	)

	err = dbTx.QueryRowContext(ctx, lockQuery, id).Scan(
		&connectionID, &sessionID, &providerName, &jobType, &chunkEnd, &priority, &maxAttempts,
	)
	if err != nil {
		return nil, fmt.Errorf("locking job for split: %w", err)
	}

	shrinkQuery := `
		UPDATE sync_jobs
		SET chunk_end = $2, cursor = NULL, status = 'pending',
		    claimed_at = NULL, next_retry_at = NULL, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := dbTx.ExecContext(ctx, shrinkQuery, id, midpoint); err != nil {
		return nil, fmt.Errorf("shrinking job window: %w", err)
	}

	siblingQuery := `
		INSERT INTO sync_jobs (connection_id, session_id, provider, job_type, status,
		                       chunk_start, chunk_end, priority, max_attempts)
		VALUES ($1, $2, $3, $4, 'pending', $5, $6, $7, $8)
		RETURNING ` + selectJobColumns

	sibling, err := scanJob(dbTx.QueryRowContext(ctx, siblingQuery,
		connectionID, sessionID, providerName, jobType, midpoint, chunkEnd, priority, maxAttempts,
	))
	if err != nil {
		return nil, fmt.Errorf("inserting sibling job: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing split: %w", err)
	}

	return sibling, nil
}

// ReclaimStaleJobs requeues running jobs whose claim is older than the cutoff.
// Cursor and records_processed are kept: replaying the in-flight page is safe
// because the writer is idempotent.
func (s *Store) ReclaimStaleJobs(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `
		UPDATE sync_jobs
		SET status = 'pending', claimed_at = NULL, updated_at = NOW()
		WHERE status = 'running' AND claimed_at < $1
	`

	res, err := s.db.ExecContext(ctx, query, olderThan)
	if err != nil {
		return 0, fmt.Errorf("reclaiming stale jobs: %w", err)
	}

	reclaimed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting reclaimed jobs: %w", err)
	}

	return reclaimed, nil
}

// ListSessionJobs returns the jobs under a session, oldest window first.
func (s *Store) ListSessionJobs(ctx context.Context, sessionID uuid.UUID) ([]*sync.Job, error) {
	query := `SELECT ` + selectJobColumns + ` FROM sync_jobs WHERE session_id = $1 ORDER BY chunk_start ASC`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing session jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*sync.Job

	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}

		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating job rows: %w", err)
	}

	return jobs, nil
}
