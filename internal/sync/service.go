package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/driftwoodhq/ledgersync/internal/connection"
	"github.com/driftwoodhq/ledgersync/internal/provider"
	"github.com/driftwoodhq/ledgersync/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=sync
type Repository interface {
	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)
	UpdateSessionProgress(ctx context.Context, sessionID uuid.UUID, failOnJobFailure bool) error

	CreateJobs(ctx context.Context, jobs []*Job) error
	ClaimNextJob(ctx context.Context) (*Job, error)
	RescheduleJob(ctx context.Context, id uuid.UUID, cursor *string, recordsDelta int64) error
	CompleteJob(ctx context.Context, id uuid.UUID, recordsDelta int64) error
	RetryJob(ctx context.Context, id uuid.UUID, errMsg string, nextRetryAt time.Time) error
	FailJob(ctx context.Context, id uuid.UUID, errMsg string) error
	SplitJob(ctx context.Context, id uuid.UUID, midpoint time.Time) (*Job, error)
	ReclaimStaleJobs(ctx context.Context, olderThan time.Time) (int64, error)
	ListSessionJobs(ctx context.Context, sessionID uuid.UUID) ([]*Job, error)
}

type ConnectionSource interface {
	GetConnection(ctx context.Context, id uuid.UUID) (*connection.Connection, error)
	ListConnections(ctx context.Context) ([]*connection.Connection, error)
	UpdateLastSyncedAt(ctx context.Context, id uuid.UUID, at time.Time) error
}

type Writer interface {
	Write(ctx context.Context, txs []*transaction.Transaction) (int64, error)
}

type AdapterSource interface {
	Adapter(name string) (provider.Adapter, error)
}

// minSplitWindow is the splitter floor: a single day whose volume still
// overflows the provider's reporting limit is a data-density fault, not a
// transient condition.
const minSplitWindow = 24 * time.Hour

// webhookWindow is the recent window a webhook-triggered job re-fetches.
const webhookWindow = 2 * time.Hour

// incrementalOverlap is re-fetched before last_synced_at so entries booked
// late near the boundary are not missed. The writer makes the overlap free.
const incrementalOverlap = time.Hour

// maxDirectPages bounds a queue-bypassing interactive sync.
const maxDirectPages = 50

type Config struct {
	ChunkDays               int
	MaxAttempts             int
	LeaseTimeout            time.Duration
	FailSessionOnJobFailure bool
}

// Service is the chunk processor: it claims jobs, drives the matching
// provider adapter, writes normalized transactions, and keeps job, session
// and connection bookkeeping consistent.
type Service struct {
	repo        Repository
	connections ConnectionSource
	writer      Writer
	adapters    AdapterSource
	cfg         Config
	now         func() time.Time
}

func NewService(repo Repository, connections ConnectionSource, writer Writer, adapters AdapterSource, cfg Config) *Service {
	if cfg.ChunkDays <= 0 {
		cfg.ChunkDays = 30
	}

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}

	return &Service{
		repo:        repo,
		connections: connections,
		writer:      writer,
		adapters:    adapters,
		cfg:         cfg,
		now:         time.Now,
	}
}

type ProcessStatus string

const (
	StatusIdle      ProcessStatus = "idle"
	StatusProcessed ProcessStatus = "processed"
	StatusError     ProcessStatus = "error"
)

// ProcessResult is the structured outcome of one scheduler invocation. The
// boundary never raises: faults are carried in Status/Error.
type ProcessResult struct {
	Status          ProcessStatus
	JobID           *uuid.UUID
	RecordsInserted int64
	HasMore         bool
	Error           string
}

// ProcessNextChunk claims the next eligible job and performs exactly one unit
// of work against it: one provider page, or one split, or one retry decision.
// An empty queue is the scheduler's idle state, not a fault.
func (s *Service) ProcessNextChunk(ctx context.Context) (*ProcessResult, error) {
	job, err := s.repo.ClaimNextJob(ctx)
	if err != nil {
		return nil, fmt.Errorf("claiming job: %w", err)
	}

	if job == nil {
		return &ProcessResult{Status: StatusIdle}, nil
	}

	result := s.processJob(ctx, job)

	if job.SessionID != nil {
		if err := s.repo.UpdateSessionProgress(ctx, *job.SessionID, s.cfg.FailSessionOnJobFailure); err != nil {
			slog.Error("failed to update session progress", "session_id", *job.SessionID, "error", err)
		}
	}

	return result, nil
}

func (s *Service) processJob(ctx context.Context, job *Job) *ProcessResult {
	conn, err := s.connections.GetConnection(ctx, job.ConnectionID)
	if err != nil {
		return s.handleFault(ctx, job, fmt.Errorf("loading connection: %w", err))
	}

	adapter, err := s.adapters.Adapter(job.Provider)
	if err != nil {
		// No adapter for this provider is a configuration fault; retrying
		// cannot help.
		return s.failJob(ctx, job, err)
	}

	page, err := adapter.FetchPage(ctx, conn, job.ChunkStart, job.ChunkEnd, job.Cursor)
	if err != nil {
		var tooLarge *provider.TooManyResultsError
		if errors.As(err, &tooLarge) {
			return s.splitOrFail(ctx, job, tooLarge)
		}

		var authErr *provider.AuthError
		if errors.As(err, &authErr) {
			return s.failJob(ctx, job, authErr)
		}

		return s.handleFault(ctx, job, fmt.Errorf("fetching page: %w", err))
	}

	written, err := s.writer.Write(ctx, page.Transactions)
	if err != nil {
		return s.handleFault(ctx, job, fmt.Errorf("writing transactions: %w", err))
	}

	if page.NextCursor != nil {
		// More pages in this window: park the job as pending with the new
		// cursor so any invocation can pick up where this one left off.
		if err := s.repo.RescheduleJob(ctx, job.ID, page.NextCursor, written); err != nil {
			return s.handleFault(ctx, job, fmt.Errorf("saving cursor: %w", err))
		}

		return &ProcessResult{Status: StatusProcessed, JobID: &job.ID, RecordsInserted: written, HasMore: true}
	}

	if err := s.repo.CompleteJob(ctx, job.ID, written); err != nil {
		return s.handleFault(ctx, job, fmt.Errorf("completing job: %w", err))
	}

	if job.Type != JobTypeHistorical {
		if err := s.connections.UpdateLastSyncedAt(ctx, job.ConnectionID, job.ChunkEnd); err != nil {
			slog.Error("failed to update last_synced_at", "connection_id", job.ConnectionID, "error", err)
		}
	}

	slog.Info("chunk completed",
		"job_id", job.ID, "provider", job.Provider,
		"chunk_start", job.ChunkStart, "chunk_end", job.ChunkEnd, "records", written)

	return &ProcessResult{Status: StatusProcessed, JobID: &job.ID, RecordsInserted: written}
}

// splitOrFail bisects an oversized window, or fails the job permanently once
// it has shrunk to the one-day floor.
func (s *Service) splitOrFail(ctx context.Context, job *Job, cause *provider.TooManyResultsError) *ProcessResult {
	if job.Window() <= minSplitWindow {
		msg := fmt.Sprintf("window [%s, %s) is at the 1-day floor and still exceeds the provider's result limit: %s",
			job.ChunkStart.Format(time.RFC3339), job.ChunkEnd.Format(time.RFC3339), cause.Detail)

		return s.failJob(ctx, job, errors.New(msg))
	}

	midpoint := job.ChunkStart.Add(job.Window() / 2)

	sibling, err := s.repo.SplitJob(ctx, job.ID, midpoint)
	if err != nil {
		return s.handleFault(ctx, job, fmt.Errorf("splitting job: %w", err))
	}

	slog.Info("split oversized chunk",
		"job_id", job.ID, "sibling_id", sibling.ID,
		"midpoint", midpoint, "provider", job.Provider)

	return &ProcessResult{Status: StatusProcessed, JobID: &job.ID, HasMore: true}
}

// handleFault reschedules a transiently failed job with exponential backoff,
// or fails it once its attempts are exhausted.
func (s *Service) handleFault(ctx context.Context, job *Job, cause error) *ProcessResult {
	if job.Attempts >= job.MaxAttempts {
		return s.failJob(ctx, job, fmt.Errorf("%w (after %d attempts)", cause, job.Attempts))
	}

	retryAt := s.now().Add(Backoff(job.Attempts))

	if err := s.repo.RetryJob(ctx, job.ID, cause.Error(), retryAt); err != nil {
		slog.Error("failed to reschedule job", "job_id", job.ID, "error", err)
	}

	slog.Warn("chunk failed, will retry",
		"job_id", job.ID, "provider", job.Provider,
		"attempt", job.Attempts, "retry_at", retryAt, "error", cause)

	return &ProcessResult{Status: StatusError, JobID: &job.ID, HasMore: true, Error: cause.Error()}
}

func (s *Service) failJob(ctx context.Context, job *Job, cause error) *ProcessResult {
	if err := s.repo.FailJob(ctx, job.ID, cause.Error()); err != nil {
		slog.Error("failed to mark job failed", "job_id", job.ID, "error", err)
	}

	slog.Error("chunk failed permanently", "job_id", job.ID, "provider", job.Provider, "error", cause)

	return &ProcessResult{Status: StatusError, JobID: &job.ID, Error: cause.Error()}
}

// Backoff returns the retry delay after the given number of attempts,
// doubling per attempt. The exponent is clamped so the delay stays sane for
// misconfigured max_attempts values.
func Backoff(attempts int) time.Duration {
	if attempts > 10 {
		attempts = 10
	}

	return time.Duration(1<<uint(attempts)) * time.Minute
}

// lookback returns how far back a historical sync reaches for a provider.
func lookback(providerName string) time.Duration {
	const year = 365 * 24 * time.Hour

	if providerName == provider.PayPal {
		return 3 * year
	}

	return 5 * year
}

// StartHistoricalSync seeds a session plus fixed-size chunk jobs covering the
// provider's lookback window, all pending at historical priority.
func (s *Service) StartHistoricalSync(ctx context.Context, connectionID uuid.UUID) (*Session, error) {
	conn, err := s.connections.GetConnection(ctx, connectionID)
	if err != nil {
		return nil, fmt.Errorf("loading connection: %w", err)
	}

	now := s.now().UTC()
	start := now.Add(-lookback(conn.Provider))
	chunk := time.Duration(s.cfg.ChunkDays) * 24 * time.Hour

	var jobs []*Job

	for chunkStart := start; chunkStart.Before(now); chunkStart = chunkStart.Add(chunk) {
		chunkEnd := chunkStart.Add(chunk)
		if chunkEnd.After(now) {
			chunkEnd = now
		}

		jobs = append(jobs, &Job{
			ConnectionID: connectionID,
			Provider:     conn.Provider,
			Type:         JobTypeHistorical,
			Status:       JobPending,
			ChunkStart:   chunkStart,
			ChunkEnd:     chunkEnd,
			Priority:     PriorityHistorical,
			MaxAttempts:  s.cfg.MaxAttempts,
		})
	}

	session := &Session{
		ConnectionID: connectionID,
		Provider:     conn.Provider,
		SyncType:     SyncHistorical,
		Status:       SessionRunning,
		TotalChunks:  len(jobs),
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	for _, job := range jobs {
		job.SessionID = &session.ID
	}

	if err := s.repo.CreateJobs(ctx, jobs); err != nil {
		return nil, fmt.Errorf("seeding chunk jobs: %w", err)
	}

	slog.Info("historical sync started",
		"session_id", session.ID, "provider", conn.Provider, "chunks", len(jobs))

	return session, nil
}

// ScheduleIncrementalSync enqueues one small job covering everything since
// the connection's last sync, under a single-chunk session.
func (s *Service) ScheduleIncrementalSync(ctx context.Context, conn *connection.Connection) (*Job, error) {
	now := s.now().UTC()

	start := now.Add(-time.Duration(s.cfg.ChunkDays) * 24 * time.Hour)
	if conn.LastSyncedAt != nil {
		start = conn.LastSyncedAt.Add(-incrementalOverlap)
	}

	session := &Session{
		ConnectionID: conn.ID,
		Provider:     conn.Provider,
		SyncType:     SyncIncremental,
		Status:       SessionRunning,
		TotalChunks:  1,
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	job := &Job{
		ConnectionID: conn.ID,
		SessionID:    &session.ID,
		Provider:     conn.Provider,
		Type:         JobTypeIncremental,
		Status:       JobPending,
		ChunkStart:   start,
		ChunkEnd:     now,
		Priority:     PriorityIncremental,
		MaxAttempts:  s.cfg.MaxAttempts,
	}

	if err := s.repo.CreateJobs(ctx, []*Job{job}); err != nil {
		return nil, fmt.Errorf("enqueueing incremental job: %w", err)
	}

	return job, nil
}

// EnqueueWebhookJob enqueues a fire-and-forget high-priority job re-fetching
// the recent window for the connection a webhook event belongs to.
func (s *Service) EnqueueWebhookJob(ctx context.Context, connectionID uuid.UUID, providerName string) (*Job, error) {
	now := s.now().UTC()

	job := &Job{
		ConnectionID: connectionID,
		Provider:     providerName,
		Type:         JobTypeWebhook,
		Status:       JobPending,
		ChunkStart:   now.Add(-webhookWindow),
		ChunkEnd:     now,
		Priority:     PriorityWebhook,
		MaxAttempts:  s.cfg.MaxAttempts,
	}

	if err := s.repo.CreateJobs(ctx, []*Job{job}); err != nil {
		return nil, fmt.Errorf("enqueueing webhook job: %w", err)
	}

	return job, nil
}

type SyncNowResult struct {
	RecordsInserted int64
	Pages           int
}

// SyncNow performs a direct, non-chunked fetch for interactive use. It
// bypasses the job queue for latency but reuses the same adapter and
// idempotent writer, so it cannot conflict with scheduled jobs.
func (s *Service) SyncNow(ctx context.Context, connectionID uuid.UUID, fullSync bool) (*SyncNowResult, error) {
	conn, err := s.connections.GetConnection(ctx, connectionID)
	if err != nil {
		return nil, fmt.Errorf("loading connection: %w", err)
	}

	adapter, err := s.adapters.Adapter(conn.Provider)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()

	start := now.Add(-time.Duration(s.cfg.ChunkDays) * 24 * time.Hour)

	switch {
	case fullSync:
		start = now.Add(-lookback(conn.Provider))
	case conn.LastSyncedAt != nil:
		start = conn.LastSyncedAt.Add(-incrementalOverlap)
	}

	var (
		result SyncNowResult
		cursor *string
	)

	for {
		page, err := adapter.FetchPage(ctx, conn, start, now, cursor)
		if err != nil {
			return nil, fmt.Errorf("fetching page: %w", err)
		}

		written, err := s.writer.Write(ctx, page.Transactions)
		if err != nil {
			return nil, fmt.Errorf("writing transactions: %w", err)
		}

		result.RecordsInserted += written
		result.Pages++

		if page.NextCursor == nil {
			break
		}

		if result.Pages >= maxDirectPages {
			return nil, fmt.Errorf("window needs more than %d pages; use a historical sync instead", maxDirectPages)
		}

		cursor = page.NextCursor
	}

	if err := s.connections.UpdateLastSyncedAt(ctx, connectionID, now); err != nil {
		slog.Error("failed to update last_synced_at", "connection_id", connectionID, "error", err)
	}

	return &result, nil
}

// ReclaimStaleJobs requeues running jobs whose lease expired, covering
// workers that crashed mid-call. Saved cursors and the idempotent writer make
// resuming such a job safe.
func (s *Service) ReclaimStaleJobs(ctx context.Context) (int64, error) {
	if s.cfg.LeaseTimeout <= 0 {
		return 0, nil
	}

	reclaimed, err := s.repo.ReclaimStaleJobs(ctx, s.now().Add(-s.cfg.LeaseTimeout))
	if err != nil {
		return 0, fmt.Errorf("reclaiming stale jobs: %w", err)
	}

	if reclaimed > 0 {
		slog.Warn("reclaimed stale running jobs", "count", reclaimed)
	}

	return reclaimed, nil
}

// GetSession exposes session progress for the dashboard.
func (s *Service) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.repo.GetSession(ctx, id)
}

// ListSessionJobs exposes a session's per-chunk breakdown, including windows
// added by splits and the error messages of failed chunks.
func (s *Service) ListSessionJobs(ctx context.Context, sessionID uuid.UUID) ([]*Job, error) {
	if _, err := s.repo.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	return s.repo.ListSessionJobs(ctx, sessionID)
}
