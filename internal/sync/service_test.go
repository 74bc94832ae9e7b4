package sync_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/driftwoodhq/ledgersync/internal/connection"
	"github.com/driftwoodhq/ledgersync/internal/provider"
	"github.com/driftwoodhq/ledgersync/internal/sync"
	"github.com/driftwoodhq/ledgersync/internal/transaction"
)

// adapterFunc adapts a closure to the provider.Adapter interface.
type adapterFunc func(ctx context.Context, conn *connection.Connection, windowStart, windowEnd time.Time, cursor *string) (*provider.Page, error)

func (f adapterFunc) FetchPage(ctx context.Context, conn *connection.Connection, windowStart, windowEnd time.Time, cursor *string) (*provider.Page, error) {
	return f(ctx, conn, windowStart, windowEnd, cursor)
}

type fixture struct {
	repo        *sync.MockRepository
	connections *sync.MockConnectionSource
	writer      *sync.MockWriter
	adapters    *sync.MockAdapterSource
	svc         *sync.Service
}

func newFixture(t *testing.T, cfg sync.Config) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &fixture{
		repo:        sync.NewMockRepository(ctrl),
		connections: sync.NewMockConnectionSource(ctrl),
		writer:      sync.NewMockWriter(ctrl),
		adapters:    sync.NewMockAdapterSource(ctrl),
	}

	f.svc = sync.NewService(f.repo, f.connections, f.writer, f.adapters, cfg)

	return f
}

func testJob(window time.Duration) *sync.Job {
	sessionID := uuid.New()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	return &sync.Job{
		ID:           uuid.New(),
		ConnectionID: uuid.New(),
		SessionID:    &sessionID,
		Provider:     provider.Stripe,
		Type:         sync.JobTypeHistorical,
		Status:       sync.JobRunning,
		ChunkStart:   start,
		ChunkEnd:     start.Add(window),
		Priority:     sync.PriorityHistorical,
		Attempts:     1,
		MaxAttempts:  5,
	}
}

func TestService_ProcessNextChunk_Idle(t *testing.T) {
	f := newFixture(t, sync.Config{})

	f.repo.EXPECT().ClaimNextJob(gomock.Any()).Return(nil, nil)

	result, err := f.svc.ProcessNextChunk(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sync.StatusIdle, result.Status)
	assert.Nil(t, result.JobID)
}

func TestService_ProcessNextChunk_CompletesWindow(t *testing.T) {
	f := newFixture(t, sync.Config{})

	job := testJob(30 * 24 * time.Hour)
	job.Type = sync.JobTypeIncremental

	conn := &connection.Connection{ID: job.ConnectionID, Provider: provider.Stripe}

	txs := []*transaction.Transaction{{ID: "stripe-txn_1"}, {ID: "stripe-txn_2"}}

	f.repo.EXPECT().ClaimNextJob(gomock.Any()).Return(job, nil)
	f.connections.EXPECT().GetConnection(gomock.Any(), job.ConnectionID).Return(conn, nil)
	f.adapters.EXPECT().Adapter(provider.Stripe).Return(adapterFunc(
		func(_ context.Context, _ *connection.Connection, windowStart, windowEnd time.Time, cursor *string) (*provider.Page, error) {
			assert.Equal(t, job.ChunkStart, windowStart)
			assert.Equal(t, job.ChunkEnd, windowEnd)
			assert.Nil(t, cursor)

			return &provider.Page{Transactions: txs}, nil
		}), nil)
	f.writer.EXPECT().Write(gomock.Any(), txs).Return(int64(2), nil)
	f.repo.EXPECT().CompleteJob(gomock.Any(), job.ID, int64(2)).Return(nil)
	f.connections.EXPECT().UpdateLastSyncedAt(gomock.Any(), job.ConnectionID, job.ChunkEnd).Return(nil)
	f.repo.EXPECT().UpdateSessionProgress(gomock.Any(), *job.SessionID, false).Return(nil)

	result, err := f.svc.ProcessNextChunk(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sync.StatusProcessed, result.Status)
	assert.Equal(t, int64(2), result.RecordsInserted)
	assert.False(t, result.HasMore)
}

func TestService_ProcessNextChunk_SavesCursorBetweenPages(t *testing.T) {
	f := newFixture(t, sync.Config{})

	job := testJob(30 * 24 * time.Hour)
	next := "txn_99"

	f.repo.EXPECT().ClaimNextJob(gomock.Any()).Return(job, nil)
	f.connections.EXPECT().GetConnection(gomock.Any(), job.ConnectionID).
		Return(&connection.Connection{ID: job.ConnectionID}, nil)
	f.adapters.EXPECT().Adapter(provider.Stripe).Return(adapterFunc(
		func(context.Context, *connection.Connection, time.Time, time.Time, *string) (*provider.Page, error) {
			return &provider.Page{
				Transactions: []*transaction.Transaction{{ID: "stripe-txn_98"}},
				NextCursor:   &next,
			}, nil
		}), nil)
	f.writer.EXPECT().Write(gomock.Any(), gomock.Any()).Return(int64(1), nil)
	f.repo.EXPECT().RescheduleJob(gomock.Any(), job.ID, &next, int64(1)).Return(nil)
	f.repo.EXPECT().UpdateSessionProgress(gomock.Any(), *job.SessionID, false).Return(nil)

	result, err := f.svc.ProcessNextChunk(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sync.StatusProcessed, result.Status)
	assert.True(t, result.HasMore)
}

func TestService_ProcessNextChunk_SplitsOversizedWindow(t *testing.T) {
	f := newFixture(t, sync.Config{})

	job := testJob(30 * 24 * time.Hour)
	wantMidpoint := job.ChunkStart.Add(15 * 24 * time.Hour)

	f.repo.EXPECT().ClaimNextJob(gomock.Any()).Return(job, nil)
	f.connections.EXPECT().GetConnection(gomock.Any(), job.ConnectionID).
		Return(&connection.Connection{ID: job.ConnectionID}, nil)
	f.adapters.EXPECT().Adapter(provider.Stripe).Return(adapterFunc(
		func(context.Context, *connection.Connection, time.Time, time.Time, *string) (*provider.Page, error) {
			return nil, &provider.TooManyResultsError{Provider: provider.Stripe, Detail: "too dense"}
		}), nil)
	f.repo.EXPECT().SplitJob(gomock.Any(), job.ID, wantMidpoint).
		Return(&sync.Job{ID: uuid.New()}, nil)
	f.repo.EXPECT().UpdateSessionProgress(gomock.Any(), *job.SessionID, false).Return(nil)

	result, err := f.svc.ProcessNextChunk(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sync.StatusProcessed, result.Status)
	assert.True(t, result.HasMore)
}

func TestService_ProcessNextChunk_FailsAtSplitFloor(t *testing.T) {
	f := newFixture(t, sync.Config{})

	job := testJob(24 * time.Hour)

	f.repo.EXPECT().ClaimNextJob(gomock.Any()).Return(job, nil)
	f.connections.EXPECT().GetConnection(gomock.Any(), job.ConnectionID).
		Return(&connection.Connection{ID: job.ConnectionID}, nil)
	f.adapters.EXPECT().Adapter(provider.Stripe).Return(adapterFunc(
		func(context.Context, *connection.Connection, time.Time, time.Time, *string) (*provider.Page, error) {
			return nil, &provider.TooManyResultsError{Provider: provider.Stripe, Detail: "too dense"}
		}), nil)
	f.repo.EXPECT().FailJob(gomock.Any(), job.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, errMsg string) error {
			assert.Contains(t, errMsg, "1-day floor")
			return nil
		})
	f.repo.EXPECT().UpdateSessionProgress(gomock.Any(), *job.SessionID, false).Return(nil)

	result, err := f.svc.ProcessNextChunk(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sync.StatusError, result.Status)
	assert.False(t, result.HasMore)
}

// A job whose window keeps overflowing is bisected until it reaches the
// one-day floor, then fails instead of splitting forever.
func TestService_ProcessNextChunk_SplitterTerminates(t *testing.T) {
	f := newFixture(t, sync.Config{})

	window := 64 * 24 * time.Hour
	maxSplits := 7 // ceil(log2(64 days / 1 day)) + slack

	tooLarge := adapterFunc(
		func(context.Context, *connection.Connection, time.Time, time.Time, *string) (*provider.Page, error) {
			return nil, &provider.TooManyResultsError{Provider: provider.Wise, Detail: "over the row ceiling"}
		})

	splits := 0
	failed := false

	for i := 0; i < maxSplits+1; i++ {
		job := testJob(window)
		job.Provider = provider.Wise

		f.repo.EXPECT().ClaimNextJob(gomock.Any()).Return(job, nil)
		f.connections.EXPECT().GetConnection(gomock.Any(), job.ConnectionID).
			Return(&connection.Connection{ID: job.ConnectionID}, nil)
		f.adapters.EXPECT().Adapter(provider.Wise).Return(tooLarge, nil)
		f.repo.EXPECT().UpdateSessionProgress(gomock.Any(), *job.SessionID, false).Return(nil)

		if window > 24*time.Hour {
			f.repo.EXPECT().SplitJob(gomock.Any(), job.ID, gomock.Any()).Return(&sync.Job{ID: uuid.New()}, nil)
		} else {
			f.repo.EXPECT().FailJob(gomock.Any(), job.ID, gomock.Any()).Return(nil)
		}

		result, err := f.svc.ProcessNextChunk(context.Background())
		require.NoError(t, err)

		if window <= 24*time.Hour {
			assert.Equal(t, sync.StatusError, result.Status)

			failed = true

			break
		}

		splits++
		window /= 2
	}

	assert.True(t, failed, "splitting never terminated")
	assert.Equal(t, 6, splits) // 64d -> 32 -> 16 -> 8 -> 4 -> 2 -> 1
}

func TestService_ProcessNextChunk_TransientFaultRetries(t *testing.T) {
	f := newFixture(t, sync.Config{})

	job := testJob(30 * 24 * time.Hour)
	job.Attempts = 2

	before := time.Now()

	f.repo.EXPECT().ClaimNextJob(gomock.Any()).Return(job, nil)
	f.connections.EXPECT().GetConnection(gomock.Any(), job.ConnectionID).
		Return(&connection.Connection{ID: job.ConnectionID}, nil)
	f.adapters.EXPECT().Adapter(provider.Stripe).Return(adapterFunc(
		func(context.Context, *connection.Connection, time.Time, time.Time, *string) (*provider.Page, error) {
			return nil, errors.New("status 503")
		}), nil)
	f.repo.EXPECT().RetryJob(gomock.Any(), job.ID, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, errMsg string, nextRetryAt time.Time) error {
			assert.Contains(t, errMsg, "status 503")
			// 2 prior attempts: backoff is 4 minutes.
			assert.WithinDuration(t, before.Add(4*time.Minute), nextRetryAt, 5*time.Second)
			return nil
		})
	f.repo.EXPECT().UpdateSessionProgress(gomock.Any(), *job.SessionID, false).Return(nil)

	result, err := f.svc.ProcessNextChunk(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sync.StatusError, result.Status)
	assert.True(t, result.HasMore)
}

func TestService_ProcessNextChunk_ExhaustedAttemptsFail(t *testing.T) {
	f := newFixture(t, sync.Config{})

	job := testJob(30 * 24 * time.Hour)
	job.Attempts = 5
	job.MaxAttempts = 5

	f.repo.EXPECT().ClaimNextJob(gomock.Any()).Return(job, nil)
	f.connections.EXPECT().GetConnection(gomock.Any(), job.ConnectionID).
		Return(&connection.Connection{ID: job.ConnectionID}, nil)
	f.adapters.EXPECT().Adapter(provider.Stripe).Return(adapterFunc(
		func(context.Context, *connection.Connection, time.Time, time.Time, *string) (*provider.Page, error) {
			return nil, errors.New("timeout")
		}), nil)
	f.repo.EXPECT().FailJob(gomock.Any(), job.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, errMsg string) error {
			assert.Contains(t, errMsg, "after 5 attempts")
			return nil
		})
	f.repo.EXPECT().UpdateSessionProgress(gomock.Any(), *job.SessionID, false).Return(nil)

	result, err := f.svc.ProcessNextChunk(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sync.StatusError, result.Status)
}

func TestService_ProcessNextChunk_AuthFaultIsTerminal(t *testing.T) {
	f := newFixture(t, sync.Config{})

	job := testJob(30 * 24 * time.Hour)
	job.Attempts = 1 // plenty of attempts left, auth faults skip them all

	f.repo.EXPECT().ClaimNextJob(gomock.Any()).Return(job, nil)
	f.connections.EXPECT().GetConnection(gomock.Any(), job.ConnectionID).
		Return(&connection.Connection{ID: job.ConnectionID}, nil)
	f.adapters.EXPECT().Adapter(provider.Stripe).Return(adapterFunc(
		func(context.Context, *connection.Connection, time.Time, time.Time, *string) (*provider.Page, error) {
			return nil, &provider.AuthError{Provider: provider.Stripe, Detail: "status 401"}
		}), nil)
	f.repo.EXPECT().FailJob(gomock.Any(), job.ID, gomock.Any()).Return(nil)
	f.repo.EXPECT().UpdateSessionProgress(gomock.Any(), *job.SessionID, false).Return(nil)

	result, err := f.svc.ProcessNextChunk(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sync.StatusError, result.Status)
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 2*time.Minute, sync.Backoff(1))
	assert.Equal(t, 4*time.Minute, sync.Backoff(2))
	assert.Equal(t, 32*time.Minute, sync.Backoff(5))

	// Strictly monotonic over the whole retryable range.
	for k := 1; k < 10; k++ {
		assert.Greater(t, sync.Backoff(k+1), sync.Backoff(k))
	}

	// Clamped so absurd attempt counts stay bounded.
	assert.Equal(t, sync.Backoff(10), sync.Backoff(50))
}

func TestService_StartHistoricalSync(t *testing.T) {
	f := newFixture(t, sync.Config{ChunkDays: 30, MaxAttempts: 5})

	connID := uuid.New()

	f.connections.EXPECT().GetConnection(gomock.Any(), connID).
		Return(&connection.Connection{ID: connID, Provider: provider.PayPal}, nil)
	f.repo.EXPECT().CreateSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, session *sync.Session) error {
			session.ID = uuid.New()
			return nil
		})
	f.repo.EXPECT().CreateJobs(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, jobs []*sync.Job) error {
			// PayPal looks back 3 years: ceil(1095 / 30) chunks.
			require.Len(t, jobs, 37)

			for i, job := range jobs {
				assert.Equal(t, sync.JobTypeHistorical, job.Type)
				assert.Equal(t, sync.PriorityHistorical, job.Priority)
				assert.NotNil(t, job.SessionID)
				assert.True(t, job.ChunkStart.Before(job.ChunkEnd))

				if i > 0 {
					assert.Equal(t, jobs[i-1].ChunkEnd, job.ChunkStart, "chunks must tile the window")
				}
			}

			return nil
		})

	session, err := f.svc.StartHistoricalSync(context.Background(), connID)
	require.NoError(t, err)
	assert.Equal(t, 37, session.TotalChunks)
	assert.Equal(t, sync.SessionRunning, session.Status)
	assert.Equal(t, sync.SyncHistorical, session.SyncType)
}

func TestService_ScheduleIncrementalSync(t *testing.T) {
	f := newFixture(t, sync.Config{ChunkDays: 30, MaxAttempts: 5})

	lastSynced := time.Now().UTC().Add(-6 * time.Hour)
	conn := &connection.Connection{ID: uuid.New(), Provider: provider.Wise, LastSyncedAt: &lastSynced}

	f.repo.EXPECT().CreateSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, session *sync.Session) error {
			assert.Equal(t, sync.SyncIncremental, session.SyncType)
			assert.Equal(t, 1, session.TotalChunks)

			session.ID = uuid.New()

			return nil
		})
	f.repo.EXPECT().CreateJobs(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, jobs []*sync.Job) error {
			require.Len(t, jobs, 1)
			assert.Equal(t, sync.JobTypeIncremental, jobs[0].Type)
			assert.Equal(t, sync.PriorityIncremental, jobs[0].Priority)
			// Re-fetches one hour before the last sync boundary.
			assert.Equal(t, lastSynced.Add(-time.Hour), jobs[0].ChunkStart)

			return nil
		})

	_, err := f.svc.ScheduleIncrementalSync(context.Background(), conn)
	require.NoError(t, err)
}

func TestService_EnqueueWebhookJob(t *testing.T) {
	f := newFixture(t, sync.Config{MaxAttempts: 5})

	connID := uuid.New()

	f.repo.EXPECT().CreateJobs(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, jobs []*sync.Job) error {
			require.Len(t, jobs, 1)
			assert.Equal(t, sync.JobTypeWebhook, jobs[0].Type)
			assert.Equal(t, sync.PriorityWebhook, jobs[0].Priority)
			assert.Nil(t, jobs[0].SessionID)
			assert.Equal(t, 2*time.Hour, jobs[0].Window())

			return nil
		})

	job, err := f.svc.EnqueueWebhookJob(context.Background(), connID, provider.Stripe)
	require.NoError(t, err)
	assert.Equal(t, connID, job.ConnectionID)
}

func TestService_SyncNow(t *testing.T) {
	f := newFixture(t, sync.Config{ChunkDays: 30})

	connID := uuid.New()
	conn := &connection.Connection{ID: connID, Provider: provider.Stripe}
	next := "txn_50"

	calls := 0

	f.connections.EXPECT().GetConnection(gomock.Any(), connID).Return(conn, nil)
	f.adapters.EXPECT().Adapter(provider.Stripe).Return(adapterFunc(
		func(_ context.Context, _ *connection.Connection, _, _ time.Time, cursor *string) (*provider.Page, error) {
			calls++
			if calls == 1 {
				assert.Nil(t, cursor)
				return &provider.Page{
					Transactions: []*transaction.Transaction{{ID: "stripe-txn_49"}},
					NextCursor:   &next,
				}, nil
			}

			assert.Equal(t, &next, cursor)

			return &provider.Page{Transactions: []*transaction.Transaction{{ID: "stripe-txn_50"}}}, nil
		}), nil)
	f.writer.EXPECT().Write(gomock.Any(), gomock.Any()).Return(int64(1), nil).Times(2)
	f.connections.EXPECT().UpdateLastSyncedAt(gomock.Any(), connID, gomock.Any()).Return(nil)

	result, err := f.svc.SyncNow(context.Background(), connID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.RecordsInserted)
	assert.Equal(t, 2, result.Pages)
}

func TestService_ReclaimStaleJobs(t *testing.T) {
	f := newFixture(t, sync.Config{LeaseTimeout: 15 * time.Minute})

	f.repo.EXPECT().ReclaimStaleJobs(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, olderThan time.Time) (int64, error) {
			assert.WithinDuration(t, time.Now().Add(-15*time.Minute), olderThan, 5*time.Second)
			return 3, nil
		})

	reclaimed, err := f.svc.ReclaimStaleJobs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), reclaimed)
}

func TestService_ReclaimStaleJobs_DisabledWithoutTimeout(t *testing.T) {
	f := newFixture(t, sync.Config{})

	reclaimed, err := f.svc.ReclaimStaleJobs(context.Background())
	require.NoError(t, err)
	assert.Zero(t, reclaimed)
}
