package sync

import (
	"context"
	"log/slog"
	"time"
)

// maxChunksPerTick bounds one drain pass so a deep backlog cannot starve the
// stale-lease sweep and incremental enqueueing.
const maxChunksPerTick = 100

// Scheduler drives the chunk processor from a timer: each tick it sweeps
// expired leases and drains the queue one page at a time; on a slower
// interval it enqueues an incremental job per connection.
type Scheduler struct {
	svc                 *Service
	connections         ConnectionSource
	pollInterval        time.Duration
	incrementalInterval time.Duration
}

func NewScheduler(svc *Service, connections ConnectionSource, pollInterval, incrementalInterval time.Duration) *Scheduler {
	return &Scheduler{
		svc:                 svc,
		connections:         connections,
		pollInterval:        pollInterval,
		incrementalInterval: incrementalInterval,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	slog.Info("scheduler started",
		"poll_interval", s.pollInterval, "incremental_interval", s.incrementalInterval)

	poll := time.NewTicker(s.pollInterval)
	defer poll.Stop()

	incremental := time.NewTicker(s.incrementalInterval)
	defer incremental.Stop()

	// Drain whatever was left over from a previous run before the first tick.
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler shutting down")
			return ctx.Err()
		case <-incremental.C:
			s.enqueueIncrementals(ctx)
		case <-poll.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if _, err := s.svc.ReclaimStaleJobs(ctx); err != nil {
		slog.Error("stale job sweep failed", "error", err)
	}

	for i := 0; i < maxChunksPerTick; i++ {
		result, err := s.svc.ProcessNextChunk(ctx)
		if err != nil {
			slog.Error("processing chunk failed", "error", err)
			return
		}

		if result.Status == StatusIdle {
			return
		}

		if ctx.Err() != nil {
			return
		}
	}
}

func (s *Scheduler) enqueueIncrementals(ctx context.Context) {
	conns, err := s.connections.ListConnections(ctx)
	if err != nil {
		slog.Error("listing connections for incremental sync failed", "error", err)
		return
	}

	for _, conn := range conns {
		if _, err := s.svc.ScheduleIncrementalSync(ctx, conn); err != nil {
			slog.Error("scheduling incremental sync failed",
				"connection_id", conn.ID, "provider", conn.Provider, "error", err)
		}
	}
}
