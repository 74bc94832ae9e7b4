package sync

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

type JobType string

const (
	JobTypeHistorical  JobType = "historical"
	JobTypeIncremental JobType = "incremental"
	JobTypeWebhook     JobType = "webhook"
)

// Lower priority values are claimed first.
const (
	PriorityWebhook     = 0
	PriorityIncremental = 5
	PriorityHistorical  = 10
)

// Job is the atomic unit of sync work: one provider, one time window, one
// pagination position. A running job holds a claim timestamp; the claim
// protocol guarantees no two workers ever run the same job concurrently.
type Job struct {
	ID           uuid.UUID
	ConnectionID uuid.UUID
	SessionID    *uuid.UUID
	Provider     string
	Type         JobType
	Status       JobStatus

	// Half-open window [ChunkStart, ChunkEnd) this job covers. The splitter
	// only ever shrinks it.
	ChunkStart time.Time
	ChunkEnd   time.Time

	// Opaque provider pagination token; nil means start of window.
	Cursor *string

	Priority         int
	Attempts         int
	MaxAttempts      int
	NextRetryAt      *time.Time
	RecordsProcessed int64
	ErrorMessage     string
	ClaimedAt        *time.Time
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}

// Window returns the job's current chunk duration.
func (j *Job) Window() time.Duration {
	return j.ChunkEnd.Sub(j.ChunkStart)
}

type SessionStatus string

const (
	SessionRunning   SessionStatus = "running"
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
)

type SyncType string

const (
	SyncHistorical  SyncType = "historical"
	SyncIncremental SyncType = "incremental"
)

// Session groups the jobs of one coherent sync operation for progress
// reporting. TotalChunks can grow while the session runs, because splitting
// an oversized chunk adds a sibling job.
type Session struct {
	ID              uuid.UUID
	ConnectionID    uuid.UUID
	Provider        string
	SyncType        SyncType
	Status          SessionStatus
	TotalChunks     int
	CompletedChunks int
	TotalRecords    int64
	Note            string
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}
