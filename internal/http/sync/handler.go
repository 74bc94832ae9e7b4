package sync

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/driftwoodhq/ledgersync/internal/sync"
)

type Handler struct {
	svc *sync.Service
}

func NewHandler(svc *sync.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/historical", h.startHistorical)
	r.Post("/process", h.processNext)
	r.Post("/now", h.syncNow)
}

func (h *Handler) SessionRoutes(r chi.Router) {
	r.Get("/{id}", h.getSession)
	r.Get("/{id}/jobs", h.listSessionJobs)
}

type startHistoricalRequest struct {
	ConnectionID uuid.UUID `json:"connection_id"`
}

type startHistoricalResponse struct {
	SessionID    uuid.UUID `json:"session_id"`
	ChunksQueued int       `json:"chunks_queued"`
}

func (h *Handler) startHistorical(w http.ResponseWriter, r *http.Request) {
	var req startHistoricalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	session, err := h.svc.StartHistoricalSync(r.Context(), req.ConnectionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, startHistoricalResponse{
		SessionID:    session.ID,
		ChunksQueued: session.TotalChunks,
	})
}

type processResponse struct {
	Status          string     `json:"status"`
	JobID           *uuid.UUID `json:"job_id,omitempty"`
	RecordsInserted int64      `json:"records_inserted"`
	HasMore         bool       `json:"has_more"`
	Error           string     `json:"error,omitempty"`
}

// processNext executes exactly one unit of queued work. External schedulers
// call it repeatedly until the status comes back idle. Faults surface inside
// the structured body, never as a non-2xx response.
func (h *Handler) processNext(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ProcessNextChunk(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, processResponse{
			Status: string(sync.StatusError),
			Error:  err.Error(),
		})

		return
	}

	writeJSON(w, http.StatusOK, processResponse{
		Status:          string(result.Status),
		JobID:           result.JobID,
		RecordsInserted: result.RecordsInserted,
		HasMore:         result.HasMore,
		Error:           result.Error,
	})
}

type syncNowRequest struct {
	ConnectionID uuid.UUID `json:"connection_id"`
	FullSync     bool      `json:"full_sync"`
}

type syncNowResponse struct {
	RecordsInserted int64 `json:"records_inserted"`
	Pages           int   `json:"pages"`
}

func (h *Handler) syncNow(w http.ResponseWriter, r *http.Request) {
	var req syncNowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.svc.SyncNow(r.Context(), req.ConnectionID, req.FullSync)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, syncNowResponse{
		RecordsInserted: result.RecordsInserted,
		Pages:           result.Pages,
	})
}

type sessionResponse struct {
	ID              uuid.UUID `json:"id"`
	ConnectionID    uuid.UUID `json:"connection_id"`
	Provider        string    `json:"provider"`
	SyncType        string    `json:"sync_type"`
	Status          string    `json:"status"`
	TotalChunks     int       `json:"total_chunks"`
	CompletedChunks int       `json:"completed_chunks"`
	TotalRecords    int64     `json:"total_records"`
	Note            string    `json:"note,omitempty"`
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	session, err := h.svc.GetSession(r.Context(), id)
	if err != nil {
		if errors.Is(err, sync.ErrSessionNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		ID:              session.ID,
		ConnectionID:    session.ConnectionID,
		Provider:        session.Provider,
		SyncType:        string(session.SyncType),
		Status:          string(session.Status),
		TotalChunks:     session.TotalChunks,
		CompletedChunks: session.CompletedChunks,
		TotalRecords:    session.TotalRecords,
		Note:            session.Note,
	})
}

type jobResponse struct {
	ID               uuid.UUID `json:"id"`
	Type             string    `json:"type"`
	Status           string    `json:"status"`
	ChunkStart       time.Time `json:"chunk_start"`
	ChunkEnd         time.Time `json:"chunk_end"`
	Attempts         int       `json:"attempts"`
	RecordsProcessed int64     `json:"records_processed"`
	ErrorMessage     string    `json:"error_message,omitempty"`
}

func (h *Handler) listSessionJobs(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	jobs, err := h.svc.ListSessionJobs(r.Context(), id)
	if err != nil {
		if errors.Is(err, sync.ErrSessionNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	resp := make([]jobResponse, 0, len(jobs))

	for _, job := range jobs {
		resp = append(resp, jobResponse{
			ID:               job.ID,
			Type:             string(job.Type),
			Status:           string(job.Status),
			ChunkStart:       job.ChunkStart,
			ChunkEnd:         job.ChunkEnd,
			Attempts:         job.Attempts,
			RecordsProcessed: job.RecordsProcessed,
			ErrorMessage:     job.ErrorMessage,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
