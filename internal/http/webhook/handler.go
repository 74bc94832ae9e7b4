package webhook

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/driftwoodhq/ledgersync/internal/webhook"
)

// maxBodySize bounds inbound payloads; provider events are small.
const maxBodySize = 1 << 20

type Handler struct {
	svc *webhook.Service
}

func NewHandler(svc *webhook.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/{provider}", h.ingest)
}

type ingestResponse struct {
	Received bool   `json:"received"`
	EventID  string `json:"event_id,omitempty"`
	Queued   bool   `json:"queued"`
}

// ingest always answers 200: providers retry aggressively on anything else,
// and a rejected event is recorded in the body, not the status code.
func (h *Handler) ingest(w http.ResponseWriter, r *http.Request) {
	providerName := chi.URLParam(r, "provider")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		slog.Warn("failed to read webhook body", "provider", providerName, "error", err)
		h.respond(w, ingestResponse{Received: true})

		return
	}

	result, err := h.svc.Ingest(r.Context(), providerName, body, r.Header)
	if err != nil {
		slog.Error("webhook ingestion failed", "provider", providerName, "error", err)

		resp := ingestResponse{Received: true}
		if result != nil {
			resp.EventID = result.EventID
		}

		h.respond(w, resp)

		return
	}

	h.respond(w, ingestResponse{
		Received: true,
		EventID:  result.EventID,
		Queued:   result.Queued,
	})
}

func (h *Handler) respond(w http.ResponseWriter, resp ingestResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
