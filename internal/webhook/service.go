package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/driftwoodhq/ledgersync/internal/connection"
	"github.com/driftwoodhq/ledgersync/internal/provider"
	"github.com/driftwoodhq/ledgersync/internal/sync"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=webhook
type Ledger interface {
	// InsertEvent records (provider, event_id) in the idempotency ledger and
	// reports whether the event is new. A conflict is the dedup signal.
	InsertEvent(ctx context.Context, providerName, eventID string) (bool, error)

	PruneEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Queue interface {
	EnqueueWebhookJob(ctx context.Context, connectionID uuid.UUID, providerName string) (*sync.Job, error)
}

type ConnectionSource interface {
	ListConnectionsByProvider(ctx context.Context, providerName string) ([]*connection.Connection, error)
}

// Secrets holds per-provider webhook signing secrets. An empty secret
// disables verification for that provider.
type Secrets struct {
	Stripe string
	PayPal string
	Wise   string
}

// Service is the webhook ingestion gateway: it validates inbound provider
// events, deduplicates them by event id, and enqueues a small high-priority
// incremental job. Rejections are soft: providers retry aggressively on
// non-2xx responses, so the HTTP layer always answers 200.
type Service struct {
	ledger      Ledger
	queue       Queue
	connections ConnectionSource
	secrets     Secrets
}

func NewService(ledger Ledger, queue Queue, connections ConnectionSource, secrets Secrets) *Service {
	return &Service{
		ledger:      ledger,
		queue:       queue,
		connections: connections,
		secrets:     secrets,
	}
}

// Result is the structured outcome of one delivery. Received is always true;
// Reason explains a false Queued for logs and operators.
type Result struct {
	EventID string
	Queued  bool
	Reason  string
}

type event struct {
	id          string
	correlation string // provider account/profile hint for connection routing
}

func (s *Service) Ingest(ctx context.Context, providerName string, body []byte, headers http.Header) (*Result, error) {
	evt, err := extractEvent(providerName, body, headers)
	if err != nil {
		slog.Warn("ignoring malformed webhook payload", "provider", providerName, "error", err)
		return &Result{Reason: "malformed payload"}, nil
	}

	if evt.id == "" {
		slog.Warn("ignoring webhook without event id", "provider", providerName)
		return &Result{Reason: "missing event id"}, nil
	}

	fresh, err := s.ledger.InsertEvent(ctx, providerName, evt.id)
	if err != nil {
		return &Result{EventID: evt.id, Reason: "internal error"}, fmt.Errorf("recording event: %w", err)
	}

	if !fresh {
		slog.Info("duplicate webhook event", "provider", providerName, "event_id", evt.id)
		return &Result{EventID: evt.id, Reason: "already processed"}, nil
	}

	if err := s.verifySignature(providerName, body, headers); err != nil {
		slog.Warn("webhook signature rejected", "provider", providerName, "event_id", evt.id, "error", err)
		return &Result{EventID: evt.id, Reason: "invalid signature"}, nil
	}

	conn, err := s.resolveConnection(ctx, providerName, evt)
	if err != nil {
		return &Result{EventID: evt.id, Reason: "internal error"}, fmt.Errorf("resolving connection: %w", err)
	}

	if conn == nil {
		slog.Warn("no connection for webhook event", "provider", providerName, "event_id", evt.id)
		return &Result{EventID: evt.id, Reason: "no matching connection"}, nil
	}

	job, err := s.queue.EnqueueWebhookJob(ctx, conn.ID, providerName)
	if err != nil {
		return &Result{EventID: evt.id, Reason: "internal error"}, fmt.Errorf("enqueueing job: %w", err)
	}

	slog.Info("webhook event queued",
		"provider", providerName, "event_id", evt.id, "job_id", job.ID, "connection_id", conn.ID)

	return &Result{EventID: evt.id, Queued: true}, nil
}

// PruneOldEvents trims the idempotency ledger down to the retention window.
// The window must stay longer than any plausible provider retry interval.
func (s *Service) PruneOldEvents(ctx context.Context, retention time.Duration) error {
	pruned, err := s.ledger.PruneEventsBefore(ctx, time.Now().Add(-retention))
	if err != nil {
		return fmt.Errorf("pruning webhook events: %w", err)
	}

	if pruned > 0 {
		slog.Info("pruned webhook event ledger", "rows", pruned, "retention", retention)
	}

	return nil
}

type stripeEvent struct {
	ID      string `json:"id"`
	Account string `json:"account"`
}

type paypalEvent struct {
	ID string `json:"id"`
}

type wiseEvent struct {
	Data struct {
		Resource struct {
			ProfileID json.Number `json:"profile_id"`
		} `json:"resource"`
	} `json:"data"`
}

func extractEvent(providerName string, body []byte, headers http.Header) (*event, error) {
	switch providerName {
	case provider.Stripe:
		var evt stripeEvent
		if err := json.Unmarshal(body, &evt); err != nil {
			return nil, fmt.Errorf("parsing event: %w", err)
		}

		return &event{id: evt.ID, correlation: evt.Account}, nil

	case provider.PayPal:
		var evt paypalEvent
		if err := json.Unmarshal(body, &evt); err != nil {
			return nil, fmt.Errorf("parsing event: %w", err)
		}

		return &event{id: evt.ID}, nil

	case provider.Wise:
		// Wise identifies deliveries by header rather than payload.
		var evt wiseEvent
		if err := json.Unmarshal(body, &evt); err != nil {
			return nil, fmt.Errorf("parsing event: %w", err)
		}

		return &event{
			id:          headers.Get("X-Delivery-Id"),
			correlation: evt.Data.Resource.ProfileID.String(),
		}, nil

	default:
		return nil, fmt.Errorf("unknown provider %q", providerName)
	}
}

func (s *Service) secretFor(providerName string) string {
	switch providerName {
	case provider.Stripe:
		return s.secrets.Stripe
	case provider.PayPal:
		return s.secrets.PayPal
	case provider.Wise:
		return s.secrets.Wise
	default:
		return ""
	}
}

func (s *Service) verifySignature(providerName string, body []byte, headers http.Header) error {
	secret := s.secretFor(providerName)
	if secret == "" {
		return nil
	}

	switch providerName {
	case provider.Stripe:
		return verifyStripeSignature(secret, body, headers.Get("Stripe-Signature"))
	case provider.PayPal:
		return verifyHMACHex(secret, body, headers.Get("Paypal-Transmission-Sig"))
	case provider.Wise:
		return verifyHMACBase64(secret, body, headers.Get("X-Signature-SHA256"))
	default:
		return nil
	}
}

// resolveConnection routes the event to its owning connection. A correlation
// hint (Stripe account id, Wise profile id) wins; otherwise the gateway falls
// back to any connection for the provider, which is an intentionally weak
// policy flagged to operators.
func (s *Service) resolveConnection(ctx context.Context, providerName string, evt *event) (*connection.Connection, error) {
	conns, err := s.connections.ListConnectionsByProvider(ctx, providerName)
	if err != nil {
		return nil, err
	}

	if len(conns) == 0 {
		return nil, nil
	}

	if evt.correlation != "" {
		for _, conn := range conns {
			if conn.ProfileID == evt.correlation {
				return conn, nil
			}
		}
	}

	if len(conns) > 1 || evt.correlation != "" {
		slog.Warn("webhook routed by weak connection match",
			"provider", providerName, "event_id", evt.id,
			"correlation", evt.correlation, "connection_id", conns[0].ID)
	}

	return conns[0], nil
}
