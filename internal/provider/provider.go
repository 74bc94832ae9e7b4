package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/driftwoodhq/ledgersync/internal/connection"
	"github.com/driftwoodhq/ledgersync/internal/transaction"
)

const (
	Stripe = "stripe"
	PayPal = "paypal"
	Wise   = "wise"
)

// Page is one page of normalized transactions for a time window. A nil
// NextCursor means the window is exhausted; any non-nil cursor must be passed
// back unchanged on the next call for the same job.
type Page struct {
	Transactions []*transaction.Transaction
	NextCursor   *string
}

// Adapter fetches one page of transactions from a provider's API for the
// half-open window [windowStart, windowEnd).
type Adapter interface {
	FetchPage(ctx context.Context, conn *connection.Connection, windowStart, windowEnd time.Time, cursor *string) (*Page, error)
}

// TooManyResultsError reports that the provider refused the requested window
// because its matching row count exceeds the reporting API's limit. The
// caller is expected to bisect the window and try again.
type TooManyResultsError struct {
	Provider string
	Detail   string
}

func (e *TooManyResultsError) Error() string {
	return fmt.Sprintf("%s: result set too large for requested window: %s", e.Provider, e.Detail)
}

// AuthError reports invalid or expired credentials. Retrying cannot help, so
// jobs hitting it fail immediately.
type AuthError struct {
	Provider string
	Detail   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication failed: %s", e.Provider, e.Detail)
}

// Registry selects the adapter matching a job's provider field.
type Registry struct {
	adapters map[string]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

func (r *Registry) Register(name string, a Adapter) {
	r.adapters[name] = a
}

func (r *Registry) Adapter(name string) (Adapter, error) {
	a, ok := r.adapters[name]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for provider %q", name)
	}

	return a, nil
}
