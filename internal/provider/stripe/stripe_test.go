package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftwoodhq/ledgersync/internal/connection"
	"github.com/driftwoodhq/ledgersync/internal/provider"
	"github.com/driftwoodhq/ledgersync/internal/transaction"
)

func testConn() *connection.Connection {
	return &connection.Connection{
		ID:          uuid.New(),
		Provider:    provider.Stripe,
		AccountName: "Acme Stripe",
		APIKey:      "sk_test_123",
	}
}

func TestAdapter_FetchPage(t *testing.T) {
	windowStart := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	windowEnd := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/balance_transactions", r.URL.Path)

		username, _, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "sk_test_123", username)

		q := r.URL.Query()
		assert.Equal(t, fmt.Sprint(windowStart.Unix()), q.Get("created[gte]"))
		assert.Equal(t, fmt.Sprint(windowEnd.Unix()), q.Get("created[lt]"))
		assert.Equal(t, "100", q.Get("limit"))
		assert.Empty(t, q.Get("starting_after"))

		fmt.Fprint(w, `{
			"data": [
				{"id": "txn_1", "amount": 1999, "currency": "usd", "description": "Subscription", "type": "charge", "created": 1713960000, "reporting_category": "charge"},
				{"id": "txn_2", "amount": -550, "currency": "usd", "description": "Refund for order", "type": "refund", "created": 1713963600, "reporting_category": "refund"},
				{"id": "txn_3", "amount": -120000, "currency": "usd", "description": "", "type": "payout", "created": 1713967200, "reporting_category": "payout"},
				{"id": "txn_4", "amount": 5000, "currency": "jpy", "description": "JPY charge", "type": "charge", "created": 1713970800, "reporting_category": "charge"}
			],
			"has_more": false
		}`)
	}))
	defer server.Close()

	adapter := NewWithBaseURL(server.URL)
	conn := testConn()

	page, err := adapter.FetchPage(context.Background(), conn, windowStart, windowEnd, nil)
	require.NoError(t, err)
	require.Len(t, page.Transactions, 4)
	assert.Nil(t, page.NextCursor)

	charge := page.Transactions[0]
	assert.Equal(t, "stripe-txn_1", charge.ID)
	assert.Equal(t, conn.ID, *charge.ConnectionID)
	assert.Equal(t, "19.99", charge.Amount.String())
	assert.Equal(t, transaction.TypeInflow, charge.Type)
	assert.Equal(t, "Subscription", charge.Description)
	assert.Equal(t, "Acme Stripe", charge.Account)
	assert.Equal(t, time.Unix(1713960000, 0).UTC(), charge.Date)

	refund := page.Transactions[1]
	assert.Equal(t, "5.5", refund.Amount.String())
	assert.Equal(t, transaction.TypeOutflow, refund.Type)

	payout := page.Transactions[2]
	assert.Equal(t, transaction.TypeTransfer, payout.Type)
	assert.Equal(t, "payout", payout.Description, "type stands in for a blank description")

	// JPY is zero-decimal: the raw amount already is whole units.
	jpy := page.Transactions[3]
	assert.Equal(t, "5000", jpy.Amount.String())
}

func TestAdapter_FetchPage_Cursor(t *testing.T) {
	var sawCursor string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawCursor = r.URL.Query().Get("starting_after")

		fmt.Fprint(w, `{
			"data": [{"id": "txn_9", "amount": 100, "currency": "usd", "type": "charge", "created": 1713960000}],
			"has_more": true
		}`)
	}))
	defer server.Close()

	adapter := NewWithBaseURL(server.URL)

	cursor := "txn_8"

	page, err := adapter.FetchPage(context.Background(), testConn(), time.Now().Add(-time.Hour), time.Now(), &cursor)
	require.NoError(t, err)
	assert.Equal(t, "txn_8", sawCursor)
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, "txn_9", *page.NextCursor, "cursor advances to the last id of the page")
}

func TestAdapter_FetchPage_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	adapter := NewWithBaseURL(server.URL)

	_, err := adapter.FetchPage(context.Background(), testConn(), time.Now().Add(-time.Hour), time.Now(), nil)

	var authErr *provider.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, provider.Stripe, authErr.Provider)
}

func TestAdapter_FetchPage_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	adapter := NewWithBaseURL(server.URL)

	_, err := adapter.FetchPage(context.Background(), testConn(), time.Now().Add(-time.Hour), time.Now(), nil)
	require.Error(t, err)

	var authErr *provider.AuthError
	assert.False(t, errors.As(err, &authErr), "a 500 is transient, not an auth fault")
}
