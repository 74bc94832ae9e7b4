package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/driftwoodhq/ledgersync/internal/connection"
	"github.com/driftwoodhq/ledgersync/internal/provider"
	"github.com/driftwoodhq/ledgersync/internal/transaction"
)

const defaultBaseURL = "https://api.stripe.com"

const pageLimit = 100

// Adapter fetches balance transactions from the Stripe API. Authentication is
// basic auth with the connection's secret key as the username.
type Adapter struct {
	client  *http.Client
	baseURL string
}

func New() *Adapter {
	return NewWithBaseURL(defaultBaseURL)
}

func NewWithBaseURL(baseURL string) *Adapter {
	return &Adapter{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
	}
}

type balanceTransaction struct {
	ID                string `json:"id"`
	Amount            int64  `json:"amount"`
	Currency          string `json:"currency"`
	Description       string `json:"description"`
	Type              string `json:"type"`
	Created           int64  `json:"created"`
	ReportingCategory string `json:"reporting_category"`
}

type listResponse struct {
	Data    []balanceTransaction `json:"data"`
	HasMore bool                 `json:"has_more"`
}

func (a *Adapter) FetchPage(ctx context.Context, conn *connection.Connection, windowStart, windowEnd time.Time, cursor *string) (*provider.Page, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(pageLimit))
	q.Set("created[gte]", strconv.FormatInt(windowStart.Unix(), 10))
	q.Set("created[lt]", strconv.FormatInt(windowEnd.Unix(), 10))

	if cursor != nil {
		q.Set("starting_after", *cursor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		a.baseURL+"/v1/balance_transactions?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.SetBasicAuth(conn.APIKey, "")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &provider.AuthError{Provider: provider.Stripe, Detail: fmt.Sprintf("status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status %d listing balance transactions", resp.StatusCode)
	}

	var list listResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	page := &provider.Page{
		Transactions: make([]*transaction.Transaction, 0, len(list.Data)),
	}

	for _, bt := range list.Data {
		page.Transactions = append(page.Transactions, normalize(conn, bt))
	}

	if list.HasMore && len(list.Data) > 0 {
		last := list.Data[len(list.Data)-1].ID
		page.NextCursor = &last
	}

	return page, nil
}

// payoutTypes are balance transaction types that represent money moving
// between Stripe and the linked bank account, not revenue or expense.
var payoutTypes = map[string]struct{}{
	"payout":              {},
	"payout_cancel":       {},
	"payout_failure":      {},
	"transfer":            {},
	"reserve_transaction": {},
	"reserved_funds":      {},
}

func normalize(conn *connection.Connection, bt balanceTransaction) *transaction.Transaction {
	amount := provider.AmountFromMinorUnits(bt.Amount, bt.Currency)

	txType := transaction.TypeInflow
	if bt.Amount < 0 {
		txType = transaction.TypeOutflow
	}

	if _, isPayout := payoutTypes[bt.Type]; isPayout {
		txType = transaction.TypeTransfer
	}

	desc := bt.Description
	if desc == "" {
		desc = bt.Type
	}

	connID := conn.ID

	return &transaction.Transaction{
		ID:           transaction.NativeID(provider.Stripe, bt.ID),
		ConnectionID: &connID,
		Date:         time.Unix(bt.Created, 0).UTC(),
		Amount:       amount.Abs(),
		Currency:     bt.Currency,
		Description:  desc,
		Type:         txType,
		Account:      conn.AccountName,
		Category:     bt.ReportingCategory,
	}
}
