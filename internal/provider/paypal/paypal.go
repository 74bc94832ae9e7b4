package paypal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/driftwoodhq/ledgersync/internal/connection"
	"github.com/driftwoodhq/ledgersync/internal/provider"
	"github.com/driftwoodhq/ledgersync/internal/transaction"
)

const (
	liveBaseURL    = "https://api-m.paypal.com"
	sandboxBaseURL = "https://api-m.sandbox.paypal.com"
)

const pageSize = 100

// Adapter fetches transactions from the PayPal reporting API. A fresh OAuth2
// client-credentials token is obtained per call; PayPal tokens are
// short-lived and jobs can sit idle between pages for longer than they last.
type Adapter struct {
	baseURL string // overrides environment selection when non-empty, for tests
}

func New() *Adapter {
	return &Adapter{}
}

func NewWithBaseURL(baseURL string) *Adapter {
	return &Adapter{baseURL: baseURL}
}

func (a *Adapter) resolveBaseURL(conn *connection.Connection) string {
	if a.baseURL != "" {
		return a.baseURL
	}

	if conn.Environment == "sandbox" {
		return sandboxBaseURL
	}

	return liveBaseURL
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type transactionInfo struct {
	TransactionID             string `json:"transaction_id"`
	TransactionEventCode      string `json:"transaction_event_code"`
	TransactionInitiationDate string `json:"transaction_initiation_date"`
	TransactionAmount         amount `json:"transaction_amount"`
	TransactionSubject        string `json:"transaction_subject"`
	EndingBalance             amount `json:"ending_balance"`
}

type transactionDetail struct {
	TransactionInfo transactionInfo `json:"transaction_info"`
}

type searchResponse struct {
	TransactionDetails []transactionDetail `json:"transaction_details"`
	TotalPages         int                 `json:"total_pages"`
	Page               int                 `json:"page"`
}

type apiError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (a *Adapter) FetchPage(ctx context.Context, conn *connection.Connection, windowStart, windowEnd time.Time, cursor *string) (*provider.Page, error) {
	baseURL := a.resolveBaseURL(conn)

	client, err := a.tokenClient(ctx, conn, baseURL)
	if err != nil {
		return nil, err
	}

	page := 1

	if cursor != nil {
		page, err = strconv.Atoi(*cursor)
		if err != nil {
			return nil, fmt.Errorf("parsing page cursor %q: %w", *cursor, err)
		}
	}

	q := url.Values{}
	q.Set("start_date", windowStart.UTC().Format(time.RFC3339))
	q.Set("end_date", windowEnd.UTC().Format(time.RFC3339))
	q.Set("page_size", strconv.Itoa(pageSize))
	q.Set("page", strconv.Itoa(page))
	q.Set("fields", "transaction_info")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		baseURL+"/v1/reporting/transactions?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, a.mapError(resp)
	}

	var search searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	result := &provider.Page{
		Transactions: make([]*transaction.Transaction, 0, len(search.TransactionDetails)),
	}

	for _, detail := range search.TransactionDetails {
		tx, err := normalize(conn, detail.TransactionInfo)
		if err != nil {
			return nil, err
		}

		result.Transactions = append(result.Transactions, tx)
	}

	if search.Page < search.TotalPages {
		next := strconv.Itoa(search.Page + 1)
		result.NextCursor = &next
	}

	return result, nil
}

// tokenClient exchanges the connection's client credentials for a bearer
// token and returns an http.Client that attaches it.
func (a *Adapter) tokenClient(ctx context.Context, conn *connection.Connection, baseURL string) (*http.Client, error) {
	cfg := &clientcredentials.Config{
		ClientID:     conn.ClientID,
		ClientSecret: conn.ClientSecret,
		TokenURL:     baseURL + "/v1/oauth2/token",
	}

	if _, err := cfg.Token(ctx); err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response.StatusCode == http.StatusUnauthorized {
			return nil, &provider.AuthError{Provider: provider.PayPal, Detail: "invalid client credentials"}
		}

		return nil, fmt.Errorf("fetching token: %w", err)
	}

	return cfg.Client(ctx), nil
}

func (a *Adapter) mapError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var apiErr apiError
	_ = json.Unmarshal(body, &apiErr)

	switch {
	case apiErr.Name == "RESULT_SET_TOO_LARGE":
		return &provider.TooManyResultsError{Provider: provider.PayPal, Detail: apiErr.Message}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &provider.AuthError{Provider: provider.PayPal, Detail: apiErr.Message}
	default:
		return fmt.Errorf("unexpected status %d searching transactions: %s", resp.StatusCode, apiErr.Name)
	}
}

func normalize(conn *connection.Connection, info transactionInfo) (*transaction.Transaction, error) {
	value, err := decimal.NewFromString(info.TransactionAmount.Value)
	if err != nil {
		return nil, fmt.Errorf("parsing amount %q for transaction %s: %w", info.TransactionAmount.Value, info.TransactionID, err)
	}

	date, err := time.Parse(time.RFC3339, info.TransactionInitiationDate)
	if err != nil {
		return nil, fmt.Errorf("parsing date %q for transaction %s: %w", info.TransactionInitiationDate, info.TransactionID, err)
	}

	txType := transaction.TypeInflow
	if value.IsNegative() {
		txType = transaction.TypeOutflow
	}

	if isBankMovement(info.TransactionEventCode) {
		txType = transaction.TypeTransfer
	}

	desc := info.TransactionSubject
	if desc == "" {
		desc = info.TransactionEventCode
	}

	tx := &transaction.Transaction{
		ID:           transaction.NativeID(provider.PayPal, info.TransactionID),
		ConnectionID: &conn.ID,
		Date:         date.UTC(),
		Amount:       value.Abs(),
		Currency:     info.TransactionAmount.CurrencyCode,
		Description:  desc,
		Type:         txType,
		Account:      conn.AccountName,
	}

	if info.EndingBalance.Value != "" {
		if balance, err := decimal.NewFromString(info.EndingBalance.Value); err == nil {
			tx.RunningBalance = &balance
		}
	}

	return tx, nil
}

// isBankMovement reports whether the event code is a deposit to (T03xx) or
// withdrawal from (T04xx) a linked bank account.
func isBankMovement(eventCode string) bool {
	return strings.HasPrefix(eventCode, "T03") || strings.HasPrefix(eventCode, "T04")
}
