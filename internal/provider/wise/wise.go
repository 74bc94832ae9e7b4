package wise

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/driftwoodhq/ledgersync/internal/connection"
	"github.com/driftwoodhq/ledgersync/internal/provider"
	"github.com/driftwoodhq/ledgersync/internal/transaction"
)

const defaultBaseURL = "https://api.transferwise.com"

// twoFactorHeader carries the one-time token of a step-up challenge. The
// retry echoes the token back together with its RSA-SHA256 signature.
const (
	twoFactorHeader = "X-2fa-Approval"
	signatureHeader = "X-Signature"
)

// Adapter fetches balance statements from the Wise API. Statements are not
// paginated: one call returns every line in the window, so NextCursor is
// always nil and oversized windows are rejected by the API instead.
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

type statementAmount struct {
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency"`
}

type statementDetails struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

type statementLine struct {
	Type            string           `json:"type"` // CREDIT or DEBIT
	Date            time.Time        `json:"date"`
	Amount          statementAmount  `json:"amount"`
	Details         statementDetails `json:"details"`
	RunningBalance  statementAmount  `json:"runningBalance"`
	ReferenceNumber string           `json:"referenceNumber"`
}

type statement struct {
	Transactions []statementLine `json:"transactions"`
}

type apiError struct {
	ErrorCode string `json:"error"`
	Message   string `json:"message"`
}

func (a *Adapter) FetchPage(ctx context.Context, conn *connection.Connection, windowStart, windowEnd time.Time, cursor *string) (*provider.Page, error) {
	resp, err := a.getStatement(ctx, conn, windowStart, windowEnd, nil)
	if err != nil {
		return nil, err
	}

	// A 403 carrying a one-time token is a step-up challenge, not a
	// credential failure: sign the token and retry once.
	if resp.StatusCode == http.StatusForbidden && resp.Header.Get(twoFactorHeader) != "" {
		token := resp.Header.Get(twoFactorHeader)
		resp.Body.Close()

		signature, err := signToken(conn.PrivateKey, token)
		if err != nil {
			return nil, fmt.Errorf("signing step-up token: %w", err)
		}

		resp, err = a.getStatement(ctx, conn, windowStart, windowEnd, &challenge{token: token, signature: signature})
		if err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &provider.AuthError{Provider: provider.Wise, Detail: fmt.Sprintf("status %d", resp.StatusCode)}
	case resp.StatusCode == http.StatusUnprocessableEntity:
		var apiErr apiError
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)

		return nil, &provider.TooManyResultsError{Provider: provider.Wise, Detail: apiErr.Message}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status %d fetching statement", resp.StatusCode)
	}

	var stmt statement
	if err := json.NewDecoder(resp.Body).Decode(&stmt); err != nil {
		return nil, fmt.Errorf("decoding statement: %w", err)
	}

	page := &provider.Page{
		Transactions: make([]*transaction.Transaction, 0, len(stmt.Transactions)),
	}

	for _, line := range stmt.Transactions {
		page.Transactions = append(page.Transactions, normalize(conn, line))
	}

	return page, nil
}

type challenge struct {
	token     string
	signature string
}

func (a *Adapter) getStatement(ctx context.Context, conn *connection.Connection, windowStart, windowEnd time.Time, ch *challenge) (*http.Response, error) {
	q := url.Values{}
	q.Set("intervalStart", windowStart.UTC().Format(time.RFC3339))
	q.Set("intervalEnd", windowEnd.UTC().Format(time.RFC3339))
	q.Set("type", "COMPACT")

	endpoint := fmt.Sprintf("%s/v1/profiles/%s/statement.json?%s", a.baseURL, conn.ProfileID, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+conn.AccessToken)

	if ch != nil {
		req.Header.Set(twoFactorHeader, ch.token)
		req.Header.Set(signatureHeader, ch.signature)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	return resp, nil
}

// signToken signs the one-time token with the connection's RSA private key
// and returns the base64-encoded signature.
func signToken(privateKeyPEM, token string) (string, error) {
	block, _ := pem.Decode([]byte(privateKeyPEM))
	if block == nil {
		return "", fmt.Errorf("no PEM block in private key")
	}

	key, err := parseRSAKey(block.Bytes)
	if err != nil {
		return "", fmt.Errorf("parsing private key: %w", err)
	}

	digest := sha256.Sum256([]byte(token))

	signature, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return base64.StdEncoding.EncodeToString(signature), nil
}

func parseRSAKey(der []byte) (*rsa.PrivateKey, error) {
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, err
	}

	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is not RSA")
	}

	return key, nil
}

// transferTypes are statement line types that move money between Wise
// balances or out to a bank account.
var transferTypes = map[string]struct{}{
	"TRANSFER":   {},
	"CONVERSION": {},
}

func normalize(conn *connection.Connection, line statementLine) *transaction.Transaction {
	value := line.Amount.Value

	txType := transaction.TypeInflow
	if value.IsNegative() {
		txType = transaction.TypeOutflow
	}

	if _, isTransfer := transferTypes[line.Details.Type]; isTransfer {
		txType = transaction.TypeTransfer
	}

	// Statement lines have no globally stable id, so the id is a content
	// fingerprint unless the line carries a reference number.
	id := transaction.FingerprintID(provider.Wise, line.Date, value, line.Amount.Currency, line.Details.Description)
	if line.ReferenceNumber != "" {
		id = transaction.NativeID(provider.Wise, line.ReferenceNumber)
	}

	balance := line.RunningBalance.Value

	return &transaction.Transaction{
		ID:             id,
		ConnectionID:   &conn.ID,
		Date:           line.Date.UTC(),
		Amount:         value.Abs(),
		Currency:       line.Amount.Currency,
		Description:    line.Details.Description,
		Type:           txType,
		Account:        conn.AccountName,
		Category:       line.Details.Type,
		RunningBalance: &balance,
	}
}
