package transaction

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("transaction not found")

// Type classifies the direction of money movement. Transfers represent money
// moving between a provider and a linked bank account rather than true
// revenue or expense.
type Type string

const (
	TypeInflow   Type = "Inflow"
	TypeOutflow  Type = "Outflow"
	TypeTransfer Type = "Transfer"
)

// Transaction is a provider-normalized ledger entry. The ID is deterministic
// so re-delivering the same provider record can never create a duplicate row.
type Transaction struct {
	ID             string
	ConnectionID   *uuid.UUID
	Date           time.Time
	Amount         decimal.Decimal
	Currency       string
	Description    string
	Type           Type
	Account        string
	Category       string
	Notes          string
	RunningBalance *decimal.Decimal
	CreatedAt      time.Time
}

// NativeID derives the canonical id for a provider record with a stable
// native identifier.
func NativeID(provider, nativeID string) string {
	return provider + "-" + nativeID
}

// FingerprintID derives an id for providers whose records carry no stable
// identifier, from the fields that together identify the entry.
func FingerprintID(provider string, date time.Time, amount decimal.Decimal, currency, description string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s", date.UTC().Format(time.RFC3339), amount.String(), currency, description)

	return provider + "-fp-" + hex.EncodeToString(h.Sum(nil))[:16]
}
