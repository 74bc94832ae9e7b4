package transaction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/driftwoodhq/ledgersync/internal/transaction"
)

type response struct {
	ID             string           `json:"id"`
	Date           time.Time        `json:"date"`
	Amount         decimal.Decimal  `json:"amount"`
	Currency       string           `json:"currency"`
	Description    string           `json:"description"`
	Type           string           `json:"type"`
	Account        string           `json:"account"`
	Category       string           `json:"category,omitempty"`
	Notes          string           `json:"notes,omitempty"`
	RunningBalance *decimal.Decimal `json:"running_balance,omitempty"`
}

func toResponse(tx *transaction.Transaction) response {
	return response{
		ID:             tx.ID,
		Date:           tx.Date,
		Amount:         tx.Amount,
		Currency:       tx.Currency,
		Description:    tx.Description,
		Type:           string(tx.Type),
		Account:        tx.Account,
		Category:       tx.Category,
		Notes:          tx.Notes,
		RunningBalance: tx.RunningBalance,
	}
}

func toResponseList(txs []*transaction.Transaction) []response {
	responses := make([]response, 0, len(txs))
	for _, tx := range txs {
		responses = append(responses, toResponse(tx))
	}

	return responses
}
