package ledger

import "time"

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TypeReplenishment TransactionType = "replenishment"
	TypePurchase      TransactionType = "purchase"
	TypeDebit         TransactionType = "debit"
	TypeRefund        TransactionType = "refund"
)

// Entry is one immutable row in the append-only token ledger. A user's
// balance is the sum of TokenAmount over their entries, never a stored field.
type Entry struct {
	ID              string          `json:"id" db:"id"`
	UserID          int64           `json:"user_id" db:"user_id"`
	TransactionType TransactionType `json:"transaction_type" db:"transaction_type"`
	TokenAmount     int64           `json:"token_amount" db:"token_amount"`
	AmountUSD       *float64        `json:"amount_usd,omitempty" db:"amount_usd"`
	Description     string          `json:"description" db:"description"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// ReplenishSummary reports the outcome of a batch replenishment run.
type ReplenishSummary struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
}
