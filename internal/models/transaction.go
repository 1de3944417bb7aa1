package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Totals are served as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Transaction types.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Transaction is a single income or expense entry owned by one user.
type Transaction struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        Date            `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
}
