package alerts

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/fintrack-be/internal/models"
)

// BudgetExceeded is published when a budget's spend passes its limit.
type BudgetExceeded struct {
	UserID     int64           `json:"user_id"`
	BudgetID   int64           `json:"budget_id"`
	Category   string          `json:"category"`
	Limit      decimal.Decimal `json:"limit"`
	Spent      decimal.Decimal `json:"spent"`
	Period     string          `json:"period"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewBudgetExceeded builds the alert for a budget and its current usage.
func NewBudgetExceeded(usage models.BudgetUsage, at time.Time) BudgetExceeded {
	return BudgetExceeded{
		UserID:     usage.UserID,
		BudgetID:   usage.ID,
		Category:   usage.Category,
		Limit:      usage.Amount,
		Spent:      usage.Spent,
		Period:     usage.Period,
		OccurredAt: at.UTC(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m BudgetExceeded) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetExceededFromJSON decodes a message body.
func BudgetExceededFromJSON(data []byte) (BudgetExceeded, error) {
	var msg BudgetExceeded
	if err := json.Unmarshal(data, &msg); err != nil {
		return BudgetExceeded{}, err
	}
	return msg, nil
}
