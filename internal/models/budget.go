package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget periods.
const (
	PeriodMonthly   = "monthly"
	PeriodQuarterly = "quarterly"
	PeriodAnnual    = "annual"
)

// PeriodMonths returns the length of a budget period in months.
func PeriodMonths(period string) int {
	switch period {
	case PeriodQuarterly:
		return 3
	case PeriodAnnual:
		return 12
	default:
		return 1
	}
}

// Budget is a spending limit for one category over a recurring period.
type Budget struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	Period    string          `json:"period"`
	StartDate Date            `json:"start_date"`
	CreatedAt time.Time       `json:"created_at"`
}

// BudgetUsage is a budget together with what has been spent in its current window.
type BudgetUsage struct {
	Budget
	Spent decimal.Decimal `json:"spent"`
}
