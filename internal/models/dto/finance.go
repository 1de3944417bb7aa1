package dto

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/fintrack-be/internal/models"
)

// TransactionRequest is the create/replace payload for a transaction.
type TransactionRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"required,money"`
	Type        string          `json:"type" validate:"required,oneof=income expense"`
	Category    string          `json:"category" validate:"notblank,max=100"`
	Description string          `json:"description" validate:"max=255"`
	Date        models.Date     `json:"date" validate:"required"`
}

// ToModel builds the transaction owned by userID.
func (r TransactionRequest) ToModel(userID int64) models.Transaction {
	return models.Transaction{
		UserID:      userID,
		Amount:      r.Amount,
		Type:        r.Type,
		Category:    strings.TrimSpace(r.Category),
		Description: strings.TrimSpace(r.Description),
		Date:        r.Date,
	}
}

// BudgetRequest is the create/replace payload for a budget.
type BudgetRequest struct {
	Category  string          `json:"category" validate:"notblank,max=100"`
	Amount    decimal.Decimal `json:"amount" validate:"required,gt=0,money"`
	Period    string          `json:"period" validate:"omitempty,oneof=monthly quarterly annual"`
	StartDate models.Date     `json:"start_date" validate:"required"`
}

// ToModel builds the budget owned by userID, defaulting the period to monthly.
func (r BudgetRequest) ToModel(userID int64) models.Budget {
	period := r.Period
	if period == "" {
		period = models.PeriodMonthly
	}
	return models.Budget{
		UserID:    userID,
		Category:  strings.TrimSpace(r.Category),
		Amount:    r.Amount,
		Period:    period,
		StartDate: r.StartDate,
	}
}
