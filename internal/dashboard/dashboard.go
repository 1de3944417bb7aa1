// Package dashboard builds the fixed summary shown on the home screen.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/fintrack-be/internal/models"
	"github.com/hongminglow/fintrack-be/internal/reports"
	"github.com/hongminglow/fintrack-be/internal/storage"
)

const (
	recentLimit  = 5
	seriesMonths = 6
)

// CategoryAmount is one slice of the current month's expenses.
type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// MonthPoint is one month of the income/expense series.
type MonthPoint struct {
	Date     string          `json:"date"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

// Summary is the dashboard payload.
type Summary struct {
	TotalIncome           decimal.Decimal      `json:"totalIncome"`
	TotalExpenses         decimal.Decimal      `json:"totalExpenses"`
	Balance               decimal.Decimal      `json:"balance"`
	MonthlyChange         decimal.Decimal      `json:"monthlyChange"`
	MonthlyChangeComputed decimal.Decimal      `json:"monthlyChangeComputed"`
	ExpensesByCategory    []CategoryAmount     `json:"expensesByCategory"`
	RecentTransactions    []models.Transaction `json:"recentTransactions"`
	SpendingOverTime      []MonthPoint         `json:"spendingOverTime"`
}

// Service assembles summaries from the transaction store.
type Service struct {
	store  storage.TransactionStore
	loc    *time.Location
	legacy bool
	now    func() time.Time
}

// NewService creates a Service. loc decides where the current month starts;
// legacy pins monthlyChange to 0 as older clients expect.
func NewService(store storage.TransactionStore, loc *time.Location, legacy bool) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{store: store, loc: loc, legacy: legacy, now: time.Now}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Summary builds the dashboard for userID as of now.
func (s *Service) Summary(ctx context.Context, userID int64) (Summary, error) {
	today := models.NewDate(s.now().In(s.loc))
	from := today.FirstOfMonth().AddMonths(-(seriesMonths - 1))

	txns, err := s.store.ListTransactions(ctx, userID, storage.TransactionFilter{From: from})
	if err != nil {
		return Summary{}, fmt.Errorf("load dashboard transactions: %w", err)
	}
	recent, err := s.store.ListTransactions(ctx, userID, storage.TransactionFilter{Limit: recentLimit})
	if err != nil {
		return Summary{}, fmt.Errorf("load recent transactions: %w", err)
	}
	return Build(today, txns, recent, s.legacy), nil
}

// Build computes the summary for today from txns, which must cover at
// least the last six calendar months. recent is passed through as is.
func Build(today models.Date, txns, recent []models.Transaction, legacy bool) Summary {
	monthStart := today.FirstOfMonth()
	lastMonthStart := monthStart.AddMonths(-1)

	var current []models.Transaction
	income, expenses := decimal.Zero, decimal.Zero
	lastIncome, lastExpenses := decimal.Zero, decimal.Zero
	for _, t := range txns {
		switch {
		case !t.Date.Before(monthStart) && !t.Date.After(today):
			current = append(current, t)
			if t.Type == models.TypeIncome {
				income = income.Add(t.Amount)
			} else {
				expenses = expenses.Add(t.Amount)
			}
		case !t.Date.Before(lastMonthStart) && t.Date.Before(monthStart):
			if t.Type == models.TypeIncome {
				lastIncome = lastIncome.Add(t.Amount)
			} else {
				lastExpenses = lastExpenses.Add(t.Amount)
			}
		}
	}

	balance := income.Sub(expenses)
	change := MonthlyChange(balance, lastIncome.Sub(lastExpenses))

	sum := Summary{
		TotalIncome:           income,
		TotalExpenses:         expenses,
		Balance:               balance,
		MonthlyChange:         change,
		MonthlyChangeComputed: change,
		ExpensesByCategory:    expensesByCategory(current),
		RecentTransactions:    recent,
		SpendingOverTime:      series(monthStart, txns),
	}
	if sum.RecentTransactions == nil {
		sum.RecentTransactions = []models.Transaction{}
	}
	if legacy {
		sum.MonthlyChange = decimal.Zero
	}
	return sum
}

// MonthlyChange is the percentage change of balance against last month's
// net total, rounded to two places. It is 0 when last month nets to zero.
func MonthlyChange(balance, lastMonth decimal.Decimal) decimal.Decimal {
	if lastMonth.IsZero() {
		return decimal.Zero
	}
	return balance.Sub(lastMonth).Div(lastMonth.Abs()).Mul(decimal.NewFromInt(100)).Round(2)
}

func expensesByCategory(txns []models.Transaction) []CategoryAmount {
	var expenses []models.Transaction
	for _, t := range txns {
		if t.Type == models.TypeExpense {
			expenses = append(expenses, t)
		}
	}
	grouped := reports.ByCategory(expenses)
	out := make([]CategoryAmount, 0, len(grouped))
	for _, g := range grouped {
		out = append(out, CategoryAmount{Category: g.Category, Amount: g.Total})
	}
	return out
}

func series(monthStart models.Date, txns []models.Transaction) []MonthPoint {
	points := make([]MonthPoint, seriesMonths)
	first := monthStart.AddMonths(-(seriesMonths - 1))
	for i := range points {
		points[i] = MonthPoint{
			Date:     first.AddMonths(i).Format("Jan"),
			Income:   decimal.Zero,
			Expenses: decimal.Zero,
		}
	}
	for _, t := range txns {
		if t.Date.Before(first) {
			continue
		}
		m := t.Date.FirstOfMonth()
		i := (m.Year()-first.Year())*12 + int(m.Month()) - int(first.Month())
		if i < 0 || i >= seriesMonths {
			continue
		}
		if t.Type == models.TypeIncome {
			points[i].Income = points[i].Income.Add(t.Amount)
		} else {
			points[i].Expenses = points[i].Expenses.Add(t.Amount)
		}
	}
	return points
}
