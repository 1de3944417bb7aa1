// Package reports aggregates a user's transactions into category and trend
// reports, computes budget usage and renders exports.
package reports

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/fintrack-be/internal/models"
	"github.com/hongminglow/fintrack-be/internal/storage"
)

// Kind selects the grouping strategy of a report.
type Kind string

const (
	KindSpending Kind = "spending"
	KindIncome   Kind = "income"
	KindTrends   Kind = "trends"
)

// InvalidKindError is returned by ParseKind for unknown kinds.
type InvalidKindError struct {
	Kind string
}

func (e *InvalidKindError) Error() string {
	return "Invalid report type: " + e.Kind
}

// ParseKind validates a report kind taken from the URL.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindSpending, KindIncome, KindTrends:
		return k, nil
	default:
		return "", &InvalidKindError{Kind: s}
	}
}

// CategoryTotal is one group of a spending or income report.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// TrendPoint is the total of one transaction type in one calendar month.
type TrendPoint struct {
	Month models.Date     `json:"month"`
	Type  string          `json:"type"`
	Total decimal.Decimal `json:"total"`
}

// Row is a flattened label/total pair used by the exporters.
type Row struct {
	Label string
	Total decimal.Decimal
}

// Report is the result of one report run. Exactly one of Categories and
// Trends is populated, depending on Kind.
type Report struct {
	Kind       Kind
	Categories []CategoryTotal
	Trends     []TrendPoint
}

// Name is the base filename of the report's exports.
func (r Report) Name() string {
	return string(r.Kind) + "_report"
}

// Data is the structured JSON body of the report.
func (r Report) Data() any {
	if r.Kind == KindTrends {
		return r.Trends
	}
	return r.Categories
}

// Rows flattens the report for tabular and document exports.
func (r Report) Rows() []Row {
	if r.Kind == KindTrends {
		rows := make([]Row, 0, len(r.Trends))
		for _, p := range r.Trends {
			rows = append(rows, Row{Label: p.Month.String() + " " + p.Type, Total: p.Total})
		}
		return rows
	}
	rows := make([]Row, 0, len(r.Categories))
	for _, c := range r.Categories {
		rows = append(rows, Row{Label: c.Category, Total: c.Total})
	}
	return rows
}

// Engine runs reports against a transaction store.
type Engine struct {
	store storage.TransactionStore
}

// NewEngine creates an Engine.
func NewEngine(store storage.TransactionStore) *Engine {
	return &Engine{store: store}
}

// Run builds the report of the given kind for userID. from and to bound
// the category reports inclusively; zero values leave that side open.
// Trends always cover every transaction of the user.
func (e *Engine) Run(ctx context.Context, userID int64, kind Kind, from, to models.Date) (Report, error) {
	switch kind {
	case KindSpending, KindIncome:
		txType := models.TypeExpense
		if kind == KindIncome {
			txType = models.TypeIncome
		}
		txns, err := e.store.ListTransactions(ctx, userID, storage.TransactionFilter{Type: txType, From: from, To: to})
		if err != nil {
			return Report{}, fmt.Errorf("load %s transactions: %w", kind, err)
		}
		return Report{Kind: kind, Categories: ByCategory(txns)}, nil
	case KindTrends:
		txns, err := e.store.ListTransactions(ctx, userID, storage.TransactionFilter{})
		if err != nil {
			return Report{}, fmt.Errorf("load transactions: %w", err)
		}
		return Report{Kind: kind, Trends: Trends(txns)}, nil
	default:
		return Report{}, &InvalidKindError{Kind: string(kind)}
	}
}

// ByCategory sums txns per category, largest total first. Ties are broken
// by category name so the output is stable.
func ByCategory(txns []models.Transaction) []CategoryTotal {
	index := map[string]int{}
	out := []CategoryTotal{}
	for _, t := range txns {
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, CategoryTotal{Category: t.Category})
		}
		out[i].Total = out[i].Total.Add(t.Amount)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Trends sums txns per (calendar month, type), oldest month first.
func Trends(txns []models.Transaction) []TrendPoint {
	type key struct {
		month string
		typ   string
	}
	index := map[key]int{}
	out := []TrendPoint{}
	for _, t := range txns {
		month := t.Date.FirstOfMonth()
		k := key{month: month.String(), typ: t.Type}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, TrendPoint{Month: month, Type: t.Type})
		}
		out[i].Total = out[i].Total.Add(t.Amount)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Month.Equal(out[j].Month.Time) {
			return out[i].Month.Before(out[j].Month)
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// BudgetWindow returns the [start, end) period of budget that contains
// today. A budget that has not started yet reports its first period.
func BudgetWindow(budget models.Budget, today models.Date) (models.Date, models.Date) {
	months := models.PeriodMonths(budget.Period)
	start := budget.StartDate

	k := 0
	if today.After(start) {
		diff := (today.Year()-start.Year())*12 + int(today.Month()) - int(start.Month())
		k = diff / months
		for k > 0 && start.AddMonths(k*months).After(today) {
			k--
		}
		for !today.Before(start.AddMonths((k + 1) * months)) {
			k++
		}
	}
	return start.AddMonths(k * months), start.AddMonths((k + 1) * months)
}

// Spent sums the expenses of budget's category inside the window containing today.
func Spent(budget models.Budget, txns []models.Transaction, today models.Date) decimal.Decimal {
	from, to := BudgetWindow(budget, today)
	total := decimal.Zero
	for _, t := range txns {
		if t.Type != models.TypeExpense || t.Category != budget.Category {
			continue
		}
		if t.Date.Before(from) || !t.Date.Before(to) {
			continue
		}
		total = total.Add(t.Amount)
	}
	return total
}

// Usage attaches the current spend to each budget.
func (e *Engine) Usage(ctx context.Context, userID int64, budgets []models.Budget, today models.Date) ([]models.BudgetUsage, error) {
	out := make([]models.BudgetUsage, 0, len(budgets))
	if len(budgets) == 0 {
		return out, nil
	}
	byCategory := map[string][]models.Transaction{}
	for _, b := range budgets {
		if _, ok := byCategory[b.Category]; ok {
			continue
		}
		txns, err := e.store.ListTransactions(ctx, userID, storage.TransactionFilter{Type: models.TypeExpense, Category: b.Category})
		if err != nil {
			return nil, fmt.Errorf("load expenses for %q: %w", b.Category, err)
		}
		byCategory[b.Category] = txns
	}
	for _, b := range budgets {
		out = append(out, models.BudgetUsage{Budget: b, Spent: Spent(b, byCategory[b.Category], today)})
	}
	return out, nil
}
