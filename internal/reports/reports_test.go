package reports

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	pdfreader "github.com/ledongthuc/pdf"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/fintrack-be/internal/models"
	"github.com/hongminglow/fintrack-be/internal/storage/sqlite"
)

func txn(typ, category, amount, date string) models.Transaction {
	return models.Transaction{
		Type:     typ,
		Category: category,
		Amount:   decimal.RequireFromString(amount),
		Date:     models.MustParseDate(date),
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []string{"spending", "income", "trends"} {
		got, err := ParseKind(k)
		require.NoError(t, err)
		assert.Equal(t, Kind(k), got)
	}
	_, err := ParseKind("weekly")
	require.Error(t, err)
	assert.Equal(t, "Invalid report type: weekly", err.Error())
}

func TestByCategory(t *testing.T) {
	got := ByCategory([]models.Transaction{
		txn(models.TypeExpense, "Food", "50", "2024-01-05"),
		txn(models.TypeExpense, "Rent", "80", "2024-01-01"),
		txn(models.TypeExpense, "Food", "30", "2024-01-20"),
		txn(models.TypeExpense, "Fun", "120.25", "2024-01-21"),
	})
	require.Len(t, got, 3)
	assert.Equal(t, "Fun", got[0].Category)
	// Food and Rent tie at 80; category name breaks the tie.
	assert.Equal(t, "Food", got[1].Category)
	assert.True(t, decimal.NewFromInt(80).Equal(got[1].Total))
	assert.Equal(t, "Rent", got[2].Category)

	assert.Empty(t, ByCategory(nil))
}

func TestTrends(t *testing.T) {
	got := Trends([]models.Transaction{
		txn(models.TypeIncome, "Salary", "1000", "2024-02-01"),
		txn(models.TypeExpense, "Food", "10", "2024-01-31"),
		txn(models.TypeExpense, "Food", "15", "2024-01-02"),
		txn(models.TypeIncome, "Salary", "900", "2024-01-01"),
		txn(models.TypeExpense, "Rent", "500", "2024-02-10"),
	})
	require.Len(t, got, 4)

	type point struct{ month, typ, total string }
	var flat []point
	for _, p := range got {
		flat = append(flat, point{p.Month.String(), p.Type, p.Total.String()})
	}
	assert.Equal(t, []point{
		{"2024-01-01", "expense", "25"},
		{"2024-01-01", "income", "900"},
		{"2024-02-01", "expense", "500"},
		{"2024-02-01", "income", "1000"},
	}, flat)
}

func TestBudgetWindow(t *testing.T) {
	tests := []struct {
		name      string
		period    string
		start     string
		today     string
		wantStart string
		wantEnd   string
	}{
		{"monthly current", models.PeriodMonthly, "2024-01-01", "2024-03-15", "2024-03-01", "2024-04-01"},
		{"monthly first day", models.PeriodMonthly, "2024-01-01", "2024-03-01", "2024-03-01", "2024-04-01"},
		{"monthly mid-month start", models.PeriodMonthly, "2024-01-15", "2024-03-10", "2024-02-15", "2024-03-15"},
		{"quarterly", models.PeriodQuarterly, "2024-01-01", "2024-08-20", "2024-07-01", "2024-10-01"},
		{"annual", models.PeriodAnnual, "2023-06-01", "2024-05-31", "2023-06-01", "2024-06-01"},
		{"not started", models.PeriodMonthly, "2024-05-01", "2024-03-01", "2024-05-01", "2024-06-01"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := models.Budget{Period: tc.period, StartDate: models.MustParseDate(tc.start)}
			from, to := BudgetWindow(b, models.MustParseDate(tc.today))
			assert.Equal(t, tc.wantStart, from.String())
			assert.Equal(t, tc.wantEnd, to.String())
		})
	}
}

func TestSpent(t *testing.T) {
	b := models.Budget{Category: "Food", Period: models.PeriodMonthly, StartDate: models.MustParseDate("2024-01-01")}
	txns := []models.Transaction{
		txn(models.TypeExpense, "Food", "40", "2024-03-01"),
		txn(models.TypeExpense, "Food", "2.5", "2024-03-31"),
		txn(models.TypeExpense, "Food", "99", "2024-02-29"),
		txn(models.TypeExpense, "Food", "99", "2024-04-01"),
		txn(models.TypeExpense, "Rent", "99", "2024-03-10"),
		txn(models.TypeIncome, "Food", "99", "2024-03-10"),
	}
	assert.Equal(t, "42.5", Spent(b, txns, models.MustParseDate("2024-03-15")).String())
}

func TestEngineRun(t *testing.T) {
	store, err := sqlite.NewStore(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(store.Close)
	ctx := t.Context()

	user, err := store.CreateUser(ctx, models.User{Email: "r@example.com", Name: "R", Preferences: models.DefaultPreferences(), PasswordHash: "x"})
	require.NoError(t, err)
	for _, tx := range []models.Transaction{
		txn(models.TypeExpense, "Food", "50", "2024-01-05"),
		txn(models.TypeExpense, "Food", "30", "2024-01-20"),
		txn(models.TypeExpense, "Food", "5", "2024-02-01"),
		txn(models.TypeIncome, "Salary", "2000", "2024-01-31"),
	} {
		tx.UserID = user.ID
		_, err := store.CreateTransaction(ctx, tx)
		require.NoError(t, err)
	}

	engine := NewEngine(store)
	spending, err := engine.Run(ctx, user.ID, KindSpending, models.MustParseDate("2024-01-01"), models.MustParseDate("2024-01-31"))
	require.NoError(t, err)
	require.Len(t, spending.Categories, 1)
	assert.Equal(t, "Food", spending.Categories[0].Category)
	assert.True(t, decimal.NewFromInt(80).Equal(spending.Categories[0].Total))

	unbounded, err := engine.Run(ctx, user.ID, KindSpending, models.Date{}, models.Date{})
	require.NoError(t, err)
	assert.Equal(t, "85", unbounded.Categories[0].Total.String())

	income, err := engine.Run(ctx, user.ID, KindIncome, models.Date{}, models.Date{})
	require.NoError(t, err)
	require.Len(t, income.Categories, 1)
	assert.Equal(t, "Salary", income.Categories[0].Category)

	trends, err := engine.Run(ctx, user.ID, KindTrends, models.MustParseDate("2024-02-01"), models.Date{})
	require.NoError(t, err)
	assert.Len(t, trends.Trends, 3, "trends ignore date bounds")
	assert.Equal(t, "trends_report", trends.Name())

	budgets := []models.Budget{{Category: "Food", Period: models.PeriodMonthly, StartDate: models.MustParseDate("2024-01-01"), Amount: decimal.NewFromInt(60)}}
	usage, err := engine.Usage(ctx, user.ID, budgets, models.MustParseDate("2024-01-25"))
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, "80", usage[0].Spent.String())
}

func TestCSV(t *testing.T) {
	r := Report{Kind: KindSpending, Categories: []CategoryTotal{{Category: "Rent", Total: decimal.RequireFromString("1200.00")}}}

	out, err := CSV(r, false)
	require.NoError(t, err)
	assert.Equal(t, "Category, Amount\nRent,1200\n", string(out))

	legacy, err := CSV(r, true)
	require.NoError(t, err)
	assert.Equal(t, "Category, Amount\nRent,total\n", string(legacy))

	quoted, err := CSV(Report{Kind: KindSpending, Categories: []CategoryTotal{{Category: "Food, drinks", Total: decimal.NewFromInt(3)}}}, false)
	require.NoError(t, err)
	assert.Equal(t, "Category, Amount\n\"Food, drinks\",3\n", string(quoted))

	trends, err := CSV(Report{Kind: KindTrends, Trends: []TrendPoint{{Month: models.MustParseDate("2024-01-01"), Type: "income", Total: decimal.NewFromInt(900)}}}, false)
	require.NoError(t, err)
	assert.Equal(t, "Category, Amount\n2024-01-01 income,900\n", string(trends))
}

func TestPDF(t *testing.T) {
	r := Report{Kind: KindSpending, Categories: []CategoryTotal{
		{Category: "Rent", Total: decimal.NewFromInt(1200)},
		{Category: "Food", Total: decimal.NewFromInt(80)},
	}}
	out, err := PDF(r)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	text := readPDFText(t, out)
	assert.Contains(t, text, "spending_report")
	assert.Contains(t, text, "Rent: 1200")
	assert.Contains(t, text, "Food: 80")
}

func TestPDFPaginates(t *testing.T) {
	var cats []CategoryTotal
	for i := 0; i < 120; i++ {
		cats = append(cats, CategoryTotal{Category: strings.Repeat("x", i%7+1), Total: decimal.NewFromInt(int64(i))})
	}
	out, err := PDF(Report{Kind: KindIncome, Categories: cats})
	require.NoError(t, err)

	r, err := pdfreader.NewReader(bytes.NewReader(out), int64(len(out)))
	require.NoError(t, err)
	assert.Greater(t, r.NumPage(), 1)
}

func readPDFText(t *testing.T, b []byte) string {
	t.Helper()
	r, err := pdfreader.NewReader(bytes.NewReader(b), int64(len(b)))
	require.NoError(t, err)
	plain, err := r.GetPlainText()
	require.NoError(t, err)
	text, err := io.ReadAll(plain)
	require.NoError(t, err)
	return string(text)
}
