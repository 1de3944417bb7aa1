package alerts

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/fintrack-be/internal/models"
	"github.com/hongminglow/fintrack-be/internal/reports"
	"github.com/hongminglow/fintrack-be/internal/storage/sqlite"
)

type recordingPublisher struct {
	msgs []BudgetExceeded
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, msg BudgetExceeded) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

type fakeAcknowledger struct {
	acked, nacked, requeued int
}

func (a *fakeAcknowledger) Ack(uint64, bool) error { a.acked++; return nil }
func (a *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked++
	if requeue {
		a.requeued++
	}
	return nil
}
func (a *fakeAcknowledger) Reject(uint64, bool) error { return nil }

func setup(t *testing.T, prefs models.Preferences) (*sqlite.Store, models.User) {
	t.Helper()
	store, err := sqlite.NewStore(filepath.Join(t.TempDir(), "alerts.db"))
	require.NoError(t, err)
	t.Cleanup(store.Close)

	user, err := store.CreateUser(t.Context(), models.User{Email: "al@example.com", Name: "Al", Preferences: prefs, PasswordHash: "x"})
	require.NoError(t, err)

	_, err = store.CreateBudget(t.Context(), models.Budget{
		UserID:    user.ID,
		Category:  "Food",
		Amount:    decimal.NewFromInt(100),
		Period:    models.PeriodMonthly,
		StartDate: models.MustParseDate("2024-01-01"),
	})
	require.NoError(t, err)
	return store, user
}

func addExpense(t *testing.T, store *sqlite.Store, userID int64, amount, date string) models.Transaction {
	t.Helper()
	txn, err := store.CreateTransaction(t.Context(), models.Transaction{
		UserID:   userID,
		Amount:   decimal.RequireFromString(amount),
		Type:     models.TypeExpense,
		Category: "Food",
		Date:     models.MustParseDate(date),
	})
	require.NoError(t, err)
	return txn
}

var fixedNow = func() time.Time { return time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC) }

func TestCheckExpensePublishesWhenOverLimit(t *testing.T) {
	store, user := setup(t, models.DefaultPreferences())
	pub := &recordingPublisher{}
	checker := NewChecker(store, store, reports.NewEngine(store), pub, time.UTC).WithClock(fixedNow)

	first := addExpense(t, store, user.ID, "60", "2024-03-02")
	assert.Equal(t, 0, checker.CheckExpense(t.Context(), first))

	// Last month's spend does not count towards this month's window.
	addExpense(t, store, user.ID, "500", "2024-02-10")
	second := addExpense(t, store, user.ID, "40.01", "2024-03-19")
	assert.Equal(t, 1, checker.CheckExpense(t.Context(), second))

	require.Len(t, pub.msgs, 1)
	msg := pub.msgs[0]
	assert.Equal(t, user.ID, msg.UserID)
	assert.Equal(t, "Food", msg.Category)
	assert.Equal(t, "100", msg.Limit.String())
	assert.Equal(t, "100.01", msg.Spent.String())
	assert.Equal(t, models.PeriodMonthly, msg.Period)
	assert.Equal(t, fixedNow(), msg.OccurredAt)
}

func TestCheckExpenseRespectsPreference(t *testing.T) {
	prefs := models.DefaultPreferences()
	prefs[models.PrefBudgetAlerts] = false
	store, user := setup(t, prefs)
	pub := &recordingPublisher{}
	checker := NewChecker(store, store, reports.NewEngine(store), pub, time.UTC).WithClock(fixedNow)

	txn := addExpense(t, store, user.ID, "1000", "2024-03-05")
	assert.Equal(t, 0, checker.CheckExpense(t.Context(), txn))
	assert.Empty(t, pub.msgs)
}

func TestCheckExpenseSwallowsPublishErrors(t *testing.T) {
	store, user := setup(t, models.DefaultPreferences())
	var logs bytes.Buffer
	ctx := zerolog.New(&logs).WithContext(t.Context())
	checker := NewChecker(store, store, reports.NewEngine(store), &recordingPublisher{err: errors.New("broker down")}, time.UTC).WithClock(fixedNow)

	txn := addExpense(t, store, user.ID, "1000", "2024-03-05")
	assert.Equal(t, 0, checker.CheckExpense(ctx, txn))
	assert.Contains(t, logs.String(), "broker down")

	income := txn
	income.Type = models.TypeIncome
	assert.Equal(t, 0, checker.CheckExpense(ctx, income))

	var nilChecker *Checker
	assert.Equal(t, 0, nilChecker.CheckExpense(ctx, txn))
}

func TestMessageJSON(t *testing.T) {
	msg := NewBudgetExceeded(models.BudgetUsage{
		Budget: models.Budget{ID: 3, UserID: 9, Category: "Rent", Amount: decimal.NewFromInt(1200), Period: models.PeriodMonthly},
		Spent:  decimal.RequireFromString("1250.5"),
	}, fixedNow())
	body, err := msg.ToJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_id":9,"budget_id":3,"category":"Rent","limit":1200,"spent":1250.5,"period":"monthly","occurred_at":"2024-03-20T12:00:00Z"}`, string(body))

	decoded, err := BudgetExceededFromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, int64(3), decoded.BudgetID)
	assert.True(t, decoded.Spent.Equal(msg.Spent))
}

func TestHandleDelivery(t *testing.T) {
	body, err := BudgetExceeded{BudgetID: 1}.ToJSON()
	require.NoError(t, err)

	tests := []struct {
		name       string
		body       []byte
		handlerErr error
		want       fakeAcknowledger
	}{
		{"ack on success", body, nil, fakeAcknowledger{acked: 1}},
		{"requeue on handler error", body, errors.New("boom"), fakeAcknowledger{nacked: 1, requeued: 1}},
		{"drop malformed", []byte("{"), nil, fakeAcknowledger{nacked: 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ack := &fakeAcknowledger{}
			handleDelivery(t.Context(), amqp091.Delivery{Acknowledger: ack, Body: tc.body}, func(context.Context, BudgetExceeded) error {
				return tc.handlerErr
			})
			assert.Equal(t, tc.want, *ack)
		})
	}
}
