package postgres

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/fintrack-be/internal/models"
	"github.com/hongminglow/fintrack-be/internal/storage"
)

// TestStoreIntegration exercises the store against a live database.
func TestStoreIntegration(t *testing.T) {
	if os.Getenv("RUN_PG_INTEGRATION") != "true" {
		t.Skip("set RUN_PG_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL is required")
	}

	ctx := t.Context()
	store, err := NewStore(ctx, dbURL)
	require.NoError(t, err)
	defer store.Close()

	email := fmt.Sprintf("pgtest_%d@example.com", time.Now().UnixNano())
	user, err := store.CreateUser(ctx, models.User{
		Email:        email,
		Name:         "PG Test",
		Preferences:  models.DefaultPreferences(),
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = store.pool.Exec(t.Context(), `DELETE FROM users WHERE id = $1`, user.ID)
	})
	assert.True(t, user.Preferences.Enabled(models.PrefBudgetAlerts))

	_, err = store.CreateUser(ctx, models.User{Email: email, Name: "Dup", Preferences: models.DefaultPreferences(), PasswordHash: "x"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	created, err := store.CreateTransaction(ctx, models.Transaction{
		UserID:   user.ID,
		Amount:   decimal.RequireFromString("80.10"),
		Type:     models.TypeExpense,
		Category: "Food",
		Date:     models.MustParseDate("2024-01-05"),
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("80.1").Equal(created.Amount))
	assert.Equal(t, "2024-01-05", created.Date.String())

	list, err := store.ListTransactions(ctx, user.ID, storage.TransactionFilter{
		From: models.MustParseDate("2024-01-05"),
		To:   models.MustParseDate("2024-01-05"),
	})
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = store.GetTransaction(ctx, user.ID+1_000_000, created.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	budget, err := store.CreateBudget(ctx, models.Budget{
		UserID:    user.ID,
		Category:  "Food",
		Amount:    decimal.NewFromInt(100),
		Period:    models.PeriodMonthly,
		StartDate: models.MustParseDate("2024-01-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", budget.StartDate.String())

	require.NoError(t, store.PurgeUserData(ctx, user.ID))
	list, err = store.ListTransactions(ctx, user.ID, storage.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func loadDotEnv() {
	for _, path := range []string{".env", "../.env", "../../.env", "../../../.env"} {
		_ = godotenv.Overload(path)
	}
}
