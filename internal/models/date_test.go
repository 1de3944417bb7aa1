package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	var payload struct {
		Date Date `json:"date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-01-05"}`), &payload))
	assert.Equal(t, "2024-01-05", payload.Date.String())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-01-05"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"date":"05/01/2024"}`), &payload))
	assert.Error(t, json.Unmarshal([]byte(`{"date":20240105}`), &payload))

	require.NoError(t, json.Unmarshal([]byte(`{"date":null}`), &payload))
	assert.True(t, payload.Date.IsZero())
}

func TestDateMonthArithmetic(t *testing.T) {
	d := MustParseDate("2024-03-31")
	first := d.FirstOfMonth()
	assert.Equal(t, "2024-03-01", first.String())
	assert.Equal(t, "2024-02-01", first.AddMonths(-1).String())
	assert.Equal(t, "2023-10-01", first.AddMonths(-5).String())

	local := time.Date(2024, 7, 9, 23, 30, 0, 0, time.FixedZone("X", 5*3600))
	assert.Equal(t, "2024-07-09", NewDate(local).String())
}

func TestDecimalMarshalsAsNumber(t *testing.T) {
	out, err := json.Marshal(Transaction{Amount: decimal.RequireFromString("80.50")})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"amount":80.5`)
}

func TestPreferences(t *testing.T) {
	p := DefaultPreferences()
	assert.True(t, p.Enabled(PrefBudgetAlerts))
	assert.False(t, p.Enabled(PrefWeeklyReports))
	assert.False(t, p.Enabled(PrefCurrency))
	assert.Equal(t, 1, PeriodMonths(PeriodMonthly))
	assert.Equal(t, 3, PeriodMonths(PeriodQuarterly))
	assert.Equal(t, 12, PeriodMonths(PeriodAnnual))
}
