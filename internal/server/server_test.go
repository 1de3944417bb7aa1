package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/fintrack-be/internal/alerts"
	"github.com/hongminglow/fintrack-be/internal/config"
	"github.com/hongminglow/fintrack-be/internal/storage/sqlite"
)

type capturePublisher struct {
	msgs []alerts.BudgetExceeded
}

func (p *capturePublisher) Publish(_ context.Context, msg alerts.BudgetExceeded) error {
	p.msgs = append(p.msgs, msg)
	return nil
}

func TestHandlerEndToEnd(t *testing.T) {
	store, err := sqlite.NewStore(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(store.Close)

	cfg := config.Config{
		Port:          "0",
		JWTSecret:     "secret",
		JWTIssuer:     "fintrack-test",
		JWTTTL:        time.Hour,
		JWTRefreshTTL: time.Hour,
		CORSOrigins:   []string{"https://app.example.com"},
		Location:      time.UTC,
	}
	var logs bytes.Buffer
	pub := &capturePublisher{}
	h := NewHandler(cfg, store, Options{
		Logger:    zerolog.New(&logs),
		Publisher: pub,
		Now:       func() time.Time { return time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC) },
	})

	call := func(method, path, token, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Origin", "https://app.example.com")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := call(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = call(http.MethodPost, "/register", "", `{"email":"e2e@example.com","name":"E2E","password":"password123"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var reg struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))

	rec = call(http.MethodPost, "/budgets", reg.Token, `{"category":"Food","amount":"100","start_date":"2024-05-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = call(http.MethodPost, "/transactions", reg.Token, `{"amount":"150.25","type":"expense","category":"Food","date":"2024-05-09"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, pub.msgs, 1)
	assert.Equal(t, "150.25", pub.msgs[0].Spent.String())

	rec = call(http.MethodGet, "/dashboard/summary", reg.Token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalExpenses":150.25`)

	rec = call(http.MethodDelete, "/transactions/1", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.NotContains(t, logs.String(), "password123")
	assert.Contains(t, logs.String(), `"event":"register"`)
}
