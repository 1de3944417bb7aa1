package respond

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func requestWithLogger(buf *bytes.Buffer) *http.Request {
	logger := zerolog.New(buf).With().Str("request_id", "req-42").Logger()
	req := httptest.NewRequest(http.MethodGet, "/reports/spending", nil)
	return req.WithContext(logger.WithContext(req.Context()))
}

func TestJSONAndValidation(t *testing.T) {
	var logs bytes.Buffer
	rec := httptest.NewRecorder()
	Validation(rec, requestWithLogger(&logs), map[string]string{"amount": "This field is required."})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"validation failed","fields":{"amount":"This field is required."}}`, rec.Body.String())
	assert.Empty(t, logs.String())
}

func TestWriteFailuresUseRequestLogger(t *testing.T) {
	var logs bytes.Buffer
	req := requestWithLogger(&logs)

	JSON(brokenWriter{httptest.NewRecorder()}, req, http.StatusOK, map[string]string{"status": "ok"})
	require.Contains(t, logs.String(), "encode payload failed")
	assert.Contains(t, logs.String(), `"request_id":"req-42"`)

	logs.Reset()
	File(brokenWriter{httptest.NewRecorder()}, req, "text/csv", "spending_report.csv", []byte("Category, Amount\n"))
	require.Contains(t, logs.String(), "write file failed")
	assert.Contains(t, logs.String(), `"request_id":"req-42"`)
	assert.Contains(t, logs.String(), `"filename":"spending_report.csv"`)
}
