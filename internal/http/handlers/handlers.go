package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hongminglow/fintrack-be/internal/auth"
	"github.com/hongminglow/fintrack-be/internal/http/respond"
	"github.com/hongminglow/fintrack-be/internal/models"
	"github.com/hongminglow/fintrack-be/internal/storage"
	"github.com/hongminglow/fintrack-be/internal/validation"
)

// Middleware wraps a handler, e.g. to require authentication.
type Middleware func(http.Handler) http.Handler

const msgNotFound = "Not found."

// decode reads a JSON body into dst and validates it. It writes the error
// response itself and reports whether the handler may continue.
func decode(w http.ResponseWriter, r *http.Request, v *validation.Validator, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		var syntaxErr *json.SyntaxError
		switch {
		case errors.As(err, &typeErr) && typeErr.Field != "":
			respond.Validation(w, r, map[string]string{typeErr.Field: "Invalid value."})
		case errors.As(err, &syntaxErr), errors.As(err, &typeErr),
			errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			respond.Error(w, r, http.StatusBadRequest, "invalid JSON payload")
		default:
			respond.Error(w, r, http.StatusBadRequest, err.Error())
		}
		return false
	}
	if v == nil {
		return true
	}
	if err := v.Struct(dst); err != nil {
		var fields validation.Errors
		if errors.As(err, &fields) {
			respond.Validation(w, r, fields)
			return false
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("validate payload")
		respond.Error(w, r, http.StatusBadRequest, "invalid payload")
		return false
	}
	return true
}

// pathID parses the {id} wildcard. A malformed id can never match a row,
// so it is reported as not found.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(w, r, http.StatusNotFound, msgNotFound)
		return 0, false
	}
	return id, true
}

// currentUser returns the id placed in the context by the auth middleware.
func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return 0, false
	}
	return uid, true
}

// storeError maps persistence failures onto responses. Unexpected errors are
// logged with action and hidden from the client.
func storeError(w http.ResponseWriter, r *http.Request, err error, action string) {
	if errors.Is(err, storage.ErrNotFound) {
		respond.Error(w, r, http.StatusNotFound, msgNotFound)
		return
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Msg(action)
	respond.Error(w, r, http.StatusInternalServerError, "failed to "+action)
}

// dateParam parses an optional YYYY-MM-DD query parameter.
func dateParam(w http.ResponseWriter, r *http.Request, name string) (models.Date, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return models.Date{}, true
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, name+": "+err.Error())
		return models.Date{}, false
	}
	return d, true
}
