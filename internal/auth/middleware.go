package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hongminglow/fintrack-be/internal/http/respond"
	"github.com/hongminglow/fintrack-be/internal/logging"
)

type ctxKey string

const userIDKey ctxKey = "user_id"

// Middleware rejects requests without a valid bearer access token and
// stores the caller's id in the request context.
func (t *TokenManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			respond.Error(w, r, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}

		claims, err := t.Parse(strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")))
		if err != nil {
			respond.Error(w, r, http.StatusUnauthorized, "Given token not valid for any token type")
			return
		}
		uid, _ := claims.UserID()

		ctx := WithUserID(r.Context(), uid)
		logger := zerolog.Ctx(ctx).With().Int64(logging.FieldUserID, uid).Logger()
		ctx = logger.WithContext(ctx)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	uid, ok := ctx.Value(userIDKey).(int64)
	return uid, ok && uid > 0
}
