package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hongminglow/fintrack-be/internal/auth"
	"github.com/hongminglow/fintrack-be/internal/http/respond"
	"github.com/hongminglow/fintrack-be/internal/logging"
	"github.com/hongminglow/fintrack-be/internal/models"
	"github.com/hongminglow/fintrack-be/internal/models/dto"
	"github.com/hongminglow/fintrack-be/internal/storage"
	"github.com/hongminglow/fintrack-be/internal/validation"
)

// Login failure messages. Clients key off this exact text.
const (
	msgUnknownUser     = "User does not exist."
	msgInvalidPassword = "Invalid password."
)

// AuthHandler owns the account endpoints: register, login, logout, token
// refresh and the active-account lookup.
type AuthHandler struct {
	store    storage.UserStore
	tokens   *auth.TokenManager
	validate *validation.Validator
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(store storage.UserStore, tokens *auth.TokenManager, validate *validation.Validator) *AuthHandler {
	return &AuthHandler{store: store, tokens: tokens, validate: validate}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux, requireAuth Middleware) {
	mux.HandleFunc("POST /register", h.handleRegister)
	mux.HandleFunc("POST /login", h.handleLogin)
	mux.HandleFunc("POST /logout", h.handleLogout)
	mux.HandleFunc("POST /token/refresh", h.handleRefresh)
	mux.Handle("GET /accounts/active", requireAuth(http.HandlerFunc(h.handleActive)))
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	ctx := r.Context()

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("hash password")
		respond.Error(w, r, http.StatusInternalServerError, "failed to hash password")
		return
	}

	created, err := h.store.CreateUser(ctx, models.User{
		Email:        strings.TrimSpace(req.Email),
		Name:         strings.TrimSpace(req.Name),
		Preferences:  models.DefaultPreferences(),
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			logging.Audit(ctx, "register", 0, logging.OutcomeFailure, "duplicate email")
			respond.Validation(w, r, map[string]string{"email": "A user with this email already exists."})
			return
		}
		storeError(w, r, err, "create user")
		return
	}

	// A reused id must not inherit rows left behind by a previous owner.
	if err := h.store.PurgeUserData(ctx, created.ID); err != nil {
		storeError(w, r, err, "initialise user data")
		return
	}

	pair, err := h.tokens.GeneratePair(created)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("issue tokens")
		respond.Error(w, r, http.StatusInternalServerError, "failed to generate token")
		return
	}
	logging.Audit(ctx, "register", created.ID, logging.OutcomeSuccess, "")
	respond.JSON(w, r, http.StatusCreated, dto.AuthResponse{Token: pair.Access, Refresh: pair.Refresh, User: created})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	ctx := r.Context()

	user, err := h.store.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logging.Audit(ctx, "login", 0, logging.OutcomeFailure, "unknown user")
			respond.Error(w, r, http.StatusUnauthorized, msgUnknownUser)
			return
		}
		storeError(w, r, err, "fetch user")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		logging.Audit(ctx, "login", user.ID, logging.OutcomeFailure, "invalid password")
		respond.Error(w, r, http.StatusUnauthorized, msgInvalidPassword)
		return
	}

	pair, err := h.tokens.GeneratePair(user)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("issue tokens")
		respond.Error(w, r, http.StatusInternalServerError, "failed to generate token")
		return
	}
	logging.Audit(ctx, "login", user.ID, logging.OutcomeSuccess, "")
	respond.JSON(w, r, http.StatusOK, dto.AuthResponse{Token: pair.Access, Refresh: pair.Refresh, User: user})
}

// Tokens are stateless, so logout only acknowledges the request.
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if uid, ok := h.bearerUser(r); ok {
		logging.Audit(r.Context(), "logout", uid, logging.OutcomeSuccess, "")
	}
	respond.JSON(w, r, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (h *AuthHandler) bearerUser(r *http.Request) (int64, bool) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return 0, false
	}
	claims, err := h.tokens.Parse(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	uid, err := claims.UserID()
	return uid, err == nil
}

func (h *AuthHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	ctx := r.Context()

	claims, err := h.tokens.ParseRefresh(req.Refresh)
	if err != nil {
		logging.Audit(ctx, "token_refresh", 0, logging.OutcomeFailure, "invalid token")
		respond.Error(w, r, http.StatusUnauthorized, "Token is invalid or expired")
		return
	}
	uid, _ := claims.UserID()
	user, err := h.store.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, r, http.StatusUnauthorized, msgUnknownUser)
			return
		}
		storeError(w, r, err, "fetch user")
		return
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("issue access token")
		respond.Error(w, r, http.StatusInternalServerError, "failed to generate token")
		return
	}
	logging.Audit(ctx, "token_refresh", user.ID, logging.OutcomeSuccess, "")
	respond.JSON(w, r, http.StatusOK, dto.RefreshResponse{Token: token})
}

func (h *AuthHandler) handleActive(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	user, err := h.store.FindByID(r.Context(), uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, r, http.StatusUnauthorized, msgUnknownUser)
			return
		}
		storeError(w, r, err, "fetch user")
		return
	}
	respond.JSON(w, r, http.StatusOK, []dto.ActiveAccount{{
		ID:       user.ID,
		Email:    user.Email,
		Name:     user.Name,
		Avatar:   user.Avatar,
		IsActive: true,
	}})
}
