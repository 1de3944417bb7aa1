package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/hongminglow/fintrack-be/internal/alerts"
	"github.com/hongminglow/fintrack-be/internal/http/respond"
	"github.com/hongminglow/fintrack-be/internal/models"
	"github.com/hongminglow/fintrack-be/internal/models/dto"
	"github.com/hongminglow/fintrack-be/internal/storage"
	"github.com/hongminglow/fintrack-be/internal/validation"
)

// TransactionHandler serves CRUD for the caller's transactions.
type TransactionHandler struct {
	store    storage.TransactionStore
	alerts   *alerts.Checker
	validate *validation.Validator
}

// NewTransactionHandler constructs the handler. checker may be nil to
// disable budget alerts.
func NewTransactionHandler(store storage.TransactionStore, checker *alerts.Checker, validate *validation.Validator) *TransactionHandler {
	return &TransactionHandler{store: store, alerts: checker, validate: validate}
}

// Register attaches transaction routes to the mux.
func (h *TransactionHandler) Register(mux *http.ServeMux, requireAuth Middleware) {
	mux.Handle("GET /transactions", requireAuth(http.HandlerFunc(h.handleList)))
	mux.Handle("POST /transactions", requireAuth(http.HandlerFunc(h.handleCreate)))
	mux.Handle("GET /transactions/{id}", requireAuth(http.HandlerFunc(h.handleGet)))
	mux.Handle("PUT /transactions/{id}", requireAuth(http.HandlerFunc(h.handleUpdate)))
	mux.Handle("DELETE /transactions/{id}", requireAuth(http.HandlerFunc(h.handleDelete)))
}

func (h *TransactionHandler) handleList(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := storage.TransactionFilter{
		Type:     strings.TrimSpace(q.Get("type")),
		Category: strings.TrimSpace(q.Get("category")),
	}
	if filter.Type != "" && filter.Type != models.TypeIncome && filter.Type != models.TypeExpense {
		respond.Error(w, r, http.StatusBadRequest, "type must be income or expense")
		return
	}
	if filter.From, ok = dateParam(w, r, "start_date"); !ok {
		return
	}
	if filter.To, ok = dateParam(w, r, "end_date"); !ok {
		return
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respond.Error(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = n
	}

	txns, err := h.store.ListTransactions(r.Context(), uid, filter)
	if err != nil {
		storeError(w, r, err, "list transactions")
		return
	}
	respond.JSON(w, r, http.StatusOK, txns)
}

func (h *TransactionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req dto.TransactionRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	created, err := h.store.CreateTransaction(r.Context(), req.ToModel(uid))
	if err != nil {
		storeError(w, r, err, "create transaction")
		return
	}
	h.alerts.CheckExpense(r.Context(), created)
	respond.JSON(w, r, http.StatusCreated, created)
}

func (h *TransactionHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	txn, err := h.store.GetTransaction(r.Context(), uid, id)
	if err != nil {
		storeError(w, r, err, "fetch transaction")
		return
	}
	respond.JSON(w, r, http.StatusOK, txn)
}

func (h *TransactionHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dto.TransactionRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	txn := req.ToModel(uid)
	txn.ID = id
	updated, err := h.store.UpdateTransaction(r.Context(), txn)
	if err != nil {
		storeError(w, r, err, "update transaction")
		return
	}
	h.alerts.CheckExpense(r.Context(), updated)
	respond.JSON(w, r, http.StatusOK, updated)
}

func (h *TransactionHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteTransaction(r.Context(), uid, id); err != nil {
		storeError(w, r, err, "delete transaction")
		return
	}
	respond.NoContent(w)
}
