package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/hongminglow/fintrack-be/internal/http/respond"
	"github.com/hongminglow/fintrack-be/internal/models"
	"github.com/hongminglow/fintrack-be/internal/models/dto"
	"github.com/hongminglow/fintrack-be/internal/reports"
	"github.com/hongminglow/fintrack-be/internal/storage"
	"github.com/hongminglow/fintrack-be/internal/validation"
)

// BudgetHandler serves CRUD for the caller's budgets. Every budget in a
// response carries what has been spent in its current period.
type BudgetHandler struct {
	store    storage.BudgetStore
	engine   *reports.Engine
	validate *validation.Validator
	loc      *time.Location
	now      func() time.Time
}

// NewBudgetHandler constructs the handler.
func NewBudgetHandler(store storage.BudgetStore, engine *reports.Engine, validate *validation.Validator, loc *time.Location, now func() time.Time) *BudgetHandler {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &BudgetHandler{store: store, engine: engine, validate: validate, loc: loc, now: now}
}

// Register attaches budget routes to the mux.
func (h *BudgetHandler) Register(mux *http.ServeMux, requireAuth Middleware) {
	mux.Handle("GET /budgets", requireAuth(http.HandlerFunc(h.handleList)))
	mux.Handle("POST /budgets", requireAuth(http.HandlerFunc(h.handleCreate)))
	mux.Handle("GET /budgets/{id}", requireAuth(http.HandlerFunc(h.handleGet)))
	mux.Handle("PUT /budgets/{id}", requireAuth(http.HandlerFunc(h.handleUpdate)))
	mux.Handle("DELETE /budgets/{id}", requireAuth(http.HandlerFunc(h.handleDelete)))
}

func (h *BudgetHandler) today() models.Date {
	return models.NewDate(h.now().In(h.loc))
}

// withUsage writes budgets with their spend attached; single selects an
// object body instead of a list.
func (h *BudgetHandler) withUsage(w http.ResponseWriter, r *http.Request, uid int64, status int, budgets []models.Budget, single bool) {
	usage, err := h.engine.Usage(r.Context(), uid, budgets, h.today())
	if err != nil {
		storeError(w, r, err, "compute budget usage")
		return
	}
	if single {
		respond.JSON(w, r, status, usage[0])
		return
	}
	respond.JSON(w, r, status, usage)
}

func (h *BudgetHandler) handleList(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	budgets, err := h.store.ListBudgets(r.Context(), uid, strings.TrimSpace(r.URL.Query().Get("category")))
	if err != nil {
		storeError(w, r, err, "list budgets")
		return
	}
	h.withUsage(w, r, uid, http.StatusOK, budgets, false)
}

func (h *BudgetHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req dto.BudgetRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	created, err := h.store.CreateBudget(r.Context(), req.ToModel(uid))
	if err != nil {
		storeError(w, r, err, "create budget")
		return
	}
	h.withUsage(w, r, uid, http.StatusCreated, []models.Budget{created}, true)
}

func (h *BudgetHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	budget, err := h.store.GetBudget(r.Context(), uid, id)
	if err != nil {
		storeError(w, r, err, "fetch budget")
		return
	}
	h.withUsage(w, r, uid, http.StatusOK, []models.Budget{budget}, true)
}

func (h *BudgetHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dto.BudgetRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	budget := req.ToModel(uid)
	budget.ID = id
	updated, err := h.store.UpdateBudget(r.Context(), budget)
	if err != nil {
		storeError(w, r, err, "update budget")
		return
	}
	h.withUsage(w, r, uid, http.StatusOK, []models.Budget{updated}, true)
}

func (h *BudgetHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteBudget(r.Context(), uid, id); err != nil {
		storeError(w, r, err, "delete budget")
		return
	}
	respond.NoContent(w)
}
