package handlers

import (
	"net/http"

	"github.com/hongminglow/fintrack-be/internal/dashboard"
	"github.com/hongminglow/fintrack-be/internal/http/respond"
)

// DashboardHandler serves the home screen summary.
type DashboardHandler struct {
	service *dashboard.Service
}

func NewDashboardHandler(service *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) Register(mux *http.ServeMux, requireAuth Middleware) {
	mux.Handle("GET /dashboard/summary", requireAuth(http.HandlerFunc(h.handleSummary)))
}

func (h *DashboardHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	summary, err := h.service.Summary(r.Context(), uid)
	if err != nil {
		storeError(w, r, err, "build dashboard")
		return
	}
	respond.JSON(w, r, http.StatusOK, summary)
}
