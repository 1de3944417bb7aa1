package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/hongminglow/fintrack-be/internal/http/respond"
	"github.com/hongminglow/fintrack-be/internal/reports"
)

// ReportHandler serves grouped reports and their CSV/PDF exports.
type ReportHandler struct {
	engine    *reports.Engine
	legacyCSV bool
}

func NewReportHandler(engine *reports.Engine, legacyCSV bool) *ReportHandler {
	return &ReportHandler{engine: engine, legacyCSV: legacyCSV}
}

func (h *ReportHandler) Register(mux *http.ServeMux, requireAuth Middleware) {
	mux.Handle("GET /reports/{kind}", requireAuth(http.HandlerFunc(h.handleReport)))
}

func (h *ReportHandler) handleReport(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	kind, err := reports.ParseKind(r.PathValue("kind"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}
	from, ok := dateParam(w, r, "start_date")
	if !ok {
		return
	}
	to, ok := dateParam(w, r, "end_date")
	if !ok {
		return
	}

	report, err := h.engine.Run(r.Context(), uid, kind, from, to)
	if err != nil {
		var kindErr *reports.InvalidKindError
		if errors.As(err, &kindErr) {
			respond.Error(w, r, http.StatusBadRequest, err.Error())
			return
		}
		storeError(w, r, err, "build report")
		return
	}

	switch r.URL.Query().Get("export") {
	case reports.ExportCSV:
		body, err := reports.CSV(report, h.legacyCSV)
		if err != nil {
			h.exportFailed(w, r, err)
			return
		}
		respond.File(w, r, "text/csv", report.Name()+".csv", body)
	case reports.ExportPDF:
		body, err := reports.PDF(report)
		if err != nil {
			h.exportFailed(w, r, err)
			return
		}
		respond.File(w, r, "application/pdf", report.Name()+".pdf", body)
	default:
		respond.JSON(w, r, http.StatusOK, report.Data())
	}
}

func (h *ReportHandler) exportFailed(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("export report")
	respond.Error(w, r, http.StatusInternalServerError, "failed to export report")
}
