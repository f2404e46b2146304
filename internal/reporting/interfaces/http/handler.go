package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"salesflow/internal/audit"
	"salesflow/internal/auth"
	"salesflow/internal/observability/metrics"
	"salesflow/internal/reporting/application"
	reporting "salesflow/internal/reporting/domain"
)

// HistorySource loads a record's raw movement history.
type HistorySource interface {
	FetchHistory(ctx context.Context, id int64) (string, error)
}

// ReportHandler serves the report grid, bulk transitions, deletions,
// history, and exports under /api/v1/reports.
type ReportHandler struct {
	service     *application.WorkflowService
	history     HistorySource
	checker     auth.CompanyAccessChecker
	config      application.Config
	auditLogger audit.Logger
}

// NewReportHandler constructs a handler.
func NewReportHandler(service *application.WorkflowService, history HistorySource, checker auth.CompanyAccessChecker, config application.Config, auditLogger audit.Logger) (*ReportHandler, error) {
	if service == nil {
		return nil, errors.New("report handler: nil service")
	}
	return &ReportHandler{
		service:     service,
		history:     history,
		checker:     checker,
		config:      config,
		auditLogger: auditLogger,
	}, nil
}

type transitionRequest struct {
	CompanyID     int64   `json:"companyId"`
	CompanyTypeID int64   `json:"companyTypeId"`
	Notes         string  `json:"notes"`
	IDs           []int64 `json:"ids"`
}

// ServeHTTP routes requests under /api/v1/reports.
func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/reports")
	rest = strings.Trim(rest, "/")

	switch {
	case rest == "" && r.Method == http.MethodGet:
		h.handleGrid(w, r)
	case rest == "send-forward" && r.Method == http.MethodPost:
		h.handleTransition(w, r, application.DirectionForward)
	case rest == "send-back" && r.Method == http.MethodPost:
		h.handleTransition(w, r, application.DirectionBack)
	case rest == "export.xlsx" && r.Method == http.MethodGet:
		h.handleExport(w, r, "xlsx")
	case rest == "export.pdf" && r.Method == http.MethodGet:
		h.handleExport(w, r, "pdf")
	case strings.HasSuffix(rest, "/history") && r.Method == http.MethodGet:
		h.handleHistory(w, r, strings.TrimSuffix(rest, "/history"))
	case rest != "" && !strings.Contains(rest, "/") && r.Method == http.MethodDelete:
		h.handleDelete(w, r, rest)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *ReportHandler) handleGrid(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.filterFromQuery(w, r)
	if !ok {
		return
	}
	projection, err := h.service.Grid(r.Context(), filter)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projection)
}

func (h *ReportHandler) handleTransition(w http.ResponseWriter, r *http.Request, direction string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body error", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var req transitionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.CompanyID == 0 {
		http.Error(w, "companyId required", http.StatusBadRequest)
		return
	}
	if !h.ensureCompany(w, r, req.CompanyID) {
		return
	}

	filter := reporting.RowFilter{CompanyID: req.CompanyID, CompanyTypeID: req.CompanyTypeID}
	var outcome *application.TransitionOutcome
	if direction == application.DirectionForward {
		outcome, err = h.service.SendForward(r.Context(), filter, req.IDs)
	} else {
		outcome, err = h.service.SendBack(r.Context(), filter, req.Notes, req.IDs)
	}
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (h *ReportHandler) handleDelete(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id == 0 {
		http.Error(w, "invalid record id", http.StatusBadRequest)
		return
	}
	filter, ok := h.filterFromQuery(w, r)
	if !ok {
		return
	}
	projection, err := h.service.Delete(r.Context(), filter, id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projection)
}

func (h *ReportHandler) handleHistory(w http.ResponseWriter, r *http.Request, rawID string) {
	if h.history == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id == 0 {
		http.Error(w, "invalid record id", http.StatusBadRequest)
		return
	}
	blob, err := h.history.FetchHistory(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"recordId":  id,
		"movements": audit.ParseMovements(blob),
	})
}

func (h *ReportHandler) handleExport(w http.ResponseWriter, r *http.Request, format string) {
	start := time.Now()
	filter, ok := h.filterFromQuery(w, r)
	if !ok {
		return
	}
	projection, err := h.service.Grid(r.Context(), filter)
	if err != nil {
		metrics.ObserveExport(format, metrics.ResultError, time.Since(start))
		h.fail(w, err)
		return
	}

	style := h.config.ExportStyleForCompany(strconv.FormatInt(filter.CompanyID, 10))
	var (
		payload     []byte
		contentType string
		filename    string
	)
	switch format {
	case "xlsx":
		payload, err = BuildGridXLSX(projection, style)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		filename = "informes.xlsx"
	default:
		payload, err = BuildGridPDF(projection, style)
		contentType = "application/pdf"
		filename = "informes.pdf"
	}
	if err != nil {
		metrics.ObserveExport(format, metrics.ResultError, time.Since(start))
		h.fail(w, err)
		return
	}
	metrics.ObserveExport(format, metrics.ResultSuccess, time.Since(start))

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(payload)
	h.logExportAudit(r, filter.CompanyID, format)
}

func (h *ReportHandler) filterFromQuery(w http.ResponseWriter, r *http.Request) (reporting.RowFilter, bool) {
	query := r.URL.Query()
	companyID, err := strconv.ParseInt(query.Get("company_id"), 10, 64)
	if err != nil || companyID == 0 {
		http.Error(w, "company_id required", http.StatusBadRequest)
		return reporting.RowFilter{}, false
	}
	filter := reporting.RowFilter{CompanyID: companyID}
	if raw := query.Get("company_type_id"); raw != "" {
		companyTypeID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid company_type_id", http.StatusBadRequest)
			return reporting.RowFilter{}, false
		}
		filter.CompanyTypeID = companyTypeID
	}
	if !h.ensureCompany(w, r, companyID) {
		return reporting.RowFilter{}, false
	}
	return filter, true
}

func (h *ReportHandler) ensureCompany(w http.ResponseWriter, r *http.Request, companyID int64) bool {
	if h.checker == nil {
		return true
	}
	err := h.checker.EnsureCompanyAccess(r.Context(), companyID)
	switch {
	case err == nil:
		return true
	case errors.Is(err, auth.ErrCompanyMismatch):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, auth.ErrNotFound):
		http.Error(w, "company not found", http.StatusNotFound)
	default:
		http.Error(w, "company check failed", http.StatusInternalServerError)
	}
	return false
}

func (h *ReportHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reporting.ErrEmptyCompany), errors.Is(err, reporting.ErrEmptyRecordID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, reporting.ErrRecordNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *ReportHandler) logExportAudit(r *http.Request, companyID int64, format string) {
	if h.auditLogger == nil {
		return
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       "report.export",
		ResourceType: "report_grid",
		ResourceID:   format,
		CompanyID:    companyID,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
