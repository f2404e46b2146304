package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"salesflow/internal/auth"
	"salesflow/internal/reporting/application"
	reporting "salesflow/internal/reporting/domain"
	"salesflow/internal/reporting/infrastructure/memory"
)

func newTestHandler(t *testing.T) (*ReportHandler, *memory.ReportRepository) {
	t.Helper()
	repo := memory.NewReportRepository(2026)
	service, err := application.NewWorkflowService(repo)
	if err != nil {
		t.Fatalf("NewWorkflowService: %v", err)
	}
	handler, err := NewReportHandler(service, repo, nil, application.Config{}, nil)
	if err != nil {
		t.Fatalf("NewReportHandler: %v", err)
	}
	return handler, repo
}

func seed(t *testing.T, repo *memory.ReportRepository, companyType, period string, status int) int64 {
	t.Helper()
	repo.Put(memory.Record{
		CompanyID:       1,
		CompanyTypeName: companyType,
		Period:          period,
		Year:            2025,
		Measures:        reporting.YearMeasures{Units: 100, USDValue: 1000, ExchangeRate: 10},
	})
	return repo.Put(memory.Record{
		CompanyID:       1,
		CompanyTypeName: companyType,
		Period:          period,
		Year:            2026,
		Measures:        reporting.YearMeasures{Units: 150, USDValue: 2000, ExchangeRate: 12},
		RowStatusID:     status,
	})
}

func doRequest(handler *ReportHandler, role auth.Role, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req = req.WithContext(auth.WithIdentity(req.Context(), role, "tester", ""))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func TestGridEndpointReturnsProjection(t *testing.T) {
	handler, repo := newTestHandler(t)
	seed(t, repo, "Distribuidor", "Enero", 1)
	seed(t, repo, "Mayorista", "Marzo", 1)

	recorder := doRequest(handler, auth.RoleCarga, http.MethodGet, "/api/v1/reports?company_id=1", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}

	var projection application.Projection
	if err := json.Unmarshal(recorder.Body.Bytes(), &projection); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(projection.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(projection.Rows))
	}
	if projection.Rows[0].Month != "Marzo" {
		t.Fatalf("first month = %q, want Marzo", projection.Rows[0].Month)
	}
	if projection.Totals.RowCount != 2 {
		t.Fatalf("row count = %d", projection.Totals.RowCount)
	}
}

func TestGridEndpointRequiresCompany(t *testing.T) {
	handler, _ := newTestHandler(t)
	recorder := doRequest(handler, auth.RoleCarga, http.MethodGet, "/api/v1/reports", nil)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
}

func TestSendForwardEndpointRefreshesProjection(t *testing.T) {
	handler, repo := newTestHandler(t)
	currID := seed(t, repo, "Distribuidor", "Enero", 1)

	body, _ := json.Marshal(map[string]any{"companyId": 1, "ids": []int64{currID}})
	recorder := doRequest(handler, auth.RoleCarga, http.MethodPost, "/api/v1/reports/send-forward", body)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}

	var outcome application.TransitionOutcome
	if err := json.Unmarshal(recorder.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if outcome.Rejected || outcome.NoOp {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if len(outcome.Projection.Rows) != 1 {
		t.Fatalf("expected refreshed projection")
	}
	row := outcome.Projection.Rows[0]
	if row.IsEnabled || !row.IsSentAhead {
		t.Fatalf("moved row should be sent ahead for carga: %+v", row)
	}

	record, _ := repo.Get(currID)
	if record.RowStatusID != 2 {
		t.Fatalf("status = %d, want 2", record.RowStatusID)
	}
}

func TestSendForwardEmptySelectionIsInformational(t *testing.T) {
	handler, _ := newTestHandler(t)
	body, _ := json.Marshal(map[string]any{"companyId": 1, "ids": []int64{}})
	recorder := doRequest(handler, auth.RoleCarga, http.MethodPost, "/api/v1/reports/send-forward", body)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	var outcome application.TransitionOutcome
	if err := json.Unmarshal(recorder.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !outcome.NoOp || outcome.Message == "" {
		t.Fatalf("expected informational noop, got %+v", outcome)
	}
}

func TestSendBackEndpointCarriesNotes(t *testing.T) {
	handler, repo := newTestHandler(t)
	currID := seed(t, repo, "Distribuidor", "Enero", 2)

	body, _ := json.Marshal(map[string]any{"companyId": 1, "notes": "faltan unidades", "ids": []int64{currID}})
	recorder := doRequest(handler, auth.RoleControl, http.MethodPost, "/api/v1/reports/send-back", body)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}

	record, _ := repo.Get(currID)
	if record.RowStatusID != 1 {
		t.Fatalf("status = %d, want 1", record.RowStatusID)
	}
	if !strings.Contains(record.History, "faltan unidades") {
		t.Fatalf("history = %q", record.History)
	}
}

func TestDeleteEndpoint(t *testing.T) {
	handler, repo := newTestHandler(t)
	currID := seed(t, repo, "Distribuidor", "Enero", 1)

	target := fmt.Sprintf("/api/v1/reports/%d?company_id=1", currID)
	recorder := doRequest(handler, auth.RoleCarga, http.MethodDelete, target, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}

	record, _ := repo.Get(currID)
	if !record.Deleted {
		t.Fatalf("record not deleted")
	}
}

func TestHistoryEndpointParsesMovements(t *testing.T) {
	handler, repo := newTestHandler(t)
	currID := seed(t, repo, "Distribuidor", "Enero", 2)

	body, _ := json.Marshal(map[string]any{"companyId": 1, "notes": "revisar", "ids": []int64{currID}})
	if recorder := doRequest(handler, auth.RoleControl, http.MethodPost, "/api/v1/reports/send-back", body); recorder.Code != http.StatusOK {
		t.Fatalf("send-back status = %d", recorder.Code)
	}

	target := fmt.Sprintf("/api/v1/reports/%d/history", currID)
	recorder := doRequest(handler, auth.RoleControl, http.MethodGet, target, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}

	var payload struct {
		RecordID  int64 `json:"recordId"`
		Movements []struct {
			Direction string `json:"direction"`
			Note      string `json:"note"`
		} `json:"movements"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.RecordID != currID {
		t.Fatalf("record id = %d", payload.RecordID)
	}
	if len(payload.Movements) != 1 {
		t.Fatalf("movements = %d, want 1", len(payload.Movements))
	}
	if payload.Movements[0].Direction != "back" || payload.Movements[0].Note != "revisar" {
		t.Fatalf("movement = %+v", payload.Movements[0])
	}
}

func TestExportEndpoints(t *testing.T) {
	handler, repo := newTestHandler(t)
	seed(t, repo, "Distribuidor", "Enero", 1)

	xlsx := doRequest(handler, auth.RoleCarga, http.MethodGet, "/api/v1/reports/export.xlsx?company_id=1", nil)
	if xlsx.Code != http.StatusOK {
		t.Fatalf("xlsx status = %d, body = %s", xlsx.Code, xlsx.Body.String())
	}
	if got := xlsx.Header().Get("Content-Type"); !strings.Contains(got, "spreadsheetml") {
		t.Fatalf("xlsx content type = %q", got)
	}
	if xlsx.Body.Len() == 0 {
		t.Fatalf("empty xlsx body")
	}

	pdf := doRequest(handler, auth.RoleCarga, http.MethodGet, "/api/v1/reports/export.pdf?company_id=1", nil)
	if pdf.Code != http.StatusOK {
		t.Fatalf("pdf status = %d", pdf.Code)
	}
	if got := pdf.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("pdf content type = %q", got)
	}
	if !bytes.HasPrefix(pdf.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("pdf body missing magic header")
	}
}

func TestUnknownRouteIsRejected(t *testing.T) {
	handler, _ := newTestHandler(t)
	recorder := doRequest(handler, auth.RoleCarga, http.MethodPut, "/api/v1/reports/send-forward", nil)
	if recorder.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", recorder.Code)
	}
}
