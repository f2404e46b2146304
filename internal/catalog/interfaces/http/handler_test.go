package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	catalog "salesflow/internal/catalog/domain"
)

type stubCompanyRepo struct {
	companies []catalog.Company
	types     []catalog.CompanyType
}

func (s *stubCompanyRepo) Get(ctx context.Context, id int64) (*catalog.Company, error) {
	for _, company := range s.companies {
		if company.ID == id {
			c := company
			return &c, nil
		}
	}
	return nil, nil
}

func (s *stubCompanyRepo) ListCompanies(ctx context.Context) ([]catalog.Company, error) {
	return s.companies, nil
}

func (s *stubCompanyRepo) ListCompanyTypes(ctx context.Context, companyID int64) ([]catalog.CompanyType, error) {
	return s.types, nil
}

func TestCompanyList(t *testing.T) {
	repo := &stubCompanyRepo{companies: []catalog.Company{{ID: 1, Name: "Acme", Active: true}}}
	handler, err := NewCompanyHandler(repo)
	if err != nil {
		t.Fatalf("NewCompanyHandler: %v", err)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/companies", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	var payload struct {
		Companies []catalog.Company `json:"companies"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Companies) != 1 || payload.Companies[0].Name != "Acme" {
		t.Fatalf("companies = %+v", payload.Companies)
	}
}

func TestCompanyTypes(t *testing.T) {
	repo := &stubCompanyRepo{
		companies: []catalog.Company{{ID: 1, Name: "Acme", Active: true}},
		types:     []catalog.CompanyType{{ID: 10, CompanyID: 1, Name: "Distribuidor"}},
	}
	handler, err := NewCompanyHandler(repo)
	if err != nil {
		t.Fatalf("NewCompanyHandler: %v", err)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/companies/1/types", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/companies/99/types", nil))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("missing company status = %d, want 404", recorder.Code)
	}
}

func TestCompanyHandlerRejectsWrites(t *testing.T) {
	handler, err := NewCompanyHandler(&stubCompanyRepo{})
	if err != nil {
		t.Fatalf("NewCompanyHandler: %v", err)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/companies", nil))
	if recorder.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", recorder.Code)
	}
}
