package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	catalog "salesflow/internal/catalog/domain"
)

// CompanyHandler serves the company catalog under /api/v1/companies.
type CompanyHandler struct {
	repo catalog.CompanyRepository
}

// NewCompanyHandler constructs a handler.
func NewCompanyHandler(repo catalog.CompanyRepository) (*CompanyHandler, error) {
	if repo == nil {
		return nil, errors.New("company handler: nil repository")
	}
	return &CompanyHandler{repo: repo}, nil
}

// ServeHTTP routes requests under /api/v1/companies.
func (h *CompanyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/companies")
	rest = strings.Trim(rest, "/")

	switch {
	case rest == "":
		h.handleList(w, r)
	case strings.HasSuffix(rest, "/types"):
		h.handleTypes(w, r, strings.TrimSuffix(rest, "/types"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *CompanyHandler) handleList(w http.ResponseWriter, r *http.Request) {
	companies, err := h.repo.ListCompanies(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"companies": companies})
}

func (h *CompanyHandler) handleTypes(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id == 0 {
		http.Error(w, "invalid company id", http.StatusBadRequest)
		return
	}
	company, err := h.repo.Get(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if company == nil {
		http.Error(w, "company not found", http.StatusNotFound)
		return
	}
	types, err := h.repo.ListCompanyTypes(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"company": company, "types": types})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
