package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	catalog "salesflow/internal/catalog/domain"
)

const defaultCompaniesTable = "companies"
const defaultCompanyTypesTable = "company_types"

// DBTX is the subset of *sql.DB / *sql.Tx the repositories need.
type DBTX interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CompanyRepository is a Postgres implementation for companies.
type CompanyRepository struct {
	db           DBTX
	companies    string
	companyTypes string
}

// NewCompanyRepository constructs a repository.
func NewCompanyRepository(db DBTX, opts ...CompanyOption) *CompanyRepository {
	repo := &CompanyRepository{
		db:           db,
		companies:    defaultCompaniesTable,
		companyTypes: defaultCompanyTypesTable,
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// CompanyOption configures the repository.
type CompanyOption func(*CompanyRepository)

// WithCompaniesTable overrides the default companies table name.
func WithCompaniesTable(table string) CompanyOption {
	return func(repo *CompanyRepository) {
		if table != "" {
			repo.companies = table
		}
	}
}

// WithCompanyTypesTable overrides the default company types table name.
func WithCompanyTypesTable(table string) CompanyOption {
	return func(repo *CompanyRepository) {
		if table != "" {
			repo.companyTypes = table
		}
	}
}

// Get loads a company by id.
func (r *CompanyRepository) Get(ctx context.Context, id int64) (*catalog.Company, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("company repo: nil db")
	}
	if id == 0 {
		return nil, errors.New("company repo: empty id")
	}

	query := fmt.Sprintf(`
SELECT id, name, active, created_at
FROM %s
WHERE id = $1
LIMIT 1`, r.companies)

	var company catalog.Company
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&company.ID,
		&company.Name,
		&company.Active,
		&company.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &company, nil
}

// ListCompanies returns all active companies ordered by name.
func (r *CompanyRepository) ListCompanies(ctx context.Context) ([]catalog.Company, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("company repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT id, name, active, created_at
FROM %s
WHERE active
ORDER BY name`, r.companies)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []catalog.Company
	for rows.Next() {
		var company catalog.Company
		if err := rows.Scan(&company.ID, &company.Name, &company.Active, &company.CreatedAt); err != nil {
			return nil, err
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}

// ListCompanyTypes returns the representation types of one company.
func (r *CompanyRepository) ListCompanyTypes(ctx context.Context, companyID int64) ([]catalog.CompanyType, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("company repo: nil db")
	}
	if companyID == 0 {
		return nil, errors.New("company repo: empty company id")
	}

	query := fmt.Sprintf(`
SELECT id, company_id, name
FROM %s
WHERE company_id = $1
ORDER BY name`, r.companyTypes)

	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []catalog.CompanyType
	for rows.Next() {
		var companyType catalog.CompanyType
		if err := rows.Scan(&companyType.ID, &companyType.CompanyID, &companyType.Name); err != nil {
			return nil, err
		}
		types = append(types, companyType)
	}
	return types, rows.Err()
}
