package auth

import (
	"context"
	"errors"
	"strconv"

	catalogrepo "salesflow/internal/catalog/infrastructure/postgres"
)

var (
	// ErrCompanyMismatch indicates the session is scoped to a different company.
	ErrCompanyMismatch = errors.New("company mismatch")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("resource not found")
)

// CompanyAccessChecker validates company ownership for a session.
type CompanyAccessChecker interface {
	EnsureCompanyAccess(ctx context.Context, companyID int64) error
}

// CompanyChecker checks company access using the catalog.
type CompanyChecker struct {
	repo *catalogrepo.CompanyRepository
}

// NewCompanyChecker constructs a CompanyChecker.
func NewCompanyChecker(db catalogrepo.DBTX) *CompanyChecker {
	if db == nil {
		return nil
	}
	return &CompanyChecker{repo: catalogrepo.NewCompanyRepository(db)}
}

// EnsureCompanyAccess verifies the company exists and, when the session
// carries a company scope, that it matches.
func (c *CompanyChecker) EnsureCompanyAccess(ctx context.Context, companyID int64) error {
	if c == nil || c.repo == nil {
		return nil
	}
	if companyID == 0 {
		return nil
	}
	company, err := c.repo.Get(ctx, companyID)
	if err != nil {
		return err
	}
	if company == nil {
		return ErrNotFound
	}
	scope := CompanyIDFromContext(ctx)
	if scope == "" {
		return nil
	}
	scoped, err := strconv.ParseInt(scope, 10, 64)
	if err != nil || scoped != companyID {
		return ErrCompanyMismatch
	}
	return nil
}
