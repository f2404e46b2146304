package catalog

import (
	"context"
	"errors"
	"time"
)

// Company is a reporting company whose figures move through the pipeline.
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// CompanyType is a representation slice of a company's sales figures.
type CompanyType struct {
	ID        int64  `json:"id"`
	CompanyID int64  `json:"companyId"`
	Name      string `json:"name"`
}

// Validate checks company invariants.
func (c Company) Validate() error {
	if c.ID == 0 {
		return errors.New("company: empty id")
	}
	if c.Name == "" {
		return errors.New("company: empty name")
	}
	return nil
}

// CompanyRepository manages company persistence.
type CompanyRepository interface {
	Get(ctx context.Context, id int64) (*Company, error)
	ListCompanies(ctx context.Context) ([]Company, error)
	ListCompanyTypes(ctx context.Context, companyID int64) ([]CompanyType, error)
}
