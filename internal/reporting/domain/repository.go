package reporting

import "context"

// RowFilter scopes a row fetch. CompanyID is required; CompanyTypeID and
// UserID narrow the set when non-zero / non-empty.
type RowFilter struct {
	CompanyID     int64
	CompanyTypeID int64
	UserID        string
}

// StoreResult is the structured outcome of a bulk mutation. A zero Code is
// success; any other code is a business-rule rejection carrying the
// store-provided message. Transport failures surface as errors instead.
type StoreResult struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Moved   int    `json:"moved"`
}

// Rejected reports whether the result is a business-rule rejection.
func (r StoreResult) Rejected() bool {
	return r.Code != 0
}

// ReportStore is the persistence boundary for report rows. Mutations are
// always scoped to a company and an explicit id list; there are no implicit
// all-rows semantics.
type ReportStore interface {
	FetchRows(ctx context.Context, filter RowFilter) ([]RawReportRow, error)
	SendForward(ctx context.Context, companyID int64, ids []int64) (StoreResult, error)
	SendBack(ctx context.Context, companyID int64, notes string, ids []int64) (StoreResult, error)
	DeleteRow(ctx context.Context, id int64) error
}
