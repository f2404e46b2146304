package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"salesflow/internal/auth"
	reporting "salesflow/internal/reporting/domain"
)

// DBTX is the minimal database handle the repository needs.
type DBTX interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ReportRepository persists report rows in PostgreSQL.
type ReportRepository struct {
	db           DBTX
	reports      string
	companyTypes string
	now          func() time.Time
}

// ReportRepositoryOption configures the repository.
type ReportRepositoryOption func(*ReportRepository)

// WithReportsTable overrides the reports table name.
func WithReportsTable(name string) ReportRepositoryOption {
	return func(r *ReportRepository) { r.reports = name }
}

// WithCompanyTypesTable overrides the company types table name.
func WithCompanyTypesTable(name string) ReportRepositoryOption {
	return func(r *ReportRepository) { r.companyTypes = name }
}

// WithClock overrides the repository clock.
func WithClock(now func() time.Time) ReportRepositoryOption {
	return func(r *ReportRepository) { r.now = now }
}

// NewReportRepository constructs a report repository.
func NewReportRepository(db DBTX, opts ...ReportRepositoryOption) (*ReportRepository, error) {
	if db == nil {
		return nil, errors.New("report repo: nil db")
	}
	repo := &ReportRepository{
		db:           db,
		reports:      "data_reports",
		companyTypes: "company_types",
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo, nil
}

// FetchRows loads all report rows for the filter's company, pairing the
// current-year and previous-year measurement instances per company type and
// period. The current year is the repository clock's year.
func (r *ReportRepository) FetchRows(ctx context.Context, filter reporting.RowFilter) ([]reporting.RawReportRow, error) {
	if filter.CompanyID == 0 {
		return nil, reporting.ErrEmptyCompany
	}
	currentYear := r.now().UTC().Year()

	query := fmt.Sprintf(`
SELECT ct.name, rep.period, rep.year, rep.id,
       rep.units, rep.units_converted, rep.average_price,
       rep.local_value, rep.usd_value, rep.exchange_rate,
       rep.row_status_id
FROM %s rep
JOIN %s ct ON ct.id = rep.company_type_id
WHERE rep.company_id = $1
  AND NOT rep.deleted
  AND rep.year IN ($2, $3)`, r.reports, r.companyTypes)
	args := []any{filter.CompanyID, currentYear - 1, currentYear}
	if filter.CompanyTypeID != 0 {
		args = append(args, filter.CompanyTypeID)
		query += fmt.Sprintf("\n  AND rep.company_type_id = $%d", len(args))
	}
	query += "\nORDER BY ct.name, rep.period, rep.year"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type rowKey struct {
		companyType string
		period      string
	}
	paired := map[rowKey]*reporting.RawReportRow{}
	var order []rowKey

	for rows.Next() {
		var (
			companyType string
			period      string
			year        int
			measures    reporting.YearMeasures
			statusID    sql.NullInt64
		)
		if err := rows.Scan(
			&companyType, &period, &year, &measures.RecordID,
			&measures.Units, &measures.UnitsConverted, &measures.AveragePrice,
			&measures.LocalCurrencyValue, &measures.USDValue, &measures.ExchangeRate,
			&statusID,
		); err != nil {
			return nil, err
		}

		key := rowKey{companyType: companyType, period: period}
		pair, ok := paired[key]
		if !ok {
			pair = &reporting.RawReportRow{
				CompanyTypeName: companyType,
				Period:          period,
				HasRoleAccess:   true,
			}
			paired[key] = pair
			order = append(order, key)
		}
		if year == currentYear {
			pair.CurrentYear = measures
			pair.RowStatusID = int(reporting.IntOrZero(statusID.Int64, statusID.Valid))
		} else {
			pair.PreviousYear = measures
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]reporting.RawReportRow, 0, len(order))
	for _, key := range order {
		result = append(result, *paired[key])
	}
	return result, nil
}

// SendForward advances the selected records one stage. Records already at
// the terminal stage, deleted, or outside the company are left untouched;
// when nothing moves the result is a rejection carrying the reason.
func (r *ReportRepository) SendForward(ctx context.Context, companyID int64, ids []int64) (reporting.StoreResult, error) {
	if companyID == 0 {
		return reporting.StoreResult{}, reporting.ErrEmptyCompany
	}
	if len(ids) == 0 {
		return reporting.StoreResult{}, nil
	}

	line := r.historyLine(ctx, "enviado adelante", "")
	args := []any{companyID, line}
	query := fmt.Sprintf(`
UPDATE %s SET
	row_status_id = row_status_id + 1,
	history = COALESCE(history, '') || $2,
	updated_at = NOW()
WHERE company_id = $1
  AND NOT deleted
  AND row_status_id < %d
  AND id IN (%s)`, r.reports, int(reporting.StageFinalizado), placeholders(len(args)+1, ids, &args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return reporting.StoreResult{}, err
	}
	moved, err := result.RowsAffected()
	if err != nil {
		return reporting.StoreResult{}, err
	}
	if moved == 0 {
		return reporting.StoreResult{Code: 1, Message: "Ningún registro seleccionado pudo avanzar de etapa."}, nil
	}
	return reporting.StoreResult{Moved: int(moved)}, nil
}

// SendBack returns the selected records one stage, appending the review
// note to each record's movement history.
func (r *ReportRepository) SendBack(ctx context.Context, companyID int64, notes string, ids []int64) (reporting.StoreResult, error) {
	if companyID == 0 {
		return reporting.StoreResult{}, reporting.ErrEmptyCompany
	}
	if len(ids) == 0 {
		return reporting.StoreResult{}, nil
	}

	line := r.historyLine(ctx, "devolvió a la etapa anterior", notes)
	args := []any{companyID, line}
	query := fmt.Sprintf(`
UPDATE %s SET
	row_status_id = row_status_id - 1,
	history = COALESCE(history, '') || $2,
	updated_at = NOW()
WHERE company_id = $1
  AND NOT deleted
  AND row_status_id > %d
  AND id IN (%s)`, r.reports, int(reporting.StageCarga), placeholders(len(args)+1, ids, &args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return reporting.StoreResult{}, err
	}
	moved, err := result.RowsAffected()
	if err != nil {
		return reporting.StoreResult{}, err
	}
	if moved == 0 {
		return reporting.StoreResult{Code: 2, Message: "Ningún registro seleccionado pudo volver de etapa."}, nil
	}
	return reporting.StoreResult{Moved: int(moved)}, nil
}

// DeleteRow soft-deletes a record. Only records still at the initial stage
// can be deleted.
func (r *ReportRepository) DeleteRow(ctx context.Context, id int64) error {
	if id == 0 {
		return reporting.ErrEmptyRecordID
	}
	query := fmt.Sprintf(`
UPDATE %s SET deleted = TRUE, updated_at = NOW()
WHERE id = $1
  AND NOT deleted
  AND row_status_id = %d`, r.reports, int(reporting.StageCarga))
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return reporting.ErrRecordNotFound
	}
	return nil
}

// FetchHistory loads a record's raw movement history blob.
func (r *ReportRepository) FetchHistory(ctx context.Context, id int64) (string, error) {
	if id == 0 {
		return "", reporting.ErrEmptyRecordID
	}
	query := fmt.Sprintf(`SELECT COALESCE(history, '') FROM %s WHERE id = $1 AND NOT deleted`, r.reports)
	var history string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&history)
	if errors.Is(err, sql.ErrNoRows) {
		return "", reporting.ErrRecordNotFound
	}
	if err != nil {
		return "", err
	}
	return history, nil
}

// historyLine formats one movement-history line in the canonical format the
// history parser recognizes first.
func (r *ReportRepository) historyLine(ctx context.Context, verb, notes string) string {
	stage := "Desconocido"
	if expected, ok := reporting.ExpectedStage(auth.RoleFromContext(ctx)); ok {
		stage = expected.String()
	}
	actor := auth.SubjectFromContext(ctx)
	if actor == "" {
		actor = "sistema"
	}
	line := fmt.Sprintf("\n%s - %s (%s) %s", r.now().UTC().Format("2006-01-02 15:04"), stage, actor, verb)
	if notes != "" {
		line += ". Obs: " + notes
	}
	return line
}

// placeholders appends ids to args and renders the matching $n list,
// numbering from start.
func placeholders(start int, ids []int64, args *[]any) string {
	parts := make([]string, 0, len(ids))
	for i, id := range ids {
		*args = append(*args, id)
		parts = append(parts, fmt.Sprintf("$%d", start+i))
	}
	return strings.Join(parts, ",")
}
