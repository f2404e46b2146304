package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	reporting "salesflow/internal/reporting/domain"
)

// Record is one stored measurement instance.
type Record struct {
	ID              int64
	CompanyID       int64
	CompanyTypeID   int64
	CompanyTypeName string
	Period          string
	Year            int
	Measures        reporting.YearMeasures
	RowStatusID     int
	History         string
	Deleted         bool
}

// ReportRepository is an in-memory ReportStore for tests and local runs.
type ReportRepository struct {
	mu          sync.RWMutex
	records     map[int64]*Record
	nextID      int64
	currentYear int
}

// NewReportRepository constructs an empty repository with the given
// current year.
func NewReportRepository(currentYear int) *ReportRepository {
	if currentYear == 0 {
		currentYear = time.Now().UTC().Year()
	}
	return &ReportRepository{
		records:     map[int64]*Record{},
		nextID:      1,
		currentYear: currentYear,
	}
}

// Put stores a record, assigning an id when missing, and returns the id.
func (r *ReportRepository) Put(record Record) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record.ID == 0 {
		record.ID = r.nextID
		r.nextID++
	} else if record.ID >= r.nextID {
		r.nextID = record.ID + 1
	}
	stored := record
	r.records[record.ID] = &stored
	return record.ID
}

// Get returns a copy of a record.
func (r *ReportRepository) Get(id int64) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[id]
	if !ok {
		return Record{}, false
	}
	return *record, true
}

// FetchRows pairs current-year and previous-year records per company type
// and period for the filter's company.
func (r *ReportRepository) FetchRows(ctx context.Context, filter reporting.RowFilter) ([]reporting.RawReportRow, error) {
	if filter.CompanyID == 0 {
		return nil, reporting.ErrEmptyCompany
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	type rowKey struct {
		companyType string
		period      string
	}
	paired := map[rowKey]*reporting.RawReportRow{}
	var keys []rowKey

	for _, record := range r.records {
		if record.Deleted || record.CompanyID != filter.CompanyID {
			continue
		}
		if filter.CompanyTypeID != 0 && record.CompanyTypeID != filter.CompanyTypeID {
			continue
		}
		if record.Year != r.currentYear && record.Year != r.currentYear-1 {
			continue
		}
		key := rowKey{companyType: record.CompanyTypeName, period: record.Period}
		pair, ok := paired[key]
		if !ok {
			pair = &reporting.RawReportRow{
				CompanyTypeName: record.CompanyTypeName,
				Period:          record.Period,
				HasRoleAccess:   true,
			}
			paired[key] = pair
			keys = append(keys, key)
		}
		if record.Year == r.currentYear {
			pair.CurrentYear = record.Measures
			pair.CurrentYear.RecordID = record.ID
			pair.RowStatusID = record.RowStatusID
		} else {
			pair.PreviousYear = record.Measures
			pair.PreviousYear.RecordID = record.ID
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].companyType != keys[j].companyType {
			return keys[i].companyType < keys[j].companyType
		}
		return keys[i].period < keys[j].period
	})

	result := make([]reporting.RawReportRow, 0, len(keys))
	for _, key := range keys {
		result = append(result, *paired[key])
	}
	return result, nil
}

// SendForward advances matching records one stage.
func (r *ReportRepository) SendForward(ctx context.Context, companyID int64, ids []int64) (reporting.StoreResult, error) {
	return r.move(companyID, ids, +1, "enviado adelante", "")
}

// SendBack returns matching records one stage.
func (r *ReportRepository) SendBack(ctx context.Context, companyID int64, notes string, ids []int64) (reporting.StoreResult, error) {
	return r.move(companyID, ids, -1, "devolvió a la etapa anterior", notes)
}

func (r *ReportRepository) move(companyID int64, ids []int64, delta int, verb, notes string) (reporting.StoreResult, error) {
	if companyID == 0 {
		return reporting.StoreResult{}, reporting.ErrEmptyCompany
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	moved := 0
	for _, id := range ids {
		record, ok := r.records[id]
		if !ok || record.Deleted || record.CompanyID != companyID {
			continue
		}
		next := record.RowStatusID + delta
		if next < int(reporting.StageCarga) || next > int(reporting.StageFinalizado) {
			continue
		}
		record.RowStatusID = next
		line := fmt.Sprintf("\n%s - (sistema) %s", time.Now().UTC().Format("2006-01-02 15:04"), verb)
		if notes != "" {
			line += ". Obs: " + notes
		}
		record.History += line
		moved++
	}
	if moved == 0 {
		if delta > 0 {
			return reporting.StoreResult{Code: 1, Message: "Ningún registro seleccionado pudo avanzar de etapa."}, nil
		}
		return reporting.StoreResult{Code: 2, Message: "Ningún registro seleccionado pudo volver de etapa."}, nil
	}
	return reporting.StoreResult{Moved: moved}, nil
}

// DeleteRow soft-deletes a record still at the initial stage.
func (r *ReportRepository) DeleteRow(ctx context.Context, id int64) error {
	if id == 0 {
		return reporting.ErrEmptyRecordID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok || record.Deleted || record.RowStatusID != int(reporting.StageCarga) {
		return reporting.ErrRecordNotFound
	}
	record.Deleted = true
	return nil
}

// FetchHistory loads a record's raw movement history blob.
func (r *ReportRepository) FetchHistory(ctx context.Context, id int64) (string, error) {
	if id == 0 {
		return "", reporting.ErrEmptyRecordID
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[id]
	if !ok || record.Deleted {
		return "", reporting.ErrRecordNotFound
	}
	return record.History, nil
}
