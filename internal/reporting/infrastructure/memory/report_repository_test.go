package memory

import (
	"context"
	"errors"
	"strings"
	"testing"

	reporting "salesflow/internal/reporting/domain"
)

func seedPair(t *testing.T, repo *ReportRepository, companyType, period string, status int) (prevID, currID int64) {
	t.Helper()
	prevID = repo.Put(Record{
		CompanyID:       1,
		CompanyTypeName: companyType,
		Period:          period,
		Year:            2025,
		Measures:        reporting.YearMeasures{Units: 100, USDValue: 1000},
	})
	currID = repo.Put(Record{
		CompanyID:       1,
		CompanyTypeName: companyType,
		Period:          period,
		Year:            2026,
		Measures:        reporting.YearMeasures{Units: 120, USDValue: 1500},
		RowStatusID:     status,
	})
	return prevID, currID
}

func TestFetchRowsPairsYears(t *testing.T) {
	repo := NewReportRepository(2026)
	prevID, currID := seedPair(t, repo, "Distribuidor", "Enero", 1)

	rows, err := repo.FetchRows(context.Background(), reporting.RowFilter{CompanyID: 1})
	if err != nil {
		t.Fatalf("FetchRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row.PreviousYear.RecordID != prevID || row.CurrentYear.RecordID != currID {
		t.Fatalf("pairing = prev %d curr %d", row.PreviousYear.RecordID, row.CurrentYear.RecordID)
	}
	if row.RowStatusID != 1 {
		t.Fatalf("status = %d", row.RowStatusID)
	}
}

func TestSendForwardStopsAtTerminalStage(t *testing.T) {
	repo := NewReportRepository(2026)
	_, currID := seedPair(t, repo, "Distribuidor", "Enero", 4)

	result, err := repo.SendForward(context.Background(), 1, []int64{currID})
	if err != nil {
		t.Fatalf("SendForward: %v", err)
	}
	if !result.Rejected() {
		t.Fatalf("expected rejection, got %+v", result)
	}
	record, _ := repo.Get(currID)
	if record.RowStatusID != 4 {
		t.Fatalf("status = %d, want unchanged 4", record.RowStatusID)
	}
}

func TestSendBackAppendsNote(t *testing.T) {
	repo := NewReportRepository(2026)
	_, currID := seedPair(t, repo, "Distribuidor", "Enero", 2)

	result, err := repo.SendBack(context.Background(), 1, "faltan unidades", []int64{currID})
	if err != nil {
		t.Fatalf("SendBack: %v", err)
	}
	if result.Moved != 1 {
		t.Fatalf("moved = %d", result.Moved)
	}
	history, err := repo.FetchHistory(context.Background(), currID)
	if err != nil {
		t.Fatalf("FetchHistory: %v", err)
	}
	if !strings.Contains(history, "Obs: faltan unidades") {
		t.Fatalf("history = %q", history)
	}
}

func TestDeleteRowOnlyAtInitialStage(t *testing.T) {
	repo := NewReportRepository(2026)
	_, currID := seedPair(t, repo, "Distribuidor", "Enero", 2)

	if err := repo.DeleteRow(context.Background(), currID); !errors.Is(err, reporting.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}

	_, deletable := seedPair(t, repo, "Distribuidor", "Febrero", 1)
	if err := repo.DeleteRow(context.Background(), deletable); err != nil {
		t.Fatalf("DeleteRow: %v", err)
	}
	rows, err := repo.FetchRows(context.Background(), reporting.RowFilter{CompanyID: 1})
	if err != nil {
		t.Fatalf("FetchRows: %v", err)
	}
	for _, row := range rows {
		if row.CurrentYear.RecordID == deletable {
			t.Fatalf("deleted record still visible")
		}
	}
}

func TestMoveScopedToCompany(t *testing.T) {
	repo := NewReportRepository(2026)
	_, currID := seedPair(t, repo, "Distribuidor", "Enero", 1)

	result, err := repo.SendForward(context.Background(), 99, []int64{currID})
	if err != nil {
		t.Fatalf("SendForward: %v", err)
	}
	if !result.Rejected() {
		t.Fatalf("cross-company move must be rejected, got %+v", result)
	}
	record, _ := repo.Get(currID)
	if record.RowStatusID != 1 {
		t.Fatalf("status = %d, want unchanged 1", record.RowStatusID)
	}
}
