package reporting

import "math"

// YearMeasures holds the submitted figures of one year side of a report row.
// RecordID identifies the measurement instance and is immutable once created.
type YearMeasures struct {
	RecordID           int64   `json:"id"`
	Units              float64 `json:"units"`
	UnitsConverted     float64 `json:"unitsConverted"`
	AveragePrice       float64 `json:"averagePrice"`
	LocalCurrencyValue float64 `json:"localCurrencyValue"`
	USDValue           float64 `json:"usdValue"`
	ExchangeRate       float64 `json:"exchangeRate"`
}

// RawReportRow is one store row per company type and period, pairing the
// previous-year and current-year measurement instances.
type RawReportRow struct {
	CompanyTypeName     string
	Period              string
	PreviousYear        YearMeasures
	CurrentYear         YearMeasures
	HasRoleAccess       bool
	ExpectedRowStatusID int
	RowStatusID         int
}

// Variance holds the derived year-over-year percentages. Never persisted.
type Variance struct {
	TotalPct  float64 `json:"totalPct"`
	VolumePct float64 `json:"volumePct"`
	PricePct  float64 `json:"pricePct"`
}

// DisplayRow is the ephemeral grid row: rebuilt wholesale on every raw-data
// change and never mutated in place. IsLatest mirrors IsEnabled for
// consumers of the original grid contract.
type DisplayRow struct {
	Representation string       `json:"representation"`
	Month          string       `json:"month"`
	PreviousYear   YearMeasures `json:"previousYear"`
	CurrentYear    YearMeasures `json:"currentYear"`
	Variance       Variance     `json:"variance"`
	IsEnabled      bool         `json:"isEnabled"`
	IsLatest       bool         `json:"isLatest"`
	IsFinal        bool         `json:"isFinal"`
	IsSentAhead    bool         `json:"isSentAhead"`
}

// NumberOrZero normalizes an optional numeric field at the ingestion
// boundary: missing, NaN, and infinite values coerce to 0.
func NumberOrZero(value float64, ok bool) float64 {
	if !ok || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}

// IntOrZero normalizes an optional integer field at the ingestion boundary.
func IntOrZero(value int64, ok bool) int64 {
	if !ok {
		return 0
	}
	return value
}

// TextOrEmpty normalizes an optional text field at the ingestion boundary.
func TextOrEmpty(value string, ok bool) string {
	if !ok {
		return ""
	}
	return value
}

// EnabledCurrentYearIDs returns exactly the current-year record ids of rows
// the caller may act on. Disabled, final, and sent-ahead rows never appear.
func EnabledCurrentYearIDs(rows []DisplayRow) []int64 {
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		if !row.IsEnabled {
			continue
		}
		if row.CurrentYear.RecordID == 0 {
			continue
		}
		ids = append(ids, row.CurrentYear.RecordID)
	}
	return ids
}
