package reporting

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPercentChange(t *testing.T) {
	cases := []struct {
		name     string
		previous float64
		current  float64
		want     float64
	}{
		{"growth", 200, 300, 50},
		{"decline", 200, 100, -50},
		{"from zero to value", 0, 75, 100},
		{"both zero falls through to zero", 0, 0, 0},
		{"to zero", 150, 0, -100},
		{"negative previous", -100, -50, -50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PercentChange(tc.previous, tc.current)
			if !almostEqual(got, tc.want) {
				t.Fatalf("PercentChange(%v, %v) = %v, want %v", tc.previous, tc.current, got, tc.want)
			}
		})
	}
}

func TestPriceVarianceIdentity(t *testing.T) {
	cases := []struct {
		totalPct  float64
		volumePct float64
	}{
		{50, 20},
		{-30, 10},
		{100, 100},
		{0, 0},
		{12.5, -40},
	}
	for _, tc := range cases {
		got := PriceVariance(tc.totalPct, tc.volumePct)
		want := ((1+tc.totalPct/100)/(1+tc.volumePct/100) - 1) * 100
		if !almostEqual(got, want) {
			t.Fatalf("PriceVariance(%v, %v) = %v, want %v", tc.totalPct, tc.volumePct, got, want)
		}
	}
}

func TestPriceVarianceDegenerateVolume(t *testing.T) {
	if got := PriceVariance(-50, -100); got != 0 {
		t.Fatalf("expected 0 at volumePct=-100, got %v", got)
	}
}

func TestDeriveRow(t *testing.T) {
	raw := RawReportRow{
		CompanyTypeName: "Exportación",
		Period:          "Marzo",
		PreviousYear: YearMeasures{
			RecordID: 11, Units: 100, AveragePrice: 5, USDValue: 500, ExchangeRate: 900,
		},
		CurrentYear: YearMeasures{
			RecordID: 12, Units: 150, AveragePrice: 6, USDValue: 900, ExchangeRate: 1100,
		},
	}
	row := DeriveRow(raw)

	if row.Representation != "Exportación" || row.Month != "Marzo" {
		t.Fatalf("unexpected identity fields: %+v", row)
	}
	if !almostEqual(row.Variance.TotalPct, 80) {
		t.Fatalf("totalPct = %v, want 80", row.Variance.TotalPct)
	}
	if !almostEqual(row.Variance.VolumePct, 50) {
		t.Fatalf("volumePct = %v, want 50", row.Variance.VolumePct)
	}
	wantPrice := ((1 + 0.8) / (1 + 0.5)) * 100 - 100
	if !almostEqual(row.Variance.PricePct, wantPrice) {
		t.Fatalf("pricePct = %v, want %v", row.Variance.PricePct, wantPrice)
	}
	if row.IsEnabled || row.IsFinal || row.IsSentAhead {
		t.Fatalf("actionability flags must not be set by derivation: %+v", row)
	}
}

func TestDeriveRowZeroSides(t *testing.T) {
	row := DeriveRow(RawReportRow{CompanyTypeName: "X", Period: "Enero"})
	if row.Variance.TotalPct != 0 || row.Variance.VolumePct != 0 || row.Variance.PricePct != 0 {
		t.Fatalf("all-zero input must derive zero variance, got %+v", row.Variance)
	}
}

func TestDeriveRowPreviousZeroCurrentPositive(t *testing.T) {
	row := DeriveRow(RawReportRow{
		CurrentYear: YearMeasures{Units: 10, USDValue: 40},
	})
	if row.Variance.TotalPct != 100 {
		t.Fatalf("totalPct = %v, want 100", row.Variance.TotalPct)
	}
	if row.Variance.VolumePct != 100 {
		t.Fatalf("volumePct = %v, want 100", row.Variance.VolumePct)
	}
}

func TestNumberOrZero(t *testing.T) {
	if got := NumberOrZero(42.5, true); got != 42.5 {
		t.Fatalf("valid value lost: %v", got)
	}
	if got := NumberOrZero(42.5, false); got != 0 {
		t.Fatalf("missing value must coerce to 0: %v", got)
	}
	if got := NumberOrZero(math.NaN(), true); got != 0 {
		t.Fatalf("NaN must coerce to 0: %v", got)
	}
	if got := NumberOrZero(math.Inf(1), true); got != 0 {
		t.Fatalf("Inf must coerce to 0: %v", got)
	}
}

func TestEnabledCurrentYearIDs(t *testing.T) {
	rows := []DisplayRow{
		{CurrentYear: YearMeasures{RecordID: 1}, IsEnabled: true},
		{CurrentYear: YearMeasures{RecordID: 2}, IsEnabled: false},
		{CurrentYear: YearMeasures{RecordID: 3}, IsEnabled: true, IsLatest: true},
		{CurrentYear: YearMeasures{RecordID: 0}, IsEnabled: true},
	}
	got := EnabledCurrentYearIDs(rows)
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("unexpected id selection: %v", got)
	}
}
