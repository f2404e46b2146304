package reporting

// PercentChange computes the year-over-year percentage between a previous
// and current measure. A previous value of 0 with a non-zero current value
// yields 100; when both are 0 the result falls through to 0.
func PercentChange(previous, current float64) float64 {
	if previous != 0 {
		return (current - previous) / previous * 100
	}
	if current != 0 {
		return 100
	}
	return 0
}

// PriceVariance derives the price percentage from the total and volume
// percentages via the compounding identity. volumePct of exactly -100 is
// the degenerate case and yields 0.
func PriceVariance(totalPct, volumePct float64) float64 {
	if volumePct == -100 {
		return 0
	}
	return ((1+totalPct/100)/(1+volumePct/100) - 1) * 100
}

// DeriveVariance computes the variance block from paired year measures.
func DeriveVariance(previous, current YearMeasures) Variance {
	totalPct := PercentChange(previous.USDValue, current.USDValue)
	volumePct := PercentChange(previous.Units, current.Units)
	return Variance{
		TotalPct:  totalPct,
		VolumePct: volumePct,
		PricePct:  PriceVariance(totalPct, volumePct),
	}
}

// DeriveRow converts one raw report row into a display row. Pure and total
// over normalized input; actionability flags are attached separately.
func DeriveRow(raw RawReportRow) DisplayRow {
	return DisplayRow{
		Representation: raw.CompanyTypeName,
		Month:          raw.Period,
		PreviousYear:   raw.PreviousYear,
		CurrentYear:    raw.CurrentYear,
		Variance:       DeriveVariance(raw.PreviousYear, raw.CurrentYear),
	}
}
