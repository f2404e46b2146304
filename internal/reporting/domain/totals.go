package reporting

// YearTotals aggregates one year side across a row set: sums for units and
// values, arithmetic mean for the price, USD-weighted mean for the rate.
type YearTotals struct {
	Units              float64 `json:"units"`
	UnitsConverted     float64 `json:"unitsConverted"`
	AveragePrice       float64 `json:"averagePrice"`
	LocalCurrencyValue float64 `json:"localCurrencyValue"`
	USDValue           float64 `json:"usdValue"`
	ExchangeRate       float64 `json:"exchangeRate"`
}

// Totals is the derived aggregate over the rows currently shown. Its
// variance is recomputed from the aggregated sums, never averaged from the
// per-row variances.
type Totals struct {
	PreviousYear YearTotals `json:"previousYear"`
	CurrentYear  YearTotals `json:"currentYear"`
	Variance     Variance   `json:"variance"`
	RowCount     int        `json:"rowCount"`
}

// WeightedAverage computes sum(value*weight)/sum(weight) over rows with a
// positive weight, or 0 when no weight accumulates.
func WeightedAverage(rows []DisplayRow, pick func(DisplayRow) (value, weight float64)) float64 {
	var weightedSum, weightSum float64
	for _, row := range rows {
		value, weight := pick(row)
		if weight <= 0 {
			continue
		}
		weightedSum += value * weight
		weightSum += weight
	}
	if weightSum == 0 {
		return 0
	}
	return weightedSum / weightSum
}

// AggregateTotals folds a display-row set into grid totals.
func AggregateTotals(rows []DisplayRow) Totals {
	totals := Totals{RowCount: len(rows)}
	if len(rows) == 0 {
		return totals
	}

	var sumPricePrev, sumPriceCurr float64
	for _, row := range rows {
		totals.PreviousYear.Units += row.PreviousYear.Units
		totals.PreviousYear.UnitsConverted += row.PreviousYear.UnitsConverted
		totals.PreviousYear.LocalCurrencyValue += row.PreviousYear.LocalCurrencyValue
		totals.PreviousYear.USDValue += row.PreviousYear.USDValue
		sumPricePrev += row.PreviousYear.AveragePrice

		totals.CurrentYear.Units += row.CurrentYear.Units
		totals.CurrentYear.UnitsConverted += row.CurrentYear.UnitsConverted
		totals.CurrentYear.LocalCurrencyValue += row.CurrentYear.LocalCurrencyValue
		totals.CurrentYear.USDValue += row.CurrentYear.USDValue
		sumPriceCurr += row.CurrentYear.AveragePrice
	}

	count := float64(len(rows))
	totals.PreviousYear.AveragePrice = sumPricePrev / count
	totals.CurrentYear.AveragePrice = sumPriceCurr / count

	totals.PreviousYear.ExchangeRate = WeightedAverage(rows, func(row DisplayRow) (float64, float64) {
		return row.PreviousYear.ExchangeRate, row.PreviousYear.USDValue
	})
	totals.CurrentYear.ExchangeRate = WeightedAverage(rows, func(row DisplayRow) (float64, float64) {
		return row.CurrentYear.ExchangeRate, row.CurrentYear.USDValue
	})

	totalPct := PercentChange(totals.PreviousYear.USDValue, totals.CurrentYear.USDValue)
	volumePct := PercentChange(totals.PreviousYear.Units, totals.CurrentYear.Units)
	totals.Variance = Variance{
		TotalPct:  totalPct,
		VolumePct: volumePct,
		PricePct:  PriceVariance(totalPct, volumePct),
	}
	return totals
}
