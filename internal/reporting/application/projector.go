package application

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"salesflow/internal/auth"
	reporting "salesflow/internal/reporting/domain"
)

// Projection is the grid view of a raw row set: derived rows with
// actionability flags plus the aggregate totals over the visible set.
type Projection struct {
	Rows   []reporting.DisplayRow `json:"rows"`
	Totals reporting.Totals       `json:"totals"`
}

// Project derives, flags, sorts, and totals a raw row set for a role.
//
// The input is never mutated; re-running Project on the same input yields an
// identical row order and totals, which the workflow refresh relies on.
func Project(raw []reporting.RawReportRow, role auth.Role) Projection {
	rows := make([]reporting.DisplayRow, 0, len(raw))
	for _, rawRow := range raw {
		row := reporting.DeriveRow(rawRow)
		flags := reporting.ResolveActionability(role, rawRow.RowStatusID)
		row.IsEnabled = flags.Enabled
		row.IsLatest = flags.Enabled
		row.IsFinal = flags.Final
		row.IsSentAhead = flags.SentAhead
		rows = append(rows, row)
	}

	// Month calendar index descending, then representation ascending with
	// Spanish collation. Unknown months sink to the end.
	collator := collate.New(language.Spanish)
	sort.SliceStable(rows, func(i, j int) bool {
		left, right := monthRank(rows[i].Month), monthRank(rows[j].Month)
		if left != right {
			return left > right
		}
		return collator.CompareString(rows[i].Representation, rows[j].Representation) < 0
	})

	return Projection{
		Rows:   rows,
		Totals: reporting.AggregateTotals(rows),
	}
}

func monthRank(month string) int {
	return reporting.MonthIndex(month)
}
