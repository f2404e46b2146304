package reporting

// monthCalendar is the fixed reporting calendar. Period values coming from
// the store use these Spanish month names verbatim.
var monthCalendar = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// MonthIndex returns the zero-based calendar position of a period name,
// or -1 when the name is not a known month.
func MonthIndex(name string) int {
	for i, month := range monthCalendar {
		if month == name {
			return i
		}
	}
	return -1
}

// Months returns the calendar order of period names.
func Months() []string {
	months := make([]string, len(monthCalendar))
	copy(months, monthCalendar[:])
	return months
}

// IsMonth reports whether name is a valid period name.
func IsMonth(name string) bool {
	return MonthIndex(name) >= 0
}
