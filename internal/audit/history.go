package audit

import (
	"regexp"
	"strings"
	"time"
)

// Movement is one structured entry of a record's stage-movement history.
// Entries arrive as free text accumulated over years of manual formats, so
// parsing is best-effort: unparsed fields stay zero and Raw always keeps
// the original line.
type Movement struct {
	Timestamp time.Time `json:"timestamp,omitempty"`
	Stage     string    `json:"stage,omitempty"`
	User      string    `json:"user,omitempty"`
	Direction string    `json:"direction,omitempty"`
	Note      string    `json:"note,omitempty"`
	Raw       string    `json:"raw"`
}

// Movement directions.
const (
	MovementForward = "forward"
	MovementBack    = "back"
	MovementStart   = "start"
)

var (
	leadingStampRe  = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}(?::\d{2})?)\s*[-:]\s*(.*)$`)
	trailingStampRe = regexp.MustCompile(`^(.*?)\s*[-:]\s*(\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}(?::\d{2})?)$`)
	anyStampRe      = regexp.MustCompile(`(\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}(?::\d{2})?|\d{2}/\d{2}/\d{4}(?: \d{2}:\d{2})?)`)
	stageUserRe     = regexp.MustCompile(`([\pL\s]+?)\s*\(([^)]+)\)`)
)

// movementParser tries one historical line format. Returning false means
// the line does not match and the next strategy runs.
type movementParser func(line string) (Movement, bool)

// Parsers run in order of decreasing strictness. The first match wins.
var movementParsers = []movementParser{
	parseLeadingStamp,
	parseTrailingStamp,
	parseLooseStamp,
}

// ParseMovements splits a stored history blob into lines and parses each.
// Blank lines are dropped.
func ParseMovements(history string) []Movement {
	var out []Movement
	for _, line := range strings.Split(history, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, ParseMovement(line))
	}
	return out
}

// ParseMovement parses one history line through the strategy chain. A line
// no strategy recognizes is returned with only Raw set.
func ParseMovement(line string) Movement {
	for _, parse := range movementParsers {
		if m, ok := parse(line); ok {
			m.Raw = line
			return m
		}
	}
	m := Movement{Raw: line}
	fillDetail(&m, line)
	return m
}

// "2024-03-02 10:15 - Control (jperez) enviado adelante. Obs: revisar"
func parseLeadingStamp(line string) (Movement, bool) {
	groups := leadingStampRe.FindStringSubmatch(line)
	if groups == nil {
		return Movement{}, false
	}
	ts, err := parseStamp(groups[1])
	if err != nil {
		return Movement{}, false
	}
	m := Movement{Timestamp: ts}
	fillDetail(&m, groups[2])
	return m, true
}

// "Control (jperez) devolvió a Carga - 2024-03-02 10:15"
func parseTrailingStamp(line string) (Movement, bool) {
	groups := trailingStampRe.FindStringSubmatch(line)
	if groups == nil {
		return Movement{}, false
	}
	ts, err := parseStamp(groups[2])
	if err != nil {
		return Movement{}, false
	}
	m := Movement{Timestamp: ts}
	fillDetail(&m, groups[1])
	return m, true
}

// Last resort: any stamp anywhere in the line, including the dd/MM/yyyy
// form older entries used.
func parseLooseStamp(line string) (Movement, bool) {
	stamp := anyStampRe.FindString(line)
	if stamp == "" {
		return Movement{}, false
	}
	ts, err := parseStamp(stamp)
	if err != nil {
		return Movement{}, false
	}
	m := Movement{Timestamp: ts}
	fillDetail(&m, strings.Replace(line, stamp, "", 1))
	return m, true
}

var stampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"02/01/2006 15:04",
	"02/01/2006",
}

func parseStamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range stampLayouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func fillDetail(m *Movement, detail string) {
	detail = strings.TrimSpace(detail)
	if groups := stageUserRe.FindStringSubmatch(detail); groups != nil {
		m.Stage = strings.TrimSpace(groups[1])
		m.User = strings.TrimSpace(groups[2])
	}
	m.Direction = detectDirection(detail)
	m.Note = extractNote(detail)
}

func detectDirection(detail string) string {
	lower := strings.ToLower(detail)
	switch {
	case strings.Contains(lower, "[inicio]"), strings.Contains(lower, "carga inicial"):
		return MovementStart
	case strings.Contains(lower, "devolv"), strings.Contains(lower, "atr"), strings.Contains(lower, "rechaz"):
		return MovementBack
	case strings.Contains(lower, "adelante"), strings.Contains(lower, "enviado"), strings.Contains(lower, "aprob"):
		return MovementForward
	}
	return ""
}

var notePrefixes = []string{"Observaciones:", "Obs:", "Nota:"}

func extractNote(detail string) string {
	for _, prefix := range notePrefixes {
		if idx := strings.Index(detail, prefix); idx >= 0 {
			return strings.TrimSpace(detail[idx+len(prefix):])
		}
	}
	return ""
}
