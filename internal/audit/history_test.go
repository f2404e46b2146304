package audit

import (
	"testing"
	"time"
)

func TestParseMovementLeadingStamp(t *testing.T) {
	m := ParseMovement("2024-03-02 10:15 - Control (jperez) enviado adelante. Obs: revisar tipo de cambio")
	want := time.Date(2024, 3, 2, 10, 15, 0, 0, time.UTC)
	if !m.Timestamp.Equal(want) {
		t.Fatalf("timestamp = %v, want %v", m.Timestamp, want)
	}
	if m.Stage != "Control" {
		t.Fatalf("stage = %q", m.Stage)
	}
	if m.User != "jperez" {
		t.Fatalf("user = %q", m.User)
	}
	if m.Direction != MovementForward {
		t.Fatalf("direction = %q", m.Direction)
	}
	if m.Note != "revisar tipo de cambio" {
		t.Fatalf("note = %q", m.Note)
	}
}

func TestParseMovementTrailingStamp(t *testing.T) {
	m := ParseMovement("Aprobación (mlopez) devolvió a Control - 2023-11-30 18:02")
	want := time.Date(2023, 11, 30, 18, 2, 0, 0, time.UTC)
	if !m.Timestamp.Equal(want) {
		t.Fatalf("timestamp = %v, want %v", m.Timestamp, want)
	}
	if m.User != "mlopez" {
		t.Fatalf("user = %q", m.User)
	}
	if m.Direction != MovementBack {
		t.Fatalf("direction = %q", m.Direction)
	}
}

func TestParseMovementLooseLegacyStamp(t *testing.T) {
	m := ParseMovement("enviado adelante por Carga (asuarez) el 02/03/2019 09:30")
	want := time.Date(2019, 3, 2, 9, 30, 0, 0, time.UTC)
	if !m.Timestamp.Equal(want) {
		t.Fatalf("timestamp = %v, want %v", m.Timestamp, want)
	}
	if m.Direction != MovementForward {
		t.Fatalf("direction = %q", m.Direction)
	}
}

func TestParseMovementStart(t *testing.T) {
	m := ParseMovement("2022-01-10 08:00 - [inicio] Carga (asuarez)")
	if m.Direction != MovementStart {
		t.Fatalf("direction = %q", m.Direction)
	}
}

func TestParseMovementUnparseableKeepsRaw(t *testing.T) {
	line := "migrated entry without date"
	m := ParseMovement(line)
	if !m.Timestamp.IsZero() {
		t.Fatalf("expected zero timestamp, got %v", m.Timestamp)
	}
	if m.Raw != line {
		t.Fatalf("raw = %q", m.Raw)
	}
}

func TestParseMovementsSplitsAndSkipsBlanks(t *testing.T) {
	history := "2024-03-02 10:15 - Carga (a) enviado adelante\n\n2024-03-03 11:00 - Control (b) devolvió. Obs: faltan unidades\n"
	got := ParseMovements(history)
	if len(got) != 2 {
		t.Fatalf("got %d movements, want 2", len(got))
	}
	if got[1].Note != "faltan unidades" {
		t.Fatalf("note = %q", got[1].Note)
	}
	if got[1].Direction != MovementBack {
		t.Fatalf("direction = %q", got[1].Direction)
	}
}
