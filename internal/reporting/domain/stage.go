package reporting

import "salesflow/internal/auth"

// Stage is one of the four ordered workflow states a record passes through.
// The store is authoritative for assignments; this package only reads the
// current stage and computes actionability and legal transitions.
type Stage int

const (
	StageCarga      Stage = 1
	StageControl    Stage = 2
	StageAprobacion Stage = 3
	StageFinalizado Stage = 4
)

// String returns the stage display name.
func (s Stage) String() string {
	switch s {
	case StageCarga:
		return "Carga"
	case StageControl:
		return "Control"
	case StageAprobacion:
		return "Aprobación"
	case StageFinalizado:
		return "Finalizado"
	default:
		return "Desconocido"
	}
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	return s >= StageCarga && s <= StageFinalizado
}

// Next returns the stage a forward transition produces. Finalizado is
// terminal for forward movement.
func (s Stage) Next() (Stage, bool) {
	if !s.Valid() || s == StageFinalizado {
		return 0, false
	}
	return s + 1, true
}

// Previous returns the stage a return transition produces. Carga has no
// prior stage to return to.
func (s Stage) Previous() (Stage, bool) {
	if !s.Valid() || s == StageCarga {
		return 0, false
	}
	return s - 1, true
}

// ExpectedStage maps a pipeline role to the stage it owns. Roles outside
// the pipeline have no expected stage and are never enabled.
func ExpectedStage(role auth.Role) (Stage, bool) {
	switch role {
	case auth.RoleCarga:
		return StageCarga, true
	case auth.RoleControl:
		return StageControl, true
	case auth.RoleAprobacion:
		return StageAprobacion, true
	default:
		return 0, false
	}
}

// Actionability captures what a role may do with a record at its current
// stage.
type Actionability struct {
	Enabled   bool
	Final     bool
	SentAhead bool
}

// ResolveActionability computes the actionability flags for a role against
// a record's current stage. A role can act only on records sitting exactly
// at its own stage, never behind or ahead of it.
//
// A rowStatusID of 0 means the store omitted the stage; such rows are
// treated as sitting at the caller's own expected stage so that legacy data
// is never blocked solely for missing status.
func ResolveActionability(role auth.Role, rowStatusID int) Actionability {
	final := rowStatusID == int(StageFinalizado)

	expected, ok := ExpectedStage(role)
	if !ok {
		return Actionability{Final: final}
	}

	status := rowStatusID
	if status == 0 {
		status = int(expected)
	}

	sentAhead := status > int(expected)
	return Actionability{
		Enabled:   !final && !sentAhead && status == int(expected),
		Final:     final,
		SentAhead: sentAhead,
	}
}
