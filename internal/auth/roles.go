package auth

import "strings"

// Role represents a user role in the approval pipeline.
type Role string

const (
	RoleCarga          Role = "carga"
	RoleControl        Role = "control"
	RoleAprobacion     Role = "aprobacion"
	RoleAdministracion Role = "administracion"
	RoleVisualizacion  Role = "visualizacion"
	RoleAdmin          Role = "admin"
)

// accentFolder maps the accented spellings the upstream user store emits to
// their canonical unaccented form. Normalization happens once here, at the
// boundary where the role string enters the system.
var accentFolder = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u",
)

// NormalizeRole validates and normalizes a role string. Accented and
// unaccented spellings (e.g. "Aprobación" / "aprobacion") are the same role.
func NormalizeRole(value string) (Role, bool) {
	folded := accentFolder.Replace(strings.TrimSpace(value))
	switch Role(strings.ToLower(folded)) {
	case RoleCarga:
		return RoleCarga, true
	case RoleControl:
		return RoleControl, true
	case RoleAprobacion:
		return RoleAprobacion, true
	case RoleAdministracion:
		return RoleAdministracion, true
	case RoleVisualizacion:
		return RoleVisualizacion, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// IsPipelineRole reports whether the role owns a stage of the approval
// pipeline. Administrative and read-only roles are not pipeline roles.
func IsPipelineRole(role Role) bool {
	switch role {
	case RoleCarga, RoleControl, RoleAprobacion:
		return true
	default:
		return false
	}
}
