package auth

import (
	"net/http"
	"strings"
)

// Policy determines which roles may reach a request. Pipeline stage gating
// happens in the reporting domain; the policy is a coarse outer gate.
type Policy struct {
	ExemptPaths    map[string]struct{}
	ExemptPrefixes []string
}

// NewDefaultPolicy builds a default policy with exemptions.
func NewDefaultPolicy(exemptPaths []string, exemptPrefixes []string) Policy {
	set := make(map[string]struct{}, len(exemptPaths))
	for _, path := range exemptPaths {
		set[path] = struct{}{}
	}
	return Policy{ExemptPaths: set, ExemptPrefixes: exemptPrefixes}
}

// IsExempt returns true when a request should skip auth/RBAC.
func (p Policy) IsExempt(r *http.Request) bool {
	if r == nil {
		return true
	}
	if _, ok := p.ExemptPaths[r.URL.Path]; ok {
		return true
	}
	for _, prefix := range p.ExemptPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

var anyRole = []Role{RoleCarga, RoleControl, RoleAprobacion, RoleAdministracion, RoleVisualizacion, RoleAdmin}

var pipelineRoles = []Role{RoleCarga, RoleControl, RoleAprobacion}

// AllowedRoles resolves the roles permitted for the request. The second
// return value is false when the path is outside the policed surface.
func (p Policy) AllowedRoles(r *http.Request) ([]Role, bool) {
	if r == nil {
		return nil, false
	}
	path := r.URL.Path
	method := r.Method

	switch {
	case path == "/api/v1/reports/send-forward" || path == "/api/v1/reports/send-back":
		return pipelineRoles, true
	case strings.HasPrefix(path, "/api/v1/reports/") && method == http.MethodDelete:
		return []Role{RoleCarga, RoleAdmin}, true
	case strings.HasPrefix(path, "/api/v1/reports"):
		return anyRole, true
	case strings.HasPrefix(path, "/api/v1/companies"):
		return anyRole, true
	}

	if strings.HasPrefix(path, "/api/") {
		if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
			return anyRole, true
		}
		return pipelineRoles, true
	}
	return nil, false
}

// RoleAllowed reports whether role is in the allowed set.
func RoleAllowed(role Role, allowed []Role) bool {
	for _, candidate := range allowed {
		if candidate == role {
			return true
		}
	}
	return false
}
