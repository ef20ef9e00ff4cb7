package domain

import (
	"fmt"
	"strings"
)

// Role is the privilege class of an account.
type Role string

// Roles, serialized the way clients see them in tokens and responses.
const (
	RoleAnonymous     Role = "ANONYMOUS"
	RoleAuthenticated Role = "AUTHENTICATED"
	RoleProfessional  Role = "PROFESSIONAL"
	RoleManager       Role = "MANAGER"
	RoleAdmin         Role = "ADMIN"
)

var knownRoles = map[Role]bool{
	RoleAnonymous:     true,
	RoleAuthenticated: true,
	RoleProfessional:  true,
	RoleManager:       true,
	RoleAdmin:         true,
}

// ParseRole parses a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !knownRoles[r] {
		return "", InvalidField("role", fmt.Sprintf("unknown role %q", s))
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return knownRoles[r]
}

func (r Role) String() string {
	return string(r)
}
