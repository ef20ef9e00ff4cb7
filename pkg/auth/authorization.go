package auth

import (
	"github.com/google/uuid"
	"github.com/joshua31324324/user-management/pkg/domain"
)

// Action is an operation an actor requests on an account.
type Action string

const (
	ActionCreateUser            Action = "create_user"
	ActionViewUser              Action = "view_user"
	ActionListUsers             Action = "list_users"
	ActionUpdateUser            Action = "update_user"
	ActionDeleteUser            Action = "delete_user"
	ActionUpgradeToProfessional Action = "upgrade_to_professional"
	ActionUnlockUser            Action = "unlock_user"
)

// Decision is the outcome of an authorization check.
type Decision int

const (
	Deny Decision = iota
	Allow
	Unauthenticated
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "deny"
	}
}

// scope is the set of targets a capability covers.
type scope int

const (
	scopeNone scope = iota
	scopeSelf
	scopeAny
)

// Manager and admin are listed separately so either can change without
// silently widening the other.
var capabilities = map[domain.Role]map[Action]scope{
	domain.RoleAuthenticated: {
		ActionViewUser:   scopeSelf,
		ActionUpdateUser: scopeSelf,
	},
	domain.RoleProfessional: {
		ActionViewUser:   scopeSelf,
		ActionUpdateUser: scopeSelf,
	},
	domain.RoleManager: {
		ActionCreateUser:            scopeAny,
		ActionViewUser:              scopeAny,
		ActionListUsers:             scopeAny,
		ActionUpdateUser:            scopeAny,
		ActionDeleteUser:            scopeAny,
		ActionUpgradeToProfessional: scopeAny,
		ActionUnlockUser:            scopeAny,
	},
	domain.RoleAdmin: {
		ActionCreateUser:            scopeAny,
		ActionViewUser:              scopeAny,
		ActionListUsers:             scopeAny,
		ActionUpdateUser:            scopeAny,
		ActionDeleteUser:            scopeAny,
		ActionUpgradeToProfessional: scopeAny,
		ActionUnlockUser:            scopeAny,
	},
}

// grantable lists the roles each role may assign to an account.
var grantable = map[domain.Role]map[domain.Role]bool{
	domain.RoleManager: {
		domain.RoleAuthenticated: true,
		domain.RoleProfessional:  true,
		domain.RoleManager:       true,
	},
	domain.RoleAdmin: {
		domain.RoleAuthenticated: true,
		domain.RoleProfessional:  true,
		domain.RoleManager:       true,
		domain.RoleAdmin:         true,
	},
}

// promotable lists the roles UpgradeToProfessional may start from.
var promotable = map[domain.Role]bool{
	domain.RoleAnonymous:     true,
	domain.RoleAuthenticated: true,
}

// Policy decides whether an actor may perform an action on a target account.
// It holds no state and is safe for concurrent use.
type Policy struct{}

// NewPolicy creates the authorization policy.
func NewPolicy() *Policy {
	return &Policy{}
}

// Decide evaluates action for actor against target. Collection actions such
// as ActionListUsers and ActionCreateUser pass uuid.Nil as target.
func (p *Policy) Decide(actor domain.Actor, action Action, target uuid.UUID) Decision {
	if actor.IsAnonymous() {
		return Unauthenticated
	}

	switch capabilities[actor.Role][action] {
	case scopeAny:
		return Allow
	case scopeSelf:
		if target != uuid.Nil && target == actor.ID {
			return Allow
		}
	}
	return Deny
}

// Authorize is Decide expressed as an error: nil, domain.ErrUnauthenticated
// or domain.ErrForbidden.
func (p *Policy) Authorize(actor domain.Actor, action Action, target uuid.UUID) error {
	switch p.Decide(actor, action, target) {
	case Allow:
		return nil
	case Unauthenticated:
		return domain.ErrUnauthenticated
	default:
		return domain.ErrForbidden
	}
}

// CanGrant reports whether actor may assign role to an account.
func (p *Policy) CanGrant(actor domain.Actor, role domain.Role) bool {
	if actor.IsAnonymous() {
		return false
	}
	return grantable[actor.Role][role]
}

// CanActOn reports whether actor may modify target. Besides their own account,
// privileged actors may act on unverified accounts and on accounts whose role
// they could grant, so a manager cannot modify an admin.
func (p *Policy) CanActOn(actor domain.Actor, target *domain.User) bool {
	if actor.IsAnonymous() {
		return false
	}
	if actor.ID == target.ID {
		return true
	}
	if target.Role == domain.RoleAnonymous {
		return p.IsPrivileged(actor)
	}
	return grantable[actor.Role][target.Role]
}

// IsPrivileged reports whether actor may act on accounts other than its own.
func (p *Policy) IsPrivileged(actor domain.Actor) bool {
	return !actor.IsAnonymous() && capabilities[actor.Role][ActionUpdateUser] == scopeAny
}

// Promotable reports whether an account holding role may be upgraded to professional.
func Promotable(role domain.Role) bool {
	return promotable[role]
}
