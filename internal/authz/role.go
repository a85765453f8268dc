// Package authz implements secretd's authorization kernel: the fixed
// role gate every lifecycle action passes through, the ABAC evaluator
// for advanced access policies, and the session manager.
package authz

import (
	"github.com/systmms/secretd/internal/domain"
	"github.com/systmms/secretd/internal/dserr"
)

// RequiredRole is the fixed action → role mapping. Roles are not
// hierarchical: only the exact listed role satisfies a given action.
var RequiredRole = map[domain.Action]string{
	domain.ActionCreate: domain.RoleAdmin,
	domain.ActionPut:    domain.RoleWriter,
	domain.ActionRotate: domain.RoleWriter,
	domain.ActionGet:    domain.RoleReader,
	domain.ActionList:   domain.RoleReader,
	domain.ActionDelete: domain.RoleAdmin,
}

// AllowAction is the role gate every lifecycle operation calls first. It
// fails with dserr.TenantMismatch if actor.Tenant != resourceTenant, then
// with dserr.MissingRole if the action's required role is absent from
// actor.Roles.
func AllowAction(actor domain.Identity, resourceTenant string, action domain.Action) error {
	if actor.Tenant != resourceTenant {
		return dserr.New("authz.AllowAction", dserr.TenantMismatch, "actor tenant does not match resource tenant")
	}

	required, ok := RequiredRole[action]
	if !ok {
		return dserr.New("authz.AllowAction", dserr.MissingRole, "unknown action: "+string(action))
	}
	if !actor.HasRole(required) {
		return dserr.New("authz.AllowAction", dserr.MissingRole, "requires role "+required)
	}
	return nil
}
