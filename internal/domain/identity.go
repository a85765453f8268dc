// Package domain defines the value objects secretd's core operates on:
// identities, policies, secrets and their versions, audit entries,
// encryption keys, rotation schedules, access rules and sessions. None of
// these types perform I/O; persistence, encryption and authorization live
// in their own packages and accept or return these types.
package domain

import "time"

// Role names understood by the authorization kernel (internal/authz).
// Roles are not hierarchical: holding admin does not imply writer or
// reader.
const (
	RoleAdmin  = "admin"
	RoleWriter = "writer"
	RoleReader = "reader"
)

// RotationConstraints narrows what a rotation handler may be invoked to
// do on behalf of an Identity, beyond the base writer-role requirement:
// an allow-list of services/credential kinds and a maximum TTL. See
// internal/authz/rotation_guard.go.
type RotationConstraints struct {
	AllowedServices        []string
	AllowedCredentialKinds []string
	MaxCredentialTTL       time.Duration
}

// Identity is an authenticated principal supplied by the caller. secretd
// does not authenticate callers itself — it trusts the Identity it is
// given and enforces tenant isolation and role checks against it.
type Identity struct {
	Subject   string
	Roles     []string
	Tenant    string
	RequestIP string
	Rotation  *RotationConstraints
}

// HasRole reports whether the identity carries the named role.
func (id Identity) HasRole(role string) bool {
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}
