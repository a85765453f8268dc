package authz

import (
	"time"

	"github.com/systmms/secretd/internal/domain"
	"github.com/systmms/secretd/internal/dserr"
)

// AllowRotation gates a rotation attempt against the actor's
// RotationConstraints: a per-identity allow-list of services/credential
// kinds and a maximum TTL. A nil Rotation means the identity carries no
// rotation-specific restriction beyond the role gate in role.go.
func AllowRotation(actor domain.Identity, service, credentialKind string, requestedTTL time.Duration) error {
	constraints := actor.Rotation
	if constraints == nil {
		return nil
	}

	if len(constraints.AllowedServices) > 0 && !contains(constraints.AllowedServices, service) {
		return dserr.New("authz.AllowRotation", dserr.MissingRole, "identity is not permitted to rotate secrets for service "+service)
	}
	if len(constraints.AllowedCredentialKinds) > 0 && !contains(constraints.AllowedCredentialKinds, credentialKind) {
		return dserr.New("authz.AllowRotation", dserr.MissingRole, "identity is not permitted to rotate credentials of kind "+credentialKind)
	}
	if constraints.MaxCredentialTTL > 0 && requestedTTL > constraints.MaxCredentialTTL {
		return dserr.New("authz.AllowRotation", dserr.PolicyViolation, "requested TTL exceeds identity's maximum credential TTL")
	}
	return nil
}

func contains(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}
