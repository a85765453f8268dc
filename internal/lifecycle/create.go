package lifecycle

import (
	"context"
	"strconv"

	"github.com/systmms/secretd/internal/authz"
	"github.com/systmms/secretd/internal/domain"
	"github.com/systmms/secretd/internal/event"
)

// CreateSecretInput carries create_secret's arguments.
type CreateSecretInput struct {
	Name              string
	Value             string
	Policy            domain.Policy
	Description       string
	RotationHandlerID string
	TTLSeconds        int
}

// CreateSecret enforces policy on Value, then requires the admin role —
// in that order — every other operation checks role before policy.
// There is no duplicate-name check; names are not unique.
func (m *Manager) CreateSecret(ctx context.Context, actor domain.Identity, in CreateSecretInput) (domain.Secret, error) {
	if err := m.policy.Enforce(in.Value, in.Policy); err != nil {
		return domain.Secret{}, err
	}
	if err := authz.AllowAction(actor, actor.Tenant, domain.ActionCreate); err != nil {
		return domain.Secret{}, err
	}

	now := nowUTC()
	version := newVersion(1, in.Value, actor.Subject, now, in.TTLSeconds)

	var handlerRef *domain.RotationHandlerRef
	if in.RotationHandlerID != "" {
		handlerRef = &domain.RotationHandlerRef{ID: in.RotationHandlerID}
	}

	secret := domain.Secret{
		ID:              domain.NewID(),
		Name:            in.Name,
		Tenant:          actor.Tenant,
		Policy:          in.Policy,
		CreatedAt:       now,
		CreatedBy:       actor.Subject,
		Versions:        []domain.SecretVersion{version},
		Description:     in.Description,
		RotationHandler: handlerRef,
	}

	encryptedVersion, err := m.encryptVersion(version)
	if err != nil {
		return domain.Secret{}, err
	}
	persisted := withVersionReplaced(secret, encryptedVersion)

	if err := m.store.Save(ctx, persisted); err != nil {
		return domain.Secret{}, err
	}

	metadata := map[string]string{
		"name":        in.Name,
		"policy_name": in.Policy.Name,
		"ttl_seconds": strconv.Itoa(in.TTLSeconds),
	}
	m.observe(actor, domain.ActionCreate, secret.ID, metadata)
	m.emit(event.KindCreated, actor, secret.ID, version.Version, metadata)

	return secret, nil
}
