package lifecycle

import (
	"context"
	"strconv"

	"github.com/systmms/secretd/internal/authz"
	"github.com/systmms/secretd/internal/domain"
	"github.com/systmms/secretd/internal/dserr"
	"github.com/systmms/secretd/internal/event"
)

// Rotate loads the secret, requires the writer role, fails dserr.NoHandler
// if no rotation handler is registered, obtains a new value from the
// handler, enforces policy on it, and appends it as the next version. It
// emits a rotated event in addition to the audit entry, unconditionally.
func (m *Manager) Rotate(ctx context.Context, actor domain.Identity, id string) (domain.Secret, error) {
	existing, err := m.store.Get(ctx, id)
	if err != nil {
		return domain.Secret{}, err
	}
	if err := authz.AllowAction(actor, existing.Tenant, domain.ActionRotate); err != nil {
		return domain.Secret{}, err
	}
	if existing.RotationHandler == nil {
		return domain.Secret{}, dserr.New("lifecycle.Rotate", dserr.NoHandler, "secret has no rotation handler configured")
	}
	handler, ok := m.handlers.Lookup(existing.RotationHandler.ID)
	if !ok {
		return domain.Secret{}, dserr.New("lifecycle.Rotate", dserr.NoHandler, "rotation handler not registered: "+existing.RotationHandler.ID)
	}

	newValue, err := handler.Rotate(ctx, existing)
	if err != nil {
		return domain.Secret{}, dserr.Wrap("lifecycle.Rotate", dserr.NoHandler, err)
	}
	if err := m.policy.Enforce(newValue, existing.Policy); err != nil {
		return domain.Secret{}, err
	}

	now := nowUTC()
	version := newVersion(existing.NextVersionNumber(), newValue, actor.Subject, now, 0)

	returned := withVersionReplaced(existing, version)

	encryptedVersion, err := m.encryptVersion(version)
	if err != nil {
		return domain.Secret{}, err
	}
	persisted := withVersionReplaced(existing, encryptedVersion)

	if err := m.store.Save(ctx, persisted); err != nil {
		return domain.Secret{}, err
	}

	metadata := map[string]string{"version": strconv.Itoa(version.Version)}
	m.observe(actor, domain.ActionRotate, id, metadata)
	m.emit(event.KindRotated, actor, id, version.Version, metadata)

	return returned, nil
}
