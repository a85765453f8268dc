package lifecycle

import (
	"context"
	"strconv"

	"github.com/systmms/secretd/internal/authz"
	"github.com/systmms/secretd/internal/domain"
	"github.com/systmms/secretd/internal/event"
)

// PutSecret loads the secret, requires the writer role (tenant-scoped),
// enforces policy, and appends a new version. Version numbers are
// strictly increasing; no gaps are permitted.
func (m *Manager) PutSecret(ctx context.Context, actor domain.Identity, id, value string, ttlSeconds int) (domain.Secret, error) {
	existing, err := m.store.Get(ctx, id)
	if err != nil {
		return domain.Secret{}, err
	}
	if err := authz.AllowAction(actor, existing.Tenant, domain.ActionPut); err != nil {
		return domain.Secret{}, err
	}
	if err := m.policy.Enforce(value, existing.Policy); err != nil {
		return domain.Secret{}, err
	}

	now := nowUTC()
	version := newVersion(existing.NextVersionNumber(), value, actor.Subject, now, ttlSeconds)

	returned := withVersionReplaced(existing, version)

	encryptedVersion, err := m.encryptVersion(version)
	if err != nil {
		return domain.Secret{}, err
	}
	persisted := withVersionReplaced(existing, encryptedVersion)

	if err := m.store.Save(ctx, persisted); err != nil {
		return domain.Secret{}, err
	}

	metadata := map[string]string{
		"version":     strconv.Itoa(version.Version),
		"ttl_seconds": strconv.Itoa(ttlSeconds),
	}
	m.observe(actor, domain.ActionPut, id, metadata)
	m.emit(event.KindUpdated, actor, id, version.Version, metadata)

	return returned, nil
}
