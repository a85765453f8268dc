package lifecycle

import (
	"context"

	"github.com/systmms/secretd/internal/authz"
	"github.com/systmms/secretd/internal/domain"
	"github.com/systmms/secretd/internal/event"
)

// DeleteSecret loads the secret, requires the admin role, and removes it
// from the store. Deletion is a hard removal — no tombstone is kept;
// the audit log is the durable record that a deletion occurred.
func (m *Manager) DeleteSecret(ctx context.Context, actor domain.Identity, id string) error {
	existing, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.AllowAction(actor, existing.Tenant, domain.ActionDelete); err != nil {
		return err
	}

	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}

	m.observe(actor, domain.ActionDelete, id, nil)
	m.emit(event.KindDeleted, actor, id, 0, nil)

	return nil
}
