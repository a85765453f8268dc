package lifecycle

import (
	"context"

	"github.com/systmms/secretd/internal/authz"
	"github.com/systmms/secretd/internal/domain"
)

// ListSecrets requires the reader role and returns every secret
// belonging to actor's tenant. Versions in the returned secrets remain
// ciphertext; list never decrypts.
func (m *Manager) ListSecrets(ctx context.Context, actor domain.Identity) ([]domain.Secret, error) {
	if err := authz.AllowAction(actor, actor.Tenant, domain.ActionList); err != nil {
		return nil, err
	}

	secrets, err := m.store.List(ctx, actor.Tenant)
	if err != nil {
		return nil, err
	}

	for _, secret := range secrets {
		m.observe(actor, domain.ActionList, secret.ID, nil)
	}

	return secrets, nil
}
