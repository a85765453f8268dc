package lifecycle

import (
	"context"

	"github.com/systmms/secretd/internal/authz"
	"github.com/systmms/secretd/internal/domain"
	"github.com/systmms/secretd/internal/dserr"
	"github.com/systmms/secretd/internal/event"
)

// GetSecret loads the secret, requires the reader role, fails
// dserr.Expired if the latest version's ExpiresAt is in the past, and
// returns the secret with its latest version decrypted to plaintext.
// Earlier versions in the returned value remain ciphertext tokens.
func (m *Manager) GetSecret(ctx context.Context, actor domain.Identity, id string) (domain.Secret, error) {
	secret, err := m.store.Get(ctx, id)
	if err != nil {
		return domain.Secret{}, err
	}
	if err := authz.AllowAction(actor, secret.Tenant, domain.ActionGet); err != nil {
		return domain.Secret{}, err
	}

	latest, ok := secret.LatestVersion()
	if !ok {
		return domain.Secret{}, dserr.New("lifecycle.GetSecret", dserr.NotFound, "secret has no versions")
	}
	if latest.Expired(nowUTC()) {
		return domain.Secret{}, dserr.New("lifecycle.GetSecret", dserr.Expired, "latest version has expired")
	}

	plaintextVersion, err := m.decryptVersion(latest)
	if err != nil {
		return domain.Secret{}, err
	}
	result := withVersionReplaced(secret, plaintextVersion)

	m.observe(actor, domain.ActionGet, id, nil)
	m.emit(event.KindAccessed, actor, id, latest.Version, nil)

	return result, nil
}
