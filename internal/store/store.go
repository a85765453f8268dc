// Package store defines secretd's persistence contract and the backends
// that implement it. Every backend stores the same document
// shape (a domain.Secret with its Versions' Value fields already holding
// ciphertext tokens, never plaintext) and maps backend-specific
// not-found conditions onto dserr.NotFound so internal/lifecycle never
// branches on backend identity.
package store

import (
	"context"

	"github.com/systmms/secretd/internal/domain"
)

// Store is the persistence contract every backend (file, object,
// relational) satisfies. Secret ids are globally unique UUIDs (generated
// by domain.NewID), so Get and Delete resolve by id alone, without a
// tenant filter: the caller is responsible for checking the loaded
// secret's Tenant against the acting identity (internal/authz.AllowAction
// does this), not for pre-scoping the lookup. Pre-scoping by the actor's
// own tenant would make a cross-tenant id simply not-found instead of a
// tenant mismatch. List remains tenant-scoped since it enumerates rather
// than looking up a specific id.
type Store interface {
	// Get returns the secret by id alone, or dserr.NotFound.
	Get(ctx context.Context, id string) (domain.Secret, error)

	// List returns every secret belonging to tenant, in no particular
	// order; callers that need a stable order sort the result themselves.
	List(ctx context.Context, tenant string) ([]domain.Secret, error)

	// Save upserts secret, replacing any existing record sharing its ID.
	Save(ctx context.Context, secret domain.Secret) error

	// Delete removes the secret by id alone. Deleting an id that does
	// not exist is not an error: Delete is idempotent.
	Delete(ctx context.Context, id string) error
}
