package domain

import "time"

// EncryptionKey is one generation of the envelope manager's keyed
// collection (internal/envelope). The derived key bytes themselves are
// never part of this value object — they live only inside the manager's
// guarded memory (internal/secure) — this type is metadata only.
type EncryptionKey struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt *time.Time
	IsActive  bool
}
