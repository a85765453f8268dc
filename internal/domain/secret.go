package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// SecretVersion is an immutable snapshot of a secret's value. Value holds
// plaintext only while the version lives in memory; internal/store
// encrypts it before it ever reaches a backend and decrypts it on load.
type SecretVersion struct {
	Version   int        `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	Value     string     `json:"value"`
	Checksum  string     `json:"checksum"`
	CreatedBy string     `json:"created_by"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the version's ExpiresAt, if set, is in the past
// relative to now.
func (v SecretVersion) Expired(now time.Time) bool {
	return v.ExpiresAt != nil && v.ExpiresAt.Before(now)
}

// RotationHandlerRef names a registered rotation strategy (internal/
// lifecycle's handler registry) that produces new values for this secret
// during rotate(). Stored by id rather than as a closure so the secret
// remains a plain, serializable value object rather than a closure.
type RotationHandlerRef struct {
	ID string
}

// Secret is the lifecycle aggregate: an id, its owning tenant, the policy
// it was created under, and its ordered version history.
type Secret struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	Tenant          string              `json:"tenant"`
	Policy          Policy              `json:"policy"`
	CreatedAt       time.Time           `json:"created_at"`
	CreatedBy       string              `json:"created_by"`
	Versions        []SecretVersion     `json:"versions"`
	Description     string              `json:"description,omitempty"`
	RotationHandler *RotationHandlerRef `json:"rotation_handler,omitempty"`
}

// NewID generates an opaque 128-bit secret identifier.
func NewID() string {
	return uuid.NewString()
}

// LatestVersion returns the version with the greatest Version number —
// not the last-appended entry — the two
// may differ if versions were ever reordered. Versions is normally
// append-only so in practice the two coincide, but LatestVersion always
// computes the max rather than trusting slice order.
func (s Secret) LatestVersion() (SecretVersion, bool) {
	if len(s.Versions) == 0 {
		return SecretVersion{}, false
	}
	latest := s.Versions[0]
	for _, v := range s.Versions[1:] {
		if v.Version > latest.Version {
			latest = v
		}
	}
	return latest, true
}

// NextVersionNumber returns max(version)+1 across the secret's history.
func (s Secret) NextVersionNumber() int {
	max := 0
	for _, v := range s.Versions {
		if v.Version > max {
			max = v.Version
		}
	}
	return max + 1
}

// SortedVersions returns a copy of Versions ordered ascending by Version
// number, for callers that need to walk adjacent versions (version
// numbers are monotonic: v_{i+1}.version = v_i.version + 1).
func (s Secret) SortedVersions() []SecretVersion {
	out := append([]SecretVersion(nil), s.Versions...)
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out
}
