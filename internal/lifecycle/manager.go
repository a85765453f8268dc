// Package lifecycle implements secretd's orchestrator: the six
// operations a caller drives a secret's life through. Every operation
// follows the same overall shape — authorize, validate, mutate, persist,
// audit, emit — though the exact order of the authorize and validate
// steps varies per operation.
package lifecycle

import (
	"time"

	"github.com/systmms/secretd/internal/audit"
	"github.com/systmms/secretd/internal/cryptoprim"
	"github.com/systmms/secretd/internal/domain"
	"github.com/systmms/secretd/internal/envelope"
	"github.com/systmms/secretd/internal/event"
	"github.com/systmms/secretd/internal/policy"
	"github.com/systmms/secretd/internal/store"
)

// Manager wires the authorization kernel, policy enforcer, envelope
// encryption, persistence, audit sink, and event emitter into the six
// lifecycle operations.
type Manager struct {
	store    store.Store
	envelope *envelope.Manager
	policy   *policy.Enforcer
	audit    *audit.Sink
	emitter  event.Emitter

	handlers *HandlerRegistry
}

// NewManager returns a Manager. A nil emitter defaults to
// event.NopEmitter; a nil audit sink disables audit emission entirely
// (used by tests that don't care about the audit trail).
func NewManager(st store.Store, env *envelope.Manager, pol *policy.Enforcer, auditSink *audit.Sink, emitter event.Emitter) *Manager {
	if emitter == nil {
		emitter = event.NopEmitter{}
	}
	return &Manager{
		store:    st,
		envelope: env,
		policy:   pol,
		audit:    auditSink,
		emitter:  emitter,
		handlers: NewHandlerRegistry(),
	}
}

// Handlers exposes the rotation handler registry so callers can register
// handlers under the ids secrets are created with.
func (m *Manager) Handlers() *HandlerRegistry {
	return m.handlers
}

func (m *Manager) observe(actor domain.Identity, action domain.Action, secretID string, metadata map[string]string) {
	if m.audit == nil {
		return
	}
	m.audit.Append(domain.AuditLogEntry{
		Timestamp: time.Now().UTC(),
		Subject:   actor.Subject,
		Action:    action,
		SecretID:  secretID,
		Tenant:    actor.Tenant,
		Metadata:  metadata,
	})
}

func (m *Manager) emit(kind event.Kind, actor domain.Identity, secretID string, version int, metadata map[string]string) {
	m.emitter.Emit(event.SecretEvent{
		Kind:      kind,
		SecretID:  secretID,
		Tenant:    actor.Tenant,
		Actor:     actor.Subject,
		Version:   version,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	})
}

func (m *Manager) encryptVersion(v domain.SecretVersion) (domain.SecretVersion, error) {
	enc, err := m.envelope.Encrypt([]byte(v.Value))
	if err != nil {
		return domain.SecretVersion{}, err
	}
	v.Value = enc.Ciphertext
	return v, nil
}

func (m *Manager) decryptVersion(v domain.SecretVersion) (domain.SecretVersion, error) {
	plaintext, _, err := m.envelope.DecryptAny(v.Value)
	if err != nil {
		return domain.SecretVersion{}, err
	}
	v.Value = string(plaintext)
	return v, nil
}

func newVersion(number int, value, subject string, now time.Time, ttlSeconds int) domain.SecretVersion {
	return domain.SecretVersion{
		Version:   number,
		CreatedAt: now,
		Value:     value,
		Checksum:  cryptoprim.Checksum(value),
		CreatedBy: subject,
		ExpiresAt: ttlExpiry(now, ttlSeconds),
	}
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func ttlExpiry(now time.Time, ttlSeconds int) *time.Time {
	if ttlSeconds <= 0 {
		return nil
	}
	t := now.Add(time.Duration(ttlSeconds) * time.Second)
	return &t
}

// withVersionReplaced returns a copy of secret whose version matching
// target's Version number is replaced by target — used to swap a
// plaintext or ciphertext form of the latest version into an otherwise
// unmodified secret without touching its other (already-ciphertext)
// history. If no version matches, target is appended.
func withVersionReplaced(secret domain.Secret, target domain.SecretVersion) domain.Secret {
	out := secret
	out.Versions = append([]domain.SecretVersion(nil), secret.Versions...)
	for i, v := range out.Versions {
		if v.Version == target.Version {
			out.Versions[i] = target
			return out
		}
	}
	out.Versions = append(out.Versions, target)
	return out
}
