// Package envelope implements secretd's envelope key manager: a keyed
// collection of data-encryption keys (DEKs), exactly one active, with
// online rotation and backwards-compatible decryption of values written
// under retired keys. Each DEK is derived from the operator's master key
// plus a per-key salt via scrypt and held only in guarded memory
// (internal/secure's memguard-backed SecureBuffer) — it is never
// serialized.
package envelope

import (
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/scrypt"

	"github.com/systmms/secretd/internal/cryptoprim"
	"github.com/systmms/secretd/internal/domain"
	"github.com/systmms/secretd/internal/dserr"
	"github.com/systmms/secretd/internal/secure"
)

const (
	scryptN      = 1 << 15
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
)

// EncryptedValue is what Encrypt returns: the opaque ciphertext token
// (which already carries its own nonce, per cryptoprim's wire format)
// plus the id of the key that produced it. The iv is embedded in
// Ciphertext rather than broken out separately, since cryptoprim's
// token format is self-contained and stable.
type EncryptedValue struct {
	Ciphertext string
	KeyID      string
}

type keyEntry struct {
	meta   domain.EncryptionKey
	buffer *secure.SecureBuffer
}

// Manager owns the keyed DEK table. All mutation happens through its
// methods, which hold keysMu for the duration — readers outside the
// manager's own task must go through Encrypt/Decrypt rather than
// touching the table directly (it is unexported).
type Manager struct {
	masterKey    string
	rotationDays int

	keysMu   sync.RWMutex
	keys     map[string]*keyEntry
	activeID string
}

// NewManager creates a manager with one active key, freshly derived from
// masterKey. rotationDays configures ShouldRotateKey's threshold (the
// config package's key_rotation_days); zero defaults to 90.
func NewManager(masterKey string, rotationDays int) (*Manager, error) {
	if rotationDays <= 0 {
		rotationDays = 90
	}
	m := &Manager{
		masterKey:    masterKey,
		rotationDays: rotationDays,
		keys:         make(map[string]*keyEntry),
	}
	if _, err := m.newKey(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) newKey() (string, error) {
	id := uuid.NewString()
	derived, err := scrypt.Key([]byte(m.masterKey), []byte(id), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", dserr.Wrap("envelope.newKey", dserr.Integrity, err)
	}
	buf, err := secure.NewSecureBuffer(derived)
	if err != nil {
		return "", dserr.Wrap("envelope.newKey", dserr.Integrity, err)
	}

	now := time.Now().UTC()
	entry := &keyEntry{
		meta: domain.EncryptionKey{
			ID:        id,
			CreatedAt: now,
			IsActive:  true,
		},
		buffer: buf,
	}

	m.keysMu.Lock()
	defer m.keysMu.Unlock()
	if prev, ok := m.keys[m.activeID]; ok {
		prev.meta.IsActive = false
	}
	m.keys[id] = entry
	m.activeID = id
	return id, nil
}

// keyMaterialLocked returns the derived key bytes for id as a hex string
// suitable for cryptoprim's masterKey parameter. The caller must hold (at
// least) a read lock.
func (m *Manager) keyMaterialLocked(id string) (string, bool) {
	entry, ok := m.keys[id]
	if !ok {
		return "", false
	}
	locked, err := entry.buffer.Open()
	if err != nil {
		return "", false
	}
	defer locked.Destroy()
	return hex.EncodeToString(locked.Bytes()), true
}

// Encrypt seals plaintext under the currently active key.
func (m *Manager) Encrypt(plaintext []byte) (EncryptedValue, error) {
	m.keysMu.RLock()
	activeID := m.activeID
	material, ok := m.keyMaterialLocked(activeID)
	m.keysMu.RUnlock()
	if !ok {
		return EncryptedValue{}, dserr.New("envelope.Encrypt", dserr.KeyNotFound, "no active key")
	}

	token, err := cryptoprim.Encrypt(plaintext, material)
	if err != nil {
		return EncryptedValue{}, err
	}
	return EncryptedValue{Ciphertext: token, KeyID: activeID}, nil
}

// Decrypt reverses Encrypt, looking up keyID among active or retired
// keys. It fails with dserr.KeyNotFound if keyID is unknown — this is
// how backwards-compatible decryption of values written under a
// since-rotated key works: the key stays in the table until
// CleanupExpired removes it.
func (m *Manager) Decrypt(ciphertext, keyID string) ([]byte, error) {
	m.keysMu.RLock()
	material, ok := m.keyMaterialLocked(keyID)
	m.keysMu.RUnlock()
	if !ok {
		return nil, dserr.New("envelope.Decrypt", dserr.KeyNotFound, "unknown key id: "+keyID)
	}
	return cryptoprim.Decrypt(ciphertext, material)
}

// DecryptAny reverses Encrypt without requiring the caller to know which
// key produced ciphertext: the stored wire format carries no key
// identifier, so backwards-compatible decryption across key generations
// works by trying the active key, then every retired key,
// until one authenticates. AES-GCM's tag makes a wrong-key attempt fail
// cleanly rather than returning garbage, so this is safe. It also returns
// the id of the key that worked; internal/lifecycle, its only caller,
// discards it.
func (m *Manager) DecryptAny(ciphertext string) ([]byte, string, error) {
	m.keysMu.RLock()
	ids := make([]string, 0, len(m.keys))
	if m.activeID != "" {
		ids = append(ids, m.activeID)
	}
	for id := range m.keys {
		if id != m.activeID {
			ids = append(ids, id)
		}
	}
	m.keysMu.RUnlock()

	for _, id := range ids {
		plaintext, err := m.Decrypt(ciphertext, id)
		if err == nil {
			return plaintext, id, nil
		}
	}
	return nil, "", dserr.New("envelope.DecryptAny", dserr.Integrity, "ciphertext does not decrypt under any known key")
}

// RotateKey generates a new key, marks it active, and demotes the
// previous active key to inactive (it remains in the table so ciphertext
// written under it keeps decrypting). Returns the new key's id.
func (m *Manager) RotateKey() (string, error) {
	return m.newKey()
}

// ShouldRotateKey compares the active key's age to the configured
// rotation-days threshold.
func (m *Manager) ShouldRotateKey() bool {
	m.keysMu.RLock()
	defer m.keysMu.RUnlock()
	active, ok := m.keys[m.activeID]
	if !ok {
		return true
	}
	return time.Since(active.meta.CreatedAt) >= time.Duration(m.rotationDays)*24*time.Hour
}

// ActiveKeyID returns the id of the currently active key.
func (m *Manager) ActiveKeyID() string {
	m.keysMu.RLock()
	defer m.keysMu.RUnlock()
	return m.activeID
}

// Keys returns metadata for every key in the table, active and retired.
func (m *Manager) Keys() []domain.EncryptionKey {
	m.keysMu.RLock()
	defer m.keysMu.RUnlock()
	out := make([]domain.EncryptionKey, 0, len(m.keys))
	for _, e := range m.keys {
		out = append(out, e.meta)
	}
	return out
}

// CleanupExpired purges retired keys for which inUse reports false,
// i.e. no persisted ciphertext still references them. The active key is
// never purged regardless of inUse's answer.
func (m *Manager) CleanupExpired(inUse func(keyID string) bool) int {
	m.keysMu.Lock()
	defer m.keysMu.Unlock()

	purged := 0
	for id, entry := range m.keys {
		if id == m.activeID || entry.meta.IsActive {
			continue
		}
		if inUse(id) {
			continue
		}
		entry.buffer.Destroy()
		delete(m.keys, id)
		purged++
	}
	return purged
}
