// Package cryptoprim implements secretd's authenticated-encryption
// primitive: AES-256-GCM over a key derived from a supplied master key,
// plus a deterministic checksum used for integrity and drift
// diagnostics. Nothing above this package should reach for crypto/aes or
// crypto/cipher directly — internal/envelope builds per-key encryption on
// top of Encrypt/Decrypt, substituting a derived data-encryption key for
// the master key.
package cryptoprim

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/systmms/secretd/internal/dserr"
)

const (
	nonceSize = 12
	tagSize   = 16
)

// deriveKey reduces an arbitrary-length master key to the 256-bit AES key
// GCM requires, by SHA-256. Encrypt and Decrypt apply it to every
// masterKey they receive, including the hex-encoded scrypt-derived DEKs
// that the envelope manager passes in.
func deriveKey(masterKey string) [32]byte {
	return sha256.Sum256([]byte(masterKey))
}

// Encrypt seals plaintext under a key derived from masterKey and returns
// an opaque token: base64(nonce[12] || tag[16] || ciphertext). The format
// is stable, so tokens written by any build of secretd using the same
// master key decrypt correctly.
func Encrypt(plaintext []byte, masterKey string) (string, error) {
	key := deriveKey(masterKey)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return "", dserr.Wrap("cryptoprim.Encrypt", dserr.Integrity, err)
	}
	gcm, err := cipher.NewGCMWithTagSize(block, tagSize)
	if err != nil {
		return "", dserr.Wrap("cryptoprim.Encrypt", dserr.Integrity, err)
	}
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", dserr.Wrap("cryptoprim.Encrypt", dserr.Integrity, err)
	}
	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	// sealed = ciphertext || tag (crypto/cipher appends the tag); the
	// stable wire format instead wants nonce || tag || ciphertext, so
	// split and reassemble.
	ct := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]
	token := make([]byte, 0, nonceSize+tagSize+len(ct))
	token = append(token, nonce...)
	token = append(token, tag...)
	token = append(token, ct...)
	return base64.StdEncoding.EncodeToString(token), nil
}

// Decrypt reverses Encrypt. It fails with a dserr.Integrity error if the
// token is malformed or the authentication tag does not verify.
func Decrypt(token string, masterKey string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, dserr.Wrap("cryptoprim.Decrypt", dserr.Integrity, fmt.Errorf("malformed token: %w", err))
	}
	if len(raw) < nonceSize+tagSize {
		return nil, dserr.New("cryptoprim.Decrypt", dserr.Integrity, "token too short")
	}
	nonce := raw[:nonceSize]
	tag := raw[nonceSize : nonceSize+tagSize]
	ct := raw[nonceSize+tagSize:]

	key := deriveKey(masterKey)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, dserr.Wrap("cryptoprim.Decrypt", dserr.Integrity, err)
	}
	gcm, err := cipher.NewGCMWithTagSize(block, tagSize)
	if err != nil {
		return nil, dserr.Wrap("cryptoprim.Decrypt", dserr.Integrity, err)
	}

	sealed := make([]byte, 0, len(ct)+tagSize)
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, dserr.New("cryptoprim.Decrypt", dserr.Integrity, "authentication tag mismatch")
	}
	return plaintext, nil
}

// Checksum returns the SHA-256 hex digest of value's UTF-8 bytes. It is
// deterministic (equal inputs always produce equal digests) but, like
// any hash, collision-free only in practice, not in principle.
func Checksum(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
