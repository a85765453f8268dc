// Package file implements internal/store.Store as a single JSON document
// on disk. Save and Delete hold an advisory file lock (path + ".lock")
// around their read-modify-write cycle, so writers sharing the same
// store_path, in one process or several, are serialized. Get and List
// read the file without taking the lock.
package file

import (
	"context"
	"encoding/json"
	"os"

	"github.com/gofrs/flock"

	"github.com/systmms/secretd/internal/domain"
	"github.com/systmms/secretd/internal/dserr"
)

// document is the on-disk shape: every secret keyed by id so a single
// file can serve every tenant. Ids are globally unique UUIDs.
type document map[string]domain.Secret

// Store persists secrets as one JSON document at Path, serialized by an
// OS file lock held for the duration of each read-modify-write.
type Store struct {
	Path string
	lock *flock.Flock
}

// New returns a Store backed by the document at path. The file is
// created empty on first write if it does not already exist.
func New(path string) *Store {
	return &Store{Path: path, lock: flock.New(path + ".lock")}
}

func (s *Store) withLock(ctx context.Context, fn func(doc document) (document, error)) error {
	if err := s.lock.Lock(); err != nil {
		return dserr.Wrap("store/file", dserr.StoreUnavailable, err)
	}
	defer s.lock.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}

	updated, err := fn(doc)
	if err != nil {
		return err
	}
	if updated == nil {
		return nil
	}
	return s.write(updated)
}

func (s *Store) read() (document, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return document{}, nil
	}
	if err != nil {
		return nil, dserr.Wrap("store/file.read", dserr.StoreUnavailable, err)
	}
	if len(data) == 0 {
		return document{}, nil
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, dserr.Wrap("store/file.read", dserr.Integrity, err)
	}
	return doc, nil
}

func (s *Store) write(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return dserr.Wrap("store/file.write", dserr.Integrity, err)
	}
	if err := os.WriteFile(s.Path, data, 0o600); err != nil {
		return dserr.Wrap("store/file.write", dserr.StoreUnavailable, err)
	}
	return nil
}

// Get returns the secret by id alone, regardless of tenant.
func (s *Store) Get(ctx context.Context, id string) (domain.Secret, error) {
	doc, err := s.read()
	if err != nil {
		return domain.Secret{}, err
	}
	secret, ok := doc[id]
	if !ok {
		return domain.Secret{}, dserr.New("store/file.Get", dserr.NotFound, "secret not found")
	}
	return secret, nil
}

// List returns every secret for tenant.
func (s *Store) List(ctx context.Context, tenant string) ([]domain.Secret, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	var out []domain.Secret
	for _, secret := range doc {
		if secret.Tenant == tenant {
			out = append(out, secret)
		}
	}
	return out, nil
}

// Save upserts secret into the document.
func (s *Store) Save(ctx context.Context, secret domain.Secret) error {
	return s.withLock(ctx, func(doc document) (document, error) {
		doc[secret.ID] = secret
		return doc, nil
	})
}

// Delete removes the secret by id alone, if present.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.withLock(ctx, func(doc document) (document, error) {
		delete(doc, id)
		return doc, nil
	})
}
