// Package object implements internal/store.Store over an object-storage
// bucket. One ObjectClient interface hides the vendor SDK so the store
// logic itself never imports AWS/GCP/Azure packages directly; s3.go,
// gcs.go, and azureblob.go each adapt a vendor SDK to it.
package object

import (
	"context"
	"encoding/json"

	"github.com/systmms/secretd/internal/domain"
	"github.com/systmms/secretd/internal/dserr"
)

// ObjectClient is the minimal surface internal/store/object needs from a
// vendor object-storage SDK: fetch, replace, and a not-found signal.
// Drivers translate their vendor's not-found error (S3's NoSuchKey, GCS's
// storage.ErrObjectNotExist, azblob's 404) into ErrNotFound so
// object.Store has one code path regardless of backend.
type ObjectClient interface {
	// GetObject returns the object's bytes, or ErrNotFound if it does
	// not exist.
	GetObject(ctx context.Context, key string) ([]byte, error)

	// PutObject writes or replaces the object at key.
	PutObject(ctx context.Context, key string, data []byte) error
}

// ErrNotFound is the sentinel ObjectClient implementations return for a
// missing object, regardless of vendor.
var ErrNotFound = dserr.New("store/object", dserr.NotFound, "object not found")

// document is the single JSON blob holding every secret, keyed by id
// alone, mirroring store/file's document shape: the object backend gives
// the same document semantics as the file backend, just backed by blob
// storage.
type document map[string]domain.Secret

// Store persists secrets as one JSON document at Key, in the bucket the
// underlying ObjectClient is configured for.
type Store struct {
	Client ObjectClient
	Key    string
}

// New returns a Store that reads/writes a single document at key via
// client, defaulting key to "secrets/document.json" if empty.
func New(client ObjectClient, keyPrefix string) *Store {
	if keyPrefix == "" {
		keyPrefix = "secrets/"
	}
	return &Store{Client: client, Key: keyPrefix + "document.json"}
}

func (s *Store) read(ctx context.Context) (document, error) {
	data, err := s.Client.GetObject(ctx, s.Key)
	if dserr.Is(err, dserr.NotFound) {
		return document{}, nil
	}
	if err != nil {
		return nil, dserr.Wrap("store/object.read", dserr.StoreUnavailable, err)
	}
	if len(data) == 0 {
		return document{}, nil
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, dserr.Wrap("store/object.read", dserr.Integrity, err)
	}
	return doc, nil
}

func (s *Store) write(ctx context.Context, doc document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return dserr.Wrap("store/object.write", dserr.Integrity, err)
	}
	if err := s.Client.PutObject(ctx, s.Key, data); err != nil {
		return dserr.Wrap("store/object.write", dserr.StoreUnavailable, err)
	}
	return nil
}

// Get returns the secret by id alone, regardless of tenant.
func (s *Store) Get(ctx context.Context, id string) (domain.Secret, error) {
	doc, err := s.read(ctx)
	if err != nil {
		return domain.Secret{}, err
	}
	secret, ok := doc[id]
	if !ok {
		return domain.Secret{}, dserr.New("store/object.Get", dserr.NotFound, "secret not found")
	}
	return secret, nil
}

// List returns every secret for tenant.
func (s *Store) List(ctx context.Context, tenant string) ([]domain.Secret, error) {
	doc, err := s.read(ctx)
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
	doc, err := s.read(ctx)
	if err != nil {
		return err
	}
	doc[secret.ID] = secret
	return s.write(ctx, doc)
}

// Delete removes the secret by id alone, if present.
func (s *Store) Delete(ctx context.Context, id string) error {
	doc, err := s.read(ctx)
	if err != nil {
		return err
	}
	delete(doc, id)
	return s.write(ctx, doc)
}
