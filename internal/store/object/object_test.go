package object_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/secretd/internal/domain"
	"github.com/systmms/secretd/internal/dserr"
	"github.com/systmms/secretd/internal/store/object"
)

// fakeClient is an in-memory ObjectClient stand-in used to test
// object.Store without a real vendor SDK. A stub returning "not found"
// for every unknown key must be treated as an empty document, which the
// shared table test below asserts.
type fakeClient struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeClient() *fakeClient {
	return &fakeClient{objects: map[string][]byte{}}
}

func (f *fakeClient) GetObject(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, object.ErrNotFound
	}
	return data, nil
}

func (f *fakeClient) PutObject(ctx context.Context, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = append([]byte(nil), data...)
	return nil
}

func TestStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("get_against_not_found_client_is_empty_document", func(t *testing.T) {
		t.Parallel()
		s := object.New(newFakeClient(), "")
		_, err := s.Get(ctx, "s1")
		assert.True(t, dserr.Is(err, dserr.NotFound))
	})

	t.Run("save_then_get_round_trip", func(t *testing.T) {
		t.Parallel()
		s := object.New(newFakeClient(), "")
		secret := domain.Secret{ID: "s1", Tenant: "acme", Name: "db-password"}
		require.NoError(t, s.Save(ctx, secret))
		got, err := s.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, secret.Name, got.Name)
	})

	t.Run("get_resolves_by_id_regardless_of_tenant", func(t *testing.T) {
		t.Parallel()
		s := object.New(newFakeClient(), "")
		require.NoError(t, s.Save(ctx, domain.Secret{ID: "s1", Tenant: "acme"}))
		got, err := s.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "acme", got.Tenant)
	})

	t.Run("delete_is_idempotent", func(t *testing.T) {
		t.Parallel()
		s := object.New(newFakeClient(), "")
		secret := domain.Secret{ID: "s1", Tenant: "acme"}
		require.NoError(t, s.Save(ctx, secret))
		require.NoError(t, s.Delete(ctx, "s1"))
		require.NoError(t, s.Delete(ctx, "s1"))
		_, err := s.Get(ctx, "s1")
		assert.True(t, dserr.Is(err, dserr.NotFound))
	})

	t.Run("list_filters_by_tenant", func(t *testing.T) {
		t.Parallel()
		s := object.New(newFakeClient(), "")
		require.NoError(t, s.Save(ctx, domain.Secret{ID: "a", Tenant: "acme"}))
		require.NoError(t, s.Save(ctx, domain.Secret{ID: "b", Tenant: "other"}))
		list, err := s.List(ctx, "acme")
		require.NoError(t, err)
		require.Len(t, list, 1)
	})
}
