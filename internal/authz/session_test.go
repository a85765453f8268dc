package authz_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/secretd/internal/authz"
	"github.com/systmms/secretd/internal/domain"
	"github.com/systmms/secretd/internal/dserr"
)

func TestSessionManager(t *testing.T) {
	t.Parallel()

	identity := domain.Identity{Subject: "alice", Tenant: "acme", Roles: []string{domain.RoleReader}}
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("create_and_get_round_trip", func(t *testing.T) {
		t.Parallel()
		m := authz.NewSessionManager(time.Hour, nil)
		session := m.CreateSession(identity, now)
		got, err := m.GetSession(session.ID, now)
		require.NoError(t, err)
		assert.Equal(t, identity.Subject, got.Identity.Subject)
	})

	t.Run("get_unknown_session_not_found", func(t *testing.T) {
		t.Parallel()
		m := authz.NewSessionManager(time.Hour, nil)
		_, err := m.GetSession("missing", now)
		assert.True(t, dserr.Is(err, dserr.NotFound))
	})

	t.Run("get_expired_session_fails", func(t *testing.T) {
		t.Parallel()
		m := authz.NewSessionManager(time.Minute, nil)
		session := m.CreateSession(identity, now)
		_, err := m.GetSession(session.ID, now.Add(2*time.Minute))
		assert.True(t, dserr.Is(err, dserr.Expired))
	})

	t.Run("get_session_refreshes_last_activity", func(t *testing.T) {
		t.Parallel()
		m := authz.NewSessionManager(time.Hour, nil)
		session := m.CreateSession(identity, now)
		later := now.Add(30 * time.Second)
		got, err := m.GetSession(session.ID, later)
		require.NoError(t, err)
		assert.Equal(t, later, got.LastActivity)
	})

	t.Run("get_expired_session_invalidates_the_record", func(t *testing.T) {
		t.Parallel()
		m := authz.NewSessionManager(time.Minute, nil)
		session := m.CreateSession(identity, now)
		_, err := m.GetSession(session.ID, now.Add(2*time.Minute))
		require.Error(t, err)

		// A second Get, even at a time the session would otherwise still
		// be live by ExpiresAt alone, must stay failed: IsActive was
		// flipped false on the first expired observation.
		_, err = m.GetSession(session.ID, now)
		assert.True(t, dserr.Is(err, dserr.Expired))
	})

	t.Run("extend_session_pushes_expiry_out", func(t *testing.T) {
		t.Parallel()
		m := authz.NewSessionManager(time.Minute, nil)
		session := m.CreateSession(identity, now)
		later := now.Add(30 * time.Second)
		extended, err := m.ExtendSession(session.ID, later)
		require.NoError(t, err)
		assert.True(t, extended.ExpiresAt.After(session.ExpiresAt))
	})

	t.Run("invalidate_session_is_idempotent_and_blocks_get", func(t *testing.T) {
		t.Parallel()
		m := authz.NewSessionManager(time.Hour, nil)
		session := m.CreateSession(identity, now)
		m.InvalidateSession(session.ID)
		m.InvalidateSession(session.ID) // no panic, no error surface
		_, err := m.GetSession(session.ID, now)
		assert.Error(t, err)
	})

	t.Run("cleanup_expired_sessions_removes_only_expired", func(t *testing.T) {
		t.Parallel()
		m := authz.NewSessionManager(time.Minute, nil)
		stale := m.CreateSession(identity, now)
		fresh := m.CreateSession(identity, now.Add(3*time.Minute))
		removed := m.CleanupExpiredSessions(now.Add(3 * time.Minute))
		assert.Equal(t, 1, removed)
		_, err := m.GetSession(stale.ID, now.Add(3*time.Minute))
		assert.Error(t, err)
		_, err = m.GetSession(fresh.ID, now.Add(3*time.Minute))
		assert.NoError(t, err)
	})

	t.Run("issue_and_verify_token_round_trip", func(t *testing.T) {
		t.Parallel()
		m := authz.NewSessionManager(time.Hour, []byte("test-secret"))
		session := m.CreateSession(identity, now)
		token, err := m.IssueToken(session)
		require.NoError(t, err)
		got, err := m.VerifyToken(token, now)
		require.NoError(t, err)
		assert.Equal(t, session.ID, got.ID)
	})

	t.Run("issue_token_without_secret_fails", func(t *testing.T) {
		t.Parallel()
		m := authz.NewSessionManager(time.Hour, nil)
		session := m.CreateSession(identity, now)
		_, err := m.IssueToken(session)
		assert.True(t, dserr.Is(err, dserr.Configuration))
	})

	t.Run("verify_token_with_wrong_secret_fails", func(t *testing.T) {
		t.Parallel()
		issuer := authz.NewSessionManager(time.Hour, []byte("secret-a"))
		verifier := authz.NewSessionManager(time.Hour, []byte("secret-b"))
		session := issuer.CreateSession(identity, now)
		token, err := issuer.IssueToken(session)
		require.NoError(t, err)
		_, err = verifier.VerifyToken(token, now)
		assert.Error(t, err)
	})
}
