package authz

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/systmms/secretd/internal/domain"
	"github.com/systmms/secretd/internal/dserr"
)

// SessionManager owns the in-memory session table. Every method takes mu;
// GetSession takes the write lock because it updates LastActivity, so
// concurrent callers are safe.
type SessionManager struct {
	ttl       time.Duration
	jwtSecret []byte

	mu       sync.RWMutex
	sessions map[string]domain.Session
}

// NewSessionManager returns a SessionManager whose sessions live for ttl
// from creation and whose bearer tokens are signed with jwtSecret. A nil
// or empty jwtSecret disables IssueToken/VerifyToken (callers that never
// use bearer tokens don't need to provision one).
func NewSessionManager(ttl time.Duration, jwtSecret []byte) *SessionManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionManager{
		ttl:       ttl,
		jwtSecret: jwtSecret,
		sessions:  make(map[string]domain.Session),
	}
}

// CreateSession opens a new session for identity and returns it.
func (m *SessionManager) CreateSession(identity domain.Identity, now time.Time) domain.Session {
	session := domain.Session{
		ID:           uuid.NewString(),
		Identity:     identity,
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(m.ttl),
		Metadata:     map[string]string{},
		IsActive:     true,
	}
	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()
	return session
}

// GetSession returns the session by id, refreshing its last-activity
// timestamp as of now. It fails with dserr.NotFound if unknown and
// dserr.Expired if the session is no longer live, invalidating the
// stored record (IsActive = false) in that case rather than leaving it
// looking live to the next caller.
func (m *SessionManager) GetSession(id string, now time.Time) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return domain.Session{}, dserr.New("authz.GetSession", dserr.NotFound, "session not found")
	}
	if !session.Live(now) {
		session.IsActive = false
		m.sessions[id] = session
		return domain.Session{}, dserr.New("authz.GetSession", dserr.Expired, "session expired")
	}
	session.LastActivity = now
	m.sessions[id] = session
	return session, nil
}

// ExtendSession refreshes last-activity and pushes ExpiresAt out by the
// manager's ttl, as of now.
func (m *SessionManager) ExtendSession(id string, now time.Time) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return domain.Session{}, dserr.New("authz.ExtendSession", dserr.NotFound, "session not found")
	}
	if !session.Live(now) {
		return domain.Session{}, dserr.New("authz.ExtendSession", dserr.Expired, "session expired")
	}
	session.LastActivity = now
	session.ExpiresAt = now.Add(m.ttl)
	m.sessions[id] = session
	return session, nil
}

// InvalidateSession marks a session inactive. It is idempotent: invalidating
// an unknown or already-inactive session is not an error.
func (m *SessionManager) InvalidateSession(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return
	}
	session.IsActive = false
	m.sessions[id] = session
}

// CleanupExpiredSessions removes every session with ExpiresAt before now
// and returns the count removed.
func (m *SessionManager) CleanupExpiredSessions(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, session := range m.sessions {
		if now.After(session.ExpiresAt) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Tenant string   `json:"tenant"`
	Roles  []string `json:"roles"`
}

// IssueToken signs a bearer token carrying session.ID as the JWT subject
// and the identity's tenant/roles as custom claims, expiring with the
// session.
func (m *SessionManager) IssueToken(session domain.Session) (string, error) {
	if len(m.jwtSecret) == 0 {
		return "", dserr.New("authz.IssueToken", dserr.Configuration, "no jwt signing secret configured")
	}
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.ID,
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
		Tenant: session.Identity.Tenant,
		Roles:  session.Identity.Roles,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.jwtSecret)
	if err != nil {
		return "", dserr.Wrap("authz.IssueToken", dserr.Configuration, err)
	}
	return signed, nil
}

// VerifyToken parses and validates a bearer token and resolves it back
// to the live session it names.
func (m *SessionManager) VerifyToken(tokenString string, now time.Time) (domain.Session, error) {
	if len(m.jwtSecret) == 0 {
		return domain.Session{}, dserr.New("authz.VerifyToken", dserr.Configuration, "no jwt signing secret configured")
	}

	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return m.jwtSecret, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		return domain.Session{}, dserr.Wrap("authz.VerifyToken", dserr.Expired, err)
	}

	return m.GetSession(claims.Subject, now)
}
