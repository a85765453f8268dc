package domain

import "time"

// Session is a tracked, time-bounded binding to an Identity, owned by the
// session manager's task (internal/authz). IsActive is flipped false by
// invalidation but the record is retained for audit rather than removed.
type Session struct {
	ID           string
	Identity     Identity
	CreatedAt    time.Time
	LastActivity time.Time
	ExpiresAt    time.Time
	Metadata     map[string]string
	IsActive     bool
}

// Live reports whether the session is active and not yet expired as of
// now.
func (s Session) Live(now time.Time) bool {
	return s.IsActive && now.Before(s.ExpiresAt)
}
