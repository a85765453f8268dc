// Package event defines the fire-and-forget notification surface the
// lifecycle manager emits on. The webhook transport that would actually
// deliver these events is out of this repo's scope; only the event
// shape and a no-op default Emitter live here.
package event

import "time"

// Kind names the lifecycle action a SecretEvent reports: the five base
// outcomes (created, updated, deleted, accessed, expired) plus rotated,
// so downstream consumers can tell an operator-initiated put apart from
// a scheduled or manual rotation even though both append a new version.
type Kind string

const (
	KindCreated  Kind = "created"
	KindUpdated  Kind = "updated"
	KindRotated  Kind = "rotated"
	KindDeleted  Kind = "deleted"
	KindAccessed Kind = "accessed"
	KindExpired  Kind = "expired"
)

// SecretEvent is the payload handed to an Emitter after a lifecycle
// operation completes successfully. It never carries secret values,
// only identifying metadata.
type SecretEvent struct {
	Kind      Kind
	SecretID  string
	Tenant    string
	Actor     string
	Version   int
	Timestamp time.Time
	Metadata  map[string]string
}

// Emitter receives SecretEvents. Implementations must not block the
// caller for long or panic; Emit is called synchronously at the end of
// a lifecycle operation, after persistence and audit have already
// succeeded.
type Emitter interface {
	Emit(SecretEvent)
}

// NopEmitter discards every event. It is the default Emitter so the
// lifecycle core never depends on a transport.
type NopEmitter struct{}

func (NopEmitter) Emit(SecretEvent) {}
