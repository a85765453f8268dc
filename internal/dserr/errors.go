// Package dserr defines the typed error kinds raised by secretd's core
// components. Every operation in internal/lifecycle, internal/authz,
// internal/envelope and internal/store surfaces errors through this
// package so that CLI/HTTP collaborators (out of this module's scope) can
// classify a failure without string-matching its message.
package dserr

import (
	"errors"
	"fmt"
)

// Kind classifies an error into one of secretd's error categories.
type Kind string

const (
	NotFound         Kind = "not-found"
	TenantMismatch   Kind = "tenant-mismatch"
	MissingRole      Kind = "missing-role"
	PolicyViolation  Kind = "policy-violation"
	Expired          Kind = "expired"
	NoHandler        Kind = "no-handler"
	Integrity        Kind = "integrity"
	KeyNotFound      Kind = "key-not-found"
	StoreUnavailable Kind = "store-unavailable"
	Configuration    Kind = "configuration"
)

// Error is the error type returned by core operations. Op names the
// component and method that raised it (e.g. "lifecycle.GetSecret"),
// Kind is one of the enumerated categories above, and Err, when present,
// wraps the underlying cause (a store I/O failure, a decrypt failure...).
type Error struct {
	Op         string
	Kind       Kind
	Message    string
	Suggestion string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = string(e.Kind)
	}
	s := fmt.Sprintf("%s: %s", e.Op, msg)
	if e.Suggestion != "" {
		s += " (" + e.Suggestion + ")"
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an *Error for op/kind with a message.
func New(op string, kind Kind, message string) *Error {
	return &Error{Op: op, Kind: kind, Message: message}
}

// Wrap constructs an *Error for op/kind wrapping an underlying cause.
func Wrap(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// WithSuggestion returns a copy of e carrying a caller-facing suggestion.
func (e *Error) WithSuggestion(s string) *Error {
	cp := *e
	cp.Suggestion = s
	return &cp
}

// GetKind extracts the Kind from err, walking its Unwrap chain. It returns
// ("", false) if err is nil or carries no classified Kind — such errors
// are collaborator bugs, not one of the classified categories.
func GetKind(err error) (Kind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	k, ok := GetKind(err)
	return ok && k == kind
}
