// Package policy implements secretd's policy enforcer: a pure check of
// a candidate secret value against the Policy it is being written
// under. It never logs the candidate value.
package policy

import (
	"strconv"
	"strings"

	"github.com/systmms/secretd/internal/domain"
	"github.com/systmms/secretd/internal/dserr"
)

// Enforcer validates candidate secret values against a domain.Policy.
type Enforcer struct{}

// NewEnforcer returns a stateless policy Enforcer.
func NewEnforcer() *Enforcer {
	return &Enforcer{}
}

// Enforce fails with dserr.PolicyViolation if value is shorter than
// p.MinLength, or if any non-empty pattern in p.ForbidPatterns appears in
// value. It never includes the candidate value in the returned error.
func (e *Enforcer) Enforce(value string, p domain.Policy) error {
	p = p.Normalize()

	if len(value) < p.MinLength {
		return dserr.New("policy.Enforce", dserr.PolicyViolation, "value shorter than minimum length").
			WithSuggestion("use a value at least " + strconv.Itoa(p.MinLength) + " characters long")
	}

	for _, pattern := range p.ForbidPatterns {
		if pattern == "" {
			continue
		}
		if strings.Contains(value, pattern) {
			return dserr.New("policy.Enforce", dserr.PolicyViolation, "value contains a forbidden substring")
		}
	}

	return nil
}
