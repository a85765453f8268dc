package domain

// Policy is the immutable constraint bundle attached to a secret at
// creation time. Replacing a policy requires creating a new secret —
// there is no update operation on an attached Policy.
type Policy struct {
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	RotationDays   int      `json:"rotation_days"`
	MinLength      int      `json:"min_length"`
	ForbidPatterns []string `json:"forbid_patterns,omitempty"`
	AllowedCIDRs   []string `json:"allowed_cidrs,omitempty"`
}

// DefaultPolicy returns secretd's default policy: 90-day rotation cadence,
// 16-character minimum length, no forbidden patterns.
func DefaultPolicy(name string) Policy {
	return Policy{
		Name:         name,
		RotationDays: 90,
		MinLength:    16,
	}
}

// Normalize fills in zero-valued fields with their default values.
// policy.Enforcer calls it on every check, so a caller supplying a partial
// Policy still gets well-defined rotation/length behavior; the Policy
// stored on a secret is kept as supplied.
func (p Policy) Normalize() Policy {
	if p.RotationDays <= 0 {
		p.RotationDays = 90
	}
	if p.MinLength <= 0 {
		p.MinLength = 16
	}
	return p
}
