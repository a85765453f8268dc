package domain

import "time"

// RotationWindow constrains automatic rotation to a local-time-of-day
// range. Start >= End means the window wraps midnight.
type RotationWindow struct {
	Start    time.Duration // offset since local midnight
	End      time.Duration
	Timezone string
}

// Admits reports whether the window (if any; a nil receiver always
// admits) allows rotation at the given instant, evaluated in the
// window's timezone.
func (w *RotationWindow) Admits(now time.Time) bool {
	if w == nil {
		return true
	}
	loc := now.Location()
	if w.Timezone != "" {
		if l, err := time.LoadLocation(w.Timezone); err == nil {
			loc = l
		}
	}
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	offset := local.Sub(midnight)

	if w.Start < w.End {
		return offset >= w.Start && offset <= w.End
	}
	return offset >= w.Start || offset <= w.End
}

// RotationSchedule tracks a secret's next automatic rotation and retry
// state, owned exclusively by the rotation scheduler's task.
type RotationSchedule struct {
	SecretID     string
	Tenant       string
	NextRotation time.Time
	Window       *RotationWindow
	MaxRetries   int
	RetryCount   int
	LastAttempt  *time.Time
	LastError    string

	// Cadence is how far past a successful rotation NextRotation is
	// advanced. Zero means DefaultRotationCadence.
	Cadence time.Duration

	// HandlerID and Strategy identify which registered rotation handler
	// this schedule drives and which rotation strategy it was set up to
	// use ("immediate", "overlap", "two-key"). Both are optional: a zero
	// Strategy skips capability validation before dispatch.
	HandlerID string
	Strategy  string
}

// DefaultRotationCadence is the fallback interval a RotationSchedule
// advances NextRotation by after a successful rotation when Cadence is
// unset, mirroring the 90-day default internal/domain.Policy uses for
// RotationDays.
const DefaultRotationCadence = 90 * 24 * time.Hour

// NextCadence returns Cadence, or DefaultRotationCadence if it is unset.
func (s RotationSchedule) NextCadence() time.Duration {
	if s.Cadence <= 0 {
		return DefaultRotationCadence
	}
	return s.Cadence
}

// Due reports whether the schedule's next rotation is at or before now
// and, if a window is set, now falls inside it.
func (s RotationSchedule) Due(now time.Time) bool {
	if now.Before(s.NextRotation) {
		return false
	}
	return s.Window.Admits(now)
}

// NextRetryDelay is the exponential backoff applied after a failed
// rotation attempt: 2^RetryCount minutes.
func (s RotationSchedule) NextRetryDelay() time.Duration {
	return time.Duration(1<<uint(s.RetryCount)) * time.Minute
}
