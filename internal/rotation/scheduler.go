package rotation

import (
	"context"
	"sync"
	"time"

	"github.com/systmms/secretd/internal/domain"
	"github.com/systmms/secretd/internal/lifecycle"
	"github.com/systmms/secretd/internal/logging"
)

// schedulerActor is the identity the scheduler presents to the
// lifecycle manager when dispatching an automatic rotation. It carries
// no subject-specific identity — every tenant's schedules run under it
// — so it needs only the writer role Rotate requires.
func schedulerActor(tenant string) domain.Identity {
	return domain.Identity{Subject: "rotation-scheduler", Tenant: tenant, Roles: []string{domain.RoleWriter}}
}

// Scheduler runs secretd's timer-driven rotation: it owns a set of
// per-secret RotationSchedule entries and, on each tick, dispatches
// rotation for every schedule that is due and inside its window, up to
// maxConcurrent at a time. Failed attempts back off exponentially
// (2^RetryCount minutes) until MaxRetries is exhausted, at which point
// the schedule is left in place with its last error recorded rather than
// removed — an operator has to look at it.
type Scheduler struct {
	mu        sync.Mutex
	schedules map[string]*domain.RotationSchedule

	manager       *lifecycle.Manager
	capabilities  *CapabilitiesRegistry
	logger        *logging.Logger
	checkInterval time.Duration
	sem           chan struct{}
}

// NewScheduler wires a Scheduler to the lifecycle manager it will call
// Rotate on. maxConcurrent bounds how many rotations run at once across
// all tenants; checkInterval is how often the scheduler looks for due
// schedules.
func NewScheduler(manager *lifecycle.Manager, capabilities *CapabilitiesRegistry, checkInterval time.Duration, maxConcurrent int, logger *logging.Logger) *Scheduler {
	if capabilities == nil {
		capabilities = NewCapabilitiesRegistry()
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Scheduler{
		schedules:     make(map[string]*domain.RotationSchedule),
		manager:       manager,
		capabilities:  capabilities,
		logger:        logger,
		checkInterval: checkInterval,
		sem:           make(chan struct{}, maxConcurrent),
	}
}

// Upsert adds or replaces the schedule for a secret.
func (s *Scheduler) Upsert(schedule domain.RotationSchedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sched := schedule
	s.schedules[schedule.SecretID] = &sched
}

// Status returns a snapshot of a secret's current schedule, if any.
func (s *Scheduler) Status(secretID string) (domain.RotationSchedule, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sched, ok := s.schedules[secretID]
	if !ok {
		return domain.RotationSchedule{}, false
	}
	return *sched, true
}

// Remove stops scheduling automatic rotation for a secret, e.g. after
// delete_secret.
func (s *Scheduler) Remove(secretID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.schedules, secretID)
}

// Run blocks, ticking every checkInterval until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Tick(ctx, now)
		}
	}
}

// Tick dispatches every due schedule concurrently, bounded by the
// semaphore, and waits for them all to finish before returning — so two
// ticks never overlap on the same schedule. Run calls this on its own
// timer; tests call it directly with a controlled time.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	due := s.dueSchedules(now)

	var wg sync.WaitGroup
	for _, sched := range due {
		sched := sched
		select {
		case s.sem <- struct{}{}:
		case <-ctx.Done():
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-s.sem }()
			s.rotateOne(ctx, sched, now)
		}()
	}
	wg.Wait()
}

func (s *Scheduler) dueSchedules(now time.Time) []*domain.RotationSchedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []*domain.RotationSchedule
	for _, sched := range s.schedules {
		if sched.MaxRetries > 0 && sched.RetryCount >= sched.MaxRetries {
			continue // retries exhausted; left for an operator
		}
		if sched.Due(now) {
			due = append(due, sched)
		}
	}
	return due
}

func (s *Scheduler) rotateOne(ctx context.Context, sched *domain.RotationSchedule, now time.Time) {
	var err error
	if sched.Strategy != "" {
		err = s.capabilities.Get(sched.HandlerID).ValidateStrategy(sched.Strategy)
	}
	if err == nil {
		actor := schedulerActor(sched.Tenant)
		_, err = s.manager.Rotate(ctx, actor, sched.SecretID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.schedules[sched.SecretID]
	if !ok {
		return // removed mid-flight, e.g. the secret was deleted
	}
	current.LastAttempt = &now
	if err != nil {
		current.RetryCount++
		current.LastError = err.Error()
		if s.logger != nil {
			s.logger.With("secret_id", sched.SecretID, "tenant", sched.Tenant, "retry_count", current.RetryCount).
				Warn("scheduled rotation failed: %v", err)
		}
		if current.MaxRetries > 0 && current.RetryCount >= current.MaxRetries {
			return // leave NextRotation as-is; an operator must intervene
		}
		current.NextRotation = now.Add(current.NextRetryDelay())
		return
	}

	current.RetryCount = 0
	current.LastError = ""
	current.NextRotation = now.Add(current.NextCadence())
}
