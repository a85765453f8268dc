package authz

import (
	"sync"
	"time"

	"github.com/systmms/secretd/internal/domain"
)

// RequestContext carries the attributes an ABAC rule's conditions
// evaluate against: the acting identity, the resource/action being
// attempted, the caller's IP, and the instant of evaluation.
type RequestContext struct {
	Actor    domain.Identity
	Resource string
	Action   string
	IP       string
	Now      time.Time
}

// Evaluator holds the ordered rule set for the advanced ABAC policy.
// Rules are mutated only through RegisterRule, which takes the write
// lock; Evaluate is safe to call concurrently with registration (it
// snapshots the rule list under a read lock).
type Evaluator struct {
	mu    sync.RWMutex
	rules []domain.AccessRule

	customMu sync.Mutex
	custom   *customEvaluator
}

// NewEvaluator returns an Evaluator with an empty rule set.
func NewEvaluator() *Evaluator {
	return &Evaluator{custom: newCustomEvaluator()}
}

// RegisterRule appends rule to the end of the ordered rule set.
func (e *Evaluator) RegisterRule(rule domain.AccessRule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = append(e.rules, rule)
}

// Rules returns a snapshot of the registered rules in evaluation order.
func (e *Evaluator) Rules() []domain.AccessRule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]domain.AccessRule(nil), e.rules...)
}

// Evaluate walks the rule set in registration order. The default
// decision is deny. A matching allow rule sets the decision to allow but
// evaluation continues; a matching deny rule immediately returns deny,
// overriding any prior allow — explicit deny always wins regardless of
// rule order.
func (e *Evaluator) Evaluate(rc RequestContext) domain.Effect {
	decision := domain.EffectDeny

	for _, rule := range e.Rules() {
		if !patternMatches(rule.Resource, rc.Resource) || !patternMatches(rule.Action, rc.Action) {
			continue
		}
		if !e.conditionsMatch(rule.Conditions, rc) {
			continue
		}
		if rule.Effect == domain.EffectDeny {
			return domain.EffectDeny
		}
		if rule.Effect == domain.EffectAllow {
			decision = domain.EffectAllow
		}
	}

	return decision
}

func patternMatches(pattern, value string) bool {
	return pattern == "*" || pattern == value
}

func (e *Evaluator) conditionsMatch(conditions []domain.AccessCondition, rc RequestContext) bool {
	for _, cond := range conditions {
		if !e.conditionMatches(cond, rc) {
			return false
		}
	}
	return true
}

// conditionMatches evaluates one condition. Any type/operator/value
// shape mismatch returns false rather than an error: a mal-typed rule
// becomes inert, it never aborts evaluation.
func (e *Evaluator) conditionMatches(cond domain.AccessCondition, rc RequestContext) bool {
	switch cond.Type {
	case domain.ConditionTime:
		return matchNumeric(cond.Operator, cond.Value, float64(rc.Now.Hour()))
	case domain.ConditionIP:
		return matchString(cond.Operator, cond.Value, rc.IP)
	case domain.ConditionRole:
		return matchRole(cond.Operator, cond.Value, rc.Actor.Roles)
	case domain.ConditionCustom:
		return e.custom.Eval(cond, rc)
	default:
		return false
	}
}
