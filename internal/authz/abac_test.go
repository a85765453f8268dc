package authz_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/systmms/secretd/internal/authz"
	"github.com/systmms/secretd/internal/domain"
)

func TestEvaluator_Evaluate(t *testing.T) {
	t.Parallel()

	t.Run("default_decision_is_deny", func(t *testing.T) {
		t.Parallel()
		e := authz.NewEvaluator()
		rc := authz.RequestContext{Resource: "secret:db-password", Action: "get", Now: time.Now()}
		assert.Equal(t, domain.EffectDeny, e.Evaluate(rc))
	})

	t.Run("matching_allow_rule_grants", func(t *testing.T) {
		t.Parallel()
		e := authz.NewEvaluator()
		e.RegisterRule(domain.AccessRule{
			ID: "r1", Resource: "*", Action: "get", Effect: domain.EffectAllow,
		})
		rc := authz.RequestContext{Resource: "secret:db-password", Action: "get", Now: time.Now()}
		assert.Equal(t, domain.EffectAllow, e.Evaluate(rc))
	})

	t.Run("explicit_deny_wins_over_earlier_allow", func(t *testing.T) {
		t.Parallel()
		e := authz.NewEvaluator()
		e.RegisterRule(domain.AccessRule{ID: "allow", Resource: "*", Action: "*", Effect: domain.EffectAllow})
		e.RegisterRule(domain.AccessRule{ID: "deny", Resource: "*", Action: "*", Effect: domain.EffectDeny})
		rc := authz.RequestContext{Resource: "secret:x", Action: "get", Now: time.Now()}
		assert.Equal(t, domain.EffectDeny, e.Evaluate(rc))
	})

	t.Run("explicit_deny_wins_regardless_of_rule_order", func(t *testing.T) {
		t.Parallel()
		e := authz.NewEvaluator()
		e.RegisterRule(domain.AccessRule{ID: "deny", Resource: "*", Action: "*", Effect: domain.EffectDeny})
		e.RegisterRule(domain.AccessRule{ID: "allow", Resource: "*", Action: "*", Effect: domain.EffectAllow})
		rc := authz.RequestContext{Resource: "secret:x", Action: "get", Now: time.Now()}
		assert.Equal(t, domain.EffectDeny, e.Evaluate(rc))
	})

	t.Run("non_matching_resource_is_skipped", func(t *testing.T) {
		t.Parallel()
		e := authz.NewEvaluator()
		e.RegisterRule(domain.AccessRule{ID: "r1", Resource: "secret:other", Action: "*", Effect: domain.EffectAllow})
		rc := authz.RequestContext{Resource: "secret:x", Action: "get", Now: time.Now()}
		assert.Equal(t, domain.EffectDeny, e.Evaluate(rc))
	})

	t.Run("time_condition_gates_allow_by_hour", func(t *testing.T) {
		t.Parallel()
		e := authz.NewEvaluator()
		e.RegisterRule(domain.AccessRule{
			ID: "r1", Resource: "*", Action: "*", Effect: domain.EffectAllow,
			Conditions: []domain.AccessCondition{
				{Type: domain.ConditionTime, Operator: domain.OpBetween, Value: []interface{}{9.0, 17.0}},
			},
		})
		inWindow := authz.RequestContext{Resource: "s", Action: "get", Now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
		outOfWindow := authz.RequestContext{Resource: "s", Action: "get", Now: time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)}
		assert.Equal(t, domain.EffectAllow, e.Evaluate(inWindow))
		assert.Equal(t, domain.EffectDeny, e.Evaluate(outOfWindow))
	})

	t.Run("role_condition_requires_membership", func(t *testing.T) {
		t.Parallel()
		e := authz.NewEvaluator()
		e.RegisterRule(domain.AccessRule{
			ID: "r1", Resource: "*", Action: "*", Effect: domain.EffectAllow,
			Conditions: []domain.AccessCondition{
				{Type: domain.ConditionRole, Operator: domain.OpIn, Value: []interface{}{"admin"}},
			},
		})
		admin := authz.RequestContext{Actor: domain.Identity{Roles: []string{"admin"}}, Resource: "s", Action: "get", Now: time.Now()}
		reader := authz.RequestContext{Actor: domain.Identity{Roles: []string{"reader"}}, Resource: "s", Action: "get", Now: time.Now()}
		assert.Equal(t, domain.EffectAllow, e.Evaluate(admin))
		assert.Equal(t, domain.EffectDeny, e.Evaluate(reader))
	})

	t.Run("malformed_condition_value_is_inert_not_fatal", func(t *testing.T) {
		t.Parallel()
		e := authz.NewEvaluator()
		e.RegisterRule(domain.AccessRule{
			ID: "r1", Resource: "*", Action: "*", Effect: domain.EffectAllow,
			Conditions: []domain.AccessCondition{
				{Type: domain.ConditionTime, Operator: domain.OpBetween, Value: "not-a-range"},
			},
		})
		rc := authz.RequestContext{Resource: "s", Action: "get", Now: time.Now()}
		assert.Equal(t, domain.EffectDeny, e.Evaluate(rc))
	})

	t.Run("custom_condition_evaluates_cel_expression", func(t *testing.T) {
		t.Parallel()
		e := authz.NewEvaluator()
		e.RegisterRule(domain.AccessRule{
			ID: "r1", Resource: "*", Action: "*", Effect: domain.EffectAllow,
			Conditions: []domain.AccessCondition{
				{Type: domain.ConditionCustom, Value: `tenant == "acme" && "writer" in roles`},
			},
		})
		match := authz.RequestContext{Actor: domain.Identity{Tenant: "acme", Roles: []string{"writer"}}, Resource: "s", Action: "get", Now: time.Now()}
		noMatch := authz.RequestContext{Actor: domain.Identity{Tenant: "acme", Roles: []string{"reader"}}, Resource: "s", Action: "get", Now: time.Now()}
		assert.Equal(t, domain.EffectAllow, e.Evaluate(match))
		assert.Equal(t, domain.EffectDeny, e.Evaluate(noMatch))
	})

	t.Run("custom_condition_compile_failure_is_inert", func(t *testing.T) {
		t.Parallel()
		e := authz.NewEvaluator()
		e.RegisterRule(domain.AccessRule{
			ID: "r1", Resource: "*", Action: "*", Effect: domain.EffectAllow,
			Conditions: []domain.AccessCondition{
				{Type: domain.ConditionCustom, Value: `this is not valid cel (`},
			},
		})
		rc := authz.RequestContext{Resource: "s", Action: "get", Now: time.Now()}
		assert.Equal(t, domain.EffectDeny, e.Evaluate(rc))
	})
}
