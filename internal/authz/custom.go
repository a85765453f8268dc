package authz

import (
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/systmms/secretd/internal/domain"
)

// customEvaluator backs the ABAC "custom" condition type with cel-go.
// A rule's condition value is expected to be a CEL expression string; it
// is compiled lazily on first use and cached by expression text so
// repeated evaluation of the same rule does not re-parse it.
type customEvaluator struct {
	env *cel.Env

	mu       sync.Mutex
	programs map[string]cel.Program
}

func newCustomEvaluator() *customEvaluator {
	env, err := cel.NewEnv(
		cel.Variable("subject", cel.StringType),
		cel.Variable("tenant", cel.StringType),
		cel.Variable("roles", cel.ListType(cel.StringType)),
		cel.Variable("resource", cel.StringType),
		cel.Variable("action", cel.StringType),
		cel.Variable("ip", cel.StringType),
		cel.Variable("hour", cel.IntType),
	)
	if err != nil {
		// A broken builtin environment can only come from a
		// programming error in the variable declarations above; there
		// is no recoverable path, so every Eval call degrades to
		// false and the zero-value evaluator reports that.
		return &customEvaluator{programs: map[string]cel.Program{}}
	}
	return &customEvaluator{env: env, programs: map[string]cel.Program{}}
}

// Eval compiles (or reuses) cond.Value as a CEL expression and runs it
// against rc. Any compile error, activation error, or non-boolean result
// evaluates to false — a malformed custom condition never aborts rule
// evaluation, matching the other condition types' shape-mismatch
// behavior.
func (c *customEvaluator) Eval(cond domain.AccessCondition, rc RequestContext) bool {
	if c.env == nil {
		return false
	}
	expr, ok := cond.Value.(string)
	if !ok || expr == "" {
		return false
	}

	program, err := c.compile(expr)
	if err != nil {
		return false
	}

	out, _, err := program.Eval(map[string]interface{}{
		"subject":  rc.Actor.Subject,
		"tenant":   rc.Actor.Tenant,
		"roles":    rc.Actor.Roles,
		"resource": rc.Resource,
		"action":   rc.Action,
		"ip":       rc.IP,
		"hour":     int64(rc.Now.Hour()),
	})
	if err != nil {
		return false
	}

	result, ok := out.Value().(bool)
	return ok && result
}

func (c *customEvaluator) compile(expr string) (cel.Program, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if program, ok := c.programs[expr]; ok {
		return program, nil
	}

	ast, issues := c.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	program, err := c.env.Program(ast)
	if err != nil {
		return nil, err
	}
	c.programs[expr] = program
	return program, nil
}
