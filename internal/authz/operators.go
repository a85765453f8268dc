package authz

import (
	"regexp"

	"github.com/systmms/secretd/internal/domain"
)

// toFloat converts a YAML/JSON-decoded numeric value (int, int64, or
// float64) to float64. The second return is false for any other shape.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func toStringSlice(v interface{}) ([]string, bool) {
	switch s := v.(type) {
	case []string:
		return s, true
	case []interface{}:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	default:
		return nil, false
	}
}

// matchNumeric evaluates equals/in/between against a numeric context
// value (the ABAC "time" condition's current-hour check). matches is
// never satisfiable for a numeric context — both sides must be strings.
func matchNumeric(op domain.Operator, ruleValue interface{}, context float64) bool {
	switch op {
	case domain.OpEquals:
		n, ok := toFloat(ruleValue)
		return ok && n == context
	case domain.OpIn:
		nums, ok := toNumericSlice(ruleValue)
		if !ok {
			return false
		}
		for _, n := range nums {
			if n == context {
				return true
			}
		}
		return false
	case domain.OpBetween:
		bounds, ok := toNumericSlice(ruleValue)
		if !ok || len(bounds) != 2 {
			return false
		}
		lo, hi := bounds[0], bounds[1]
		return context >= lo && context <= hi
	default:
		return false
	}
}

func toNumericSlice(v interface{}) ([]float64, bool) {
	items, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]float64, 0, len(items))
	for _, item := range items {
		n, ok := toFloat(item)
		if !ok {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

// matchString evaluates equals/in/matches against a string context value
// (the ABAC "ip" condition). between is never satisfiable for a string
// context.
func matchString(op domain.Operator, ruleValue interface{}, context string) bool {
	switch op {
	case domain.OpEquals:
		s, ok := ruleValue.(string)
		return ok && s == context
	case domain.OpIn:
		list, ok := toStringSlice(ruleValue)
		if !ok {
			return false
		}
		for _, s := range list {
			if s == context {
				return true
			}
		}
		return false
	case domain.OpMatches:
		pattern, ok := ruleValue.(string)
		if !ok {
			return false
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false
		}
		return re.MatchString(context)
	default:
		return false
	}
}

// matchRole evaluates the "role" condition type: "in" means any of the
// actor's roles appears in the rule's value list.
func matchRole(op domain.Operator, ruleValue interface{}, actorRoles []string) bool {
	switch op {
	case domain.OpIn:
		list, ok := toStringSlice(ruleValue)
		if !ok {
			return false
		}
		for _, want := range list {
			for _, have := range actorRoles {
				if want == have {
					return true
				}
			}
		}
		return false
	case domain.OpEquals:
		want, ok := ruleValue.(string)
		if !ok {
			return false
		}
		for _, have := range actorRoles {
			if have == want {
				return true
			}
		}
		return false
	default:
		return false
	}
}
