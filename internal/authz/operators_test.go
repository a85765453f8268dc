package authz_test

// matchNumeric/matchString/matchRole are exercised indirectly through
// Evaluator.Evaluate in abac_test.go, which covers between on a time
// condition, in on a role condition, a malformed between value and a
// custom CEL condition; equals, matches and ip conditions have no test.
