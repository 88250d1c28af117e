package booking

import "errors"

// Rule identifies which gate rejected a draft.
type Rule string

const (
	RuleLeadTime           Rule = "lead_time"
	RuleStayTooShort       Rule = "stay_too_short"
	RuleStayTooLong        Rule = "stay_too_long"
	RuleCatalogUnavailable Rule = "catalog_unavailable"
	RuleCapacity           Rule = "capacity"
	RuleInvalidDraft       Rule = "invalid_draft"
)

// Violation is a user-facing rejection of a draft. It is a normal outcome,
// not a fault.
type Violation struct {
	Rule    Rule
	Field   string
	Message string
}

func (v *Violation) Error() string {
	return string(v.Rule) + ": " + v.Message
}

// AsViolation unwraps err into a *Violation.
func AsViolation(err error) (*Violation, bool) {
	var v *Violation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
