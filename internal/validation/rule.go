// Package validation implements the rule-based form validator shared by the
// registration, login, profile, review and booking flows.
//
// A RuleSet is an ordered list of fields, each carrying a declarative Rule.
// Checks for one field run in a fixed order and stop at the first failure, so
// every field reports at most one message per pass.
package validation

import (
	"regexp"
	"strconv"
)

// Rule describes the checks applied to a single field.
type Rule struct {
	Required bool

	// String length bounds, counted in characters. Zero means unset.
	MinLength int
	MaxLength int

	// Numeric bounds. Nil means unset; zero is a valid bound.
	Min *float64
	Max *float64

	Pattern *regexp.Regexp

	Email    bool
	Phone    bool
	URL      bool
	Password bool

	// Custom runs last and only if every other check passed.
	Custom func(value any) bool

	// Message replaces the default text for whichever check fails.
	Message string
}

// Bound returns a pointer suitable for Rule.Min and Rule.Max.
func Bound(v float64) *float64 {
	return &v
}

// Field binds a Rule to a field name.
type Field struct {
	Name string
	Rule Rule
}

// RuleSet is evaluated in slice order, which is also the order errors are reported in.
type RuleSet []Field

// Names returns the field names in evaluation order.
func (rs RuleSet) Names() []string {
	names := make([]string, len(rs))
	for i, f := range rs {
		names[i] = f.Name
	}
	return names
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
