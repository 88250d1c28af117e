package validation

import (
	"fmt"
	"math"
	"reflect"
	"unicode/utf8"
)

// Error is a single field failure.
type Error struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e Error) Error() string {
	return e.Field + ": " + e.Message
}

// Errors is the ordered outcome of a validation pass.
type Errors []Error

func (e Errors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%d validation errors", len(e))
}

// First returns the message of the earliest error.
func (e Errors) First() (string, bool) {
	if len(e) == 0 {
		return "", false
	}
	return e[0].Message, true
}

// Field returns the message recorded for name.
func (e Errors) Field(name string) (string, bool) {
	for _, err := range e {
		if err.Field == name {
			return err.Message, true
		}
	}
	return "", false
}

// Validator accumulates errors across calls. It is meant for one form
// submission at a time and must not be shared between goroutines.
type Validator struct {
	errors Errors
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{}
}

// Check runs rules against data and returns the resulting errors.
func Check(data map[string]any, rules RuleSet) Errors {
	v := New()
	v.Validate(data, rules)
	return v.Errors()
}

// Validate clears previous errors and checks every field in rules. It does not
// stop at the first invalid field.
func (v *Validator) Validate(data map[string]any, rules RuleSet) bool {
	v.errors = nil
	valid := true
	for _, f := range rules {
		if !v.ValidateField(f.Name, data[f.Name], f.Rule) {
			valid = false
		}
	}
	return valid
}

// ValidateField checks one value and replaces any error already recorded for
// name. Calling it repeatedly with the same input is idempotent.
func (v *Validator) ValidateField(name string, value any, rule Rule) bool {
	v.remove(name)

	if msg, ok := checkValue(name, value, rule); !ok {
		v.errors = append(v.errors, Error{Field: name, Message: msg})
		return false
	}
	return true
}

// Errors returns a copy of the current errors.
func (v *Validator) Errors() Errors {
	if len(v.errors) == 0 {
		return nil
	}
	out := make(Errors, len(v.errors))
	copy(out, v.errors)
	return out
}

// FirstError returns the first recorded message in insertion order.
func (v *Validator) FirstError() (string, bool) {
	return v.errors.First()
}

// FieldError returns the message recorded for name.
func (v *Validator) FieldError(name string) (string, bool) {
	return v.errors.Field(name)
}

// ClearErrors drops all recorded errors.
func (v *Validator) ClearErrors() {
	v.errors = nil
}

func (v *Validator) remove(name string) {
	kept := v.errors[:0]
	for _, e := range v.errors {
		if e.Field != name {
			kept = append(kept, e)
		}
	}
	v.errors = kept
}

func checkValue(name string, value any, rule Rule) (string, bool) {
	value = indirect(value)

	if rule.Required && isMissing(value) {
		return messageOr(rule, name+" is required"), false
	}
	if !rule.Required && isBlank(value) {
		return "", true
	}

	if s, ok := value.(string); ok {
		if msg, ok := checkString(name, s, rule); !ok {
			return msg, false
		}
	} else if n, ok := toFloat(value); ok {
		if rule.Min != nil && n < *rule.Min {
			return messageOr(rule, fmt.Sprintf("%s must be at least %s", name, formatNumber(*rule.Min))), false
		}
		if rule.Max != nil && n > *rule.Max {
			return messageOr(rule, fmt.Sprintf("%s must be at most %s", name, formatNumber(*rule.Max))), false
		}
	}

	if rule.Custom != nil && !rule.Custom(value) {
		return messageOr(rule, name+" validation failed"), false
	}
	return "", true
}

// checkString counts length in code points, so an emoji outside the BMP is one
// character.
func checkString(name, s string, rule Rule) (string, bool) {
	length := utf8.RuneCountInString(s)
	switch {
	case rule.MinLength > 0 && length < rule.MinLength:
		return messageOr(rule, fmt.Sprintf("%s must be at least %d characters", name, rule.MinLength)), false
	case rule.MaxLength > 0 && length > rule.MaxLength:
		return messageOr(rule, fmt.Sprintf("%s must be at most %d characters", name, rule.MaxLength)), false
	case rule.Email && !IsValidEmail(s):
		return messageOr(rule, "Please enter a valid email address"), false
	case rule.Phone && !IsValidPhone(s):
		return messageOr(rule, "Please enter a valid phone number"), false
	case rule.URL && !IsValidURL(s):
		return messageOr(rule, "Please enter a valid URL"), false
	case rule.Password && !IsValidPassword(s):
		return messageOr(rule, "Password must be at least 8 characters with uppercase, lowercase, and number"), false
	case rule.Pattern != nil && !rule.Pattern.MatchString(s):
		return messageOr(rule, name+" format is invalid"), false
	}
	return "", true
}

func messageOr(rule Rule, fallback string) string {
	if rule.Message != "" {
		return rule.Message
	}
	return fallback
}

// indirect unwraps pointers so *string and *int fields behave like their
// values; a nil pointer becomes an untyped nil.
func indirect(value any) any {
	rv := reflect.ValueOf(value)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

// isMissing reports an absent value: nil or the empty string.
func isMissing(value any) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && s == ""
}

// isBlank widens isMissing with the zero number and false, which an optional
// field treats as "not filled in".
func isBlank(value any) bool {
	if isMissing(value) {
		return true
	}
	if b, ok := value.(bool); ok {
		return !b
	}
	if n, ok := toFloat(value); ok {
		return n == 0 || math.IsNaN(n)
	}
	return false
}

func toFloat(value any) (float64, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
