package validation

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Vietnamese mobile numbers: +84 or a leading 0, then 9-10 digits.
	phoneRegex = regexp.MustCompile(`^(\+84|0)[0-9]{9,10}$`)
)

// IsValidEmail reports whether s looks like local@domain.tld.
func IsValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// IsValidPhone ignores whitespace inside the number.
func IsValidPhone(s string) bool {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return phoneRegex.MatchString(stripped)
}

// IsValidURL requires both a scheme and a host.
func IsValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// IsValidPassword requires at least 8 characters with one lowercase letter,
// one uppercase letter and one digit. Symbols are not required.
func IsValidPassword(s string) bool {
	if utf8.RuneCountInString(s) < 8 {
		return false
	}
	var hasLower, hasUpper, hasDigit bool
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= '0' && c <= '9':
			hasDigit = true
		}
	}
	return hasLower && hasUpper && hasDigit
}
