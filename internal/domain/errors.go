// Package domain contains the core business entities and rules.
// These types have no knowledge of databases, HTTP, or any infrastructure concerns.
package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mvaleed/innkeep/internal/validation"
)

// Errors for common domain-level failures.
var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenRevoked      = errors.New("token revoked")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrVersionMismatch   = errors.New("version mismatch")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrRoomsUnavailable  = errors.New("rooms unavailable")
)

// ValidationError represents one or more validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

func (e ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%d validation errors", len(e))
}

func (e ValidationErrors) Is(target error) bool {
	return target == ErrInvalidInput
}

// FromValidation converts form validator output; nil when there were no errors.
func FromValidation(errs validation.Errors) error {
	if len(errs) == 0 {
		return nil
	}
	out := make(ValidationErrors, len(errs))
	for i, e := range errs {
		out[i] = ValidationError{Field: e.Field, Message: e.Message}
	}
	return out
}

// UnavailableRoomsError lists room types already booked for overlapping dates.
type UnavailableRoomsError struct {
	Rooms []string
}

func (e *UnavailableRoomsError) Error() string {
	return "rooms not available: " + strings.Join(e.Rooms, ", ")
}

func (e *UnavailableRoomsError) Is(target error) bool {
	return target == ErrRoomsUnavailable
}
