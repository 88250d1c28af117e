package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mvaleed/innkeep/internal/validation"
)

// UserType represents the type/category of a user.
type UserType string

const (
	UserTypeAdmin    UserType = "admin"
	UserTypeCustomer UserType = "customer"
)

// Valid returns true if the UserType is recognized.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeAdmin, UserTypeCustomer:
		return true
	}
	return false
}

// UserStatus represents the current state of a user account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusSuspended:
		return true
	}
	return false
}

// User is a guest or administrator account.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string // Never expose this externally
	Phone        string
	FullName     string
	AvatarURL    string
	Type         UserType
	Status       UserStatus

	// Favorite hotels, loaded separately
	Favorites []uuid.UUID

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time

	// Version for optimistic locking
	Version int
}

func NewUser(email, fullName, phone string, userType UserType) (*User, error) {
	now := time.Now().UTC()
	u := &User{
		ID:        uuid.New(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		FullName:  strings.TrimSpace(fullName),
		Phone:     strings.TrimSpace(phone),
		Type:      userType,
		Status:    UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

func userRules() validation.RuleSet {
	return validation.RuleSet{
		{Name: "email", Rule: validation.Rule{Required: true, Email: true, MaxLength: 254}},
		{Name: "full_name", Rule: validation.Rule{Required: true, MinLength: 2, MaxLength: 200}},
		{Name: "phone", Rule: validation.Rule{Phone: true}},
		{Name: "avatar_url", Rule: validation.Rule{URL: true, MaxLength: 2048}},
	}
}

func (u *User) Validate() error {
	errs := validation.Check(map[string]any{
		"email":      u.Email,
		"full_name":  u.FullName,
		"phone":      u.Phone,
		"avatar_url": u.AvatarURL,
	}, userRules())

	out, _ := FromValidation(errs).(ValidationErrors)
	if !u.Type.Valid() {
		out = append(out, ValidationError{Field: "type", Message: "invalid user type"})
	}
	if !u.Status.Valid() {
		out = append(out, ValidationError{Field: "status", Message: "invalid status"})
	}

	if len(out) > 0 {
		return out
	}
	return nil
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive && u.DeletedAt == nil
}

func (u *User) IsAdmin() bool {
	return u.Type == UserTypeAdmin
}

func (u *User) Suspend() {
	u.Status = UserStatusSuspended
	u.UpdatedAt = time.Now().UTC()
}

func (u *User) Delete() {
	now := time.Now().UTC()
	u.DeletedAt = &now
	u.UpdatedAt = now
}

func (u *User) HasFavorite(hotelID uuid.UUID) bool {
	return slices.Contains(u.Favorites, hotelID)
}
