// Package service contains the business logic layer.
// Services orchestrate operations across repositories, handle transactions,
// and publish events. They do not know about HTTP, gRPC, or transport details.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mvaleed/innkeep/internal/auth"
	"github.com/mvaleed/innkeep/internal/domain"
	"github.com/mvaleed/innkeep/internal/event"
	"github.com/mvaleed/innkeep/internal/storage"
	"github.com/mvaleed/innkeep/internal/validation"
)

// UserService handles profiles, favorites and account administration.
type UserService struct {
	users     storage.UserRepository
	hotels    storage.HotelRepository
	publisher event.Publisher
}

func NewUserService(
	users storage.UserRepository,
	hotels storage.HotelRepository,
	publisher event.Publisher,
) *UserService {
	return &UserService{
		users:     users,
		hotels:    hotels,
		publisher: publisher,
	}
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateProfileInput holds a partial profile update; nil fields are unchanged.
type UpdateProfileInput struct {
	Name   *string
	Phone  *string
	Avatar *string
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	data := map[string]any{
		"name":        input.Name,
		"phoneNumber": input.Phone,
		"avatar":      input.Avatar,
	}
	if err := domain.FromValidation(validation.Check(data, validation.ProfileRules())); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.FullName = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		user.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Avatar != nil {
		user.AvatarURL = strings.TrimSpace(*input.Avatar)
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	_ = s.publisher.Publish(ctx, domain.NewEvent(domain.EventUserUpdated, user.ID, nil))

	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	errs := validation.Check(map[string]any{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	}, validation.ChangePasswordRules())
	if err := domain.FromValidation(errs); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := auth.CheckPassword(currentPassword, user.PasswordHash); err != nil {
		return domain.ErrInvalidCredential
	}

	newHash, err := auth.HashPassword(newPassword)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return domain.ValidationError{Field: "newPassword", Message: err.Error()}
	}
	if err != nil {
		return err
	}

	user.PasswordHash = newHash
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	_ = s.publisher.Publish(ctx, domain.NewEvent(domain.EventPasswordChanged, user.ID, nil))

	return nil
}

func (s *UserService) ListFavorites(ctx context.Context, userID uuid.UUID) ([]domain.Hotel, error) {
	return s.users.ListFavorites(ctx, userID)
}

// AddFavorite returns ErrNotFound for an unknown hotel and ErrConflict when
// the hotel is already a favorite.
func (s *UserService) AddFavorite(ctx context.Context, userID, hotelID uuid.UUID) error {
	if _, err := s.hotels.GetByID(ctx, hotelID); err != nil {
		return err
	}

	if err := s.users.AddFavorite(ctx, userID, hotelID); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return fmt.Errorf("%w: hotel already in favorites", domain.ErrConflict)
		}
		return err
	}

	_ = s.publisher.Publish(ctx, domain.NewEvent(domain.EventFavoriteAdded, userID, map[string]any{
		"hotel_id": hotelID.String(),
	}))

	return nil
}

func (s *UserService) RemoveFavorite(ctx context.Context, userID, hotelID uuid.UUID) error {
	if err := s.users.RemoveFavorite(ctx, userID, hotelID); err != nil {
		return err
	}

	_ = s.publisher.Publish(ctx, domain.NewEvent(domain.EventFavoriteRemoved, userID, map[string]any{
		"hotel_id": hotelID.String(),
	}))

	return nil
}

func (s *UserService) SuspendUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	user.Suspend()

	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	_ = s.publisher.Publish(ctx, domain.NewEvent(domain.EventUserSuspended, user.ID, nil))

	return nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.publisher.Publish(ctx, domain.NewEvent(domain.EventUserDeleted, id, nil))

	return nil
}

func (s *UserService) ListUsers(ctx context.Context, filter storage.UserFilter) ([]domain.User, int64, error) {
	return s.users.List(ctx, filter)
}
