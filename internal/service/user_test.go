package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mvaleed/innkeep/internal/auth"
	"github.com/mvaleed/innkeep/internal/domain"
	"github.com/mvaleed/innkeep/internal/event"
)

func newUserService() (*UserService, *MockUserRepository, *MockHotelRepository) {
	users := new(MockUserRepository)
	hotels := new(MockHotelRepository)
	return NewUserService(users, hotels, event.NewNoopPublisher()), users, hotels
}

func testUser(t *testing.T) *domain.User {
	t.Helper()
	u, err := domain.NewUser("guest@example.com", "Guest One", "0912345678", domain.UserTypeCustomer)
	require.NoError(t, err)
	return u
}

func ptr[T any](v T) *T { return &v }

func TestUserService_UpdateProfile(t *testing.T) {
	svc, users, _ := newUserService()
	u := testUser(t)

	users.On("GetByID", mock.Anything, u.ID).Return(u, nil)
	users.On("Update", mock.Anything, u).Return(nil)

	got, err := svc.UpdateProfile(context.Background(), u.ID, UpdateProfileInput{
		Name:   ptr("  Guest Two "),
		Avatar: ptr("https://cdn.example.com/a.png"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Guest Two", got.FullName)
	assert.Equal(t, "0912345678", got.Phone)
	assert.Equal(t, "https://cdn.example.com/a.png", got.AvatarURL)
}

func TestUserService_UpdateProfileRejectsInvalidFields(t *testing.T) {
	svc, users, _ := newUserService()

	_, err := svc.UpdateProfile(context.Background(), uuid.New(), UpdateProfileInput{
		Phone:  ptr("+1 555 0100"),
		Avatar: ptr("not a url"),
	})

	var errs domain.ValidationErrors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 2)
	assert.Equal(t, "phoneNumber", errs[0].Field)
	assert.Equal(t, "avatar", errs[1].Field)
	users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestUserService_ChangePassword(t *testing.T) {
	u := testUser(t)
	hash, err := auth.HashPassword("Secret123")
	require.NoError(t, err)
	u.PasswordHash = hash

	t.Run("changes", func(t *testing.T) {
		svc, users, _ := newUserService()
		users.On("GetByID", mock.Anything, u.ID).Return(u, nil)
		users.On("Update", mock.Anything, u).Return(nil)

		require.NoError(t, svc.ChangePassword(context.Background(), u.ID, "Secret123", "Better456"))
		assert.NoError(t, auth.CheckPassword("Better456", u.PasswordHash))
	})

	t.Run("wrong current password", func(t *testing.T) {
		svc, users, _ := newUserService()
		users.On("GetByID", mock.Anything, u.ID).Return(u, nil)

		err := svc.ChangePassword(context.Background(), u.ID, "Nope1234", "Better456")
		assert.ErrorIs(t, err, domain.ErrInvalidCredential)
	})

	t.Run("weak new password", func(t *testing.T) {
		svc, _, _ := newUserService()

		err := svc.ChangePassword(context.Background(), u.ID, "Secret123", "weak")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestUserService_Favorites(t *testing.T) {
	userID, hotelID := uuid.New(), uuid.New()

	t.Run("adds", func(t *testing.T) {
		svc, users, hotels := newUserService()
		hotels.On("GetByID", mock.Anything, hotelID).Return(&domain.Hotel{ID: hotelID}, nil)
		users.On("AddFavorite", mock.Anything, userID, hotelID).Return(nil)

		require.NoError(t, svc.AddFavorite(context.Background(), userID, hotelID))
		users.AssertExpectations(t)
	})

	t.Run("duplicate is a conflict", func(t *testing.T) {
		svc, users, hotels := newUserService()
		hotels.On("GetByID", mock.Anything, hotelID).Return(&domain.Hotel{ID: hotelID}, nil)
		users.On("AddFavorite", mock.Anything, userID, hotelID).Return(domain.ErrAlreadyExists)

		assert.ErrorIs(t, svc.AddFavorite(context.Background(), userID, hotelID), domain.ErrConflict)
	})

	t.Run("unknown hotel", func(t *testing.T) {
		svc, users, hotels := newUserService()
		hotels.On("GetByID", mock.Anything, hotelID).Return(nil, domain.ErrNotFound)

		assert.ErrorIs(t, svc.AddFavorite(context.Background(), userID, hotelID), domain.ErrNotFound)
		users.AssertNotCalled(t, "AddFavorite", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("removes", func(t *testing.T) {
		svc, users, _ := newUserService()
		users.On("RemoveFavorite", mock.Anything, userID, hotelID).Return(domain.ErrNotFound)

		assert.ErrorIs(t, svc.RemoveFavorite(context.Background(), userID, hotelID), domain.ErrNotFound)
	})
}

func TestUserService_SuspendUser(t *testing.T) {
	svc, users, _ := newUserService()
	u := testUser(t)
	users.On("GetByID", mock.Anything, u.ID).Return(u, nil)
	users.On("Update", mock.Anything, u).Return(nil)

	require.NoError(t, svc.SuspendUser(context.Background(), u.ID))
	assert.False(t, u.IsActive())
}
