package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mvaleed/innkeep/internal/auth"
	"github.com/mvaleed/innkeep/internal/domain"
	"github.com/mvaleed/innkeep/internal/event"
	"github.com/mvaleed/innkeep/internal/validation"
)

func init() {
	auth.SetBcryptCost(bcrypt.MinCost)
}

func newAuthService() (*AuthService, *MockUserRepository, *MockTokenRepository) {
	users := new(MockUserRepository)
	tokens := new(MockTokenRepository)
	cfg := auth.DefaultJWTConfig()
	cfg.SecretKey = "test-secret"
	return NewAuthService(users, tokens, auth.NewJWTManager(cfg), event.NewNoopPublisher()), users, tokens
}

func TestAuthService_Register(t *testing.T) {
	svc, users, tokens := newAuthService()

	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "guest@example.com" && u.Type == domain.UserTypeCustomer && u.PasswordHash != ""
	})).Return(nil)
	tokens.On("Create", mock.Anything, mock.AnythingOfType("*domain.RefreshToken")).Return(nil)

	result, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Guest One",
		Email:    "Guest@Example.com",
		Phone:    "0912 345 678",
		Password: "Secret123",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, int64(900), result.ExpiresInSeconds)

	claims, err := svc.ValidateToken(context.Background(), result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.False(t, claims.IsAdmin())
	users.AssertExpectations(t)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc, users, _ := newAuthService()

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "A",
		Email:    "not-an-email",
		Phone:    "12345",
		Password: "weak",
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	var errs domain.ValidationErrors
	require.ErrorAs(t, err, &errs)
	fields := make([]string, len(errs))
	for i, e := range errs {
		fields[i] = e.Field
	}
	assert.Equal(t, validation.RegistrationRules().Names(), fields)
	assert.Equal(t, "Please enter your name (at least 2 characters)", errs[0].Message)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	svc, users, _ := newAuthService()
	users.On("Create", mock.Anything, mock.Anything).Return(domain.ErrAlreadyExists)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Guest One", Email: "guest@example.com", Phone: "0912345678", Password: "Secret123",
	})

	var ve domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "email", ve.Field)
}

func TestAuthService_Login(t *testing.T) {
	svc, users, tokens := newAuthService()

	hash, err := auth.HashPassword("Secret123")
	require.NoError(t, err)
	user, err := domain.NewUser("guest@example.com", "Guest One", "", domain.UserTypeAdmin)
	require.NoError(t, err)
	user.PasswordHash = hash

	users.On("GetByEmail", mock.Anything, "guest@example.com").Return(user, nil)
	tokens.On("Create", mock.Anything, mock.Anything).Return(nil)

	t.Run("valid credentials", func(t *testing.T) {
		result, err := svc.Login(context.Background(), LoginInput{Email: "guest@example.com", Password: "Secret123"})
		require.NoError(t, err)
		claims, err := svc.ValidateToken(context.Background(), result.AccessToken)
		require.NoError(t, err)
		assert.True(t, claims.IsAdmin())
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginInput{Email: "guest@example.com", Password: "Secret124"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredential)
	})

	t.Run("missing password fails validation", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginInput{Email: "guest@example.com"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("suspended account", func(t *testing.T) {
		suspended := *user
		suspended.Status = domain.UserStatusSuspended
		svc, users, _ := newAuthService()
		users.On("GetByEmail", mock.Anything, "guest@example.com").Return(&suspended, nil)

		_, err := svc.Login(context.Background(), LoginInput{Email: "guest@example.com", Password: "Secret123"})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	user, err := domain.NewUser("guest@example.com", "Guest One", "", domain.UserTypeCustomer)
	require.NoError(t, err)

	stored := func() *domain.RefreshToken {
		return &domain.RefreshToken{
			ID:        uuid.New(),
			UserID:    user.ID,
			TokenHash: auth.HashToken("old"),
			ExpiresAt: time.Now().Add(time.Hour),
		}
	}

	t.Run("rotates", func(t *testing.T) {
		svc, users, tokens := newAuthService()
		old := stored()
		tokens.On("GetByHash", mock.Anything, auth.HashToken("old")).Return(old, nil)
		users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		tokens.On("Revoke", mock.Anything, old.ID).Return(nil)
		tokens.On("Create", mock.Anything, mock.Anything).Return(nil)

		result, err := svc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: "old"})
		require.NoError(t, err)
		assert.NotEqual(t, "old", result.RefreshToken)
		tokens.AssertExpectations(t)
	})

	t.Run("reuse of a revoked token revokes the family", func(t *testing.T) {
		svc, _, tokens := newAuthService()
		old := stored()
		revokedAt := time.Now().Add(-time.Minute)
		old.RevokedAt = &revokedAt
		tokens.On("GetByHash", mock.Anything, auth.HashToken("old")).Return(old, nil)
		tokens.On("RevokeAllForUser", mock.Anything, user.ID).Return(nil)

		_, err := svc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: "old"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredential)
		tokens.AssertCalled(t, "RevokeAllForUser", mock.Anything, user.ID)
	})

	t.Run("expired", func(t *testing.T) {
		svc, _, tokens := newAuthService()
		old := stored()
		old.ExpiresAt = time.Now().Add(-time.Second)
		tokens.On("GetByHash", mock.Anything, auth.HashToken("old")).Return(old, nil)

		_, err := svc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: "old"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredential)
		tokens.AssertNotCalled(t, "RevokeAllForUser", mock.Anything, mock.Anything)
	})
}

func TestAuthService_LogoutUnknownToken(t *testing.T) {
	svc, _, tokens := newAuthService()
	tokens.On("GetByHash", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)

	assert.NoError(t, svc.Logout(context.Background(), "unknown"))
}

func TestAuthService_CleanupExpiredTokens(t *testing.T) {
	svc, _, tokens := newAuthService()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	tokens.On("DeleteExpired", mock.Anything, now.Add(-7*24*time.Hour)).Return(int64(3), nil)

	n, err := svc.CleanupExpiredTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	tokens.AssertExpectations(t)
}
