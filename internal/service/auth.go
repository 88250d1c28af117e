package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mvaleed/innkeep/internal/auth"
	"github.com/mvaleed/innkeep/internal/domain"
	"github.com/mvaleed/innkeep/internal/event"
	"github.com/mvaleed/innkeep/internal/storage"
	"github.com/mvaleed/innkeep/internal/validation"
)

// AuthService handles registration and token issuance.
type AuthService struct {
	users     storage.UserRepository
	tokens    storage.TokenRepository
	jwt       *auth.JWTManager
	publisher event.Publisher
	now       func() time.Time
}

func NewAuthService(
	users storage.UserRepository,
	tokens storage.TokenRepository,
	jwt *auth.JWTManager,
	publisher event.Publisher,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		jwt:       jwt,
		publisher: publisher,
		now:       time.Now,
	}
}

// RegisterInput carries the sign-up form.
type RegisterInput struct {
	Name      string
	Email     string
	Phone     string
	Password  string
	IPAddress string
	UserAgent string
}

// Register creates a customer account and signs it in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*LoginResult, error) {
	errs := validation.Check(map[string]any{
		"name":        input.Name,
		"email":       input.Email,
		"phoneNumber": input.Phone,
		"password":    input.Password,
	}, validation.RegistrationRules())
	if err := domain.FromValidation(errs); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(input.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, domain.ValidationError{Field: "password", Message: err.Error()}
	}
	if err != nil {
		return nil, err
	}

	user, err := domain.NewUser(input.Email, input.Name, input.Phone, domain.UserTypeCustomer)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = passwordHash

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.ValidationError{Field: "email", Message: "already registered"}
		}
		return nil, err
	}

	_ = s.publisher.Publish(ctx, domain.UserRegisteredEvent(user))

	return s.issue(ctx, user, input.IPAddress, input.UserAgent)
}

// LoginInput contains the credentials for login.
type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

// LoginResult contains the tokens and user info after successful login.
type LoginResult struct {
	AccessToken      string
	RefreshToken     string
	ExpiresInSeconds int64
	User             *domain.User
}

// Login authenticates a user and returns tokens.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	errs := validation.Check(map[string]any{
		"email":    input.Email,
		"password": input.Password,
	}, validation.LoginRules())
	if err := domain.FromValidation(errs); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredential
	}

	if err = auth.CheckPassword(input.Password, user.PasswordHash); err != nil {
		return nil, domain.ErrInvalidCredential
	}

	if !user.IsActive() {
		return nil, domain.ErrUnauthorized
	}

	result, err := s.issue(ctx, user, input.IPAddress, input.UserAgent)
	if err != nil {
		return nil, err
	}

	_ = s.publisher.Publish(ctx, domain.UserLoggedInEvent(user.ID, input.IPAddress, input.UserAgent))

	return result, nil
}

// RefreshTokenInput contains the refresh token and metadata.
type RefreshTokenInput struct {
	RefreshToken string
	IPAddress    string
	UserAgent    string
}

// RefreshToken rotates a refresh token. Presenting a revoked token revokes
// every token of its owner.
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*LoginResult, error) {
	storedToken, err := s.tokens.GetByHash(ctx, auth.HashToken(input.RefreshToken))
	if err != nil {
		return nil, domain.ErrInvalidCredential
	}

	if !storedToken.ValidAt(s.now()) {
		if storedToken.IsRevoked() {
			_ = s.tokens.RevokeAllForUser(ctx, storedToken.UserID)
		}
		return nil, domain.ErrInvalidCredential
	}

	user, err := s.users.GetByID(ctx, storedToken.UserID)
	if err != nil {
		return nil, domain.ErrInvalidCredential
	}

	if !user.IsActive() {
		_ = s.tokens.Revoke(ctx, storedToken.ID)
		return nil, domain.ErrUnauthorized
	}

	if err := s.tokens.Revoke(ctx, storedToken.ID); err != nil {
		// Lost a race with another refresh of the same token.
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredential
		}
		return nil, err
	}

	return s.issue(ctx, user, input.IPAddress, input.UserAgent)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	storedToken, err := s.tokens.GetByHash(ctx, auth.HashToken(refreshToken))
	if err != nil {
		return nil
	}

	if err := s.tokens.Revoke(ctx, storedToken.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	_ = s.publisher.Publish(ctx, domain.NewEvent(domain.EventUserLoggedOut, storedToken.UserID, nil))

	return nil
}

func (s *AuthService) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	return s.tokens.RevokeAllForUser(ctx, userID)
}

// ValidateToken validates an access token and returns the claims.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	return s.jwt.ValidateAccessToken(token)
}

// expiredTokenRetention keeps expired tokens around long enough for reuse
// detection to still recognise a replayed token.
const expiredTokenRetention = 7 * 24 * time.Hour

// CleanupExpiredTokens removes refresh tokens that expired more than a week ago.
func (s *AuthService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	return s.tokens.DeleteExpired(ctx, s.now().Add(-expiredTokenRetention))
}

func (s *AuthService) issue(ctx context.Context, user *domain.User, ipAddress, userAgent string) (*LoginResult, error) {
	accessToken, _, err := s.jwt.GenerateAccessToken(auth.TokenPayload{
		UserID:   user.ID,
		Email:    user.Email,
		UserType: string(user.Type),
	})
	if err != nil {
		return nil, err
	}

	refreshTokenString, err := domain.GenerateTokenString()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	refreshToken := &domain.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: auth.HashToken(refreshTokenString),
		ExpiresAt: now.Add(s.jwt.RefreshTokenTTL()),
		CreatedAt: now,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}

	if err := s.tokens.Create(ctx, refreshToken); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:      accessToken,
		RefreshToken:     refreshTokenString,
		ExpiresInSeconds: int64(s.jwt.AccessTokenTTL().Seconds()),
		User:             user,
	}, nil
}
