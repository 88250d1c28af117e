package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims is the access token body. UserType drives the admin guard on the
// catalog and booking administration routes.
type Claims struct {
	jwt.RegisteredClaims
	UserID   uuid.UUID `json:"uid"`
	Email    string    `json:"email"`
	UserType string    `json:"user_type"`
}

func (c *Claims) IsAdmin() bool {
	return c.UserType == "admin"
}

// Validate runs after the registered claims checks during parsing.
func (c *Claims) Validate() error {
	if c.UserID == uuid.Nil || c.Subject != c.UserID.String() {
		return errors.New("subject does not match uid")
	}
	if c.UserType == "" {
		return errors.New("missing user_type")
	}
	return nil
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Issuer          string
	Audience        []string
}

func DefaultJWTConfig() JWTConfig {
	return JWTConfig{
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		Issuer:          "innkeep",
		Audience:        []string{"innkeep-mobile"},
	}
}

// JWTManager signs and verifies HS256 access tokens.
type JWTManager struct {
	config JWTConfig
	now    func() time.Time
}

func NewJWTManager(config JWTConfig) *JWTManager {
	return &JWTManager{config: config, now: time.Now}
}

type TokenPayload struct {
	UserID   uuid.UUID
	Email    string
	UserType string
}

func (m *JWTManager) GenerateAccessToken(p TokenPayload) (string, time.Time, error) {
	issued := m.now().UTC()
	expires := issued.Add(m.config.AccessTokenTTL)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   p.UserID.String(),
			Issuer:    m.config.Issuer,
			Audience:  m.config.Audience,
			IssuedAt:  jwt.NewNumericDate(issued),
			NotBefore: jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		UserID:   p.UserID,
		Email:    p.Email,
		UserType: p.UserType,
	}).SignedString([]byte(m.config.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

func (m *JWTManager) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := m.parser().ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(m.config.SecretKey), nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m *JWTManager) parser() *jwt.Parser {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	}
	if m.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.config.Issuer))
	}
	if len(m.config.Audience) > 0 {
		opts = append(opts, jwt.WithAudience(m.config.Audience[0]))
	}
	return jwt.NewParser(opts...)
}

func (m *JWTManager) RefreshTokenTTL() time.Duration {
	return m.config.RefreshTokenTTL
}

func (m *JWTManager) AccessTokenTTL() time.Duration {
	return m.config.AccessTokenTTL
}
