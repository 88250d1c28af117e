// Package storage defines the repository interfaces for data persistence.
//
// These interfaces allow the business logic to remain independent of the
// storage implementation. Services depend on them; the postgres package
// implements them.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvaleed/innkeep/internal/domain"
)

// UserRepository defines the operations for user persistence.
type UserRepository interface {
	// Create stores a new user. Returns ErrAlreadyExists if the email is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email. Returns ErrNotFound if not found.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update saves changes to an existing user. Uses optimistic locking via version.
	// Returns ErrVersionMismatch if the version doesn't match.
	Update(ctx context.Context, user *domain.User) error

	// Delete performs a soft delete. Returns ErrNotFound if the user doesn't exist.
	Delete(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context, filter UserFilter) ([]domain.User, int64, error)

	// AddFavorite returns ErrAlreadyExists when the hotel is already a favorite
	// and ErrConflict when the hotel does not exist.
	AddFavorite(ctx context.Context, userID, hotelID uuid.UUID) error

	// RemoveFavorite returns ErrNotFound when the hotel was not a favorite.
	RemoveFavorite(ctx context.Context, userID, hotelID uuid.UUID) error

	ListFavorites(ctx context.Context, userID uuid.UUID) ([]domain.Hotel, error)
}

// UserFilter contains options for filtering and paginating user lists.
type UserFilter struct {
	Status *domain.UserStatus
	Type   *domain.UserType
	Search string // Searches email and full_name
	Offset int
	Limit  int
}

// HotelRepository defines operations for the hotel catalog.
type HotelRepository interface {
	Create(ctx context.Context, hotel *domain.Hotel) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Hotel, error)

	Update(ctx context.Context, hotel *domain.Hotel) error

	Delete(ctx context.Context, id uuid.UUID) error

	// List returns one page of hotels ordered by rating, highest first, and
	// the total number of matches.
	List(ctx context.Context, filter HotelFilter) ([]domain.Hotel, int64, error)

	// Search matches the term against location, address and name.
	Search(ctx context.Context, term string) ([]domain.Hotel, error)

	// UpdateRating stores a recalculated average and review count.
	UpdateRating(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) error
}

// HotelFilter narrows hotel listings. Nil and empty fields do not filter.
type HotelFilter struct {
	Location  string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	MinRating *float64
	Amenities []string // all must be present
	Offset    int
	Limit     int
}

// BookingRepository defines operations for booking persistence.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)

	List(ctx context.Context, filter BookingFilter) ([]domain.Booking, int64, error)

	// LockHotel serializes booking creation for one hotel until the
	// surrounding transaction ends. Must run inside WithTransaction.
	LockHotel(ctx context.Context, hotelID uuid.UUID) error

	// ListOverlapping returns non-cancelled bookings of the hotel whose stay
	// intersects [checkIn, checkOut).
	ListOverlapping(ctx context.Context, hotelID uuid.UUID, checkIn, checkOut time.Time) ([]domain.Booking, error)

	// UpdateStatus is a compare-and-set on the current status.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.BookingStatus) error

	// CompletePast marks upcoming bookings with check-out before the given
	// time as completed and returns how many changed.
	CompletePast(ctx context.Context, before time.Time) (int64, error)

	Stats(ctx context.Context) ([]domain.BookingStats, error)
}

// BookingFilter narrows booking listings. Nil fields do not filter.
type BookingFilter struct {
	UserID  *uuid.UUID
	HotelID *uuid.UUID
	Status  *domain.BookingStatus
	Offset  int
	Limit   int
}

// ReviewRepository defines operations for review persistence.
type ReviewRepository interface {
	// Create returns ErrAlreadyExists if the user already reviewed the hotel.
	Create(ctx context.Context, review *domain.Review) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error)

	List(ctx context.Context, filter ReviewFilter) ([]domain.Review, error)

	Update(ctx context.Context, review *domain.Review) error

	Delete(ctx context.Context, id uuid.UUID) error

	// RatingsForHotel returns every rating given to the hotel.
	RatingsForHotel(ctx context.Context, hotelID uuid.UUID) ([]int, error)
}

// ReviewFilter narrows review listings. Nil fields do not filter.
type ReviewFilter struct {
	UserID  *uuid.UUID
	HotelID *uuid.UUID
}

// TokenRepository defines operations for refresh token persistence.
type TokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error

	// GetByHash retrieves a token by its hash.
	GetByHash(ctx context.Context, hash string) (*domain.RefreshToken, error)

	Revoke(ctx context.Context, id uuid.UUID) error

	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error

	// DeleteExpired removes tokens, revoked or not, that expired before the cutoff.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// Repositories bundles all repositories together.
type Repositories struct {
	Users    UserRepository
	Hotels   HotelRepository
	Bookings BookingRepository
	Reviews  ReviewRepository
	Tokens   TokenRepository
}

// Transactor provides transaction support for operations that need atomicity.
type Transactor interface {
	// WithTransaction executes fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
