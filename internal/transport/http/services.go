package http

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mvaleed/innkeep/internal/auth"
	"github.com/mvaleed/innkeep/internal/booking"
	"github.com/mvaleed/innkeep/internal/domain"
	"github.com/mvaleed/innkeep/internal/service"
	"github.com/mvaleed/innkeep/internal/storage"
)

// Services bundles the application services the handlers call.
type Services struct {
	Auth     AuthService
	Users    UserService
	Hotels   HotelService
	Bookings BookingService
	Reviews  ReviewService
}

type AuthService interface {
	Register(ctx context.Context, input service.RegisterInput) (*service.LoginResult, error)
	Login(ctx context.Context, input service.LoginInput) (*service.LoginResult, error)
	RefreshToken(ctx context.Context, input service.RefreshTokenInput) (*service.LoginResult, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, userID uuid.UUID) error
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
}

type UserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input service.UpdateProfileInput) (*domain.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]domain.Hotel, error)
	AddFavorite(ctx context.Context, userID, hotelID uuid.UUID) error
	RemoveFavorite(ctx context.Context, userID, hotelID uuid.UUID) error
	SuspendUser(ctx context.Context, id uuid.UUID) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ListUsers(ctx context.Context, filter storage.UserFilter) ([]domain.User, int64, error)
}

type HotelService interface {
	GetHotel(ctx context.Context, id uuid.UUID) (*domain.Hotel, error)
	ListHotels(ctx context.Context, filter storage.HotelFilter) ([]domain.Hotel, int64, error)
	SearchHotels(ctx context.Context, term string) ([]domain.Hotel, error)
	CreateHotel(ctx context.Context, input service.HotelInput) (*domain.Hotel, error)
	UpdateHotel(ctx context.Context, id uuid.UUID, input service.HotelInput) (*domain.Hotel, error)
	DeleteHotel(ctx context.Context, id uuid.UUID) error
}

type BookingService interface {
	Location() *time.Location
	Quote(ctx context.Context, input service.BookingInput) (*booking.Submission, error)
	Create(ctx context.Context, userID uuid.UUID, input service.BookingInput) (*domain.Booking, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.Booking, error)
	ListForUser(ctx context.Context, userID uuid.UUID, status *domain.BookingStatus) ([]domain.Booking, error)
	ListAll(ctx context.Context, filter storage.BookingFilter) ([]domain.Booking, int64, error)
	UpdateStatus(ctx context.Context, userID, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error)
	Cancel(ctx context.Context, userID, id uuid.UUID) (*domain.Booking, error)
	Stats(ctx context.Context) ([]domain.BookingStats, error)
}

type ReviewService interface {
	Create(ctx context.Context, userID, hotelID uuid.UUID, rating int, comment string) (*domain.Review, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Review, error)
	List(ctx context.Context, filter storage.ReviewFilter) ([]domain.Review, error)
	Update(ctx context.Context, userID, id uuid.UUID, rating int, comment string) (*domain.Review, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

var (
	_ AuthService    = (*service.AuthService)(nil)
	_ UserService    = (*service.UserService)(nil)
	_ HotelService   = (*service.HotelService)(nil)
	_ BookingService = (*service.BookingService)(nil)
	_ ReviewService  = (*service.ReviewService)(nil)
)
