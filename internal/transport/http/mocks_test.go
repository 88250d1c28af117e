package http

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/mvaleed/innkeep/internal/auth"
	"github.com/mvaleed/innkeep/internal/booking"
	"github.com/mvaleed/innkeep/internal/domain"
	"github.com/mvaleed/innkeep/internal/service"
	"github.com/mvaleed/innkeep/internal/storage"
)

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) Register(ctx context.Context, input service.RegisterInput) (*service.LoginResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, input service.LoginInput) (*service.LoginResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, input service.RefreshTokenInput) (*service.LoginResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}

func (m *MockAuthService) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockAuthService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Claims), args.Error(1)
}

type MockUserService struct{ mock.Mock }

func (m *MockUserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, id uuid.UUID, input service.UpdateProfileInput) (*domain.User, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	return m.Called(ctx, userID, currentPassword, newPassword).Error(0)
}

func (m *MockUserService) ListFavorites(ctx context.Context, userID uuid.UUID) ([]domain.Hotel, error) {
	args := m.Called(ctx, userID)
	hotels, _ := args.Get(0).([]domain.Hotel)
	return hotels, args.Error(1)
}

func (m *MockUserService) AddFavorite(ctx context.Context, userID, hotelID uuid.UUID) error {
	return m.Called(ctx, userID, hotelID).Error(0)
}

func (m *MockUserService) RemoveFavorite(ctx context.Context, userID, hotelID uuid.UUID) error {
	return m.Called(ctx, userID, hotelID).Error(0)
}

func (m *MockUserService) SuspendUser(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserService) ListUsers(ctx context.Context, filter storage.UserFilter) ([]domain.User, int64, error) {
	args := m.Called(ctx, filter)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Get(1).(int64), args.Error(2)
}

type MockHotelService struct{ mock.Mock }

func (m *MockHotelService) GetHotel(ctx context.Context, id uuid.UUID) (*domain.Hotel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Hotel), args.Error(1)
}

func (m *MockHotelService) ListHotels(ctx context.Context, filter storage.HotelFilter) ([]domain.Hotel, int64, error) {
	args := m.Called(ctx, filter)
	hotels, _ := args.Get(0).([]domain.Hotel)
	return hotels, args.Get(1).(int64), args.Error(2)
}

func (m *MockHotelService) SearchHotels(ctx context.Context, term string) ([]domain.Hotel, error) {
	args := m.Called(ctx, term)
	hotels, _ := args.Get(0).([]domain.Hotel)
	return hotels, args.Error(1)
}

func (m *MockHotelService) CreateHotel(ctx context.Context, input service.HotelInput) (*domain.Hotel, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Hotel), args.Error(1)
}

func (m *MockHotelService) UpdateHotel(ctx context.Context, id uuid.UUID, input service.HotelInput) (*domain.Hotel, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Hotel), args.Error(1)
}

func (m *MockHotelService) DeleteHotel(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockBookingService struct {
	mock.Mock
	loc *time.Location
}

func (m *MockBookingService) Location() *time.Location {
	return m.loc
}

func (m *MockBookingService) Quote(ctx context.Context, input service.BookingInput) (*booking.Submission, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Submission), args.Error(1)
}

func (m *MockBookingService) Create(ctx context.Context, userID uuid.UUID, input service.BookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) ListForUser(ctx context.Context, userID uuid.UUID, status *domain.BookingStatus) ([]domain.Booking, error) {
	args := m.Called(ctx, userID, status)
	bookings, _ := args.Get(0).([]domain.Booking)
	return bookings, args.Error(1)
}

func (m *MockBookingService) ListAll(ctx context.Context, filter storage.BookingFilter) ([]domain.Booking, int64, error) {
	args := m.Called(ctx, filter)
	bookings, _ := args.Get(0).([]domain.Booking)
	return bookings, args.Get(1).(int64), args.Error(2)
}

func (m *MockBookingService) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	args := m.Called(ctx, userID, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) Cancel(ctx context.Context, userID, id uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) Stats(ctx context.Context) ([]domain.BookingStats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).([]domain.BookingStats)
	return stats, args.Error(1)
}

type MockReviewService struct{ mock.Mock }

func (m *MockReviewService) Create(ctx context.Context, userID, hotelID uuid.UUID, rating int, comment string) (*domain.Review, error) {
	args := m.Called(ctx, userID, hotelID, rating, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *MockReviewService) Get(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *MockReviewService) List(ctx context.Context, filter storage.ReviewFilter) ([]domain.Review, error) {
	args := m.Called(ctx, filter)
	reviews, _ := args.Get(0).([]domain.Review)
	return reviews, args.Error(1)
}

func (m *MockReviewService) Update(ctx context.Context, userID, id uuid.UUID, rating int, comment string) (*domain.Review, error) {
	args := m.Called(ctx, userID, id, rating, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *MockReviewService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}
