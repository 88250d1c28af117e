package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/mvaleed/innkeep/internal/domain"
	"github.com/mvaleed/innkeep/internal/storage"
)

// MockUserRepository implements storage.UserRepository for testing
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, filter storage.UserFilter) ([]domain.User, int64, error) {
	args := m.Called(ctx, filter)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) AddFavorite(ctx context.Context, userID, hotelID uuid.UUID) error {
	return m.Called(ctx, userID, hotelID).Error(0)
}

func (m *MockUserRepository) RemoveFavorite(ctx context.Context, userID, hotelID uuid.UUID) error {
	return m.Called(ctx, userID, hotelID).Error(0)
}

func (m *MockUserRepository) ListFavorites(ctx context.Context, userID uuid.UUID) ([]domain.Hotel, error) {
	args := m.Called(ctx, userID)
	hotels, _ := args.Get(0).([]domain.Hotel)
	return hotels, args.Error(1)
}

// MockHotelRepository implements storage.HotelRepository for testing
type MockHotelRepository struct {
	mock.Mock
}

func (m *MockHotelRepository) Create(ctx context.Context, hotel *domain.Hotel) error {
	return m.Called(ctx, hotel).Error(0)
}

func (m *MockHotelRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Hotel, error) {
	args := m.Called(ctx, id)
	h, _ := args.Get(0).(*domain.Hotel)
	return h, args.Error(1)
}

func (m *MockHotelRepository) Update(ctx context.Context, hotel *domain.Hotel) error {
	return m.Called(ctx, hotel).Error(0)
}

func (m *MockHotelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockHotelRepository) List(ctx context.Context, filter storage.HotelFilter) ([]domain.Hotel, int64, error) {
	args := m.Called(ctx, filter)
	hotels, _ := args.Get(0).([]domain.Hotel)
	return hotels, args.Get(1).(int64), args.Error(2)
}

func (m *MockHotelRepository) Search(ctx context.Context, term string) ([]domain.Hotel, error) {
	args := m.Called(ctx, term)
	hotels, _ := args.Get(0).([]domain.Hotel)
	return hotels, args.Error(1)
}

func (m *MockHotelRepository) UpdateRating(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) error {
	return m.Called(ctx, id, rating, reviewCount).Error(0)
}

// MockBookingRepository implements storage.BookingRepository for testing
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*domain.Booking)
	return b, args.Error(1)
}

func (m *MockBookingRepository) List(ctx context.Context, filter storage.BookingFilter) ([]domain.Booking, int64, error) {
	args := m.Called(ctx, filter)
	bookings, _ := args.Get(0).([]domain.Booking)
	return bookings, args.Get(1).(int64), args.Error(2)
}

func (m *MockBookingRepository) LockHotel(ctx context.Context, hotelID uuid.UUID) error {
	return m.Called(ctx, hotelID).Error(0)
}

func (m *MockBookingRepository) ListOverlapping(ctx context.Context, hotelID uuid.UUID, checkIn, checkOut time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, hotelID, checkIn, checkOut)
	bookings, _ := args.Get(0).([]domain.Booking)
	return bookings, args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.BookingStatus) error {
	return m.Called(ctx, id, from, to).Error(0)
}

func (m *MockBookingRepository) CompletePast(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingRepository) Stats(ctx context.Context) ([]domain.BookingStats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).([]domain.BookingStats)
	return stats, args.Error(1)
}

// MockReviewRepository implements storage.ReviewRepository for testing
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*domain.Review)
	return r, args.Error(1)
}

func (m *MockReviewRepository) List(ctx context.Context, filter storage.ReviewFilter) ([]domain.Review, error) {
	args := m.Called(ctx, filter)
	reviews, _ := args.Get(0).([]domain.Review)
	return reviews, args.Error(1)
}

func (m *MockReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockReviewRepository) RatingsForHotel(ctx context.Context, hotelID uuid.UUID) ([]int, error) {
	args := m.Called(ctx, hotelID)
	ratings, _ := args.Get(0).([]int)
	return ratings, args.Error(1)
}

// MockTokenRepository implements storage.TokenRepository for testing
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockTokenRepository) GetByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	args := m.Called(ctx, hash)
	t, _ := args.Get(0).(*domain.RefreshToken)
	return t, args.Error(1)
}

func (m *MockTokenRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// inlineTx runs the function without a real transaction.
type inlineTx struct{}

func (inlineTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// recordingRecorder captures booking outcomes and cache lookups.
type recordingRecorder struct {
	outcomes []string
	hits     int
	misses   int
}

func (r *recordingRecorder) BookingOutcome(outcome string) { r.outcomes = append(r.outcomes, outcome) }

func (r *recordingRecorder) CacheLookup(hit bool) {
	if hit {
		r.hits++
	} else {
		r.misses++
	}
}

type invalidations []uuid.UUID

func (i *invalidations) Invalidate(id uuid.UUID) { *i = append(*i, id) }
