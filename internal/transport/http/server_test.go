package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mvaleed/innkeep/internal/auth"
	"github.com/mvaleed/innkeep/internal/booking"
	"github.com/mvaleed/innkeep/internal/domain"
	"github.com/mvaleed/innkeep/internal/metrics"
	"github.com/mvaleed/innkeep/internal/service"
	"github.com/mvaleed/innkeep/internal/storage"
)

var ict = time.FixedZone("ICT", 7*60*60)

type testEnv struct {
	server   *Server
	auth     *MockAuthService
	users    *MockUserService
	hotels   *MockHotelService
	bookings *MockBookingService
	reviews  *MockReviewService
	metrics  *metrics.Metrics

	customerID uuid.UUID
	adminID    uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		auth:       new(MockAuthService),
		users:      new(MockUserService),
		hotels:     new(MockHotelService),
		bookings:   &MockBookingService{loc: ict},
		reviews:    new(MockReviewService),
		metrics:    metrics.New(),
		customerID: uuid.New(),
		adminID:    uuid.New(),
	}

	env.auth.On("ValidateToken", mock.Anything, "customer-token").
		Return(&auth.Claims{UserID: env.customerID, Email: "guest@example.com", UserType: "customer"}, nil).Maybe()
	env.auth.On("ValidateToken", mock.Anything, "admin-token").
		Return(&auth.Claims{UserID: env.adminID, Email: "admin@example.com", UserType: "admin"}, nil).Maybe()
	env.auth.On("ValidateToken", mock.Anything, "stale-token").Return(nil, auth.ErrExpiredToken).Maybe()
	env.auth.On("ValidateToken", mock.Anything, mock.Anything).Return(nil, auth.ErrInvalidToken).Maybe()

	env.server = NewServer(Services{
		Auth:     env.auth,
		Users:    env.users,
		Hotels:   env.hotels,
		Bookings: env.bookings,
		Reviews:  env.reviews,
	}, env.metrics, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return env
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuthMiddleware(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		header string
		want   string
		code   string
	}{
		{"missing header", "", "missing authorization header", "UNAUTHORIZED"},
		{"wrong scheme", "Basic abc", "invalid authorization header format", "UNAUTHORIZED"},
		{"unknown token", "Bearer nope", "invalid token", "UNAUTHORIZED"},
		{"expired token", "bearer stale-token", "token expired", "TOKEN_EXPIRED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			env.server.Handler().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			body := decode[errorResponse](t, rec)
			assert.Equal(t, tt.want, body.Error)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.bookings.On("ListAll", mock.Anything, storage.BookingFilter{Limit: 50}).
		Return([]domain.Booking{}, int64(0), nil)

	rec := env.do(http.MethodGet, "/api/v1/bookings", "customer-token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/bookings/stats", "customer-token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/bookings", "admin-token", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	env.bookings.AssertExpectations(t)
}

func TestRegister(t *testing.T) {
	t.Run("validation errors keyed by form field", func(t *testing.T) {
		env := newTestEnv(t)
		env.auth.On("Register", mock.Anything, mock.Anything).Return(nil, domain.ValidationErrors{
			{Field: "name", Message: "Please enter your name (at least 2 characters)"},
			{Field: "phoneNumber", Message: "Please enter a valid phone number"},
		})

		rec := env.do(http.MethodPost, "/api/v1/auth/register", "", registerRequest{Name: "A", PhoneNumber: "1"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decode[errorResponse](t, rec)
		assert.Equal(t, "INVALID_INPUT", resp.Code)
		assert.Equal(t, "Please enter your name (at least 2 characters)", resp.Error)
		assert.Contains(t, resp.Details, "phoneNumber")
	})

	t.Run("signs in", func(t *testing.T) {
		env := newTestEnv(t)
		user, err := domain.NewUser("guest@example.com", "Guest One", "0912345678", domain.UserTypeCustomer)
		require.NoError(t, err)
		env.auth.On("Register", mock.Anything, mock.MatchedBy(func(in service.RegisterInput) bool {
			return in.Email == "guest@example.com" && in.Phone == "0912345678"
		})).Return(&service.LoginResult{AccessToken: "a", RefreshToken: "r", ExpiresInSeconds: 900, User: user}, nil)

		rec := env.do(http.MethodPost, "/api/v1/auth/register", "", registerRequest{
			Name: "Guest One", Email: "guest@example.com", PhoneNumber: "0912345678", Password: "Secret123",
		})

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		resp := decode[authResponse](t, rec)
		assert.Equal(t, "a", resp.AccessToken)
		assert.Equal(t, "Guest One", resp.User.Name)
		assert.Equal(t, []string{}, resp.User.Favorites)
	})

	t.Run("malformed body", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(http.MethodPost, "/api/v1/auth/register", "", "{")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env.auth.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})
}

func TestRefreshRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]string{"refreshToken": "required"}, decode[errorResponse](t, rec).Details)
}

func bookingBody(hotelID uuid.UUID) map[string]any {
	return map[string]any{
		"hotelId":      hotelID.String(),
		"checkInDate":  "11-03-2026",
		"checkOutDate": "2026-03-13",
		"guests":       3,
		"roomTypes":    []string{"Deluxe", "Suite"},
	}
}

func TestCreateBooking(t *testing.T) {
	hotelID := uuid.New()

	t.Run("created", func(t *testing.T) {
		env := newTestEnv(t)
		env.bookings.On("Create", mock.Anything, env.customerID, service.BookingInput{
			HotelID:   hotelID,
			CheckIn:   time.Date(2026, time.March, 11, 0, 0, 0, 0, ict),
			CheckOut:  time.Date(2026, time.March, 13, 0, 0, 0, 0, ict),
			Guests:    3,
			RoomTypes: []string{"Deluxe", "Suite"},
		}).Return(&domain.Booking{
			ID:            uuid.New(),
			BookingNumber: "BK1773194400000042",
			UserID:        env.customerID,
			HotelID:       hotelID,
			HotelName:     "Sea View",
			RoomTypes:     []string{"Deluxe", "Suite"},
			CheckIn:       time.Date(2026, time.March, 11, 0, 0, 0, 0, ict),
			CheckOut:      time.Date(2026, time.March, 13, 0, 0, 0, 0, ict),
			Guests:        3,
			TotalPrice:    decimal.NewFromInt(1800),
			Status:        domain.BookingStatusUpcoming,
		}, nil)

		rec := env.do(http.MethodPost, "/api/v1/bookings", "customer-token", bookingBody(hotelID))

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		resp := decode[bookingResponse](t, rec)
		assert.Equal(t, "2026-03-11", resp.CheckInDate)
		assert.Equal(t, "2026-03-13", resp.CheckOutDate)
		assert.True(t, decimal.NewFromInt(1800).Equal(resp.TotalPrice))
		assert.Equal(t, "upcoming", resp.Status)
	})

	t.Run("rule violation", func(t *testing.T) {
		env := newTestEnv(t)
		env.bookings.On("Create", mock.Anything, env.customerID, mock.Anything).Return(nil, &booking.Violation{
			Rule:    booking.RuleLeadTime,
			Field:   "checkInDate",
			Message: "Bookings cannot be made more than 4 days in advance. Please choose an earlier check-in date.",
		})

		rec := env.do(http.MethodPost, "/api/v1/bookings", "customer-token", bookingBody(hotelID))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		resp := decode[errorResponse](t, rec)
		assert.Equal(t, "LEAD_TIME", resp.Code)
		assert.Contains(t, resp.Details, "checkInDate")
	})

	t.Run("rooms taken", func(t *testing.T) {
		env := newTestEnv(t)
		env.bookings.On("Create", mock.Anything, env.customerID, mock.Anything).
			Return(nil, &domain.UnavailableRoomsError{Rooms: []string{"Suite"}})

		rec := env.do(http.MethodPost, "/api/v1/bookings", "customer-token", bookingBody(hotelID))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, []string{"Suite"}, decode[errorResponse](t, rec).UnavailableRooms)
	})

	t.Run("malformed draft", func(t *testing.T) {
		env := newTestEnv(t)

		body := bookingBody(hotelID)
		body["hotelId"] = "sea-view"
		rec := env.do(http.MethodPost, "/api/v1/bookings", "customer-token", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "must be a UUID", decode[errorResponse](t, rec).Details["hotelId"])

		body = bookingBody(hotelID)
		body["checkInDate"] = "next tuesday"
		rec = env.do(http.MethodPost, "/api/v1/bookings", "customer-token", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode[errorResponse](t, rec).Details, "checkInDate")

		env.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("requires login", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(http.MethodPost, "/api/v1/bookings", "", bookingBody(hotelID))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestQuoteBooking(t *testing.T) {
	env := newTestEnv(t)
	hotelID := uuid.New()
	env.bookings.On("Quote", mock.Anything, mock.AnythingOfType("service.BookingInput")).Return(&booking.Submission{
		HotelID:       hotelID.String(),
		CheckIn:       time.Date(2026, time.March, 11, 0, 0, 0, 0, ict),
		CheckOut:      time.Date(2026, time.March, 13, 0, 0, 0, 0, ict),
		Guests:        3,
		RoomNames:     []string{"Deluxe", "Suite"},
		Nights:        2,
		TotalCapacity: 6,
		TotalPrice:    decimal.NewFromInt(1800),
	}, nil)

	rec := env.do(http.MethodPost, "/api/v1/bookings/quote", "customer-token", bookingBody(hotelID))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[quoteResponse](t, rec)
	assert.Equal(t, 2, resp.Nights)
	assert.Equal(t, 6, resp.TotalCapacity)
	assert.Equal(t, "1800", resp.TotalPrice.String())
}

func TestUpdateBooking(t *testing.T) {
	env := newTestEnv(t)
	id := uuid.New()

	rec := env.do(http.MethodPut, "/api/v1/bookings/"+id.String(), "customer-token", map[string]string{"status": "pending"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "must be one of: upcoming, completed, cancelled", decode[errorResponse](t, rec).Details["status"])

	env.bookings.On("UpdateStatus", mock.Anything, env.customerID, id, domain.BookingStatusUpcoming).
		Return(nil, errors.Join(domain.ErrInvalidStatus, errors.New("cannot move booking from cancelled to upcoming")))
	rec = env.do(http.MethodPut, "/api/v1/bookings/"+id.String(), "customer-token", map[string]string{"status": "upcoming"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INVALID_STATUS", decode[errorResponse](t, rec).Code)

	env.bookings.On("Cancel", mock.Anything, env.customerID, id).Return(nil, domain.ErrForbidden)
	rec = env.do(http.MethodDelete, "/api/v1/bookings/"+id.String(), "customer-token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListHotels(t *testing.T) {
	env := newTestEnv(t)
	env.hotels.On("ListHotels", mock.Anything, mock.MatchedBy(func(f storage.HotelFilter) bool {
		return f.Location == "Da Nang" &&
			f.MinPrice != nil && f.MinPrice.Equal(decimal.NewFromInt(100)) &&
			f.MaxPrice == nil &&
			f.MinRating != nil && *f.MinRating == 4 &&
			assert.ObjectsAreEqual([]string{"pool", "wifi"}, f.Amenities) &&
			f.Offset == 5 && f.Limit == 5
	})).Return([]domain.Hotel{{ID: uuid.New(), Name: "Sea View"}}, int64(6), nil)

	rec := env.do(http.MethodGet, "/api/v1/hotels?location=Da+Nang&minPrice=100&rating=4&amenities=pool,+wifi&page=2&limit=5", "", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[struct {
		Hotels []hotelResponse `json:"hotels"`
		Total  int64           `json:"total"`
	}](t, rec)
	assert.Equal(t, int64(6), resp.Total)
	require.Len(t, resp.Hotels, 1)
	assert.Equal(t, []string{}, resp.Hotels[0].Amenities)

	rec = env.do(http.MethodGet, "/api/v1/hotels?maxPrice=cheap", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateHotelChecksRequest(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/hotels", "admin-token", map[string]any{
		"location":    "Hue",
		"checkInTime": "2pm",
		"roomTypes":   []map[string]any{{"pricePerNight": 100}},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	details := decode[errorResponse](t, rec).Details
	assert.Equal(t, "required", details["name"])
	assert.Contains(t, details, "checkInTime")
	env.hotels.AssertNotCalled(t, "CreateHotel", mock.Anything, mock.Anything)
}

func TestCreateReviewConflict(t *testing.T) {
	env := newTestEnv(t)
	hotelID := uuid.New()
	env.reviews.On("Create", mock.Anything, env.customerID, hotelID, 5, "Great").
		Return(nil, errors.Join(domain.ErrConflict, errors.New("you have already reviewed this hotel")))

	rec := env.do(http.MethodPost, "/api/v1/reviews", "customer-token", map[string]any{
		"hotelId": hotelID.String(), "rating": 5, "comment": "Great",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Error, "already reviewed")
}

func TestHotelReviewsRoutes(t *testing.T) {
	env := newTestEnv(t)
	hotelID := uuid.New()
	env.reviews.On("List", mock.Anything, storage.ReviewFilter{HotelID: &hotelID}).
		Return([]domain.Review{{ID: uuid.New(), HotelID: hotelID, Rating: 4}}, nil)

	for _, path := range []string{
		"/api/v1/hotels/" + hotelID.String() + "/reviews",
		"/api/v1/reviews/hotel/" + hotelID.String(),
	} {
		rec := env.do(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, float64(1), decode[map[string]any](t, rec)["count"])
	}
}

func TestMetricsRecordRoutePattern(t *testing.T) {
	env := newTestEnv(t)
	env.hotels.On("GetHotel", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)

	rec := env.do(http.MethodGet, "/api/v1/hotels/"+uuid.NewString(), "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(),
		`innkeep_http_requests_total{method="GET",route="/api/v1/hotels/{id}",status="404"} 1`)
}
