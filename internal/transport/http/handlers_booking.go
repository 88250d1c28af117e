package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvaleed/innkeep/internal/booking"
	"github.com/mvaleed/innkeep/internal/domain"
	"github.com/mvaleed/innkeep/internal/service"
	"github.com/mvaleed/innkeep/internal/storage"
)

// bookingRequest mirrors the booking wizard's draft. Dates are calendar days
// in YYYY-MM-DD, RFC 3339 or DD-MM-YYYY form.
type bookingRequest struct {
	HotelID      string   `json:"hotelId" validate:"required,uuid"`
	CheckInDate  string   `json:"checkInDate" validate:"required"`
	CheckOutDate string   `json:"checkOutDate" validate:"required"`
	Guests       int      `json:"guests"`
	RoomTypes    []string `json:"roomTypes"`
}

func (s *Server) bookingInput(req bookingRequest) (service.BookingInput, error) {
	loc := s.services.Bookings.Location()

	checkIn, err := booking.ParseDate(req.CheckInDate, loc)
	if err != nil {
		return service.BookingInput{}, domain.ValidationError{Field: "checkInDate", Message: "Please choose a valid check-in date"}
	}
	checkOut, err := booking.ParseDate(req.CheckOutDate, loc)
	if err != nil {
		return service.BookingInput{}, domain.ValidationError{Field: "checkOutDate", Message: "Please choose a valid check-out date"}
	}

	return service.BookingInput{
		HotelID:   uuid.MustParse(req.HotelID),
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Guests:    req.Guests,
		RoomTypes: req.RoomTypes,
	}, nil
}

type quoteResponse struct {
	HotelID       string          `json:"hotelId"`
	CheckInDate   string          `json:"checkInDate"`
	CheckOutDate  string          `json:"checkOutDate"`
	Guests        int             `json:"guests"`
	RoomTypes     []string        `json:"roomTypes"`
	Nights        int             `json:"nights"`
	TotalCapacity int             `json:"totalCapacity"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
}

type bookingResponse struct {
	ID            string          `json:"id"`
	BookingNumber string          `json:"bookingNumber"`
	UserID        string          `json:"userId"`
	HotelID       string          `json:"hotelId"`
	HotelName     string          `json:"hotelName"`
	Location      string          `json:"location"`
	Image         string          `json:"image,omitempty"`
	RoomTypes     []string        `json:"roomTypes"`
	CheckInDate   string          `json:"checkInDate"`
	CheckOutDate  string          `json:"checkOutDate"`
	Guests        int             `json:"guests"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	Status        string          `json:"status"`
	CreatedAt     string          `json:"createdAt"`
}

func (s *Server) toBookingResponse(b *domain.Booking) bookingResponse {
	loc := s.services.Bookings.Location()
	return bookingResponse{
		ID:            b.ID.String(),
		BookingNumber: b.BookingNumber,
		UserID:        b.UserID.String(),
		HotelID:       b.HotelID.String(),
		HotelName:     b.HotelName,
		Location:      b.Location,
		Image:         b.Image,
		RoomTypes:     emptyIfNil(b.RoomTypes),
		CheckInDate:   b.CheckIn.In(loc).Format(time.DateOnly),
		CheckOutDate:  b.CheckOut.In(loc).Format(time.DateOnly),
		Guests:        b.Guests,
		TotalPrice:    b.TotalPrice,
		Status:        string(b.Status),
		CreatedAt:     b.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) toBookingResponses(bookings []domain.Booking) []bookingResponse {
	out := make([]bookingResponse, len(bookings))
	for i := range bookings {
		out[i] = s.toBookingResponse(&bookings[i])
	}
	return out
}

func (s *Server) handleQuoteBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := s.readJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	input, err := s.bookingInput(req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sub, err := s.services.Bookings.Quote(r.Context(), input)
	if err != nil {
		s.writeError(w, err)
		return
	}

	loc := s.services.Bookings.Location()
	s.writeJSON(w, http.StatusOK, quoteResponse{
		HotelID:       sub.HotelID,
		CheckInDate:   sub.CheckIn.In(loc).Format(time.DateOnly),
		CheckOutDate:  sub.CheckOut.In(loc).Format(time.DateOnly),
		Guests:        sub.Guests,
		RoomTypes:     sub.RoomNames,
		Nights:        sub.Nights,
		TotalCapacity: sub.TotalCapacity,
		TotalPrice:    sub.TotalPrice,
	})
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	if claims == nil {
		s.writeError(w, domain.ErrUnauthorized)
		return
	}

	var req bookingRequest
	if err := s.readJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	input, err := s.bookingInput(req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	b, err := s.services.Bookings.Create(r.Context(), claims.UserID, input)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, s.toBookingResponse(b))
}

func (s *Server) handleListMyBookings(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	if claims == nil {
		s.writeError(w, domain.ErrUnauthorized)
		return
	}

	var status *domain.BookingStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		st := domain.BookingStatus(raw)
		status = &st
	}

	bookings, err := s.services.Bookings.ListForUser(r.Context(), claims.UserID, status)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"bookings": s.toBookingResponses(bookings),
		"count":    len(bookings),
	})
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	if claims == nil {
		s.writeError(w, domain.ErrUnauthorized)
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	b, err := s.services.Bookings.Get(r.Context(), claims.UserID, id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, s.toBookingResponse(b))
}

type updateBookingRequest struct {
	Status string `json:"status" validate:"required,oneof=upcoming completed cancelled"`
}

func (s *Server) handleUpdateBooking(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	if claims == nil {
		s.writeError(w, domain.ErrUnauthorized)
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req updateBookingRequest
	if err := s.readJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	b, err := s.services.Bookings.UpdateStatus(r.Context(), claims.UserID, id, domain.BookingStatus(req.Status))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, s.toBookingResponse(b))
}

func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	if claims == nil {
		s.writeError(w, domain.ErrUnauthorized)
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	b, err := s.services.Bookings.Cancel(r.Context(), claims.UserID, id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, s.toBookingResponse(b))
}

// Admin booking handlers

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r, 50, 200)
	filter := storage.BookingFilter{Offset: (page - 1) * limit, Limit: limit}

	var err error
	if filter.UserID, err = queryUUID(r, "userId"); err != nil {
		s.writeError(w, err)
		return
	}
	if filter.HotelID, err = queryUUID(r, "hotelId"); err != nil {
		s.writeError(w, err)
		return
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		st := domain.BookingStatus(raw)
		filter.Status = &st
	}

	bookings, total, err := s.services.Bookings.ListAll(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"bookings": s.toBookingResponses(bookings),
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

type bookingStatsResponse struct {
	Status  string          `json:"status"`
	Count   int64           `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

func (s *Server) handleBookingStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.services.Bookings.Stats(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]bookingStatsResponse, len(stats))
	var total int64
	for i, st := range stats {
		out[i] = bookingStatsResponse{Status: string(st.Status), Count: st.Count, Revenue: st.Revenue}
		total += st.Count
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"stats": out,
		"total": total,
	})
}
