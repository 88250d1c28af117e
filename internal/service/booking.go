package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/mvaleed/innkeep/internal/booking"
	"github.com/mvaleed/innkeep/internal/domain"
	"github.com/mvaleed/innkeep/internal/event"
	"github.com/mvaleed/innkeep/internal/storage"
)

// HotelLookup resolves the hotel a booking is made for.
type HotelLookup interface {
	GetHotel(ctx context.Context, id uuid.UUID) (*domain.Hotel, error)
}

// HotelCatalog prices drafts from the room catalog and snapshots the hotel
// onto confirmed bookings.
type HotelCatalog interface {
	booking.Catalog
	HotelLookup
}

// BookingService gates booking drafts with the rules engine, checks room
// availability and persists confirmed bookings.
type BookingService struct {
	bookings  storage.BookingRepository
	hotels    HotelCatalog
	tx        storage.Transactor
	engine    *booking.Engine
	clock     booking.Clock
	publisher event.Publisher
	recorder  Recorder
	logger    *slog.Logger
}

func NewBookingService(
	bookings storage.BookingRepository,
	hotels HotelCatalog,
	tx storage.Transactor,
	engine *booking.Engine,
	clock booking.Clock,
	publisher event.Publisher,
	recorder Recorder,
	logger *slog.Logger,
) *BookingService {
	if clock == nil {
		clock = booking.SystemClock
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &BookingService{
		bookings:  bookings,
		hotels:    hotels,
		tx:        tx,
		engine:    engine,
		clock:     clock,
		publisher: publisher,
		recorder:  recorder,
		logger:    logger,
	}
}

// Location is the time zone booking dates are interpreted in.
func (s *BookingService) Location() *time.Location {
	return s.engine.Policy().Location
}

// BookingInput is a booking draft as submitted by a client.
type BookingInput struct {
	HotelID   uuid.UUID
	CheckIn   time.Time
	CheckOut  time.Time
	Guests    int
	RoomTypes []string
}

func (in BookingInput) draft() booking.Draft {
	return booking.Draft{
		HotelID:  in.HotelID.String(),
		CheckIn:  in.CheckIn,
		CheckOut: in.CheckOut,
		Guests:   in.Guests,
		Rooms:    in.RoomTypes,
	}
}

// Quote evaluates a draft without persisting anything.
func (s *BookingService) Quote(ctx context.Context, input BookingInput) (*booking.Submission, error) {
	sub, _, err := s.evaluate(ctx, input)
	if err != nil {
		return nil, err
	}
	s.recorder.BookingOutcome("quoted")
	return sub, nil
}

// Create evaluates the draft and, when every rule passes and the rooms are
// free for the stay, stores an upcoming booking for userID.
func (s *BookingService) Create(ctx context.Context, userID uuid.UUID, input BookingInput) (*domain.Booking, error) {
	sub, rooms, err := s.evaluate(ctx, input)
	if err != nil {
		return nil, err
	}

	for _, name := range sub.RoomNames {
		if !slices.ContainsFunc(rooms, func(r booking.RoomType) bool { return r.Name == name }) {
			return nil, domain.ValidationError{Field: "roomTypes", Message: fmt.Sprintf("%s is not offered by this hotel", name)}
		}
	}

	hotel, err := s.hotels.GetHotel(ctx, input.HotelID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	b := &domain.Booking{
		ID:            uuid.New(),
		BookingNumber: domain.NewBookingNumber(now),
		UserID:        userID,
		HotelID:       hotel.ID,
		HotelName:     hotel.Name,
		Location:      hotel.Location,
		Image:         hotel.CoverPhoto(),
		RoomTypes:     sub.RoomNames,
		CheckIn:       sub.CheckIn,
		CheckOut:      sub.CheckOut,
		Guests:        sub.Guests,
		TotalPrice:    sub.TotalPrice,
		Status:        domain.BookingStatusUpcoming,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.bookings.LockHotel(ctx, hotel.ID); err != nil {
			return err
		}

		existing, err := s.bookings.ListOverlapping(ctx, hotel.ID, b.CheckIn, b.CheckOut)
		if err != nil {
			return err
		}

		var taken []string
		for i := range existing {
			for _, r := range existing[i].SharedRooms(b.RoomTypes) {
				if !slices.Contains(taken, r) {
					taken = append(taken, r)
				}
			}
		}
		if len(taken) > 0 {
			return &domain.UnavailableRoomsError{Rooms: taken}
		}

		return s.bookings.Create(ctx, b)
	})
	if err != nil {
		if errors.Is(err, domain.ErrRoomsUnavailable) {
			s.recorder.BookingOutcome("unavailable")
		}
		return nil, err
	}

	s.recorder.BookingOutcome("created")
	s.logger.InfoContext(ctx, "booking created",
		slog.String("booking_number", b.BookingNumber),
		slog.String("hotel_id", b.HotelID.String()),
		slog.String("total_price", b.TotalPrice.String()),
	)
	_ = s.publisher.Publish(ctx, domain.BookingCreatedEvent(b))

	return b, nil
}

// evaluate runs the rules engine against the hotel's room catalog. An
// unknown hotel is evaluated with no catalog so date rules still report first.
func (s *BookingService) evaluate(ctx context.Context, input BookingInput) (*booking.Submission, []booking.RoomType, error) {
	catalog, err := s.hotels.RoomTypes(ctx, input.HotelID.String())
	switch {
	case err == nil:
		if catalog == nil {
			catalog = []booking.RoomType{}
		}
	case errors.Is(err, domain.ErrNotFound):
		catalog = nil
	default:
		return nil, nil, err
	}

	sub, err := s.engine.Evaluate(input.draft(), catalog)
	if err != nil {
		if v, ok := booking.AsViolation(err); ok {
			s.recorder.BookingOutcome(string(v.Rule))
		}
		return nil, nil, err
	}
	return sub, catalog, nil
}

// Get returns a booking owned by userID.
func (s *BookingService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.IsOwnedBy(userID) {
		return nil, domain.ErrForbidden
	}
	return b, nil
}

// ListForUser returns the user's bookings, optionally narrowed to one status.
func (s *BookingService) ListForUser(ctx context.Context, userID uuid.UUID, status *domain.BookingStatus) ([]domain.Booking, error) {
	if status != nil && !status.Valid() {
		return nil, domain.ValidationError{Field: "status", Message: "invalid status"}
	}
	bookings, _, err := s.bookings.List(ctx, storage.BookingFilter{UserID: &userID, Status: status, Limit: 200})
	return bookings, err
}

func (s *BookingService) ListAll(ctx context.Context, filter storage.BookingFilter) ([]domain.Booking, int64, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, 0, domain.ValidationError{Field: "status", Message: "invalid status"}
	}
	return s.bookings.List(ctx, filter)
}

// UpdateStatus moves a booking owned by userID to status.
func (s *BookingService) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	b, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	previous := b.Status
	if err := b.ChangeStatus(status); err != nil {
		return nil, err
	}
	if previous == b.Status {
		return b, nil
	}

	if err := s.bookings.UpdateStatus(ctx, b.ID, previous, b.Status); err != nil {
		return nil, err
	}

	_ = s.publisher.Publish(ctx, domain.BookingStatusEvent(b))

	return b, nil
}

// Cancel marks a booking owned by userID as cancelled.
func (s *BookingService) Cancel(ctx context.Context, userID, id uuid.UUID) (*domain.Booking, error) {
	return s.UpdateStatus(ctx, userID, id, domain.BookingStatusCancelled)
}

func (s *BookingService) Stats(ctx context.Context) ([]domain.BookingStats, error) {
	return s.bookings.Stats(ctx)
}

// CompletePast marks upcoming bookings whose check-out day has passed as
// completed.
func (s *BookingService) CompletePast(ctx context.Context) (int64, error) {
	today := booking.StartOfDay(s.clock.Now(), s.Location())
	n, err := s.bookings.CompletePast(ctx, today)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "bookings completed", slog.Int64("count", n))
	}
	return n, nil
}
