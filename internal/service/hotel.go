package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/shopspring/decimal"

	"github.com/mvaleed/innkeep/internal/booking"
	"github.com/mvaleed/innkeep/internal/domain"
	"github.com/mvaleed/innkeep/internal/event"
	"github.com/mvaleed/innkeep/internal/storage"
)

// Recorder receives booking and catalog cache outcomes.
type Recorder interface {
	BookingOutcome(outcome string)
	CacheLookup(hit bool)
}

type nopRecorder struct{}

func (nopRecorder) BookingOutcome(string) {}
func (nopRecorder) CacheLookup(bool)      {}

// HotelService serves the hotel catalog. Single-hotel reads go through an
// expiring LRU cache that every write through this service invalidates.
type HotelService struct {
	hotels    storage.HotelRepository
	cache     *expirable.LRU[uuid.UUID, *domain.Hotel]
	publisher event.Publisher
	recorder  Recorder
	logger    *slog.Logger
}

type HotelServiceConfig struct {
	CacheSize int
	CacheTTL  time.Duration
}

func NewHotelService(
	hotels storage.HotelRepository,
	cfg HotelServiceConfig,
	publisher event.Publisher,
	recorder Recorder,
	logger *slog.Logger,
) *HotelService {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 256
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &HotelService{
		hotels:    hotels,
		cache:     expirable.NewLRU[uuid.UUID, *domain.Hotel](cfg.CacheSize, nil, cfg.CacheTTL),
		publisher: publisher,
		recorder:  recorder,
		logger:    logger,
	}
}

// GetHotel returns a hotel by id. The returned value is shared with the
// cache and must not be modified.
func (s *HotelService) GetHotel(ctx context.Context, id uuid.UUID) (*domain.Hotel, error) {
	if h, ok := s.cache.Get(id); ok {
		s.recorder.CacheLookup(true)
		return h, nil
	}
	s.recorder.CacheLookup(false)

	h, err := s.hotels.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Add(id, h)
	return h, nil
}

// RoomTypes implements booking.Catalog.
func (s *HotelService) RoomTypes(ctx context.Context, hotelID string) ([]booking.RoomType, error) {
	id, err := uuid.Parse(hotelID)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	h, err := s.GetHotel(ctx, id)
	if err != nil {
		return nil, err
	}
	if h.RoomTypes == nil {
		return []booking.RoomType{}, nil
	}
	return h.RoomTypes, nil
}

func (s *HotelService) ListHotels(ctx context.Context, filter storage.HotelFilter) ([]domain.Hotel, int64, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, 0, domain.ValidationError{Field: "minPrice", Message: "must not exceed maxPrice"}
	}
	return s.hotels.List(ctx, filter)
}

// SearchHotels matches term against location, address and name.
func (s *HotelService) SearchHotels(ctx context.Context, term string) ([]domain.Hotel, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, domain.ValidationError{Field: "location", Message: "required"}
	}
	return s.hotels.Search(ctx, term)
}

// HotelInput carries the administrator-editable hotel fields.
type HotelInput struct {
	Name         string
	Location     string
	Address      string
	Description  string
	Price        decimal.Decimal
	Amenities    []string
	Policies     []string
	Photos       []string
	Latitude     *float64
	Longitude    *float64
	CheckInTime  string
	CheckOutTime string
	RoomTypes    []booking.RoomType
}

func (in HotelInput) apply(h *domain.Hotel) {
	h.Name = strings.TrimSpace(in.Name)
	h.Location = strings.TrimSpace(in.Location)
	h.Address = strings.TrimSpace(in.Address)
	h.Description = in.Description
	h.Price = in.Price
	h.Amenities = in.Amenities
	h.Policies = in.Policies
	h.Photos = in.Photos
	h.Latitude = in.Latitude
	h.Longitude = in.Longitude
	h.CheckInTime = in.CheckInTime
	h.CheckOutTime = in.CheckOutTime
	h.RoomTypes = in.RoomTypes
	if h.CheckInTime == "" {
		h.CheckInTime = "14:00"
	}
	if h.CheckOutTime == "" {
		h.CheckOutTime = "12:00"
	}
}

func (s *HotelService) CreateHotel(ctx context.Context, input HotelInput) (*domain.Hotel, error) {
	now := time.Now().UTC()
	h := &domain.Hotel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
	input.apply(h)

	if err := h.Validate(); err != nil {
		return nil, err
	}
	if err := s.hotels.Create(ctx, h); err != nil {
		return nil, err
	}

	s.changed(ctx, h.ID, "created")
	return h, nil
}

func (s *HotelService) UpdateHotel(ctx context.Context, id uuid.UUID, input HotelInput) (*domain.Hotel, error) {
	h, err := s.hotels.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	input.apply(h)
	h.UpdatedAt = time.Now().UTC()

	if err := h.Validate(); err != nil {
		return nil, err
	}
	if err := s.hotels.Update(ctx, h); err != nil {
		return nil, err
	}

	s.changed(ctx, id, "updated")
	return h, nil
}

// DeleteHotel removes a hotel that no booking references.
func (s *HotelService) DeleteHotel(ctx context.Context, id uuid.UUID) error {
	if err := s.hotels.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return errors.Join(err, errors.New("hotel has bookings"))
		}
		return err
	}

	s.changed(ctx, id, "deleted")
	return nil
}

// Invalidate drops a hotel from the cache.
func (s *HotelService) Invalidate(id uuid.UUID) {
	s.cache.Remove(id)
}

func (s *HotelService) changed(ctx context.Context, id uuid.UUID, action string) {
	s.Invalidate(id)
	s.logger.InfoContext(ctx, "hotel changed", slog.String("hotel_id", id.String()), slog.String("action", action))
	_ = s.publisher.Publish(ctx, domain.NewEvent(domain.EventHotelChanged, uuid.Nil, map[string]any{
		"hotel_id": id.String(),
		"action":   action,
	}))
}
