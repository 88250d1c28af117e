package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvaleed/innkeep/internal/booking"
)

// Hotel is a property listed in the catalog together with its room types.
type Hotel struct {
	ID           uuid.UUID
	Name         string
	Location     string
	Address      string
	Description  string
	Price        decimal.Decimal // "from" price shown in listings
	Rating       float64
	Amenities    []string
	Policies     []string
	Photos       []string
	Latitude     *float64
	Longitude    *float64
	CheckInTime  string
	CheckOutTime string
	RoomTypes    []booking.RoomType
	ReviewCount  int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (h *Hotel) Validate() error {
	var errs ValidationErrors

	if strings.TrimSpace(h.Name) == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "required"})
	} else if len(h.Name) > 200 {
		errs = append(errs, ValidationError{Field: "name", Message: "must be at most 200 characters"})
	}

	if strings.TrimSpace(h.Location) == "" {
		errs = append(errs, ValidationError{Field: "location", Message: "required"})
	}

	if h.Price.IsNegative() {
		errs = append(errs, ValidationError{Field: "price", Message: "must not be negative"})
	}

	seen := make(map[string]bool, len(h.RoomTypes))
	for _, r := range h.RoomTypes {
		switch {
		case strings.TrimSpace(r.Name) == "":
			errs = append(errs, ValidationError{Field: "room_types", Message: "room name is required"})
		case seen[r.Name]:
			errs = append(errs, ValidationError{Field: "room_types", Message: "duplicate room name " + r.Name})
		case r.PricePerNight.IsNegative():
			errs = append(errs, ValidationError{Field: "room_types", Message: "price of " + r.Name + " must not be negative"})
		case r.MaxOccupancy < 0:
			errs = append(errs, ValidationError{Field: "room_types", Message: "occupancy of " + r.Name + " must not be negative"})
		}
		seen[r.Name] = true
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CoverPhoto returns the first photo, or "" when the hotel has none.
func (h *Hotel) CoverPhoto() string {
	if len(h.Photos) == 0 {
		return ""
	}
	return h.Photos[0]
}

// HasAmenities reports whether the hotel offers every amenity in want.
func (h *Hotel) HasAmenities(want []string) bool {
	for _, w := range want {
		found := false
		for _, a := range h.Amenities {
			if strings.EqualFold(a, w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
