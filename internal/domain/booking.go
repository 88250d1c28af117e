package domain

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusUpcoming  BookingStatus = "upcoming"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusUpcoming, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo allows upcoming to move to completed or cancelled; both are terminal.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	return s == BookingStatusUpcoming &&
		(target == BookingStatusCompleted || target == BookingStatusCancelled)
}

// Booking is a confirmed reservation of one or more room types.
type Booking struct {
	ID            uuid.UUID
	BookingNumber string
	UserID        uuid.UUID
	HotelID       uuid.UUID

	// Snapshot of the hotel at booking time
	HotelName string
	Location  string
	Image     string

	RoomTypes  []string
	CheckIn    time.Time
	CheckOut   time.Time
	Guests     int
	TotalPrice decimal.Decimal
	Status     BookingStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBookingNumber formats BK<unix millis><three random digits>.
func NewBookingNumber(now time.Time) string {
	return fmt.Sprintf("BK%d%03d", now.UnixMilli(), rand.IntN(1000))
}

func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return b.UserID == userID
}

// Overlaps reports whether the stay intersects [checkIn, checkOut). A
// check-out on the day another stay checks in does not overlap.
func (b *Booking) Overlaps(checkIn, checkOut time.Time) bool {
	return b.CheckIn.Before(checkOut) && checkIn.Before(b.CheckOut)
}

// SharedRooms returns the names in rooms that this booking also holds.
func (b *Booking) SharedRooms(rooms []string) []string {
	var shared []string
	for _, r := range rooms {
		if slices.Contains(b.RoomTypes, r) && !slices.Contains(shared, r) {
			shared = append(shared, r)
		}
	}
	return shared
}

func (b *Booking) ChangeStatus(target BookingStatus) error {
	if !target.Valid() {
		return ValidationError{Field: "status", Message: "invalid status"}
	}
	if b.Status == target {
		return nil
	}
	if !b.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: cannot move booking from %s to %s", ErrInvalidStatus, b.Status, target)
	}
	b.Status = target
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// BookingStats aggregates bookings per status.
type BookingStats struct {
	Status  BookingStatus
	Count   int64
	Revenue decimal.Decimal
}
