package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a domain event that occurred.
// Events are immutable facts about something that happened.
type Event struct {
	ID        uuid.UUID
	Type      string
	Timestamp time.Time
	UserID    uuid.UUID
	Data      map[string]any
}

// Event type constants
const (
	EventUserRegistered   = "user.registered"
	EventUserUpdated      = "user.updated"
	EventUserDeleted      = "user.deleted"
	EventUserSuspended    = "user.suspended"
	EventUserLoggedIn     = "user.logged_in"
	EventUserLoggedOut    = "user.logged_out"
	EventPasswordChanged  = "user.password_changed"
	EventFavoriteAdded    = "user.favorite_added"
	EventFavoriteRemoved  = "user.favorite_removed"
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
	EventBookingCompleted = "booking.completed"
	EventReviewCreated    = "review.created"
	EventReviewUpdated    = "review.updated"
	EventReviewDeleted    = "review.deleted"
	EventHotelChanged     = "hotel.changed"
)

// NewEvent creates a new domain event.
func NewEvent(eventType string, userID uuid.UUID, data map[string]any) Event {
	if data == nil {
		data = make(map[string]any)
	}
	return Event{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		UserID:    userID,
		Data:      data,
	}
}

func UserRegisteredEvent(u *User) Event {
	return NewEvent(EventUserRegistered, u.ID, map[string]any{
		"email":     u.Email,
		"full_name": u.FullName,
	})
}

func UserLoggedInEvent(userID uuid.UUID, ipAddress, userAgent string) Event {
	return NewEvent(EventUserLoggedIn, userID, map[string]any{
		"ip_address": ipAddress,
		"user_agent": userAgent,
	})
}

func BookingCreatedEvent(b *Booking) Event {
	return NewEvent(EventBookingCreated, b.UserID, map[string]any{
		"booking_id":     b.ID.String(),
		"booking_number": b.BookingNumber,
		"hotel_id":       b.HotelID.String(),
		"rooms":          b.RoomTypes,
		"total_price":    b.TotalPrice.String(),
	})
}

func BookingStatusEvent(b *Booking) Event {
	eventType := EventBookingCompleted
	if b.Status == BookingStatusCancelled {
		eventType = EventBookingCancelled
	}
	return NewEvent(eventType, b.UserID, map[string]any{
		"booking_id":     b.ID.String(),
		"booking_number": b.BookingNumber,
	})
}

func ReviewEvent(eventType string, r *Review) Event {
	return NewEvent(eventType, r.UserID, map[string]any{
		"review_id": r.ID.String(),
		"hotel_id":  r.HotelID.String(),
		"rating":    r.Rating,
	})
}
