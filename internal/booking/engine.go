// Package booking gates a booking submission with the hotel's domain rules and
// computes the price to submit.
//
// The Engine is a pure function of a Draft, the hotel's room catalog and one
// reading of the clock. It performs no I/O; fetching the catalog and creating
// the booking are the caller's job.
package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mvaleed/innkeep/internal/validation"
)

// RoomType is one entry of a hotel's room catalog. Names are unique within a hotel.
type RoomType struct {
	Name          string          `json:"name"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
	MaxOccupancy  int             `json:"max_occupancy"`
	Size          string          `json:"size,omitempty"`
	Beds          string          `json:"beds,omitempty"`
	Images        []string        `json:"images,omitempty"`
}

// Catalog supplies the room types of a hotel.
type Catalog interface {
	RoomTypes(ctx context.Context, hotelID string) ([]RoomType, error)
}

// Draft is the state accumulated by the booking wizard before submission.
// Rooms may repeat a name; every occurrence counts.
type Draft struct {
	HotelID  string
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
	Rooms    []string
}

// Submission is the payload handed to booking creation once every rule passed.
type Submission struct {
	HotelID       string          `json:"hotel_id"`
	CheckIn       time.Time       `json:"check_in"`
	CheckOut      time.Time       `json:"check_out"`
	Guests        int             `json:"guests"`
	RoomNames     []string        `json:"room_names"`
	Nights        int             `json:"nights"`
	TotalCapacity int             `json:"total_capacity"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}

// Policy holds the tunable limits of the rules.
type Policy struct {
	MaxLeadDays      int
	MinNights        int
	MaxNights        int
	DefaultOccupancy int
	Location         *time.Location
}

// DefaultPolicy allows check-in up to 4 days ahead and stays of 1 to 7 nights.
func DefaultPolicy() Policy {
	return Policy{
		MaxLeadDays:      4,
		MinNights:        1,
		MaxNights:        7,
		DefaultOccupancy: 2,
		Location:         time.UTC,
	}
}

// Clock is the source of "today".
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

type Engine struct {
	policy Policy
	clock  Clock
}

func NewEngine(policy Policy, clock Clock) *Engine {
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	if clock == nil {
		clock = SystemClock
	}
	return &Engine{policy: policy, clock: clock}
}

// Policy returns the limits the engine enforces.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Evaluate applies the lead-time, stay-length, capacity and structural rules in
// that order. The first broken rule is returned as a *Violation and nothing
// else is checked.
func (e *Engine) Evaluate(draft Draft, catalog []RoomType) (*Submission, error) {
	today := StartOfDay(e.clock.Now(), e.policy.Location)
	checkIn := StartOfDay(draft.CheckIn, e.policy.Location)
	checkOut := StartOfDay(draft.CheckOut, e.policy.Location)

	if lead := DaysBetween(today, checkIn); lead > e.policy.MaxLeadDays {
		return nil, &Violation{
			Rule:    RuleLeadTime,
			Field:   "checkInDate",
			Message: fmt.Sprintf("Bookings cannot be made more than %d days in advance. Please choose an earlier check-in date.", e.policy.MaxLeadDays),
		}
	}

	nights := DaysBetween(checkIn, checkOut)
	if nights < e.policy.MinNights {
		return nil, &Violation{
			Rule:    RuleStayTooShort,
			Field:   "checkOutDate",
			Message: fmt.Sprintf("A booking must be at least %d night(s) long.", e.policy.MinNights),
		}
	}
	if nights > e.policy.MaxNights {
		return nil, &Violation{
			Rule:    RuleStayTooLong,
			Field:   "checkOutDate",
			Message: fmt.Sprintf("A booking can be at most %d nights long. Please choose a shorter stay.", e.policy.MaxNights),
		}
	}

	if catalog == nil {
		return nil, &Violation{
			Rule:    RuleCatalogUnavailable,
			Field:   "hotelId",
			Message: "Could not load the hotel's room information.",
		}
	}

	capacity := e.TotalCapacity(draft.Rooms, catalog)
	if draft.Guests > capacity {
		return nil, &Violation{
			Rule:  RuleCapacity,
			Field: "guests",
			Message: fmt.Sprintf("The number of guests (%d) exceeds the capacity of the selected rooms (%d). Please add rooms or reduce guests.",
				draft.Guests, capacity),
		}
	}

	if err := checkStructure(checkIn, checkOut, draft); err != nil {
		return nil, err
	}

	return &Submission{
		HotelID:       draft.HotelID,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Guests:        draft.Guests,
		RoomNames:     append([]string(nil), draft.Rooms...),
		Nights:        nights,
		TotalCapacity: capacity,
		TotalPrice:    TotalPrice(draft.Rooms, catalog, nights),
	}, nil
}

// TotalCapacity sums the occupancy of every selected room. A room missing from
// the catalog, or listed without an occupancy, counts as the policy default.
func (e *Engine) TotalCapacity(rooms []string, catalog []RoomType) int {
	total := 0
	for _, name := range rooms {
		room, ok := findRoom(catalog, name)
		if !ok || room.MaxOccupancy <= 0 {
			total += e.policy.DefaultOccupancy
			continue
		}
		total += room.MaxOccupancy
	}
	return total
}

// TotalPrice sums price per night times nights over the selection. Rooms
// missing from the catalog contribute nothing.
func TotalPrice(rooms []string, catalog []RoomType, nights int) decimal.Decimal {
	total := decimal.Zero
	n := decimal.NewFromInt(int64(nights))
	for _, name := range rooms {
		if room, ok := findRoom(catalog, name); ok {
			total = total.Add(room.PricePerNight.Mul(n))
		}
	}
	return total
}

func structureRules(checkOut time.Time) validation.RuleSet {
	return validation.RuleSet{
		{Name: "roomTypes", Rule: validation.Rule{
			Required: true,
			Custom: func(v any) bool {
				rooms, ok := v.([]string)
				return ok && len(rooms) > 0
			},
			Message: "Please select at least one room type",
		}},
		{Name: "checkInDate", Rule: validation.Rule{
			Required: true,
			Custom: func(v any) bool {
				t, ok := v.(time.Time)
				return ok && t.Before(checkOut)
			},
			Message: "Check-out date must be after check-in date",
		}},
		{Name: "guests", Rule: validation.Rule{
			Required: true,
			Min:      validation.Bound(1),
			Message:  "Number of guests must be at least 1",
		}},
	}
}

func checkStructure(checkIn, checkOut time.Time, draft Draft) error {
	v := validation.New()
	data := map[string]any{
		"roomTypes":   draft.Rooms,
		"checkInDate": checkIn,
		"guests":      draft.Guests,
	}
	if v.Validate(data, structureRules(checkOut)) {
		return nil
	}
	first := v.Errors()[0]
	return &Violation{Rule: RuleInvalidDraft, Field: first.Field, Message: first.Message}
}

func findRoom(catalog []RoomType, name string) (RoomType, bool) {
	for _, r := range catalog {
		if r.Name == name {
			return r, true
		}
	}
	return RoomType{}, false
}
