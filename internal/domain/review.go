package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mvaleed/innkeep/internal/validation"
)

// Review is a guest's rating of a hotel. A user reviews a hotel at most once.
type Review struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	HotelID   uuid.UUID
	Rating    int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Display fields filled by list queries
	UserName  string
	HotelName string
}

func NewReview(userID, hotelID uuid.UUID, rating int, comment string) (*Review, error) {
	now := time.Now().UTC()
	r := &Review{
		ID:        uuid.New(),
		UserID:    userID,
		HotelID:   hotelID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Review) Validate() error {
	return FromValidation(validation.Check(map[string]any{
		"rating":  r.Rating,
		"comment": r.Comment,
	}, validation.ReviewRules()))
}

// AverageRating rounds the mean rating to one decimal place; zero when empty.
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return math.Round(float64(sum)/float64(len(ratings))*10) / 10
}
