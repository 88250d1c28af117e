package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mvaleed/innkeep/internal/domain"
	"github.com/mvaleed/innkeep/internal/event"
	"github.com/mvaleed/innkeep/internal/storage"
)

// CacheInvalidator drops a hotel from the catalog cache.
type CacheInvalidator interface {
	Invalidate(id uuid.UUID)
}

// ReviewService manages guest reviews and keeps each hotel's average rating
// in step with them.
type ReviewService struct {
	reviews   storage.ReviewRepository
	hotels    storage.HotelRepository
	tx        storage.Transactor
	cache     CacheInvalidator
	publisher event.Publisher
}

func NewReviewService(
	reviews storage.ReviewRepository,
	hotels storage.HotelRepository,
	tx storage.Transactor,
	cache CacheInvalidator,
	publisher event.Publisher,
) *ReviewService {
	return &ReviewService{
		reviews:   reviews,
		hotels:    hotels,
		tx:        tx,
		cache:     cache,
		publisher: publisher,
	}
}

// Create stores a review. A user may review a hotel only once.
func (s *ReviewService) Create(ctx context.Context, userID, hotelID uuid.UUID, rating int, comment string) (*domain.Review, error) {
	review, err := domain.NewReview(userID, hotelID, rating, comment)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.hotels.GetByID(ctx, hotelID); err != nil {
			return err
		}
		if err := s.reviews.Create(ctx, review); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				return fmt.Errorf("%w: you have already reviewed this hotel", domain.ErrConflict)
			}
			return err
		}
		return s.recalculate(ctx, hotelID)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(hotelID)
	_ = s.publisher.Publish(ctx, domain.ReviewEvent(domain.EventReviewCreated, review))

	return review, nil
}

func (s *ReviewService) Get(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	return s.reviews.GetByID(ctx, id)
}

func (s *ReviewService) List(ctx context.Context, filter storage.ReviewFilter) ([]domain.Review, error) {
	return s.reviews.List(ctx, filter)
}

// Update changes rating and comment of a review written by userID.
func (s *ReviewService) Update(ctx context.Context, userID, id uuid.UUID, rating int, comment string) (*domain.Review, error) {
	var review *domain.Review

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		review, err = s.owned(ctx, userID, id)
		if err != nil {
			return err
		}

		review.Rating = rating
		review.Comment = strings.TrimSpace(comment)
		if err := review.Validate(); err != nil {
			return err
		}
		review.UpdatedAt = time.Now().UTC()

		if err := s.reviews.Update(ctx, review); err != nil {
			return err
		}
		return s.recalculate(ctx, review.HotelID)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(review.HotelID)
	_ = s.publisher.Publish(ctx, domain.ReviewEvent(domain.EventReviewUpdated, review))

	return review, nil
}

// Delete removes a review written by userID.
func (s *ReviewService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	var review *domain.Review

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		review, err = s.owned(ctx, userID, id)
		if err != nil {
			return err
		}
		if err := s.reviews.Delete(ctx, id); err != nil {
			return err
		}
		return s.recalculate(ctx, review.HotelID)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(review.HotelID)
	_ = s.publisher.Publish(ctx, domain.ReviewEvent(domain.EventReviewDeleted, review))

	return nil
}

func (s *ReviewService) owned(ctx context.Context, userID, id uuid.UUID) (*domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return review, nil
}

func (s *ReviewService) recalculate(ctx context.Context, hotelID uuid.UUID) error {
	ratings, err := s.reviews.RatingsForHotel(ctx, hotelID)
	if err != nil {
		return err
	}
	return s.hotels.UpdateRating(ctx, hotelID, domain.AverageRating(ratings), len(ratings))
}
