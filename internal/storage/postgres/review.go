package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/mvaleed/innkeep/internal/domain"
	"github.com/mvaleed/innkeep/internal/storage"
)

// ReviewRepository implements storage.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	conn DBTX
}

func NewReviewRepository(conn DBTX) *ReviewRepository {
	return &ReviewRepository{conn: conn}
}

const reviewSelect = `
	SELECT r.id, r.user_id, r.hotel_id, r.rating, r.comment, r.created_at, r.updated_at,
		   COALESCE(u.full_name, ''), COALESCE(h.name, '')
	FROM reviews r
	LEFT JOIN users u ON u.id = r.user_id
	LEFT JOIN hotels h ON h.id = r.hotel_id`

func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	db := getDB(ctx, r.conn)

	_, err := db.Exec(ctx, `
		INSERT INTO reviews (id, user_id, hotel_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		review.ID,
		review.UserID,
		review.HotelID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
		review.UpdatedAt,
	)

	return mapError(err)
}

func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	db := getDB(ctx, r.conn)

	row := db.QueryRow(ctx, reviewSelect+` WHERE r.id = $1`, id)
	return scanReview(row)
}

// List returns reviews newest first.
func (r *ReviewRepository) List(ctx context.Context, filter storage.ReviewFilter) ([]domain.Review, error) {
	db := getDB(ctx, r.conn)

	w := &where{}
	if filter.UserID != nil {
		w.add("r.user_id = ?", *filter.UserID)
	}
	if filter.HotelID != nil {
		w.add("r.hotel_id = ?", *filter.HotelID)
	}

	rows, err := db.Query(ctx, reviewSelect+" WHERE "+w.sql()+" ORDER BY r.created_at DESC", w.args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *review)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return reviews, nil
}

func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	db := getDB(ctx, r.conn)

	result, err := db.Exec(ctx, `
		UPDATE reviews SET rating = $2, comment = $3, updated_at = $4 WHERE id = $1`,
		review.ID, review.Rating, review.Comment, review.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := getDB(ctx, r.conn)

	result, err := db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ReviewRepository) RatingsForHotel(ctx context.Context, hotelID uuid.UUID) ([]int, error) {
	db := getDB(ctx, r.conn)

	rows, err := db.Query(ctx, `SELECT rating FROM reviews WHERE hotel_id = $1`, hotelID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var ratings []int
	for rows.Next() {
		var rating int
		if err := rows.Scan(&rating); err != nil {
			return nil, mapError(err)
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return ratings, nil
}

func scanReview(row scannable) (*domain.Review, error) {
	var review domain.Review

	err := row.Scan(
		&review.ID,
		&review.UserID,
		&review.HotelID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
		&review.UpdatedAt,
		&review.UserName,
		&review.HotelName,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &review, nil
}
