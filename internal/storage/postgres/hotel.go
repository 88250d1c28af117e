package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mvaleed/innkeep/internal/booking"
	"github.com/mvaleed/innkeep/internal/domain"
	"github.com/mvaleed/innkeep/internal/storage"
)

var hotelFields = []string{
	"id", "name", "location", "address", "description", "price", "rating", "review_count",
	"amenities", "policies", "photos", "latitude", "longitude",
	"check_in_time", "check_out_time", "room_types", "created_at", "updated_at",
}

// hotelSelect lists the columns scanHotel expects, qualified by alias when
// one is given. Money is read as text and parsed into a decimal.
func hotelSelect(alias string) string {
	if alias != "" {
		alias += "."
	}
	cols := make([]string, len(hotelFields))
	for i, f := range hotelFields {
		cols[i] = alias + f
		if f == "price" {
			cols[i] += "::text"
		}
	}
	return strings.Join(cols, ", ")
}

var hotelColumns = strings.Join(hotelFields, ", ")

// HotelRepository implements storage.HotelRepository using PostgreSQL.
// Room types are stored as a JSONB array on the hotel row.
type HotelRepository struct {
	conn DBTX
}

func NewHotelRepository(conn DBTX) *HotelRepository {
	return &HotelRepository{conn: conn}
}

func (r *HotelRepository) Create(ctx context.Context, hotel *domain.Hotel) error {
	db := getDB(ctx, r.conn)

	rooms, err := encodeRoomTypes(hotel.RoomTypes)
	if err != nil {
		return err
	}

	_, err = db.Exec(ctx, `
		INSERT INTO hotels (`+hotelColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		hotel.ID,
		hotel.Name,
		hotel.Location,
		hotel.Address,
		hotel.Description,
		hotel.Price,
		hotel.Rating,
		hotel.ReviewCount,
		nonNil(hotel.Amenities),
		nonNil(hotel.Policies),
		nonNil(hotel.Photos),
		hotel.Latitude,
		hotel.Longitude,
		hotel.CheckInTime,
		hotel.CheckOutTime,
		rooms,
		hotel.CreatedAt,
		hotel.UpdatedAt,
	)

	return mapError(err)
}

func (r *HotelRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Hotel, error) {
	db := getDB(ctx, r.conn)

	row := db.QueryRow(ctx, `SELECT `+hotelSelect("")+` FROM hotels WHERE id = $1`, id)
	return scanHotel(row)
}

// Update rewrites the descriptive fields and room catalog. Rating and review
// count are owned by UpdateRating.
func (r *HotelRepository) Update(ctx context.Context, hotel *domain.Hotel) error {
	db := getDB(ctx, r.conn)

	rooms, err := encodeRoomTypes(hotel.RoomTypes)
	if err != nil {
		return err
	}

	result, err := db.Exec(ctx, `
		UPDATE hotels SET
			name = $2,
			location = $3,
			address = $4,
			description = $5,
			price = $6,
			amenities = $7,
			policies = $8,
			photos = $9,
			latitude = $10,
			longitude = $11,
			check_in_time = $12,
			check_out_time = $13,
			room_types = $14,
			updated_at = $15
		WHERE id = $1`,
		hotel.ID,
		hotel.Name,
		hotel.Location,
		hotel.Address,
		hotel.Description,
		hotel.Price,
		nonNil(hotel.Amenities),
		nonNil(hotel.Policies),
		nonNil(hotel.Photos),
		hotel.Latitude,
		hotel.Longitude,
		hotel.CheckInTime,
		hotel.CheckOutTime,
		rooms,
		hotel.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a hotel. Returns ErrConflict while bookings reference it.
func (r *HotelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := getDB(ctx, r.conn)

	result, err := db.Exec(ctx, `DELETE FROM hotels WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *HotelRepository) List(ctx context.Context, filter storage.HotelFilter) ([]domain.Hotel, int64, error) {
	db := getDB(ctx, r.conn)

	w := &where{}
	if filter.Location != "" {
		w.add("LOWER(location) LIKE LOWER(?)", "%"+filter.Location+"%")
	}
	if filter.MinPrice != nil {
		w.add("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		w.add("price <= ?", *filter.MaxPrice)
	}
	if filter.MinRating != nil {
		w.add("rating >= ?", *filter.MinRating)
	}
	if len(filter.Amenities) > 0 {
		want := make([]string, len(filter.Amenities))
		for i, a := range filter.Amenities {
			want[i] = strings.ToLower(a)
		}
		w.add("ARRAY(SELECT LOWER(a) FROM unnest(amenities) a) @> ?", want)
	}

	var total int64
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM hotels WHERE "+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}

	cond := w.sql()
	query := "SELECT " + hotelSelect("") + " FROM hotels WHERE " + cond +
		" ORDER BY rating DESC, name" + w.page(clampLimit(filter.Limit, 10, 100), filter.Offset)

	rows, err := db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	hotels, err := collectHotels(rows)
	if err != nil {
		return nil, 0, err
	}
	return hotels, total, nil
}

func (r *HotelRepository) Search(ctx context.Context, term string) ([]domain.Hotel, error) {
	db := getDB(ctx, r.conn)

	rows, err := db.Query(ctx, `
		SELECT `+hotelSelect("")+` FROM hotels
		WHERE LOWER(location) LIKE LOWER($1)
		   OR LOWER(address) LIKE LOWER($1)
		   OR LOWER(name) LIKE LOWER($1)
		ORDER BY rating DESC, name`, "%"+term+"%")
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	return collectHotels(rows)
}

func (r *HotelRepository) UpdateRating(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) error {
	db := getDB(ctx, r.conn)

	result, err := db.Exec(ctx, `
		UPDATE hotels SET rating = $2, review_count = $3, updated_at = NOW()
		WHERE id = $1`, id, rating, reviewCount)
	if err != nil {
		return mapError(err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func collectHotels(rows pgx.Rows) ([]domain.Hotel, error) {
	var hotels []domain.Hotel
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		hotels = append(hotels, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return hotels, nil
}

func scanHotel(row scannable) (*domain.Hotel, error) {
	var h domain.Hotel
	var price string
	var rooms []byte

	err := row.Scan(
		&h.ID,
		&h.Name,
		&h.Location,
		&h.Address,
		&h.Description,
		&price,
		&h.Rating,
		&h.ReviewCount,
		&h.Amenities,
		&h.Policies,
		&h.Photos,
		&h.Latitude,
		&h.Longitude,
		&h.CheckInTime,
		&h.CheckOutTime,
		&rooms,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}

	if h.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("decoding price of hotel %s: %w", h.ID, err)
	}

	if len(rooms) > 0 {
		if err := json.Unmarshal(rooms, &h.RoomTypes); err != nil {
			return nil, fmt.Errorf("decoding room types of hotel %s: %w", h.ID, err)
		}
	}

	return &h, nil
}

func encodeRoomTypes(rooms []booking.RoomType) ([]byte, error) {
	if rooms == nil {
		rooms = []booking.RoomType{}
	}
	b, err := json.Marshal(rooms)
	if err != nil {
		return nil, fmt.Errorf("encoding room types: %w", err)
	}
	return b, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
