package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mvaleed/innkeep/internal/domain"
	"github.com/mvaleed/innkeep/internal/storage"
)

const bookingColumns = `id, booking_number, user_id, hotel_id, hotel_name, location, image,
	room_types, check_in, check_out, guests, total_price, status, created_at, updated_at`

// bookingSelect matches bookingColumns with the price read as text.
const bookingSelect = `id, booking_number, user_id, hotel_id, hotel_name, location, image,
	room_types, check_in, check_out, guests, total_price::text, status, created_at, updated_at`

// BookingRepository implements storage.BookingRepository using PostgreSQL.
type BookingRepository struct {
	conn DBTX
}

func NewBookingRepository(conn DBTX) *BookingRepository {
	return &BookingRepository{conn: conn}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	db := getDB(ctx, r.conn)

	_, err := db.Exec(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		b.ID,
		b.BookingNumber,
		b.UserID,
		b.HotelID,
		b.HotelName,
		b.Location,
		b.Image,
		b.RoomTypes,
		b.CheckIn,
		b.CheckOut,
		b.Guests,
		b.TotalPrice,
		string(b.Status),
		b.CreatedAt,
		b.UpdatedAt,
	)

	return mapError(err)
}

func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	db := getDB(ctx, r.conn)

	row := db.QueryRow(ctx, `SELECT `+bookingSelect+` FROM bookings WHERE id = $1`, id)
	return scanBooking(row)
}

// List returns bookings newest first.
func (r *BookingRepository) List(ctx context.Context, filter storage.BookingFilter) ([]domain.Booking, int64, error) {
	db := getDB(ctx, r.conn)

	w := &where{}
	if filter.UserID != nil {
		w.add("user_id = ?", *filter.UserID)
	}
	if filter.HotelID != nil {
		w.add("hotel_id = ?", *filter.HotelID)
	}
	if filter.Status != nil {
		w.add("status = ?", string(*filter.Status))
	}

	var total int64
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM bookings WHERE "+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}

	cond := w.sql()
	query := "SELECT " + bookingSelect + " FROM bookings WHERE " + cond +
		" ORDER BY created_at DESC" + w.page(clampLimit(filter.Limit, 50, 200), filter.Offset)

	rows, err := db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// LockHotel takes a transaction-scoped advisory lock keyed by the hotel id.
func (r *BookingRepository) LockHotel(ctx context.Context, hotelID uuid.UUID) error {
	db := getDB(ctx, r.conn)

	_, err := db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, hotelID.String())
	return mapError(err)
}

func (r *BookingRepository) ListOverlapping(ctx context.Context, hotelID uuid.UUID, checkIn, checkOut time.Time) ([]domain.Booking, error) {
	db := getDB(ctx, r.conn)

	rows, err := db.Query(ctx, `
		SELECT `+bookingSelect+` FROM bookings
		WHERE hotel_id = $1
		  AND status <> 'cancelled'
		  AND check_in < $3
		  AND check_out > $2`,
		hotelID, checkIn, checkOut)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// UpdateStatus moves the booking from one status to another. It fails with
// ErrInvalidStatus when the stored status is no longer from.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.BookingStatus) error {
	db := getDB(ctx, r.conn)

	result, err := db.Exec(ctx, `
		UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1 AND status = $3`,
		id, string(to), string(from))
	if err != nil {
		return mapError(err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: booking %s is no longer %s", domain.ErrInvalidStatus, id, from)
	}
	return nil
}

func (r *BookingRepository) CompletePast(ctx context.Context, before time.Time) (int64, error) {
	db := getDB(ctx, r.conn)

	result, err := db.Exec(ctx, `
		UPDATE bookings SET status = 'completed', updated_at = NOW()
		WHERE status = 'upcoming' AND check_out < $1`, before)
	if err != nil {
		return 0, mapError(err)
	}
	return result.RowsAffected(), nil
}

// Stats counts bookings and sums their price per status.
func (r *BookingRepository) Stats(ctx context.Context) ([]domain.BookingStats, error) {
	db := getDB(ctx, r.conn)

	rows, err := db.Query(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(total_price), 0)::text
		FROM bookings GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var stats []domain.BookingStats
	for rows.Next() {
		var s domain.BookingStats
		var status, revenue string
		if err := rows.Scan(&status, &s.Count, &revenue); err != nil {
			return nil, mapError(err)
		}
		s.Status = domain.BookingStatus(status)
		if s.Revenue, err = decimal.NewFromString(revenue); err != nil {
			return nil, fmt.Errorf("decoding revenue for %s: %w", status, err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return stats, nil
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return bookings, nil
}

func scanBooking(row scannable) (*domain.Booking, error) {
	var b domain.Booking
	var status, total string

	err := row.Scan(
		&b.ID,
		&b.BookingNumber,
		&b.UserID,
		&b.HotelID,
		&b.HotelName,
		&b.Location,
		&b.Image,
		&b.RoomTypes,
		&b.CheckIn,
		&b.CheckOut,
		&b.Guests,
		&total,
		&status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	b.Status = domain.BookingStatus(status)
	if b.TotalPrice, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("decoding total of booking %s: %w", b.ID, err)
	}

	return &b, nil
}
