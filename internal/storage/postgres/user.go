package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mvaleed/innkeep/internal/domain"
	"github.com/mvaleed/innkeep/internal/storage"
)

const userColumns = `id, email, password_hash, phone, full_name, avatar_url,
	user_type, status, created_at, updated_at, deleted_at, version`

// UserRepository implements storage.UserRepository using PostgreSQL.
type UserRepository struct {
	conn DBTX
}

func NewUserRepository(conn DBTX) *UserRepository {
	return &UserRepository{conn: conn}
}

// Create inserts the user row; favorites are written separately.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	db := getDB(ctx, r.conn)

	_, err := db.Exec(ctx, `
		INSERT INTO users (
			id, email, password_hash, phone, full_name, avatar_url,
			user_type, status, created_at, updated_at, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Phone,
		user.FullName,
		user.AvatarURL,
		string(user.Type),
		string(user.Status),
		user.CreatedAt,
		user.UpdatedAt,
		user.Version,
	)

	return mapError(err)
}

// GetByID retrieves a user by their ID, favorites included.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	db := getDB(ctx, r.conn)

	row := db.QueryRow(ctx, `
		SELECT `+userColumns+`,
			   COALESCE((SELECT array_agg(f.hotel_id ORDER BY f.created_at)
			             FROM favorites f WHERE f.user_id = users.id), '{}')
		FROM users WHERE id = $1 AND deleted_at IS NULL`, id)

	var user domain.User
	var userType, status string
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Phone, &user.FullName, &user.AvatarURL,
		&userType, &status, &user.CreatedAt, &user.UpdatedAt, &user.DeletedAt, &user.Version,
		&user.Favorites,
	)
	if err != nil {
		return nil, mapError(err)
	}
	user.Type = domain.UserType(userType)
	user.Status = domain.UserStatus(status)

	return &user, nil
}

// GetByEmail matches case-insensitively and skips deleted accounts.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	db := getDB(ctx, r.conn)

	row := db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE LOWER(email) = LOWER($1) AND deleted_at IS NULL`, email)

	return r.scanUser(row)
}

// Update saves changes to an existing user with optimistic locking.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	db := getDB(ctx, r.conn)

	result, err := db.Exec(ctx, `
		UPDATE users SET
			email = $2,
			password_hash = $3,
			phone = $4,
			full_name = $5,
			avatar_url = $6,
			user_type = $7,
			status = $8,
			updated_at = $9,
			version = version + 1
		WHERE id = $1 AND version = $10 AND deleted_at IS NULL`,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Phone,
		user.FullName,
		user.AvatarURL,
		string(user.Type),
		string(user.Status),
		time.Now().UTC(),
		user.Version,
	)
	if err != nil {
		return mapError(err)
	}

	if result.RowsAffected() == 0 {
		// Distinguish a deleted user from a stale version.
		existing, err := r.GetByID(ctx, user.ID)
		if err != nil {
			return err
		}
		if existing.Version != user.Version {
			return domain.ErrVersionMismatch
		}
		return domain.ErrNotFound
	}

	user.Version++
	return nil
}

// Delete soft-deletes, which frees the email for a new registration.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := getDB(ctx, r.conn)

	result, err := db.Exec(ctx, `
		UPDATE users SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return mapError(err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// List backs the admin user listing.
func (r *UserRepository) List(ctx context.Context, filter storage.UserFilter) ([]domain.User, int64, error) {
	db := getDB(ctx, r.conn)

	w := &where{clauses: []string{"deleted_at IS NULL"}}
	if filter.Status != nil {
		w.add("status = ?", string(*filter.Status))
	}
	if filter.Type != nil {
		w.add("user_type = ?", string(*filter.Type))
	}
	if filter.Search != "" {
		w.add("(LOWER(email) LIKE LOWER(?) OR LOWER(full_name) LIKE LOWER(?))", "%"+filter.Search+"%")
	}

	var total int64
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM users WHERE "+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}

	cond := w.sql()
	query := "SELECT " + userColumns + " FROM users WHERE " + cond +
		" ORDER BY created_at DESC" + w.page(clampLimit(filter.Limit, 20, 100), filter.Offset)

	rows, err := db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err)
	}

	return users, total, nil
}

func (r *UserRepository) AddFavorite(ctx context.Context, userID, hotelID uuid.UUID) error {
	db := getDB(ctx, r.conn)

	_, err := db.Exec(ctx, `
		INSERT INTO favorites (user_id, hotel_id, created_at) VALUES ($1, $2, $3)`,
		userID, hotelID, time.Now().UTC())

	return mapError(err)
}

func (r *UserRepository) RemoveFavorite(ctx context.Context, userID, hotelID uuid.UUID) error {
	db := getDB(ctx, r.conn)

	result, err := db.Exec(ctx, `
		DELETE FROM favorites WHERE user_id = $1 AND hotel_id = $2`, userID, hotelID)
	if err != nil {
		return mapError(err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListFavorites returns the user's favorite hotels, most recently added first.
func (r *UserRepository) ListFavorites(ctx context.Context, userID uuid.UUID) ([]domain.Hotel, error) {
	db := getDB(ctx, r.conn)

	rows, err := db.Query(ctx, `
		SELECT `+hotelSelect("h")+`
		FROM favorites f JOIN hotels h ON h.id = f.hotel_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC`, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	return collectHotels(rows)
}

func (r *UserRepository) scanUser(row scannable) (*domain.User, error) {
	var user domain.User
	var userType, status string

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Phone,
		&user.FullName,
		&user.AvatarURL,
		&userType,
		&status,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.DeletedAt,
		&user.Version,
	)
	if err != nil {
		return nil, mapError(err)
	}

	user.Type = domain.UserType(userType)
	user.Status = domain.UserStatus(status)

	return &user, nil
}
