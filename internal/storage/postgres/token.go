package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mvaleed/innkeep/internal/domain"
)

// TokenRepository implements storage.TokenRepository using PostgreSQL.
type TokenRepository struct {
	conn DBTX
}

func NewTokenRepository(conn DBTX) *TokenRepository {
	return &TokenRepository{conn: conn}
}

const tokenSelect = `
	SELECT id, user_id, token_hash, expires_at, created_at, revoked_at, ip_address, user_agent
	FROM refresh_tokens`

func (r *TokenRepository) Create(ctx context.Context, t *domain.RefreshToken) error {
	_, err := getDB(ctx, r.conn).Exec(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.UserID, t.TokenHash, t.ExpiresAt, t.CreatedAt, t.IPAddress, t.UserAgent,
	)
	return mapError(err)
}

func (r *TokenRepository) GetByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	row := getDB(ctx, r.conn).QueryRow(ctx, tokenSelect+` WHERE token_hash = $1`, hash)
	return scanRefreshToken(row)
}

// Revoke fails with ErrNotFound when the token is unknown or already revoked,
// which lets refresh rotation detect a concurrent reuse.
func (r *TokenRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	n, err := r.revoke(ctx, `id = $1`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.revoke(ctx, `user_id = $1`, userID)
	return err
}

func (r *TokenRepository) revoke(ctx context.Context, cond string, arg any) (int64, error) {
	tag, err := getDB(ctx, r.conn).Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = NOW() WHERE revoked_at IS NULL AND `+cond, arg)
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}

func (r *TokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := getDB(ctx, r.conn).Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}

func scanRefreshToken(row scannable) (*domain.RefreshToken, error) {
	var t domain.RefreshToken
	if err := row.Scan(
		&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt,
		&t.RevokedAt, &t.IPAddress, &t.UserAgent,
	); err != nil {
		return nil, mapError(err)
	}
	return &t, nil
}
