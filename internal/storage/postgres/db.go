// Package postgres implements the storage interfaces using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mvaleed/innkeep/internal/domain"
	"github.com/mvaleed/innkeep/internal/storage"
)

// DBTX is the interface satisfied by both *pgxpool.Pool and pgx.Tx.
// This allows repositories to work with or without an active transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Conn is a DBTX that can start transactions: a pgxpool.Pool in production,
// a pgxmock pool in tests.
type Conn interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// DB wraps the PostgreSQL connection pool and provides access to repositories.
type DB struct {
	conn  Conn
	close func()
}

// New opens a pool and pings it. maxConns <= 0 keeps the pgxpool default.
func New(ctx context.Context, connString string, maxConns int32) (*DB, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	if maxConns > 0 {
		config.MaxConns = maxConns
	}
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{conn: pool, close: pool.Close}, nil
}

// NewWithConn wraps an existing connection. The caller owns its lifecycle.
func NewWithConn(conn Conn) *DB {
	return &DB{conn: conn, close: func() {}}
}

// Close closes all connections in the pool.
func (db *DB) Close() {
	db.close()
}

// Repositories returns all repositories backed by this database.
func (db *DB) Repositories() *storage.Repositories {
	return &storage.Repositories{
		Users:    NewUserRepository(db.conn),
		Hotels:   NewHotelRepository(db.conn),
		Bookings: NewBookingRepository(db.conn),
		Reviews:  NewReviewRepository(db.conn),
		Tokens:   NewTokenRepository(db.conn),
	}
}

// WithTransaction implements storage.Transactor.
func (db *DB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := db.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	// Put the transaction in context so repositories can use it
	txCtx := context.WithValue(ctx, txKey{}, tx)

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rolling back transaction: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

type txKey struct{}

// getDB returns the transaction from context if present, otherwise conn.
func getDB(ctx context.Context, conn DBTX) DBTX {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return conn
}

const (
	uniqueViolationCode = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

// mapError converts PostgreSQL errors to domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return domain.ErrAlreadyExists
		case foreignKeyViolation:
			return domain.ErrConflict
		case checkViolation:
			return fmt.Errorf("%w: %s", domain.ErrInvalidInput, pgErr.ConstraintName)
		}
	}

	return err
}

// scannable is satisfied by both pgx.Row and pgx.Rows
type scannable interface {
	Scan(dest ...any) error
}

// where accumulates AND-ed predicates with numbered placeholders.
type where struct {
	clauses []string
	args    []any
}

// add appends a predicate bound to a single new placeholder; every "?" in
// clause refers to arg.
func (w *where) add(clause string, arg any) {
	w.args = append(w.args, arg)
	n := fmt.Sprintf("$%d", len(w.args))
	out := make([]byte, 0, len(clause)+2)
	for i := 0; i < len(clause); i++ {
		if clause[i] == '?' {
			out = append(out, n...)
			continue
		}
		out = append(out, clause[i])
	}
	w.clauses = append(w.clauses, string(out))
}

func (w *where) sql() string {
	if len(w.clauses) == 0 {
		return "TRUE"
	}
	s := w.clauses[0]
	for _, c := range w.clauses[1:] {
		s += " AND " + c
	}
	return s
}

// page appends LIMIT/OFFSET placeholders and returns the clause.
func (w *where) page(limit, offset int) string {
	w.args = append(w.args, limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(w.args)-1, len(w.args))
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
