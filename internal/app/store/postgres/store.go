// Package postgres implements store.Store on PostgreSQL with pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"backbench/internal/app/review"
	"backbench/internal/app/store"
	"backbench/internal/app/user"
)

var _ store.Store = (*Store)(nil)

// Store is a pgx-backed store.Store. It owns the pool and closes it in Close.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an open pool (see NewPool).
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Open connects to dsn, runs migrations and returns a ready Store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := NewPool(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return New(pool), nil
}

const userColumns = `id, username, email, password_hash, COALESCE(otp, ''), verified, created_at`

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.OTP, &u.Verified, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// nullable maps the empty string to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: find user: %w", err)
	}
	return u, nil
}

func (s *Store) Create(ctx context.Context, u *user.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, username, email, password_hash, otp, verified, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Username, u.Email, u.PasswordHash, nullable(u.OTP), u.Verified, u.CreatedAt,
	)
	if IsUniqueViolation(err) {
		return store.ErrUserAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("postgres: create user: %w", err)
	}
	return nil
}

func (s *Store) Save(ctx context.Context, u *user.User) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users
		    SET username = $2, password_hash = $3, otp = $4, verified = $5
		  WHERE email = $1`,
		u.Email, u.Username, u.PasswordHash, nullable(u.OTP), u.Verified,
	)
	if err != nil {
		return fmt.Errorf("postgres: save user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

func (s *Store) DeleteMany(ctx context.Context, f store.DeleteFilter) (int64, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}

	query, args := deleteQuery(f)
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete users: %w", err)
	}
	return tag.RowsAffected(), nil
}

// deleteQuery renders f as a parameterized DELETE.
func deleteQuery(f store.DeleteFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Email != "" {
		args = append(args, f.Email)
		conds = append(conds, "email = $"+strconv.Itoa(len(args)))
	}
	if f.UnverifiedOnly {
		conds = append(conds, "verified = FALSE")
	}
	if !f.CreatedBefore.IsZero() {
		args = append(args, f.CreatedBefore)
		conds = append(conds, "created_at < $"+strconv.Itoa(len(args)))
	}
	return "DELETE FROM users WHERE " + strings.Join(conds, " AND "), args
}

func (s *Store) SaveFeedback(ctx context.Context, f *review.Feedback) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO feedback (id, full_name, email, mobile_number, email_subject, message, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		f.ID, f.FullName, f.Email, f.MobileNumber, f.EmailSubject, f.Message, f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: save feedback: %w", err)
	}
	return nil
}

func (s *Store) SaveRating(ctx context.Context, r *review.Rating) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO ratings (id, user_id, rating, created_at) VALUES ($1, $2, $3, $4)`,
		r.ID, r.UserID, r.Rating, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: save rating: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close(context.Context) error {
	s.pool.Close()
	return nil
}
