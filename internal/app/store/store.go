/*
Package store defines the persistence boundary of the server: the Account Directory
used by the chat core and the HTTP account routes, and the review store for feedback
and ratings. Implementations live in the memory, postgres and mongo sub-packages.
*/
package store

import (
	"context"
	"errors"
	"time"

	"backbench/internal/app/review"
	"backbench/internal/app/user"
)

var (
	// ErrUserNotFound is returned when no account has the requested email.
	ErrUserNotFound = errors.New("store: user not found")

	// ErrUserAlreadyExists is returned by Create when the email is taken.
	ErrUserAlreadyExists = errors.New("store: user already exists")

	// ErrEmptyFilter is returned by DeleteMany for a filter that would match everything.
	ErrEmptyFilter = errors.New("store: delete filter has no criteria")
)

// DeleteFilter selects accounts for DeleteMany. All set criteria must match.
type DeleteFilter struct {
	// Email restricts the match to one account.
	Email string

	// UnverifiedOnly restricts the match to accounts that never confirmed their OTP.
	UnverifiedOnly bool

	// CreatedBefore, when non-zero, restricts the match to accounts registered earlier.
	CreatedBefore time.Time
}

// Validate rejects the empty filter.
func (f DeleteFilter) Validate() error {
	if f.Email == "" && !f.UnverifiedOnly && f.CreatedBefore.IsZero() {
		return ErrEmptyFilter
	}
	return nil
}

// Matches evaluates the filter against one account.
func (f DeleteFilter) Matches(u *user.User) bool {
	if f.Email != "" && u.Email != f.Email {
		return false
	}
	if f.UnverifiedOnly && u.Verified {
		return false
	}
	if !f.CreatedBefore.IsZero() && !u.CreatedAt.Before(f.CreatedBefore) {
		return false
	}
	return true
}

// Directory is the Account Directory: user records keyed by email.
type Directory interface {
	// FindByEmail returns the account for email or ErrUserNotFound.
	FindByEmail(ctx context.Context, email string) (*user.User, error)

	// Create inserts a new account or returns ErrUserAlreadyExists.
	Create(ctx context.Context, u *user.User) error

	// Save persists changes to an existing account, matched by email.
	// It returns ErrUserNotFound when the account no longer exists.
	Save(ctx context.Context, u *user.User) error

	// DeleteMany removes every account matching f and reports how many were removed.
	DeleteMany(ctx context.Context, f DeleteFilter) (int64, error)
}

// ReviewStore persists feedback and ratings.
type ReviewStore interface {
	SaveFeedback(ctx context.Context, f *review.Feedback) error
	SaveRating(ctx context.Context, r *review.Rating) error
}

// Store is a complete backend.
type Store interface {
	Directory
	ReviewStore

	// Ping checks connectivity.
	Ping(ctx context.Context) error

	// Close releases the backend's connections.
	Close(ctx context.Context) error
}
