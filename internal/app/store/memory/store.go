// Package memory is an in-process store.Store for development and tests.
package memory

import (
	"context"
	"sync"

	"backbench/internal/app/review"
	"backbench/internal/app/store"
	"backbench/internal/app/user"
)

var _ store.Store = (*Store)(nil)

// Store keeps accounts and reviews in maps. Safe for concurrent use; every read
// and write copies records so callers never share memory with the store.
type Store struct {
	mu sync.RWMutex

	users     map[string]*user.User // key: email
	feedbacks []review.Feedback
	ratings   []review.Rating
}

// New returns an empty Store.
func New() *Store {
	return &Store{users: make(map[string]*user.User)}
}

func (s *Store) FindByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[email]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) Create(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.Email]; ok {
		return store.ErrUserAlreadyExists
	}
	cp := *u
	s.users[u.Email] = &cp
	return nil
}

func (s *Store) Save(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[u.Email]
	if !ok {
		return store.ErrUserNotFound
	}
	cp := *u
	cp.ID = existing.ID
	cp.CreatedAt = existing.CreatedAt
	s.users[u.Email] = &cp
	return nil
}

func (s *Store) DeleteMany(_ context.Context, f store.DeleteFilter) (int64, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for email, u := range s.users {
		if f.Matches(u) {
			delete(s.users, email)
			n++
		}
	}
	return n, nil
}

func (s *Store) SaveFeedback(_ context.Context, f *review.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedbacks = append(s.feedbacks, *f)
	return nil
}

func (s *Store) SaveRating(_ context.Context, r *review.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings = append(s.ratings, *r)
	return nil
}

// Feedbacks returns a copy of the stored feedback, oldest first.
func (s *Store) Feedbacks() []review.Feedback {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]review.Feedback(nil), s.feedbacks...)
}

// Ratings returns a copy of the stored ratings, oldest first.
func (s *Store) Ratings() []review.Rating {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]review.Rating(nil), s.ratings...)
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close(context.Context) error { return nil }
