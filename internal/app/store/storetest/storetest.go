// Package storetest is a conformance suite run against every store.Store backend.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"backbench/internal/app/review"
	"backbench/internal/app/store"
	"backbench/internal/app/user"
)

// NewUser builds an unverified account created now. Emails must be unique per call site.
func NewUser(t *testing.T, username, email string) *user.User {
	t.Helper()
	u, err := user.New(username, email, "password1", "123456", time.Now().Truncate(time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	return u
}

// Run executes the suite against s. The store must start empty of the emails used here.
func Run(t *testing.T, s store.Store) {
	t.Helper()

	t.Run("Ping", func(t *testing.T) {
		if err := s.Ping(context.Background()); err != nil {
			t.Fatal(err)
		}
	})
	t.Run("CreateAndFind", func(t *testing.T) { testCreateAndFind(t, s) })
	t.Run("CreateDuplicate", func(t *testing.T) { testCreateDuplicate(t, s) })
	t.Run("Save", func(t *testing.T) { testSave(t, s) })
	t.Run("DeleteMany", func(t *testing.T) { testDeleteMany(t, s) })
	t.Run("Reviews", func(t *testing.T) { testReviews(t, s) })
}

func testCreateAndFind(t *testing.T, s store.Store) {
	ctx := context.Background()

	if _, err := s.FindByEmail(ctx, "ghost@x.com"); !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("FindByEmail(missing) err = %v, want ErrUserNotFound", err)
	}

	u := NewUser(t, "alice", "alice@x.com")
	if err := s.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.FindByEmail(ctx, "alice@x.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if got.ID != u.ID || got.Username != "alice" || got.OTP != "123456" || got.Verified {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if !got.CreatedAt.Equal(u.CreatedAt) {
		t.Errorf("CreatedAt = %s, want %s", got.CreatedAt, u.CreatedAt)
	}
	if !got.CheckPassword("password1") {
		t.Error("password hash did not survive the round trip")
	}
}

func testCreateDuplicate(t *testing.T, s store.Store) {
	ctx := context.Background()

	if err := s.Create(ctx, NewUser(t, "bob", "bob@x.com")); err != nil {
		t.Fatal(err)
	}
	err := s.Create(ctx, NewUser(t, "bobby", "bob@x.com"))
	if !errors.Is(err, store.ErrUserAlreadyExists) {
		t.Fatalf("duplicate Create err = %v, want ErrUserAlreadyExists", err)
	}
}

func testSave(t *testing.T, s store.Store) {
	ctx := context.Background()

	u := NewUser(t, "carol", "carol@x.com")
	if err := s.Create(ctx, u); err != nil {
		t.Fatal(err)
	}

	u.MarkVerified()
	if err := u.SetPassword("newpass99"); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, u); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.FindByEmail(ctx, "carol@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Verified || got.OTP != "" || !got.CheckPassword("newpass99") {
		t.Errorf("Save did not persist changes: %+v", got)
	}

	missing := NewUser(t, "dave", "dave-missing@x.com")
	if err := s.Save(ctx, missing); !errors.Is(err, store.ErrUserNotFound) {
		t.Errorf("Save(missing) err = %v, want ErrUserNotFound", err)
	}
}

func testDeleteMany(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now()

	stale := NewUser(t, "stale", "stale@x.com")
	stale.CreatedAt = now.Add(-time.Hour).Truncate(time.Millisecond)

	staleVerified := NewUser(t, "kept", "kept@x.com")
	staleVerified.CreatedAt = now.Add(-time.Hour).Truncate(time.Millisecond)
	staleVerified.MarkVerified()

	fresh := NewUser(t, "fresh", "fresh@x.com")

	for _, u := range []*user.User{stale, staleVerified, fresh} {
		if err := s.Create(ctx, u); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := s.DeleteMany(ctx, store.DeleteFilter{}); !errors.Is(err, store.ErrEmptyFilter) {
		t.Fatalf("empty filter err = %v", err)
	}

	n, err := s.DeleteMany(ctx, store.DeleteFilter{UnverifiedOnly: true, CreatedBefore: now.Add(-10 * time.Minute)})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("DeleteMany removed %d, want 1", n)
	}

	if _, err := s.FindByEmail(ctx, "stale@x.com"); !errors.Is(err, store.ErrUserNotFound) {
		t.Error("stale pending account survived")
	}
	for _, email := range []string{"kept@x.com", "fresh@x.com"} {
		if _, err := s.FindByEmail(ctx, email); err != nil {
			t.Errorf("%s was deleted: %v", email, err)
		}
	}

	n, err = s.DeleteMany(ctx, store.DeleteFilter{Email: "fresh@x.com"})
	if err != nil || n != 1 {
		t.Errorf("DeleteMany(email) = %d, %v", n, err)
	}
}

func testReviews(t *testing.T, s store.Store) {
	ctx := context.Background()

	fb := &review.Feedback{
		ID:        uuid.New(),
		FullName:  "Alice",
		Email:     "alice@x.com",
		Message:   "Great videos",
		CreatedAt: time.Now(),
	}
	if err := s.SaveFeedback(ctx, fb); err != nil {
		t.Errorf("SaveFeedback: %v", err)
	}

	r := &review.Rating{ID: uuid.New(), UserID: uuid.New(), Rating: 4, CreatedAt: time.Now()}
	if err := s.SaveRating(ctx, r); err != nil {
		t.Errorf("SaveRating: %v", err)
	}
}
