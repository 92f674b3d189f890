package memory

import (
	"context"
	"testing"

	"backbench/internal/app/store/storetest"
)

func TestConformance(t *testing.T) {
	storetest.Run(t, New())
}

func TestReturnedUsersAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()

	u := storetest.NewUser(t, "alice", "alice@x.com")
	if err := s.Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	u.Username = "mallory"

	got, err := s.FindByEmail(ctx, "alice@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if got.Username != "alice" {
		t.Errorf("store shares memory with caller: %q", got.Username)
	}
}
