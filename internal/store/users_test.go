package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestCreateUserMonotonicIDs(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		u, err := s.CreateUser(ctx, fmt.Sprintf("user%d", i), fmt.Sprintf("user%d@example.com", i), "hash", 1)
		if err != nil {
			t.Fatalf("failed to create user %d: %v", i, err)
		}
		want := fmt.Sprintf("U%03d", i)
		if u.UserID != want {
			t.Errorf("expected id %s, got %s", want, u.UserID)
		}
	}
}

func TestCreateUserDuplicates(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, "alice", "alice@example.com", "hash", 1); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	if _, err := s.CreateUser(ctx, "alice", "other@example.com", "hash", 1); !errors.Is(err, ErrDuplicateUsername) {
		t.Errorf("expected ErrDuplicateUsername, got %v", err)
	}
	if _, err := s.CreateUser(ctx, "bob", "alice@example.com", "hash", 1); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}

	// Rejected signups must not burn ids or leave rows.
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		t.Fatalf("failed to count users: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 user, got %d", count)
	}

	u, err := s.CreateUser(ctx, "carol", "carol@example.com", "hash", 1)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if u.UserID != "U002" {
		t.Errorf("expected U002 after rejected signups, got %s", u.UserID)
	}
}

func TestUserLookups(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, "dave", "dave@example.com", "hash", 2)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	byName, err := s.UserByUsername(ctx, "dave")
	if err != nil {
		t.Fatalf("failed to look up by username: %v", err)
	}
	if byName.UserID != created.UserID || byName.Role != 2 {
		t.Errorf("unexpected user: %+v", byName)
	}

	byEmail, err := s.UserByEmail(ctx, "dave@example.com")
	if err != nil {
		t.Fatalf("failed to look up by email: %v", err)
	}
	if byEmail.Username != "dave" {
		t.Errorf("unexpected user: %+v", byEmail)
	}

	if _, err := s.UserByUsername(ctx, "nobody"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
	if _, err := s.UserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestUpdatePassword(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, "erin", "erin@example.com", "old-hash", 1); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	if err := s.UpdatePassword(ctx, "erin@example.com", "new-hash"); err != nil {
		t.Fatalf("failed to update password: %v", err)
	}

	u, err := s.UserByEmail(ctx, "erin@example.com")
	if err != nil {
		t.Fatalf("failed to look up user: %v", err)
	}
	if u.Password != "new-hash" {
		t.Errorf("expected new hash, got %s", u.Password)
	}

	if err := s.UpdatePassword(ctx, "ghost@example.com", "x"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}
