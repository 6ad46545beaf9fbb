package repo

import (
	"context"
	"strings"
	"testing"

	"github.com/civireport/go-civic-backend/internal/domain"
)

func TestCreateVote_UniquePairEnforced(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "Alice", "alice@example.com", domain.RoleCitizen)
	ctx := context.Background()

	p, err := CreateProblem(ctx, db, u.ID, "Pothole", "d", 1, 2)
	if err != nil {
		t.Fatalf("CreateProblem: %v", err)
	}

	if err := CreateVote(ctx, db, u.ID, p.ID); err != nil {
		t.Fatalf("first CreateVote: %v", err)
	}

	err = CreateVote(ctx, db, u.ID, p.ID)
	if err == nil {
		t.Fatalf("second CreateVote succeeded; unique constraint not enforced")
	}
	if !strings.Contains(strings.ToLower(err.Error()), "unique") {
		t.Fatalf("expected unique-violation error, got %v", err)
	}

	n, err := CountVotes(ctx, db, p.ID)
	if err != nil {
		t.Fatalf("CountVotes: %v", err)
	}
	if n != 1 {
		t.Fatalf("vote rows = %d, want 1", n)
	}
}

func TestCreateVote_DifferentUsersAllowed(t *testing.T) {
	db := newTestDB(t)
	a := seedUser(t, db, "Alice", "alice@example.com", domain.RoleCitizen)
	b := seedUser(t, db, "Bob", "bob@example.com", domain.RoleCitizen)
	ctx := context.Background()

	p, err := CreateProblem(ctx, db, a.ID, "Pothole", "d", 1, 2)
	if err != nil {
		t.Fatalf("CreateProblem: %v", err)
	}

	if err := CreateVote(ctx, db, a.ID, p.ID); err != nil {
		t.Fatalf("vote by a: %v", err)
	}
	if err := CreateVote(ctx, db, b.ID, p.ID); err != nil {
		t.Fatalf("vote by b: %v", err)
	}

	n, err := CountVotes(ctx, db, p.ID)
	if err != nil {
		t.Fatalf("CountVotes: %v", err)
	}
	if n != 2 {
		t.Fatalf("vote rows = %d, want 2", n)
	}
}

func TestHasVote(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "Alice", "alice@example.com", domain.RoleCitizen)
	ctx := context.Background()

	p, err := CreateProblem(ctx, db, u.ID, "Pothole", "d", 1, 2)
	if err != nil {
		t.Fatalf("CreateProblem: %v", err)
	}

	ok, err := HasVote(ctx, db, u.ID, p.ID)
	if err != nil || ok {
		t.Fatalf("HasVote before voting = %v, %v; want false, nil", ok, err)
	}
	if err := CreateVote(ctx, db, u.ID, p.ID); err != nil {
		t.Fatalf("CreateVote: %v", err)
	}
	ok, err = HasVote(ctx, db, u.ID, p.ID)
	if err != nil || !ok {
		t.Fatalf("HasVote after voting = %v, %v; want true, nil", ok, err)
	}
}
