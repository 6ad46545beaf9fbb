package repo

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIdempotency_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	rec, err := CreateIdempotency(ctx, db, "u1", "key-1", "p1", 201, time.Hour)
	if err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if rec.ProblemID != "p1" || rec.Status != 201 {
		t.Fatalf("record = %+v", rec)
	}

	got, err := GetIdempotency(ctx, db, "u1", "key-1", now)
	if err != nil {
		t.Fatalf("GetIdempotency: %v", err)
	}
	if got.ProblemID != "p1" {
		t.Fatalf("ProblemID = %q, want p1", got.ProblemID)
	}
}

func TestIdempotency_DuplicateKey(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, "u1", "key-1", "p1", 201, time.Hour); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := CreateIdempotency(ctx, db, "u1", "key-1", "p2", 201, time.Hour)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// Same key from another user is a distinct record.
	if _, err := CreateIdempotency(ctx, db, "u2", "key-1", "p3", 201, time.Hour); err != nil {
		t.Fatalf("other-user create: %v", err)
	}
}

func TestIdempotency_ExpiredAndBlankKey(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, "u1", "key-ttl", "p1", 201, time.Millisecond); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := GetIdempotency(ctx, db, "u1", "key-ttl", time.Now().UTC().Add(time.Second)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired record, got %v", err)
	}
	if _, err := GetIdempotency(ctx, db, "u1", "  ", time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for blank key, got %v", err)
	}
}
