// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Vote model.
//
// The repository follows a "thin" approach: it performs persistence and simple
// query composition, leaving business rules to the services package.
//
// Error semantics:
//   - A duplicate vote (same user_id, problem_id) relies on the database
//     unique constraint and is returned as a raw DB error. The service layer
//     translates that into a domain error (ErrAlreadyVoted).
//   - On other DB errors (connectivity, constraints, etc.), the raw gorm
//     error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/civireport/go-civic-backend/internal/domain"
)

// CreateVote inserts a vote row for the given user and problem.
//
// The combination (user_id, problem_id) must be unique, enforced by the
// database schema (unique index). Under concurrent inserts for the same pair,
// the constraint is the final arbiter: exactly one insert commits and the
// other fails with a unique-violation error.
func CreateVote(ctx context.Context, db *gorm.DB, userID, problemID string) error {
	v := &domain.Vote{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProblemID: problemID,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(v).Error
}

// HasVote reports whether a vote already exists for (userID, problemID).
// This is an optimization for friendly pre-checks only; the unique index
// remains the guarantee.
func HasVote(ctx context.Context, db *gorm.DB, userID, problemID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Vote{}).
		Where("user_id = ? AND problem_id = ?", userID, problemID).
		Count(&n).Error
	return n > 0, err
}
