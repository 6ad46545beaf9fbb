// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides recount queries over the vote and
// comment tables. The child rows are the source of truth for the denormalized
// counters on problems; these queries make the counters independently
// verifiable (and are the basis of the counter-consistency tests).
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/civireport/go-civic-backend/internal/domain"
)

// CountVotes returns the true number of vote rows for problemID.
func CountVotes(ctx context.Context, db *gorm.DB, problemID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Vote{}).
		Where("problem_id = ?", problemID).
		Count(&n).Error
	return n, err
}

// CountComments returns the true number of comment rows for problemID.
func CountComments(ctx context.Context, db *gorm.DB, problemID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("problem_id = ?", problemID).
		Count(&n).Error
	return n, err
}
