// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Problem
// model, including the hydrated read views (problem joined with its
// reporter's identity) consumed by the service layer and the broadcast path.
//
// Error semantics:
//   - When a problem is not found, functions return ErrNotFound
//     (gorm.ErrRecordNotFound).
//   - Counter increments are plain SQL expressions (votes_count =
//     votes_count + 1) so concurrent writers on the same row never lose
//     updates to application-level read-modify-write races.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/civireport/go-civic-backend/internal/domain"
)

// problemViewColumns is the select list shared by every hydrated problem query.
const problemViewColumns = "p.id, p.title, p.description, p.latitude, p.longitude, " +
	"p.status, p.votes_count, p.comments_count, p.created_at, " +
	"p.user_id AS reporter_id, u.name AS reporter_name"

// CreateProblem inserts a new problem row with status open and zero counters.
// The problem ID is a randomly generated UUID and CreatedAt is set to UTC.
func CreateProblem(ctx context.Context, db *gorm.DB, userID, title, description string, lat, lon float64) (*domain.Problem, error) {
	p := &domain.Problem{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Latitude:    lat,
		Longitude:   lon,
		Status:      domain.StatusOpen,
		UserID:      userID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// GetProblem fetches a raw problem row by ID, returning ErrNotFound if absent.
// Used by the service layer for status pre-checks inside transactions.
func GetProblem(ctx context.Context, db *gorm.DB, id string) (*domain.Problem, error) {
	var p domain.Problem
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProblemView fetches a single problem joined with its reporter's name.
// It returns ErrNotFound when no row matches.
func GetProblemView(ctx context.Context, db *gorm.DB, id string) (*domain.ProblemView, error) {
	var v domain.ProblemView
	res := db.WithContext(ctx).
		Table("problems p").
		Select(problemViewColumns).
		Joins("JOIN users u ON u.id = p.user_id").
		Where("p.id = ?", id).
		Limit(1).
		Scan(&v)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &v, nil
}

// ListProblemViews returns all problems joined with reporter names, ordered
// by creation time descending (most recent first). Comment bodies are not
// included; this is the summary view.
func ListProblemViews(ctx context.Context, db *gorm.DB) ([]domain.ProblemView, error) {
	var out []domain.ProblemView
	err := db.WithContext(ctx).
		Table("problems p").
		Select(problemViewColumns).
		Joins("JOIN users u ON u.id = p.user_id").
		Order("p.created_at DESC").
		Scan(&out).Error
	return out, err
}

// CountProblems returns the total number of problem rows.
func CountProblems(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Problem{}).
		Count(&total).Error
	return total, err
}

// ListProblemViewsPage returns a paginated slice of the summary view, ordered
// by creation time descending. Use CountProblems to obtain the total for
// pagination metadata.
//
// The caller is responsible for computing offset and limit (e.g., (page-1)*pageSize).
func ListProblemViewsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.ProblemView, error) {
	var out []domain.ProblemView
	err := db.WithContext(ctx).
		Table("problems p").
		Select(problemViewColumns).
		Joins("JOIN users u ON u.id = p.user_id").
		Order("p.created_at DESC").
		Offset(offset).
		Limit(limit).
		Scan(&out).Error
	return out, err
}

// MarkResolved sets the problem status to resolved. The write is
// unconditional: resolving an already-resolved problem succeeds as a no-op
// status write. If no rows are affected the problem does not exist and
// ErrNotFound is returned.
func MarkResolved(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.Problem{}).
		Where("id = ?", id).
		Update("status", domain.StatusResolved)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementVotes adds exactly one to votes_count using an atomic SQL
// expression. It must be called in the same transaction as the vote insert.
func IncrementVotes(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.Problem{}).
		Where("id = ?", id).
		Update("votes_count", gorm.Expr("votes_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementComments adds exactly one to comments_count using an atomic SQL
// expression. It must be called in the same transaction as the comment insert.
func IncrementComments(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.Problem{}).
		Where("id = ?", id).
		Update("comments_count", gorm.Expr("comments_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
