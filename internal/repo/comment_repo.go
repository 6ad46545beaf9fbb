// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Comment
// model and its hydrated view (comment joined with the author's name).
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/civireport/go-civic-backend/internal/domain"
)

// CreateComment inserts a comment row for the given problem and author.
// Content validation (non-empty after trimming) belongs to the service layer.
func CreateComment(ctx context.Context, db *gorm.DB, userID, problemID, content string) (*domain.Comment, error) {
	c := &domain.Comment{
		ID:        uuid.NewString(),
		Content:   content,
		UserID:    userID,
		ProblemID: problemID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetCommentView fetches a single comment joined with its author's display
// name, returning ErrNotFound when no row matches.
func GetCommentView(ctx context.Context, db *gorm.DB, id string) (*domain.CommentView, error) {
	var v domain.CommentView
	res := db.WithContext(ctx).
		Table("comments c").
		Select("c.id, c.content, c.created_at, c.user_id, u.name AS user_name").
		Joins("JOIN users u ON u.id = c.user_id").
		Where("c.id = ?", id).
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

// ListCommentViews returns all comments for a problem joined with author
// names, ordered by creation time ascending (oldest first).
func ListCommentViews(ctx context.Context, db *gorm.DB, problemID string) ([]domain.CommentView, error) {
	var out []domain.CommentView
	err := db.WithContext(ctx).
		Table("comments c").
		Select("c.id, c.content, c.created_at, c.user_id, u.name AS user_name").
		Joins("JOIN users u ON u.id = c.user_id").
		Where("c.problem_id = ?", problemID).
		Order("c.created_at ASC").
		Scan(&out).Error
	return out, err
}
