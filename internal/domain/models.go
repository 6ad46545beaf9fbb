// Package domain defines the persistence models for users, problems, votes,
// and comments. These types are mapped with GORM and form the core data layer
// of the civic reporting application.
package domain

import (
	"time"
)

// Role values a user account can hold. Registration always produces a
// citizen; admin accounts are provisioned out of band.
const (
	RoleCitizen = "citizen"
	RoleAdmin   = "admin"
)

// Problem lifecycle states. The transition open -> resolved is one-way;
// no path leads out of resolved.
const (
	StatusOpen     = "open"
	StatusResolved = "resolved"
)

// User represents a registered account able to report, vote on, and comment
// on problems.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Name: display name shown next to reports and comments.
//   - Email: unique login identifier.
//   - PasswordHash: bcrypt hash; never serialized.
//   - Role: "citizen" or "admin" (enforced by DB constraint).
type User struct {
	ID           string    `json:"id"    gorm:"type:char(36);primaryKey"`
	Name         string    `json:"name"  gorm:"type:varchar(120);not null"`
	Email        string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	PasswordHash string    `json:"-"     gorm:"type:varchar(255);not null"`
	Role         string    `json:"role"  gorm:"type:varchar(16);not null;default:'citizen';check:role IN ('citizen','admin')"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Problem represents a reported municipal issue with a location and a
// lifecycle status.
//
// VotesCount and CommentsCount are denormalized caches of the associated
// vote/comment rows. They are maintained transactionally alongside those rows
// (atomic in-SQL increments, never read-modify-write) and must always equal
// the true child-row counts as of the last committed mutation.
type Problem struct {
	ID            string    `json:"id"             gorm:"type:char(36);primaryKey"`
	Title         string    `json:"title"          gorm:"type:varchar(255);not null"`
	Description   string    `json:"description"    gorm:"type:text;not null"`
	Latitude      float64   `json:"latitude"       gorm:"not null"`
	Longitude     float64   `json:"longitude"      gorm:"not null"`
	Status        string    `json:"status"         gorm:"type:varchar(16);not null;default:'open';check:status IN ('open','resolved')"`
	VotesCount    int       `json:"votes_count"    gorm:"not null;default:0"`
	CommentsCount int       `json:"comments_count" gorm:"not null;default:0"`
	CreatedAt     time.Time `json:"created_at"     gorm:"index:idx_problems_created"`
	UpdatedAt     time.Time `json:"updated_at"`
	UserID        string    `json:"user_id"        gorm:"type:char(36);not null;index"`

	// Reporter is the owning user. Problems survive as long as their
	// reporter does; neither is deleted by this application.
	Reporter User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE"`
}

// TableName returns the database table name for Problem.
func (Problem) TableName() string { return "problems" }

// Vote records that a user supports a problem. At most one vote may exist
// per (user, problem) pair; the unique index is the final arbiter under
// concurrent inserts. Votes are never updated or removed.
type Vote struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:char(36);not null;uniqueIndex:ux_votes_user_problem"`
	ProblemID string    `json:"problem_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_votes_user_problem"`
	CreatedAt time.Time `json:"created_at"`

	Problem Problem `json:"-" gorm:"foreignKey:ProblemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Vote.
func (Vote) TableName() string { return "votes" }

// Comment is an immutable remark left by a user on an open problem.
// Content is guaranteed non-empty after trimming by the service layer.
type Comment struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Content   string    `json:"content"    gorm:"type:text;not null"`
	UserID    string    `json:"user_id"    gorm:"type:char(36);not null;index"`
	ProblemID string    `json:"problem_id" gorm:"type:char(36);not null;index:idx_comments_problem_created,priority:1"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_comments_problem_created,priority:2"`

	Problem Problem `json:"-" gorm:"foreignKey:ProblemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Comment.
func (Comment) TableName() string { return "comments" }

// ProblemView is the hydrated read model for a problem: the row joined with
// its reporter's identity. It is what list/detail endpoints return and what
// the hub broadcasts for newly reported problems. Comments is populated only
// by the detail view.
type ProblemView struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Status        string    `json:"status"`
	VotesCount    int       `json:"votes_count"`
	CommentsCount int       `json:"comments_count"`
	CreatedAt     time.Time `json:"created_at"`
	ReporterID    string    `json:"reporter_id"`
	ReporterName  string    `json:"reporter_name"`

	Comments []CommentView `json:"comments,omitempty" gorm:"-"`
}

// CommentView is the hydrated read model for a comment: the row joined with
// its author's display name.
type CommentView struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
}

// Resolved reports whether the problem has reached its terminal state.
func (p *Problem) Resolved() bool { return p.Status == StatusResolved }
