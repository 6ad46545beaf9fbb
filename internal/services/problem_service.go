// Package services – ProblemService
//
// This file implements ProblemService, the application-level component that
// owns the problem lifecycle: reporting, voting, commenting, and resolution.
// It enforces the state machine (open -> resolved, one-way), the one-vote-
// per-user-per-problem invariant, and the consistency of the denormalized
// vote/comment counters.
//
// Concurrency: every mutating operation runs inside a single database
// transaction. Duplicate votes are arbitrated by the unique index on
// (user_id, problem_id) — the in-transaction pre-check only produces a
// friendlier error — and counters are bumped with atomic in-SQL increments,
// so interleavings of concurrent calls on the same problem cannot drift the
// counters or double-admit a vote.
//
// Observability: public methods are OpenTelemetry-instrumented; spans include
// problem/user identifiers where applicable.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/civireport/go-civic-backend/internal/domain"
	"github.com/civireport/go-civic-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ProblemService coordinates problem persistence and invariant enforcement.
// It is the sole writer of problem, vote, and comment rows.
type ProblemService struct {
	// DB is the database handle used for all problem operations.
	// The handle may be a plain *gorm.DB or a transaction-bound handle.
	DB *gorm.DB
}

// Report validates and persists a new problem for reporterID and returns the
// hydrated view (including the reporter's display name) ready for broadcast.
//
// Validation happens before any storage write:
//   - title and description must be non-blank (ErrTitleRequired /
//     ErrDescriptionRequired),
//   - both coordinates must be present (ErrCoordinatesRequired); pointers
//     keep a legitimate 0.0 distinguishable from an absent value.
//
// The new problem starts open with zero counters. Reporting is the only
// operation whose success triggers a broadcast; that side effect belongs to
// the caller, which hands the returned view to the hub.
func (s *ProblemService) Report(ctx context.Context, reporterID, title, description string, lat, lon *float64) (*domain.ProblemView, error) {
	tr := otel.Tracer("services/ProblemService")
	ctx, span := tr.Start(ctx, "Report",
		trace.WithAttributes(attribute.String("user.id", reporterID)),
	)
	defer span.End()

	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if description == "" {
		return nil, ErrDescriptionRequired
	}
	if lat == nil || lon == nil {
		return nil, ErrCoordinatesRequired
	}

	var view *domain.ProblemView
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := repo.CreateProblem(ctx, tx, reporterID, title, description, *lat, *lon)
		if err != nil {
			return err
		}
		view, err = repo.GetProblemView(ctx, tx, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Vote records userID's vote on problemID and increments the vote counter.
//
// Semantics:
//   - The problem must exist; otherwise ErrProblemNotFound.
//   - Resolved problems reject votes with ErrProblemResolved.
//   - A user may vote at most once per problem; a second attempt yields
//     ErrAlreadyVoted. Two concurrent attempts for the same pair cannot both
//     succeed: the unique index is the final arbiter and the losing insert
//     is mapped to ErrAlreadyVoted.
//
// The vote insert and the counter increment commit atomically: no client can
// observe a vote row without its counter bump, or vice versa.
func (s *ProblemService) Vote(ctx context.Context, userID, problemID string) error {
	tr := otel.Tracer("services/ProblemService")
	ctx, span := tr.Start(ctx, "Vote",
		trace.WithAttributes(
			attribute.String("problem.id", problemID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := repo.GetProblem(ctx, tx, problemID)
		if err != nil {
			if isNotFound(err) {
				return ErrProblemNotFound
			}
			return err
		}
		if p.Resolved() {
			return ErrProblemResolved
		}

		// Friendly pre-check; the unique index below is the guarantee.
		if ok, err := repo.HasVote(ctx, tx, userID, problemID); err != nil {
			return err
		} else if ok {
			return ErrAlreadyVoted
		}

		if err := repo.CreateVote(ctx, tx, userID, problemID); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicate(err) {
				return ErrAlreadyVoted
			}
			return err
		}
		return repo.IncrementVotes(ctx, tx, problemID)
	})
}

// Comment validates and persists a comment by userID on problemID, increments
// the comment counter, and returns the hydrated comment (author name).
//
// Semantics:
//   - content must be non-empty after trimming; otherwise ErrEmptyComment.
//   - The problem must exist and still be open (ErrProblemNotFound /
//     ErrProblemResolved).
//
// The comment insert and counter increment commit atomically.
func (s *ProblemService) Comment(ctx context.Context, userID, problemID, content string) (*domain.CommentView, error) {
	tr := otel.Tracer("services/ProblemService")
	ctx, span := tr.Start(ctx, "Comment",
		trace.WithAttributes(
			attribute.String("problem.id", problemID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyComment
	}

	var view *domain.CommentView
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := repo.GetProblem(ctx, tx, problemID)
		if err != nil {
			if isNotFound(err) {
				return ErrProblemNotFound
			}
			return err
		}
		if p.Resolved() {
			return ErrProblemResolved
		}

		c, err := repo.CreateComment(ctx, tx, userID, problemID, content)
		if err != nil {
			return err
		}
		if err := repo.IncrementComments(ctx, tx, problemID); err != nil {
			return err
		}
		view, err = repo.GetCommentView(ctx, tx, c.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Resolve marks problemID resolved. Role enforcement (admin only) happens at
// the transport layer; the service trusts the caller. The status write is
// unconditional, so resolving an already-resolved problem succeeds as a
// no-op. A missing problem yields ErrProblemNotFound.
func (s *ProblemService) Resolve(ctx context.Context, problemID string) error {
	tr := otel.Tracer("services/ProblemService")
	ctx, span := tr.Start(ctx, "Resolve",
		trace.WithAttributes(attribute.String("problem.id", problemID)),
	)
	defer span.End()

	if err := repo.MarkResolved(ctx, s.DB, problemID); err != nil {
		if isNotFound(err) {
			return ErrProblemNotFound
		}
		return err
	}
	return nil
}

// Get returns the detail view of a problem: the hydrated record plus its
// comments ordered by creation time ascending.
func (s *ProblemService) Get(ctx context.Context, problemID string) (*domain.ProblemView, error) {
	tr := otel.Tracer("services/ProblemService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(attribute.String("problem.id", problemID)),
	)
	defer span.End()

	view, err := repo.GetProblemView(ctx, s.DB, problemID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProblemNotFound
		}
		return nil, err
	}
	comments, err := repo.ListCommentViews(ctx, s.DB, problemID)
	if err != nil {
		return nil, err
	}
	view.Comments = comments
	return view, nil
}

// List returns the summary view of all problems, most recent first, without
// comment bodies.
func (s *ProblemService) List(ctx context.Context) ([]domain.ProblemView, error) {
	return repo.ListProblemViews(ctx, s.DB)
}

// ListPage returns one page of the summary view plus the total problem count.
// page and pageSize are 1-based; out-of-range values are clamped.
func (s *ProblemService) ListPage(ctx context.Context, page, pageSize int) ([]domain.ProblemView, int64, error) {
	tr := otel.Tracer("services/ProblemService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	total, err := repo.CountProblems(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	out, err := repo.ListProblemViewsPage(ctx, s.DB, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// isNotFound treats repo-level not found sentinels as "not found" in a
// driver-agnostic way. It also checks gorm.ErrRecordNotFound for safety.
func isNotFound(err error) bool {
	if errors.Is(err, repo.ErrNotFound) {
		return true
	}
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicate attempts to detect unique-constraint violations across drivers
// that may not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
