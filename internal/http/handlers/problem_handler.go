// Problem HTTP handlers.
//
// This file exposes the REST endpoints for the problem lifecycle:
//   - GET    /problems              (public summary list, paginated)
//   - GET    /problems/{id}         (public detail with comments)
//   - POST   /problems              (report; auth required)
//   - POST   /problems/{id}/vote    (auth required)
//   - POST   /problems/{id}/comment (auth required)
//   - PATCH  /problems/{id}/resolve (admin only)
//
// Reporting is the only operation with a broadcast side effect: on success
// the created record is handed to the notifier for best-effort fan-out to
// connected observers.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/civireport/go-civic-backend/internal/domain"
	"github.com/civireport/go-civic-backend/internal/http/middleware"
	"github.com/civireport/go-civic-backend/internal/hub"
	"github.com/civireport/go-civic-backend/internal/services"
	"github.com/civireport/go-civic-backend/internal/utils"
)

// ProblemService is the registry surface consumed by the HTTP layer.
type ProblemService interface {
	Report(ctx context.Context, reporterID, title, description string, lat, lon *float64) (*domain.ProblemView, error)
	Vote(ctx context.Context, userID, problemID string) error
	Comment(ctx context.Context, userID, problemID, content string) (*domain.CommentView, error)
	Resolve(ctx context.Context, problemID string) error
	Get(ctx context.Context, problemID string) (*domain.ProblemView, error)
	ListPage(ctx context.Context, page, pageSize int) ([]domain.ProblemView, int64, error)
}

// IdempotencyStore records completed reports so that retried POSTs with the
// same Idempotency-Key replay the original result instead of reporting twice.
type IdempotencyStore interface {
	Get(ctx context.Context, userID, key string, now time.Time) (problemID string, status int, err error)
	Put(ctx context.Context, userID, key, problemID string, status int) error
}

// ReportProblemRequest is the JSON payload for reporting a problem.
// Coordinates bind as pointers so that a legitimate 0.0 is distinguishable
// from an absent field.
type ReportProblemRequest struct {
	Title       string   `json:"title" binding:"required" example:"Pothole on Main St"`
	Description string   `json:"description" binding:"required" example:"Deep pothole near the crosswalk"`
	Latitude    *float64 `json:"latitude" binding:"required" example:"48.8566"`
	Longitude   *float64 `json:"longitude" binding:"required" example:"2.3522"`
}

// CommentRequest is the JSON payload for commenting on a problem.
type CommentRequest struct {
	Content string `json:"content" binding:"required" example:"Same on my street"`
}

// ProblemListResponse is the paginated summary listing.
type ProblemListResponse struct {
	Problems []domain.ProblemView `json:"problems"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
	Total    int64                `json:"total"`
}

// ListProblems godoc
// @ID          listProblems
// @Summary     List reported problems
// @Description Returns the summary view of all problems, most recent first. Comment bodies are not included.
// @Tags        Problems
// @Produce     json
// @Param       page      query int false "Page (1-based)"    default(1)
// @Param       page_size query int false "Items per page"    default(20)
// @Success     200 {object} handlers.ProblemListResponse
// @Failure     500 {object} handlers.ErrorResponse "Internal server error"
// @Router      /problems [get]
func (h *Handlers) ListProblems(c *gin.Context) {
	page := utils.AtoiDefault(c.Query("page"), 1)
	pageSize := utils.AtoiDefault(c.Query("page_size"), 20)

	problems, total, err := h.problemSvc.ListPage(c.Request.Context(), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list problems")
		return
	}
	if problems == nil {
		problems = []domain.ProblemView{}
	}
	ok(c, http.StatusOK, ProblemListResponse{Problems: problems, Page: page, PageSize: pageSize, Total: total})
}

// GetProblem godoc
// @ID          getProblem
// @Summary     Get one problem with its comments
// @Tags        Problems
// @Produce     json
// @Param       id path string true "Problem ID (UUID)" format(uuid)
// @Success     200 {object} domain.ProblemView
// @Failure     404 {object} handlers.ErrorResponse "Problem not found"
// @Failure     500 {object} handlers.ErrorResponse "Internal server error"
// @Router      /problems/{id} [get]
func (h *Handlers) GetProblem(c *gin.Context) {
	view, err := h.problemSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch err {
		case services.ErrProblemNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "problem not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load problem")
		}
		return
	}
	ok(c, http.StatusOK, view)
}

// ReportProblem godoc
// @ID          reportProblem
// @Summary     Report a new problem
// @Description Persists the problem and notifies all connected observers. Honors Idempotency-Key for safe retries.
// @Tags        Problems
// @Accept      json
// @Produce     json
// @Param       Authorization   header string true  "Bearer token"
// @Param       Idempotency-Key header string false "Retry-safe client key"
// @Param       body body handlers.ReportProblemRequest true "Problem payload"
// @Success     201 {object} domain.ProblemView
// @Failure     400 {object} handlers.ErrorResponse "Invalid payload"
// @Failure     401 {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure     500 {object} handlers.ErrorResponse "Internal server error"
// @Router      /problems [post]
func (h *Handlers) ReportProblem(c *gin.Context) {
	var req ReportProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "title, description and coordinates are required")
		return
	}
	uid := userID(c)

	// Replay: a previously completed report with this key is served again
	// without creating a second problem or re-broadcasting. The store is
	// consulted here rather than trusting middleware.IsReplay alone, since
	// the validator runs before authentication and cannot scope the key to
	// the caller.
	if key, hasKey := middleware.GetIdempotencyKey(c); hasKey && h.idemStore != nil {
		if problemID, status, err := h.idemStore.Get(c.Request.Context(), uid, key, time.Now().UTC()); err == nil {
			if view, err := h.problemSvc.Get(c.Request.Context(), problemID); err == nil {
				ok(c, status, view)
				return
			}
		}
		// Stored record unusable; fall through and process normally.
	}

	view, err := h.problemSvc.Report(c.Request.Context(), uid, req.Title, req.Description, req.Latitude, req.Longitude)
	if err != nil {
		switch err {
		case services.ErrTitleRequired, services.ErrDescriptionRequired, services.ErrCoordinatesRequired:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, "could not report problem")
		}
		return
	}

	if key, hasKey := middleware.GetIdempotencyKey(c); hasKey && h.idemStore != nil {
		// Best-effort; a failed record only costs a retry its replay.
		_ = h.idemStore.Put(c.Request.Context(), uid, key, view.ID, http.StatusCreated)
	}

	if h.notifier != nil {
		h.notifier.Broadcast(hub.Event{Type: hub.EventNewProblem, Data: *view})
	}

	ok(c, http.StatusCreated, view)
}

// VoteProblem godoc
// @ID          voteProblem
// @Summary     Vote for a problem
// @Description Records one vote per user per problem and bumps the vote counter.
// @Tags        Problems
// @Produce     json
// @Param       Authorization header string true "Bearer token"
// @Param       id path string true "Problem ID (UUID)" format(uuid)
// @Success     204 {string} string "No Content"
// @Failure     401 {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure     404 {object} handlers.ErrorResponse "Problem not found"
// @Failure     409 {object} handlers.ErrorResponse "Already voted or problem resolved"
// @Failure     500 {object} handlers.ErrorResponse "Internal server error"
// @Router      /problems/{id}/vote [post]
func (h *Handlers) VoteProblem(c *gin.Context) {
	if err := h.problemSvc.Vote(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		switch err {
		case services.ErrProblemNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "problem not found")
		case services.ErrProblemResolved:
			fail(c, http.StatusConflict, ErrCodeConflict, "problem is already resolved")
		case services.ErrAlreadyVoted:
			fail(c, http.StatusConflict, ErrCodeConflict, "you have already voted for this problem")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not record vote")
		}
		return
	}
	noContent(c)
}

// CommentProblem godoc
// @ID          commentProblem
// @Summary     Comment on a problem
// @Tags        Problems
// @Accept      json
// @Produce     json
// @Param       Authorization header string true "Bearer token"
// @Param       id   path string                  true "Problem ID (UUID)" format(uuid)
// @Param       body body handlers.CommentRequest true "Comment payload"
// @Success     201 {object} domain.CommentView
// @Failure     400 {object} handlers.ErrorResponse "Empty comment"
// @Failure     401 {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure     404 {object} handlers.ErrorResponse "Problem not found"
// @Failure     409 {object} handlers.ErrorResponse "Problem resolved"
// @Failure     500 {object} handlers.ErrorResponse "Internal server error"
// @Router      /problems/{id}/comment [post]
func (h *Handlers) CommentProblem(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "comment content is required")
		return
	}

	view, err := h.problemSvc.Comment(c.Request.Context(), userID(c), c.Param("id"), req.Content)
	if err != nil {
		switch err {
		case services.ErrEmptyComment:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "comment cannot be empty")
		case services.ErrProblemNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "problem not found")
		case services.ErrProblemResolved:
			fail(c, http.StatusConflict, ErrCodeConflict, "problem is already resolved")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, "could not add comment")
		}
		return
	}
	ok(c, http.StatusCreated, view)
}

// ResolveProblem godoc
// @ID          resolveProblem
// @Summary     Mark a problem resolved
// @Description Admin only. Resolving an already-resolved problem succeeds as a no-op.
// @Tags        Problems
// @Produce     json
// @Param       Authorization header string true "Bearer token (admin)"
// @Param       id path string true "Problem ID (UUID)" format(uuid)
// @Success     204 {string} string "No Content"
// @Failure     401 {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure     403 {object} handlers.ErrorResponse "Admin role required"
// @Failure     404 {object} handlers.ErrorResponse "Problem not found"
// @Failure     500 {object} handlers.ErrorResponse "Internal server error"
// @Router      /problems/{id}/resolve [patch]
func (h *Handlers) ResolveProblem(c *gin.Context) {
	if err := h.problemSvc.Resolve(c.Request.Context(), c.Param("id")); err != nil {
		switch err {
		case services.ErrProblemNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "problem not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not resolve problem")
		}
		return
	}
	noContent(c)
}
