// Auth HTTP handlers.
//
// This file exposes the REST endpoints for account registration and login:
//   - POST /auth/register
//   - POST /auth/login
//
// Credential parsing and token issuance live in the services layer; handlers
// only bind payloads and map service errors to HTTP results.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civireport/go-civic-backend/internal/domain"
	"github.com/civireport/go-civic-backend/internal/services"
)

// AuthService is the account surface consumed by the HTTP layer.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
}

// RegisterRequest is the JSON payload for creating an account.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required" example:"Alice Martin"`
	Email    string `json:"email" binding:"required,email" example:"alice@example.com"`
	Password string `json:"password" binding:"required,min=8" example:"s3cretpass"`
}

// LoginRequest is the JSON payload for exchanging credentials for a token.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"alice@example.com"`
	Password string `json:"password" binding:"required" example:"s3cretpass"`
}

// LoginResponse carries the session token and the public account record.
type LoginResponse struct {
	Token string     `json:"token"`
	User  publicUser `json:"user"`
}

// RegisterAccount godoc
// @ID          registerAccount
// @Summary     Register a new account
// @Description Creates a citizen account. The email must not already be registered.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body body handlers.RegisterRequest true "Account payload"
// @Success     201 {object} handlers.publicUser
// @Failure     400 {object} handlers.ErrorResponse "Invalid payload"
// @Failure     409 {object} handlers.ErrorResponse "Email already registered"
// @Failure     500 {object} handlers.ErrorResponse "Internal server error"
// @Router      /auth/register [post]
func (h *Handlers) RegisterAccount(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name, email and password (min 8 chars) are required")
		return
	}

	u, err := h.authSvc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch err {
		case services.ErrEmailTaken:
			fail(c, http.StatusConflict, ErrCodeConflict, "an account with this email already exists")
		case services.ErrNameRequired, services.ErrEmailRequired, services.ErrPasswordTooShort:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not create account")
		}
		return
	}

	ok(c, http.StatusCreated, toPublicUser(u))
}

// LoginAccount godoc
// @ID          loginAccount
// @Summary     Log in
// @Description Verifies credentials and returns a signed session token.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body body handlers.LoginRequest true "Credentials"
// @Success     200 {object} handlers.LoginResponse
// @Failure     400 {object} handlers.ErrorResponse "Invalid payload"
// @Failure     401 {object} handlers.ErrorResponse "Invalid credentials"
// @Failure     500 {object} handlers.ErrorResponse "Internal server error"
// @Router      /auth/login [post]
func (h *Handlers) LoginAccount(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password are required")
		return
	}

	u, token, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch err {
		case services.ErrInvalidCredentials:
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid email or password")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not log in")
		}
		return
	}

	ok(c, http.StatusOK, LoginResponse{Token: token, User: toPublicUser(u)})
}
