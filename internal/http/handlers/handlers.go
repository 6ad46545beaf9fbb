// Package handlers provides HTTP handler implementations for the public API.
//
// Handlers are transport-thin: they bind and validate input, delegate to
// application services, and translate service errors into HTTP results.
// Broadcasting is wired here too: problem creation is the single operation
// whose success hands the created record to the notifier for fan-out.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/civireport/go-civic-backend/internal/domain"
	"github.com/civireport/go-civic-backend/internal/hub"
)

// Notifier is the seam between the HTTP layer and the observer hub. The
// registry itself stays decoupled from transport: it returns the created
// record and this adapter turns "creation succeeded" into a broadcast.
type Notifier interface {
	Broadcast(ev hub.Event)
}

// Handlers bundles the services the HTTP endpoints depend on.
type Handlers struct {
	authSvc    AuthService
	problemSvc ProblemService
	notifier   Notifier
	idemStore  IdempotencyStore
}

// New constructs the handler set. notifier and idemStore may be nil in tests;
// broadcasts and replay records are skipped in that case.
func New(authSvc AuthService, problemSvc ProblemService, notifier Notifier, idemStore IdempotencyStore) *Handlers {
	return &Handlers{authSvc: authSvc, problemSvc: problemSvc, notifier: notifier, idemStore: idemStore}
}

// userID returns the authenticated user id placed in the context by the auth
// middleware. Routes behind RequireAuth always have it.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// publicUser is the account shape returned by auth endpoints.
type publicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toPublicUser(u *domain.User) publicUser {
	return publicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
