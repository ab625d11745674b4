// Account HTTP handlers.
//
// This file exposes the local account and session endpoints:
//   - POST /auth/signup
//   - POST /auth/signin
//   - POST /auth/signout
//   - GET  /auth/me
//
// Accounts are store-level only; there are no cookies or tokens. The session
// is a single pointer in the KV store, matching a one-browser-one-user model.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/automate-gpt/go-workflow-backend/internal/services"
)

// SignUpRequest is the JSON payload for creating an account.
type SignUpRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignInRequest is the JSON payload for authenticating.
type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignUp creates an account and starts a session for it. The response body is
// the public account view; the password hash is never serialized.
func (h *Handlers) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name, email and password are required")
		return
	}

	acct, err := h.accounts.SignUp(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, services.ErrDuplicateAccount):
			fail(c, http.StatusConflict, ErrCodeAccountExists, "an account with this email already exists")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not create account")
		}
		return
	}
	ok(c, http.StatusCreated, acct.Public())
}

// SignIn authenticates and starts a session. Unknown emails and wrong
// passwords are deliberately distinguishable; this is a local, single-tenant
// store, not a hardened login surface.
func (h *Handlers) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password are required")
		return
	}

	acct, err := h.accounts.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAccountNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "no account with this email")
		case errors.Is(err, services.ErrWrongPassword):
			fail(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, "incorrect password")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not sign in")
		}
		return
	}
	ok(c, http.StatusOK, acct.Public())
}

// SignOut clears the session. Signing out while signed out succeeds.
func (h *Handlers) SignOut(c *gin.Context) {
	if err := h.accounts.SignOut(c.Request.Context()); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not sign out")
		return
	}
	noContent(c)
}

// Me returns the account the current session points at, or 401 when no
// session is active.
func (h *Handlers) Me(c *gin.Context) {
	acct, err := h.accounts.CurrentUser(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not resolve session")
		return
	}
	if acct == nil {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "not signed in")
		return
	}
	ok(c, http.StatusOK, acct.Public())
}
