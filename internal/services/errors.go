// Package services implements the application layer of the workflow
// backend: the fallback-aware generation orchestrator with its result
// recorder, and the local account service.
//
// This file centralizes service-level error values and the terminal
// generation failure type. Translation into HTTP statuses and user-facing
// envelopes happens at the handler layer.
package services

import (
	"errors"
	"strings"

	"github.com/automate-gpt/go-workflow-backend/internal/provider"
)

var (
	// ErrEmptyInput is returned when the raw input is empty after trimming.
	// No provider is contacted in that case.
	ErrEmptyInput = errors.New("input is empty")

	// ErrInputTooLong is returned when the raw input exceeds the configured
	// maximum length guard.
	ErrInputTooLong = errors.New("input too long")

	// ErrValidation wraps account field validation problems (malformed
	// email, weak password, blank name). Recoverable; the client re-prompts.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateAccount is returned by SignUp when the email is taken.
	ErrDuplicateAccount = errors.New("an account with this email already exists")

	// ErrAccountNotFound is returned by SignIn/ResetPassword for an unknown email.
	ErrAccountNotFound = errors.New("account not found")

	// ErrWrongPassword is returned by SignIn when the password does not match.
	ErrWrongPassword = errors.New("wrong password")
)

// AllProvidersError is the single terminal failure produced when every
// provider in the chain has been attempted and failed. It carries the
// normalized per-provider failures in attempt order (primary first) but
// never the raw upstream error objects.
type AllProvidersError struct {
	Failures []*provider.Failure
}

// Error implements the error interface.
func (e *AllProvidersError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Error())
	}
	return "all providers unavailable: " + strings.Join(parts, "; ")
}

// Message synthesizes one user-presentable sentence from the underlying
// failures, preferring the most specific category and, on ties, the
// primary provider's (attempts are ordered primary first).
func (e *AllProvidersError) Message() string {
	if len(e.Failures) == 0 {
		return "All AI services are currently unavailable. Please try again later."
	}
	best := e.Failures[0]
	for _, f := range e.Failures {
		if !f.Kind.Transient() && best.Kind.Transient() {
			best = f // a config/account problem is more actionable than an outage
		}
	}
	return best.UserMessage()
}

// Transient reports whether every underlying failure looks like a passing
// condition (services down, rate limits). False means at least one
// provider rejected the request for a configuration or account reason that
// retrying will not fix.
func (e *AllProvidersError) Transient() bool {
	for _, f := range e.Failures {
		if !f.Kind.Transient() {
			return false
		}
	}
	return len(e.Failures) > 0
}
