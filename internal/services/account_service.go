// Package services – AccountService
//
// This file implements the local account and session store. It is fully
// independent of generation: the pipeline only ever receives a user ID for
// namespacing persisted results. Credential records are kept in the same
// KV-backed store as everything else, and passwords are transformed
// through a salted one-way digest (bcrypt) before storage and comparison;
// plain text is never persisted.
package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/automate-gpt/go-workflow-backend/internal/domain"
)

// AccountStore is the persistence contract the account service depends on.
// *store.Store satisfies it. All mutations go through UpdateAccounts so the
// store can hold its mutex across the whole read-modify-write cycle;
// concurrent sign-ups or password changes must never lose each other's
// records.
type AccountStore interface {
	LoadAccounts(ctx context.Context) ([]domain.UserAccount, error)
	UpdateAccounts(ctx context.Context, fn func([]domain.UserAccount) ([]domain.UserAccount, error)) error
	CurrentSession(ctx context.Context) (string, error)
	SetCurrentSession(ctx context.Context, userID string) error
}

// AccountService manages credential records and the current-session pointer.
type AccountService struct {
	Store AccountStore
}

// NewAccountService constructs an AccountService over the given store.
func NewAccountService(st AccountStore) *AccountService {
	return &AccountService{Store: st}
}

// emailRE matches a standard address shape; intentionally permissive
// beyond "something@something.tld".
var emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLen = 8

// SignUp validates the fields, creates a credential record with a hashed
// password, persists it, and points the session at the new account.
//
// Errors: ErrValidation (wrapped, with a field-specific message) or
// ErrDuplicateAccount. Email uniqueness is case-insensitive.
func (s *AccountService) SignUp(ctx context.Context, name, email, password string) (*domain.UserAccount, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !emailRE.MatchString(email) {
		return nil, fmt.Errorf("%w: please enter a valid email address", ErrValidation)
	}
	if err := checkPasswordPolicy(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	acct := domain.UserAccount{
		ID:             uuid.NewString(),
		Name:           name,
		Email:          email,
		PasswordHash:   string(hash),
		CreatedAt:      now,
		LastSignedInAt: now,
	}

	// Uniqueness check and append happen inside one update so two
	// concurrent sign-ups cannot both pass the check or drop each other.
	err = s.Store.UpdateAccounts(ctx, func(accounts []domain.UserAccount) ([]domain.UserAccount, error) {
		for _, a := range accounts {
			if a.Email == email {
				return nil, ErrDuplicateAccount
			}
		}
		return append(accounts, acct), nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.Store.SetCurrentSession(ctx, acct.ID); err != nil {
		return nil, err
	}
	return &acct, nil
}

// SignIn authenticates by email (case-insensitive) and password, updates
// the last-signed-in timestamp, and points the session at the account.
//
// Errors: ErrAccountNotFound or ErrWrongPassword.
func (s *AccountService) SignIn(ctx context.Context, email, password string) (*domain.UserAccount, error) {
	email = normalizeEmail(email)

	var signedIn domain.UserAccount
	err := s.Store.UpdateAccounts(ctx, func(accounts []domain.UserAccount) ([]domain.UserAccount, error) {
		for i, a := range accounts {
			if a.Email != email {
				continue
			}
			if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
				return nil, ErrWrongPassword
			}
			accounts[i].LastSignedInAt = time.Now().UTC()
			signedIn = accounts[i]
			return accounts, nil
		}
		return nil, ErrAccountNotFound
	})
	if err != nil {
		return nil, err
	}
	if err := s.Store.SetCurrentSession(ctx, signedIn.ID); err != nil {
		return nil, err
	}
	return &signedIn, nil
}

// SignOut clears the current-session pointer. Signing out while signed out
// is a no-op.
func (s *AccountService) SignOut(ctx context.Context) error {
	return s.Store.SetCurrentSession(ctx, "")
}

// CurrentUser resolves the session pointer to an account. It returns
// (nil, nil) when no session is active or the pointed-at account no longer
// exists.
func (s *AccountService) CurrentUser(ctx context.Context) (*domain.UserAccount, error) {
	id, err := s.Store.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, nil
	}
	accounts, err := s.Store.LoadAccounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if a.ID == id {
			out := a
			return &out, nil
		}
	}
	return nil, nil
}

// ResetPassword replaces the password for the account with the given
// email. The new password must satisfy the same policy as sign-up. The
// session pointer is left untouched; the flow is store-level only.
func (s *AccountService) ResetPassword(ctx context.Context, email, newPassword string) error {
	email = normalizeEmail(email)
	if err := checkPasswordPolicy(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.Store.UpdateAccounts(ctx, func(accounts []domain.UserAccount) ([]domain.UserAccount, error) {
		for i, a := range accounts {
			if a.Email == email {
				accounts[i].PasswordHash = string(hash)
				return accounts, nil
			}
		}
		return nil, ErrAccountNotFound
	})
}

// checkPasswordPolicy enforces: minimum 8 characters, at least one
// upper-case letter, one lower-case letter, and one digit.
func checkPasswordPolicy(password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters long", ErrValidation, minPasswordLen)
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return fmt.Errorf("%w: password must contain at least one uppercase letter, one lowercase letter, and one number", ErrValidation)
	}
	return nil
}

// normalizeEmail lowercases and trims the address for case-insensitive
// storage and comparison.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
