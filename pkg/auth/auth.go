// Package auth provides user authentication: a backend-agnostic provider
// contract and a document-store-backed implementation with bcrypt password
// hashes and JWT session tokens.
package auth

import (
	"context"
	"errors"
)

// User is an authenticated user.
type User struct {
	UID   string
	Email string
}

var (
	// ErrNotAuthenticated is returned when an action requires a signed-in
	// user and there is none. Callers surface it and abort before any write.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrInvalidCredentials is returned when email or password do not match.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken is returned when signing up with an email that already
	// has an account.
	ErrEmailTaken = errors.New("an account with this email already exists")

	// ErrSessionExpired is returned when resuming from an expired or invalid
	// session token.
	ErrSessionExpired = errors.New("session expired")
)

// Provider is the authentication collaborator consumed by the rest of the
// system.
type Provider interface {
	// CurrentUser returns the signed-in user, if any.
	CurrentUser() (User, bool)

	// ObserveState starts a fresh observer of the auth state. The observer
	// delivers the current state immediately, then every change; nil means
	// signed out. The caller must Stop it.
	ObserveState() *StateObserver

	// SignUp creates an account and signs it in.
	SignUp(ctx context.Context, email, password string) (User, error)

	// SignIn authenticates an existing account.
	SignIn(ctx context.Context, email, password string) (User, error)

	// SignOut clears the current session.
	SignOut()
}
