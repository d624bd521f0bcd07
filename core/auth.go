package core

import (
	"context"
	"errors"
)

// User represents the authenticated principal exposed to handlers. It is
// resolved once per request from the session and discarded with the response;
// it never carries hash material.
type User struct {
	ID       int64
	Username string
}

// Credential failures surfaced to the user. The messages are the exact
// strings rendered back into the form, so changing them changes observable
// behaviour.
var (
	ErrUsernameRequired  = errors.New("username required")
	ErrPasswordRequired  = errors.New("password required")
	ErrUserExists        = errors.New("user already registered")
	ErrIncorrectUsername = errors.New("incorrect username")
	ErrIncorrectPassword = errors.New("incorrect password")
)

// AuthService defines registration and credential verification behaviour.
type AuthService interface {
	Register(ctx context.Context, username, password string) (int64, error)
	Authenticate(ctx context.Context, username, password string) (User, error)
}
