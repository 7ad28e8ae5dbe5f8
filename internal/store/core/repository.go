package core

import (
	"context"
	"errors"
)

// ErrNotFound is the repository-level miss sentinel.
var ErrNotFound = errors.New("store: not found")

// UserRepository persists users and their linked provider accounts.
type UserRepository interface {
	// FindByID returns the user with the given local id, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindBySocialID returns the user linked to the given social provider
	// id, or ErrNotFound.
	FindBySocialID(ctx context.Context, providerID string) (*User, error)

	// Create inserts a new user.
	Create(ctx context.Context, u *User) error

	// Save updates an existing user's linked accounts.
	Save(ctx context.Context, u *User) error
}

// Pinger is implemented by backends with a connection worth health-checking.
type Pinger interface {
	Ping(ctx context.Context) error
}
