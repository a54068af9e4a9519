package userrepo

import (
	"context"
	"errors"
)

// Identity is what the user service reports for a bearer token.
type Identity struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

var (
	ErrUnauthorized = errors.New("invalid or expired token")
	ErrUnavailable  = errors.New("user service unavailable")
)

type Repo interface {
	// Resolve forwards the bearer token to the user service and returns the
	// identity it belongs to.
	Resolve(ctx context.Context, token string) (*Identity, error)
}
