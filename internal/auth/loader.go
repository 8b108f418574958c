package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/aiwave/aiwave/pkg/client"
	"github.com/aiwave/aiwave/pkg/domain"
)

var (
	// ErrProfileUnavailable wraps every failed profile fetch.
	ErrProfileUnavailable = errors.New("profile unavailable")
	// ErrUnauthorized means the server rejected the token.
	ErrUnauthorized = client.ErrUnauthorized
	// ErrNetwork means the server could not be reached.
	ErrNetwork = client.ErrNetwork
)

// ProfileLoader fetches the user record that belongs to a token.
type ProfileLoader interface {
	Load(ctx context.Context, token string) (*domain.User, error)
}

// APILoader loads profiles with GET /auth/user.
type APILoader struct {
	api *client.Client
}

// NewLoader returns a loader using api.
func NewLoader(api *client.Client) *APILoader {
	return &APILoader{api: api}
}

// Load makes one request with token attached. It never consults the token
// store, so the answer always belongs to token. Every error matches
// ErrProfileUnavailable and exactly one of ErrUnauthorized or ErrNetwork;
// server faults and undecodable bodies count as ErrNetwork.
func (l *APILoader) Load(ctx context.Context, token string) (*domain.User, error) {
	u, err := l.api.WithToken(token).GetUser(ctx)
	switch {
	case err == nil:
		return u, nil
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrNetwork):
		return nil, fmt.Errorf("auth.Load: %w: %w", ErrProfileUnavailable, err)
	default:
		return nil, fmt.Errorf("auth.Load: %w: %w: %w", ErrProfileUnavailable, ErrNetwork, err)
	}
}

// LoaderFunc adapts a function to ProfileLoader.
type LoaderFunc func(ctx context.Context, token string) (*domain.User, error)

// Load implements ProfileLoader.
func (f LoaderFunc) Load(ctx context.Context, token string) (*domain.User, error) {
	return f(ctx, token)
}
