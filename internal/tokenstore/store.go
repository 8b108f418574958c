// Package tokenstore persists the single bearer token of the client.
//
// A store holds one slot. An empty Get result is the canonical "logged out"
// signal; Set and Clear are durable before they return.
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aiwave/aiwave/internal/config"
)

// Key names the slot across backends.
const Key = "token"

// ErrEmptyToken is returned by Set for a blank token, since "" already
// means "no token".
var ErrEmptyToken = errors.New("tokenstore: empty token")

// Blank reports whether token holds nothing but whitespace. Every backend
// rejects such tokens; any other string is stored byte for byte.
func Blank(token string) bool {
	return strings.TrimSpace(token) == ""
}

// Store is a synchronous, durable slot holding one opaque token.
type Store interface {
	// Get returns the stored token, or "" when there is none.
	Get() (string, error)
	// Set replaces the stored token.
	Set(token string) error
	// Clear removes the token. Clearing an empty store is not an error.
	Clear() error
	Close() error
}

// Open builds the backend selected by cfg.TokenStore.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.TokenStore {
	case config.StoreFile:
		return NewFileStore(cfg.TokenFile), nil
	case config.StoreSQLite:
		s, err := OpenSQLite(ctx, cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("tokenstore.Open: %w", err)
		}
		return s, nil
	case config.StoreMemory:
		return NewMemoryStore(""), nil
	default:
		return nil, fmt.Errorf("tokenstore.Open: unknown backend %q", cfg.TokenStore)
	}
}
