// Package metadata is a small key/value store in the client-local database.
// The Token Store keeps the persisted access and refresh tokens here.
package metadata

import (
	"context"
)

type Repository interface {
	// Get returns the value for key, or nil without error when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error

	// Update runs fn against a repository bound to a single transaction:
	// either every write made through it lands, or none does.
	Update(ctx context.Context, fn func(ctx context.Context, r Repository) error) error
}
