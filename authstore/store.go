// Package authstore defines the persistence contract for an
// AuthState snapshot (spec §6.6) and provides two implementations:
// filestore (a single local JSON file) and pgstore (Postgres, keyed
// by browser device id).
package authstore

import (
	"context"

	"github.com/sagemsg/gmweb/auth"
)

// Store persists and restores one AuthState snapshot, keyed by the
// caller-supplied identity (e.g. a browser device id).
type Store interface {
	Save(ctx context.Context, key string, snap auth.Snapshot) error
	Load(ctx context.Context, key string) (auth.Snapshot, error)
	Delete(ctx context.Context, key string) error
}

// ErrNotFound is returned by Load when key has no stored snapshot.
var ErrNotFound = notFoundError{}

type notFoundError struct{}

func (notFoundError) Error() string { return "authstore: snapshot not found" }
