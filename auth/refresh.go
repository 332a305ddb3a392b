package auth

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// RefreshFunc performs the actual RegisterRefresh RPC: it signs a
// fresh refresh request with the given key and returns the new
// tachyon token. The auth package only owns collapsing concurrent
// callers into one in-flight call; it never builds the RPC itself.
type RefreshFunc func(ctx context.Context, key RefreshKey) (token []byte, expiry time.Time, ttl time.Duration, err error)

// group collapses concurrent RefreshToken calls into a single
// in-flight RPC, mirroring the teacher's keyRotator "rotating" guard
// (a set of in-progress ids, reject/collapse concurrent callers) —
// here implemented with singleflight instead of a hand-rolled map,
// since the shape (one key, collapse concurrent callers, no result
// sharing across distinct keys) is exactly what singleflight solves.
var refreshGroup singleflight.Group

const refreshGroupKey = "tachyon-token"

// RefreshToken refreshes the tachyon token if one isn't already
// in flight, and installs the result on success. Concurrent callers
// during an in-flight refresh all receive the same outcome rather
// than issuing duplicate RPCs.
func (s *State) RefreshToken(ctx context.Context, refresh RefreshFunc) error {
	key, ok := s.RefreshSigningKey()
	if !ok {
		return ErrNoRefreshKey
	}

	_, err, _ := refreshGroup.Do(refreshGroupKey, func() (any, error) {
		token, expiry, ttl, err := refresh(ctx, key)
		if err != nil {
			return nil, err
		}
		s.SetToken(token, expiry, ttl)
		return nil, nil
	})
	return err
}
