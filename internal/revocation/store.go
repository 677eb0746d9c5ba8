// Package revocation tracks invalidated token identifiers in Redis. Entries
// carry a TTL equal to the remaining token lifetime, so the store never grows
// unbounded and never needs manual cleanup.
package revocation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	internal_errors "github.com/pharmhub-dev/pharmhub/internal/errors"
)

// ErrStoreUnavailable is returned when Redis can't answer. Verification paths
// must treat it as deny: failing open would silently defeat logout.
var ErrStoreUnavailable = &internal_errors.ErrorWithStatusCode{
	Message:    "Revocation store unavailable",
	StatusCode: http.StatusServiceUnavailable,
}

const defaultTimeout = 2 * time.Second

type Store struct {
	redis   redis.UniversalClient
	prefix  string
	timeout time.Duration
}

func NewStore(redisClient redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "revoked"
	}
	return &Store{redis: redisClient, prefix: prefix, timeout: defaultTimeout}
}

func (s *Store) key(jti string) string {
	return s.prefix + ":" + jti
}

// Revoke marks jti invalid for at least ttl.
func (s *Store) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// Token already expired on its own; nothing to track.
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.redis.Set(ctx, s.key(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// IsRevoked reports whether jti has been revoked. Absence of an entry means
// "not revoked"; a store error is returned, never swallowed.
func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.redis.Get(ctx, s.key(jti)).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
