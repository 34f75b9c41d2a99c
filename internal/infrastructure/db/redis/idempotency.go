package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marsone/crew-api/internal/core/ports"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour
	// claimTTL bounds how long a crashed create can block its key.
	claimTTL = time.Minute
	// pendingValue marks a key claimed by a create that has not committed yet.
	pendingValue = "pending"
)

// IdempotencyStore remembers which entity a create request produced.
// Key format: idem:<scope>:<client key>
// Value: "pending" while the create runs, then the created id.
type IdempotencyStore struct {
	client   redis.Cmdable
	ttl      time.Duration
	claimTTL time.Duration
}

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// NewIdempotencyStore wraps client. Keys expire after ttl, or after 24h when ttl <= 0.
func NewIdempotencyStore(client redis.Cmdable, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl, claimTTL: min(claimTTL, ttl)}
}

// Claim sets the pending marker with SETNX. When the key already exists it
// reports the remembered id, or zero while the marker is still pending.
func (s *IdempotencyStore) Claim(ctx context.Context, scope, key string) (bool, int64, error) {
	k := idempotencyKey(scope, key)
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.client.SetNX(ctx, k, pendingValue, s.claimTTL).Result()
		if err != nil {
			return false, 0, fmt.Errorf("idempotency claim: %w", err)
		}
		if ok {
			return true, 0, nil
		}

		raw, err := s.client.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			// expired between SETNX and GET
			continue
		}
		if err != nil {
			return false, 0, fmt.Errorf("idempotency lookup: %w", err)
		}
		if raw == pendingValue {
			return false, 0, nil
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return false, 0, fmt.Errorf("idempotency value %q: %w", raw, err)
		}
		return false, id, nil
	}
	return false, 0, nil
}

// Remember binds key to id for the full ttl, replacing the pending marker.
func (s *IdempotencyStore) Remember(ctx context.Context, scope, key string, id int64) error {
	if err := s.client.Set(ctx, idempotencyKey(scope, key), strconv.FormatInt(id, 10), s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) Release(ctx context.Context, scope, key string) error {
	if err := s.client.Del(ctx, idempotencyKey(scope, key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func idempotencyKey(scope, key string) string {
	return fmt.Sprintf("idem:%s:%s", scope, key)
}
