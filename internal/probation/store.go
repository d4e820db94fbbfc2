// Package probation tracks how many messages have ever been seen from each
// user, backed by Redis. The counter gates strict keyword filtering to a
// fixed window after first contact: new users are filtered, established
// users are trusted.
//
// Records are simple keys with no TTL:
//
//	Key:   seen:<user_id>
//	Value: monotonically increasing message count
package probation

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// SeenPrefix is the Redis key prefix for per-user message counters.
const SeenPrefix = "seen:"

// Store manages per-user message counters in Redis.
type Store struct {
	client *redis.Client
}

// NewStore creates a counter store using the provided Redis client.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// RecordAndGet atomically increments the counter for userID and returns the
// new value. Redis serializes commands per key, so concurrent calls for the
// same user always observe a gapless, duplicate-free 1,2,3,... sequence
// without any client-side locking. The first call for a user implicitly
// creates the record with value 1; records are never deleted.
func (s *Store) RecordAndGet(ctx context.Context, userID int64) (int64, error) {
	key := SeenPrefix + strconv.FormatInt(userID, 10)
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("probation: incr %s: %w", key, err)
	}
	return count, nil
}

// Seen returns the current counter for userID without incrementing it.
// Returns 0 for users never seen.
func (s *Store) Seen(ctx context.Context, userID int64) (int64, error) {
	key := SeenPrefix + strconv.FormatInt(userID, 10)
	count, err := s.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("probation: get %s: %w", key, err)
	}
	return count, nil
}
