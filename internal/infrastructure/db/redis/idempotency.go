package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// idempotencyTTL matches the token lifetime: a client retrying an order
// submission within a day gets the original order back.
const idempotencyTTL = 24 * time.Hour

// OrderIdempotencyStore maps Idempotency-Key headers to order numbers.
// Key format: order_idem:<key>
type OrderIdempotencyStore struct {
	client *redis.Client
}

func NewOrderIdempotencyStore(client *redis.Client) *OrderIdempotencyStore {
	return &OrderIdempotencyStore{client: client}
}

// Lookup returns the order number stored under key, or "" when unseen.
func (s *OrderIdempotencyStore) Lookup(ctx context.Context, key string) (string, error) {
	orderNumber, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("idempotency lookup: %w", err)
	}
	return orderNumber, nil
}

// Remember stores the mapping for the idempotency window. SetNX keeps the
// first order number when two submissions race on the same key.
func (s *OrderIdempotencyStore) Remember(ctx context.Context, key, orderNumber string) error {
	return s.client.SetNX(ctx, s.key(key), orderNumber, idempotencyTTL).Err()
}

func (s *OrderIdempotencyStore) key(key string) string {
	return "order_idem:" + key
}
