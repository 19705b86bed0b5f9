// repository/lockstore/redis.go
package lockstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a keyed mutex with expiry, shared across instances. The
// reconciliation handler uses it to serialize work per purchase order;
// the database constraints remain the hard guarantee underneath.
type Store interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}

type store struct {
	client *redis.Client
}

func New(client *redis.Client) Store { return &store{client: client} }

func (s *store) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, 1, ttl).Result()
}

func (s *store) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
