package redisad

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"voyago/internal/adapters/observability"
)

type Cache struct{ c *redis.Client }

func New(addr, pass string, db int) *Cache {
	return &Cache{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

func (r *Cache) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

func (r *Cache) Close() error { return r.c.Close() }

func (r *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, err := r.c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		observability.ObserveCache("listing", "miss")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	observability.ObserveCache("listing", "hit")
	return true, json.Unmarshal(v, dst)
}

func (r *Cache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	observability.ObserveCache("listing", "set")
	return r.c.Set(ctx, key, b, time.Duration(ttlSec)*time.Second).Err()
}

func (r *Cache) Del(ctx context.Context, key string) error {
	observability.ObserveCache("listing", "del")
	return r.c.Del(ctx, key).Err()
}

// Handoffs returns the hand-off store sharing this connection.
func (r *Cache) Handoffs() *HandoffStore { return &HandoffStore{c: r.c} }

// HandoffStore keeps reservation hand-off payloads under "handoff:{token}".
type HandoffStore struct{ c *redis.Client }

func handoffKey(token string) string { return "handoff:" + token }

func (h *HandoffStore) Put(ctx context.Context, token string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	observability.ObserveCache("handoff", "set")
	return h.c.Set(ctx, handoffKey(token), b, ttl).Err()
}

// Take reads and deletes in one step; a token can be redeemed once.
func (h *HandoffStore) Take(ctx context.Context, token string, dst any) (bool, error) {
	v, err := h.c.GetDel(ctx, handoffKey(token)).Bytes()
	if err == redis.Nil {
		observability.ObserveCache("handoff", "miss")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	observability.ObserveCache("handoff", "hit")
	return true, json.Unmarshal(v, dst)
}
