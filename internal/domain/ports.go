package domain

import (
	"context"
	"time"
)

// ListingSource is the narrow capability the app needs from the hosted backend.
type ListingSource interface {
	// FetchByID returns every row whose id matches; zero rows is not an error.
	FetchByID(ctx context.Context, table, id string) ([]Record, error)
	Query(ctx context.Context, table string, f Filter) ([]Record, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// HandoffStore keeps reservation hand-off payloads between the reserve click
// and the booking page. Take is single-use.
type HandoffStore interface {
	Put(ctx context.Context, token string, v any, ttl time.Duration) error
	Take(ctx context.Context, token string, dst any) (bool, error)
}
