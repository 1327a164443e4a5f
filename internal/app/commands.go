package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"voyago/internal/domain"
)

type WarmService struct {
	source   domain.ListingSource
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewWarmService(src domain.ListingSource, c domain.Cache, ttl time.Duration) *WarmService {
	return &WarmService{source: src, cache: c, cacheTTL: ttl}
}

// WarmCategory loads up to limit rows of one category and writes each one to the
// detail cache under the same key GetListing reads. Rows without an id are skipped.
func (s *WarmService) WarmCategory(ctx context.Context, c domain.Category, limit int) (int, error) {
	table := c.Table()
	rows, err := s.source.Query(ctx, table, domain.Filter{Limit: limit})
	if err != nil {
		return 0, &domain.BackendError{Table: table, Err: err}
	}
	n := 0
	for _, r := range rows {
		l := Normalize(r, c)
		if l.ID == "" {
			continue
		}
		if err := s.cache.Set(ctx, listingKey(c, l.ID), l, int(s.cacheTTL.Seconds())); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// WarmAll warms every category with at most workers categories in flight.
// A failing category is logged and reported in the joined error; the others still run.
func (s *WarmService) WarmAll(ctx context.Context, workers, limit int) error {
	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for _, c := range domain.Categories {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			break
		}

		wg.Add(1)
		go func(c domain.Category) {
			defer wg.Done()
			defer sem.Release(1)

			n, err := s.WarmCategory(ctx, c, limit)
			if err != nil {
				log.Warn().Str("category", c.String()).Err(err).Msg("warm failed")
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return
			}
			log.Info().Str("category", c.String()).Int("listings", n).Msg("warm ok")
		}(c)
	}

	wg.Wait()
	return errors.Join(errs...)
}

// Invalidate drops the cached detail for one listing so the next read goes to the backend.
func (s *WarmService) Invalidate(ctx context.Context, c domain.Category, id string) error {
	return s.cache.Del(ctx, listingKey(c, id))
}
