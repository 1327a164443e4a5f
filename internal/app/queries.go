package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"voyago/internal/domain"
)

type ListingService struct {
	source   domain.ListingSource
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewListingService(src domain.ListingSource, c domain.Cache, ttl time.Duration) *ListingService {
	return &ListingService{source: src, cache: c, cacheTTL: ttl}
}

func listingKey(c domain.Category, id string) string {
	return fmt.Sprintf("listing:%s:%s", c, id)
}

// GetListing fetches one listing by category and id.
// Zero rows is a *domain.NotFoundError; a source failure is a *domain.BackendError.
func (s *ListingService) GetListing(ctx context.Context, c domain.Category, id string) (domain.Listing, error) {
	key := listingKey(c, id)
	var l domain.Listing
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &l); ok {
			return l, nil
		}
	}

	table := c.Table()
	rows, err := s.source.FetchByID(ctx, table, id)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return domain.Listing{}, err
		}
		log.Error().Err(err).Str("table", table).Str("id", id).Msg("listing fetch failed")
		return domain.Listing{}, &domain.BackendError{Table: table, Err: err}
	}
	if len(rows) == 0 {
		log.Info().Str("category", c.String()).Str("id", id).Msg("listing not found")
		return domain.Listing{}, &domain.NotFoundError{Category: c, ID: id}
	}
	if len(rows) > 1 {
		// id is expected to be unique; keep the first row but make it visible
		log.Warn().Str("table", table).Str("id", id).Int("rows", len(rows)).Msg("duplicate rows for listing id")
	}

	l = Normalize(rows[0], c)
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, l, int(s.cacheTTL.Seconds()))
	}
	return l, nil
}

// ListListings returns the category's rows in backend order, normalized.
func (s *ListingService) ListListings(ctx context.Context, c domain.Category, f domain.Filter) ([]domain.Listing, error) {
	table := c.Table()
	rows, err := s.source.Query(ctx, table, f)
	if err != nil {
		log.Error().Err(err).Str("table", table).Msg("listing query failed")
		return nil, &domain.BackendError{Table: table, Err: err}
	}
	out := make([]domain.Listing, 0, len(rows))
	for _, r := range rows {
		out = append(out, Normalize(r, c))
	}
	return out, nil
}

// ListRecords is ListListings without normalization, for callers that resolve the
// category per row (the generic services table mixes types).
func (s *ListingService) ListRecords(ctx context.Context, c domain.Category, f domain.Filter) ([]domain.Record, error) {
	table := c.Table()
	rows, err := s.source.Query(ctx, table, f)
	if err != nil {
		log.Error().Err(err).Str("table", table).Msg("record query failed")
		return nil, &domain.BackendError{Table: table, Err: err}
	}
	return rows, nil
}

// Featured loads the first perCategory listings of every category concurrently.
// Any failing category fails the whole call.
func (s *ListingService) Featured(ctx context.Context, perCategory int) (map[domain.Category][]domain.Listing, error) {
	results := make([][]domain.Listing, len(domain.Categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range domain.Categories {
		i, c := i, c
		g.Go(func() error {
			ls, err := s.ListListings(gctx, c, domain.Filter{Limit: perCategory})
			if err != nil {
				return err
			}
			results[i] = ls
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[domain.Category][]domain.Listing, len(results))
	for i, c := range domain.Categories {
		out[c] = results[i]
	}
	return out, nil
}
