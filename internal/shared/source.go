package shared

import (
	"context"
	"fmt"

	supabasead "voyago/internal/adapters/supabase"
	"voyago/internal/domain"
	"voyago/internal/storage/sqlstore"
)

// OpenSource builds the listing backend named by cfg.Backend. The returned func
// releases it.
func OpenSource(ctx context.Context, cfg Config) (domain.ListingSource, func() error, error) {
	switch cfg.Backend {
	case "mysql", "postgres":
		store, err := sqlstore.Connect(ctx, cfg.Backend, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect %s: %w", cfg.Backend, err)
		}
		return store, store.Close, nil
	case "supabase", "":
		s, err := supabasead.New(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.BackendRPS)
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
