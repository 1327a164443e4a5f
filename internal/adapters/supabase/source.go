package supabasead

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"voyago/internal/adapters/observability"
	"voyago/internal/domain"
)

// Source reads listing tables through the Supabase REST API.
type Source struct {
	client *supa.Client
	rl     *rate.Limiter
}

func New(url, key string, rps int) (*Source, error) {
	if url == "" || key == "" {
		return nil, fmt.Errorf("supabase url and service key are required")
	}
	if rps <= 0 {
		rps = 10
	}
	client, err := supa.NewClient(url, key, nil)
	if err != nil {
		return nil, err
	}
	return &Source{client: client, rl: rate.NewLimiter(rate.Limit(rps), rps)}, nil
}

// FetchByID asks for up to two rows so that a duplicated id is visible to the caller.
func (s *Source) FetchByID(ctx context.Context, table, id string) ([]domain.Record, error) {
	if err := s.rl.Wait(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	data, _, err := s.client.From(table).
		Select("*", "", false).
		Eq("id", id).
		Limit(2, "").
		Execute()
	observability.ObserveExternal("supabase", table+".by_id", statusOf(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	return splitRows(data)
}

func (s *Source) Query(ctx context.Context, table string, f domain.Filter) ([]domain.Record, error) {
	if err := s.rl.Wait(ctx); err != nil {
		return nil, err
	}
	q := s.client.From(table).Select("*", "", false)
	for col, v := range f.Eq {
		q = q.Eq(col, v)
	}
	if f.OrderBy != "" {
		col := strings.TrimPrefix(f.OrderBy, "-")
		q = q.Order(col, &postgrest.OrderOpts{Ascending: !strings.HasPrefix(f.OrderBy, "-")})
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit, "")
	}

	start := time.Now()
	data, _, err := q.Execute()
	observability.ObserveExternal("supabase", table+".query", statusOf(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	return splitRows(data)
}

// splitRows turns a JSON array body into records.
func splitRows(data []byte) ([]domain.Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("supabase: invalid JSON response")
	}
	res := gjson.ParseBytes(data)
	if !res.IsArray() {
		return nil, fmt.Errorf("supabase: expected array, got %s", res.Type)
	}
	items := res.Array()
	out := make([]domain.Record, 0, len(items))
	for _, it := range items {
		if rec, ok := it.Value().(map[string]any); ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func statusOf(err error) int {
	if err != nil {
		return 0
	}
	return 200
}
