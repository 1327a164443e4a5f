// Package sqlstore serves listing rows from a MySQL or Postgres database as an
// alternative to the hosted Supabase backend.
package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"voyago/internal/adapters/observability"
	"voyago/internal/domain"
)

// identifiers are interpolated into SQL, so they are restricted to plain names
var ident = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type Store struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

// Connect opens and pings the database. driver is "mysql" or "postgres".
func Connect(ctx context.Context, driver, dsn string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return New(db), nil
}

func New(db *sqlx.DB) *Store {
	sb := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if db.DriverName() == "postgres" {
		sb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return &Store{db: db, sb: sb}
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) FetchByID(ctx context.Context, table, id string) ([]domain.Record, error) {
	if !ident.MatchString(table) {
		return nil, fmt.Errorf("sqlstore: invalid table %q", table)
	}
	query, args, err := s.sb.Select("*").From(table).Where(sq.Eq{"id": id}).Limit(2).ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlstore: build query: %w", err)
	}
	return s.run(ctx, table+".by_id", query, args)
}

func (s *Store) Query(ctx context.Context, table string, f domain.Filter) ([]domain.Record, error) {
	if !ident.MatchString(table) {
		return nil, fmt.Errorf("sqlstore: invalid table %q", table)
	}
	b := s.sb.Select("*").From(table)
	if len(f.Eq) > 0 {
		eq := sq.Eq{}
		for col, v := range f.Eq {
			if !ident.MatchString(col) {
				return nil, fmt.Errorf("sqlstore: invalid column %q", col)
			}
			eq[col] = v
		}
		b = b.Where(eq)
	}
	if f.OrderBy != "" {
		col, dir := strings.TrimPrefix(f.OrderBy, "-"), "ASC"
		if strings.HasPrefix(f.OrderBy, "-") {
			dir = "DESC"
		}
		if !ident.MatchString(col) {
			return nil, fmt.Errorf("sqlstore: invalid order column %q", col)
		}
		b = b.OrderBy(col + " " + dir)
	}
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlstore: build query: %w", err)
	}
	return s.run(ctx, table+".query", query, args)
}

func (s *Store) run(ctx context.Context, endpoint, query string, args []any) ([]domain.Record, error) {
	start := time.Now()
	out, err := s.scan(ctx, query, args)
	status := 200
	if err != nil {
		status = 0
	}
	observability.ObserveExternal(s.db.DriverName(), endpoint, status, time.Since(start))
	return out, err
}

func (s *Store) scan(ctx context.Context, query string, args []any) ([]domain.Record, error) {
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		m := map[string]any{}
		if err := rows.MapScan(m); err != nil {
			return nil, err
		}
		for k, v := range m {
			m[k] = columnValue(v)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// columnValue makes driver values look like decoded JSON: text columns come back as
// strings and JSON array/object columns as []any / map[string]any.
func columnValue(v any) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	t := strings.TrimSpace(string(b))
	if len(t) > 0 && (t[0] == '[' || t[0] == '{') && json.Valid(b) {
		var decoded any
		if err := json.Unmarshal(b, &decoded); err == nil {
			return decoded
		}
	}
	return string(b)
}
