//go:build integration

package sqlstore_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"voyago/internal/app"
	"voyago/internal/domain"
	"voyago/internal/storage/sqlstore"
)

func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "..", "migrations", "mysql")
}

func applyMigrations(t *testing.T, db *sqlx.DB) {
	t.Helper()
	dir := migrationsDir()

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir %s: %v", dir, err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(b)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// startMySQL runs a throwaway MySQL with the listing schema applied.
func startMySQL(t *testing.T) *sqlx.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=voyago",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/voyago?parseTime=true&multiStatements=true&charset=utf8mb4&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sqlx.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sqlx.Connect("mysql", dsn)
		return e
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

func TestStore_MySQL_FetchAndQuery(t *testing.T) {
	db := startMySQL(t)
	ctx := context.Background()

	db.MustExec(`INSERT INTO villas (id, title, city, bedrooms, has_pool, price_per_night, images)
		VALUES ('v1', 'Villa Azur', 'Marrakech', 4, TRUE, 1200.00, '["a.jpg","b.jpg"]'),
		       ('v2', 'Villa Palmeraie', 'Marrakech', 6, FALSE, 2500.00, NULL),
		       ('v3', 'Villa Ocean', 'Essaouira', 3, TRUE, NULL, '[]')`)

	store := sqlstore.New(db)

	rows, err := store.FetchByID(ctx, "villas", "v1")
	if err != nil {
		t.Fatalf("FetchByID: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	l := app.Normalize(rows[0], domain.CategoryVilla)
	if l.Title != "Villa Azur" || l.Price != 1200 || len(l.Images) != 2 {
		t.Fatalf("unexpected listing: %+v", l)
	}

	none, err := store.FetchByID(ctx, "villas", "nope")
	if err != nil || len(none) != 0 {
		t.Fatalf("expected zero rows, got %v err=%v", none, err)
	}

	list, err := store.Query(ctx, "villas", domain.Filter{Eq: map[string]string{"city": "Marrakech"}, OrderBy: "-price_per_night", Limit: 10})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 Marrakech villas, got %d", len(list))
	}
	if first := app.Normalize(list[0], domain.CategoryVilla); first.ID != "v2" {
		t.Fatalf("expected most expensive first, got %s", first.ID)
	}

	ocean := app.Normalize(mustOne(t, store, "v3"), domain.CategoryVilla)
	if ocean.Price != 0 || ocean.Images == nil || len(ocean.Images) != 0 {
		t.Fatalf("defaults not applied: %+v", ocean)
	}
}

func mustOne(t *testing.T, s *sqlstore.Store, id string) domain.Record {
	t.Helper()
	rows, err := s.FetchByID(context.Background(), "villas", id)
	if err != nil || len(rows) != 1 {
		t.Fatalf("fetch %s: %v (%d rows)", id, err, len(rows))
	}
	return rows[0]
}
