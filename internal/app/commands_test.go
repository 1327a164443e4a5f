package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"voyago/internal/app"
	"voyago/internal/domain"
)

func TestWarmCategory_FillsDetailCache(t *testing.T) {
	src := &fakeSource{rows: map[string][]domain.Record{
		"hotels": {
			{"id": "1", "name": "Riad"},
			{"title": "no id"},
			{"id": "2", "name": "Kasbah"},
		},
	}}
	cache := &fakeCache{}
	w := app.NewWarmService(src, cache, time.Minute)

	n, err := w.WarmCategory(context.Background(), domain.CategoryHotel, 10)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 warmed, got %d", n)
	}

	// a warmed entry is served without touching the backend
	q := app.NewListingService(src, cache, time.Minute)
	l, err := q.GetListing(context.Background(), domain.CategoryHotel, "2")
	if err != nil || l.Title != "Kasbah" {
		t.Fatalf("expected cached Kasbah, got %+v err=%v", l, err)
	}
	if src.fetches != 0 {
		t.Fatalf("expected no backend fetch, got %d", src.fetches)
	}
}

func TestWarmAll_ContinuesPastFailures(t *testing.T) {
	src := &fakeSource{
		rows: map[string][]domain.Record{
			"villas": {{"id": "v1"}},
			"tours":  {{"id": "t1"}},
		},
		errs: map[string]error{"car_rentals": errors.New("down")},
	}
	cache := &fakeCache{}
	w := app.NewWarmService(src, cache, time.Minute)

	err := w.WarmAll(context.Background(), 2, 5)
	var be *domain.BackendError
	if !errors.As(err, &be) || be.Table != "car_rentals" {
		t.Fatalf("expected car_rentals backend error, got %v", err)
	}
	if _, ok := cache.store["listing:villa:v1"]; !ok {
		t.Fatalf("villa not warmed: %v", cache.store)
	}
	if _, ok := cache.store["listing:tour:t1"]; !ok {
		t.Fatalf("tour not warmed: %v", cache.store)
	}
}

func TestInvalidate(t *testing.T) {
	cache := &fakeCache{store: map[string]any{"listing:car:7": domain.Listing{ID: "7"}}}
	w := app.NewWarmService(&fakeSource{}, cache, time.Minute)

	if err := w.Invalidate(context.Background(), domain.CategoryCar, "7"); err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(cache.dels) != 1 || cache.dels[0] != "listing:car:7" {
		t.Fatalf("dels: %v", cache.dels)
	}
	if _, ok := cache.store["listing:car:7"]; ok {
		t.Fatalf("entry still cached")
	}
}
