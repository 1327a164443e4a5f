package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"voyago/internal/app"
	"voyago/internal/domain"
)

type gatedGetter struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
	calls map[string]int
	errs  map[string]error
	ctxs  map[string]context.Context
}

func newGatedGetter() *gatedGetter {
	return &gatedGetter{
		gates: map[string]chan struct{}{},
		calls: map[string]int{},
		errs:  map[string]error{},
		ctxs:  map[string]context.Context{},
	}
}

func (g *gatedGetter) gate(id string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[id]
	if !ok {
		ch = make(chan struct{})
		g.gates[id] = ch
	}
	return ch
}

func (g *gatedGetter) GetListing(ctx context.Context, c domain.Category, id string) (domain.Listing, error) {
	g.mu.Lock()
	g.calls[id]++
	g.ctxs[id] = ctx
	err := g.errs[id]
	g.mu.Unlock()

	<-g.gate(id)
	if err != nil {
		return domain.Listing{}, err
	}
	return domain.Listing{ID: id, Title: "listing " + id, Category: c, Images: []string{}}, nil
}

func (g *gatedGetter) callCount(id string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[id]
}

func waitSettled(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("fetch did not settle")
	}
}

func TestTracker_EmptyIDSettlesImmediately(t *testing.T) {
	tr := app.NewTracker(newGatedGetter())
	waitSettled(t, tr.Load(context.Background(), domain.CategoryHotel, ""))

	st := tr.State()
	if st.Loading || st.Err != nil || st.Listing != nil {
		t.Fatalf("expected empty state, got %+v", st)
	}
}

func TestTracker_LoadingThenReady(t *testing.T) {
	g := newGatedGetter()
	tr := app.NewTracker(g)

	done := tr.Load(context.Background(), domain.CategoryVilla, "1")
	if st := tr.State(); !st.Loading || st.Listing != nil || st.Err != nil {
		t.Fatalf("expected loading, got %+v", st)
	}
	close(g.gate("1"))
	waitSettled(t, done)

	st := tr.State()
	if st.Loading || st.Err != nil || st.Listing == nil || st.Listing.ID != "1" {
		t.Fatalf("expected ready state, got %+v", st)
	}
	if g.callCount("1") != 1 {
		t.Fatalf("expected exactly one fetch, got %d", g.callCount("1"))
	}
}

func TestTracker_ErrorState(t *testing.T) {
	g := newGatedGetter()
	g.errs["9"] = &domain.NotFoundError{Category: domain.CategoryCar, ID: "9"}
	tr := app.NewTracker(g)

	done := tr.Load(context.Background(), domain.CategoryCar, "9")
	close(g.gate("9"))
	waitSettled(t, done)

	st := tr.State()
	if st.Loading || st.Listing != nil || !errors.Is(st.Err, domain.ErrNotFound) {
		t.Fatalf("expected not-found error state, got %+v", st)
	}
}

func TestTracker_StaleResultIsDiscarded(t *testing.T) {
	g := newGatedGetter()
	tr := app.NewTracker(g)

	first := tr.Load(context.Background(), domain.CategoryHotel, "A")
	second := tr.Load(context.Background(), domain.CategoryHotel, "B")

	// B settles before A
	close(g.gate("B"))
	waitSettled(t, second)
	close(g.gate("A"))
	waitSettled(t, first)

	st := tr.State()
	if st.Listing == nil || st.Listing.ID != "B" {
		t.Fatalf("expected B to win, got %+v", st)
	}
	if _, id := tr.Key(); id != "B" {
		t.Fatalf("key: %q", id)
	}
}

func TestTracker_SupersededFetchIsCancelled(t *testing.T) {
	g := newGatedGetter()
	tr := app.NewTracker(g)

	first := tr.Load(context.Background(), domain.CategoryTour, "A")
	// wait until the fetch for A has actually started
	deadline := time.Now().Add(2 * time.Second)
	for g.callCount("A") == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	tr.Load(context.Background(), domain.CategoryTour, "")

	g.mu.Lock()
	ctxA := g.ctxs["A"]
	g.mu.Unlock()
	select {
	case <-ctxA.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("superseded fetch context was not cancelled")
	}

	close(g.gate("A"))
	waitSettled(t, first)
	if st := tr.State(); st.Listing != nil || st.Loading {
		t.Fatalf("superseded result leaked into state: %+v", st)
	}
}

func TestTracker_StopDropsInFlight(t *testing.T) {
	g := newGatedGetter()
	tr := app.NewTracker(g)

	done := tr.Load(context.Background(), domain.CategoryHotel, "X")
	tr.Stop()
	close(g.gate("X"))
	waitSettled(t, done)

	if st := tr.State(); st.Listing != nil || st.Loading || st.Err != nil {
		t.Fatalf("expected empty state after Stop, got %+v", st)
	}
}
