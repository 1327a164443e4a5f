package app

import (
	"context"
	"sync"

	"voyago/internal/domain"
)

// DetailState is the tri-state view of one detail lookup.
// At most one of Listing and Err is set; both are nil while Loading.
type DetailState struct {
	Listing *domain.Listing
	Loading bool
	Err     error
}

type ListingGetter interface {
	GetListing(ctx context.Context, c domain.Category, id string) (domain.Listing, error)
}

// Tracker holds the detail state for a (category, id) key that can change over time.
// Every Load bumps a generation; a fetch that settles after its generation has been
// superseded is discarded, and its context is cancelled as soon as it is superseded.
type Tracker struct {
	get ListingGetter

	mu       sync.Mutex
	gen      uint64
	cancel   context.CancelFunc
	category domain.Category
	id       string
	state    DetailState
}

func NewTracker(g ListingGetter) *Tracker {
	return &Tracker{get: g}
}

// Load re-keys the tracker and starts exactly one fetch for the new key.
// The returned channel is closed once that fetch has settled (or immediately when
// id is empty, in which case there is nothing to fetch).
func (t *Tracker) Load(ctx context.Context, c domain.Category, id string) <-chan struct{} {
	done := make(chan struct{})

	t.mu.Lock()
	t.gen++
	gen := t.gen
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.category, t.id = c, id
	if id == "" {
		t.state = DetailState{}
		t.mu.Unlock()
		close(done)
		return done
	}
	fctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.state = DetailState{Loading: true}
	t.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()

		l, err := t.get.GetListing(fctx, c, id)

		t.mu.Lock()
		defer t.mu.Unlock()
		if gen != t.gen {
			return
		}
		t.cancel = nil
		if err != nil {
			t.state = DetailState{Err: err}
			return
		}
		t.state = DetailState{Listing: &l}
	}()
	return done
}

func (t *Tracker) State() DetailState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Tracker) Key() (domain.Category, string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.category, t.id
}

// Stop cancels any in-flight fetch; its result will not be published.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	if t.state.Loading {
		t.state = DetailState{}
	}
}
