package booking

import (
	"context"
	"sync"
	"time"

	"voyago/internal/app"
	"voyago/internal/domain"
)

// Session is one visitor's reservation context: the draft plus the detail state of
// the property it points at.
type Session struct {
	ID string

	mu       sync.Mutex
	draft    Draft
	category domain.Category
	tracker  *app.Tracker
	lastSeen time.Time
}

type Snapshot struct {
	ID       string
	Draft    Draft
	Category domain.Category
	Property app.DetailState
}

func newSession(id string, g app.ListingGetter, now time.Time) *Session {
	return &Session{ID: id, draft: NewDraft(), tracker: app.NewTracker(g), lastSeen: now}
}

// Start begins a reservation for (c, propertyID) and prefetches the listing.
// The returned channel closes when the prefetch settles. The fetch outlives ctx's
// cancellation so that a request ending does not abort it.
// The tracker is re-keyed under s.mu so that it always follows the latest draft.
func (s *Session) Start(ctx context.Context, c domain.Category, propertyID string) (Draft, <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = s.draft.Start(propertyID)
	s.category = c
	return s.draft, s.tracker.Load(context.WithoutCancel(ctx), c, propertyID)
}

// Update applies a patch. Switching propertyId re-keys the property fetch once a
// category is known; before any Start only the draft changes.
func (s *Session) Update(ctx context.Context, p Patch) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.draft.PropertyID
	next, err := s.draft.Apply(p)
	if err != nil {
		return s.draft, err
	}
	s.draft = next

	if s.category != "" && next.PropertyID != nil && (prev == nil || *prev != *next.PropertyID) {
		s.tracker.Load(context.WithoutCancel(ctx), s.category, *next.PropertyID)
	}
	return next, nil
}

// Clear resets the draft and drops the property state.
func (s *Session) Clear() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = s.draft.Clear()
	s.category = ""
	s.tracker.Load(context.Background(), domain.CategoryOther, "")
	return s.draft
}

func (s *Session) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{ID: s.ID, Draft: s.draft, Category: s.category}
	s.mu.Unlock()
	snap.Property = s.tracker.State()
	return snap
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) close() { s.tracker.Stop() }
