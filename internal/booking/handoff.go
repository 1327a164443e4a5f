package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"voyago/internal/app"
	"voyago/internal/catalog"
	"voyago/internal/domain"
)

// Service is the booking-relevant subset of a listing. Type is the booking page's
// form tag (appartement, voiture, circuit, ...), not the category key.
type Service struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Images      []string `json:"images"`
	Type        string   `json:"type"`
}

type Payload struct {
	Service Service `json:"service"`
}

func NewPayload(l domain.Listing) Payload {
	images := l.Images
	if images == nil {
		images = []string{}
	}
	return Payload{Service: Service{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Images:      images,
		Type:        l.Category.HandoffType(),
	}}
}

// Navigation is the result of a reserve action: where to go and the state to carry.
// Token is empty when the payload could not be stored; the booking page then
// rebuilds it from the id.
type Navigation struct {
	Path    string  `json:"path"`
	Token   string  `json:"token,omitempty"`
	Payload Payload `json:"state"`
}

type Handoff struct {
	store  domain.HandoffStore
	loader app.ListingGetter
	ttl    time.Duration
}

func NewHandoff(store domain.HandoffStore, loader app.ListingGetter, ttl time.Duration) *Handoff {
	return &Handoff{store: store, loader: loader, ttl: ttl}
}

// Reserve packages l for the booking page. A nil listing (not loaded yet) is a no-op:
// ok is false and nothing is stored.
func (h *Handoff) Reserve(ctx context.Context, l *domain.Listing) (Navigation, bool, error) {
	if l == nil {
		return Navigation{}, false, nil
	}
	nav := Navigation{
		Path:    catalog.ReservePath(l.Category, l.ID),
		Payload: NewPayload(*l),
	}
	if h.store == nil {
		return nav, true, nil
	}
	token := uuid.NewString()
	if err := h.store.Put(ctx, token, nav.Payload, h.ttl); err != nil {
		log.Warn().Err(err).Str("id", l.ID).Msg("handoff store failed; booking page will reload the listing")
		return nav, true, nil
	}
	nav.Token = token
	return nav, true, nil
}

// Resolved is the booking page's view of the listing being reserved.
type Resolved struct {
	Payload     Payload `json:"state"`
	FromHandoff bool    `json:"from_handoff"`
}

// Resolve returns the payload for (c, id). A stored hand-off for the same listing is
// used when present; a missing, expired or mismatched token falls back to loading the
// listing, so direct links and refreshes behave the same as a hand-off.
func (h *Handoff) Resolve(ctx context.Context, c domain.Category, id, token string) (Resolved, error) {
	if token != "" && h.store != nil {
		var p Payload
		ok, err := h.store.Take(ctx, token, &p)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("id", id).Msg("handoff lookup failed")
		case ok && p.Service.ID == id && p.Service.Type == c.HandoffType():
			return Resolved{Payload: p, FromHandoff: true}, nil
		case ok:
			log.Warn().Str("id", id).Str("handoff_id", p.Service.ID).Msg("handoff token does not match listing")
		}
	}

	l, err := h.loader.GetListing(ctx, c, id)
	if err != nil {
		return Resolved{}, err
	}
	return Resolved{Payload: NewPayload(l)}, nil
}
