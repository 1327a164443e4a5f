// Package catalog turns normalized listings into the card views the marketplace renders.
package catalog

import (
	"errors"
	"fmt"

	"voyago/internal/app"
	"voyago/internal/domain"
)

type State string

const (
	StateLoading State = "loading"
	StateError   State = "error"
	StateEmpty   State = "empty"
	StateReady   State = "ready"
)

const (
	msgLoading = "Chargement..."
	msgEmpty   = "Aucune annonce disponible pour le moment"
	msgFailed  = "Impossible de charger les annonces"
)

// View is exactly one of the four states. Cards is only populated when ready.
type View struct {
	State   State  `json:"state"`
	Message string `json:"message,omitempty"`
	Cards   []Card `json:"cards,omitempty"`
}

// Carousel is the image position of one card.
type Carousel struct {
	Index int `json:"index"`
	Count int `json:"count"`
}

// Next wraps from the last image to the first.
func (c Carousel) Next() Carousel {
	if c.Count <= 1 {
		return Carousel{Count: c.Count}
	}
	return Carousel{Index: (c.Index + 1) % c.Count, Count: c.Count}
}

// Prev wraps from the first image to the last.
func (c Carousel) Prev() Carousel {
	if c.Count <= 1 {
		return Carousel{Count: c.Count}
	}
	return Carousel{Index: (c.Index - 1 + c.Count) % c.Count, Count: c.Count}
}

// At clamps an arbitrary index into range.
func (c Carousel) At(i int) Carousel {
	if c.Count <= 1 || i < 0 {
		return Carousel{Count: c.Count}
	}
	return Carousel{Index: i % c.Count, Count: c.Count}
}

type Card struct {
	ID          string          `json:"id"`
	Category    domain.Category `json:"category"`
	Title       string          `json:"title"`
	City        string          `json:"city,omitempty"`
	Images      []string        `json:"images"`
	Image       string          `json:"image,omitempty"`
	Price       float64         `json:"price"`
	PriceLabel  string          `json:"price_label"`
	DetailPath  string          `json:"detail_path"`
	ReservePath string          `json:"reserve_path"`
	Carousel    Carousel        `json:"carousel"`
}

func DetailPath(c domain.Category, id string) string {
	return fmt.Sprintf("/%s/%s", c.PathSegment(), id)
}

func ReservePath(c domain.Category, id string) string {
	return DetailPath(c, id) + "/reserver"
}

func NewCard(l domain.Listing, f *Formatter) Card {
	images := l.Images
	if images == nil {
		images = []string{}
	}
	card := Card{
		ID:          l.ID,
		Category:    l.Category,
		Title:       l.Title,
		City:        l.City,
		Images:      images,
		Price:       l.Price,
		PriceLabel:  f.Label(l.Price),
		DetailPath:  DetailPath(l.Category, l.ID),
		ReservePath: ReservePath(l.Category, l.ID),
		Carousel:    Carousel{Count: len(images)},
	}
	card.syncImage()
	return card
}

// Show moves the card's carousel and updates the visible image.
func (c *Card) Show(pos Carousel) {
	c.Carousel = pos
	c.syncImage()
}

func (c *Card) syncImage() {
	c.Image = ""
	if c.Carousel.Count > 0 {
		c.Image = c.Images[c.Carousel.Index]
	}
}

// Render picks the view state with precedence loading > error > empty > ready.
func Render(listings []domain.Listing, loading bool, err error, f *Formatter) View {
	switch {
	case loading:
		return View{State: StateLoading, Message: msgLoading}
	case err != nil:
		return View{State: StateError, Message: ErrorMessage(err)}
	case len(listings) == 0:
		return View{State: StateEmpty, Message: msgEmpty}
	}
	cards := make([]Card, 0, len(listings))
	for _, l := range listings {
		cards = append(cards, NewCard(l, f))
	}
	return View{State: StateReady, Cards: cards}
}

// ErrorMessage is the user-facing text for a load failure. Not-found keeps its
// category-specific message; anything else is reported generically.
func ErrorMessage(err error) string {
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return nf.Error()
	}
	return msgFailed
}

// FromRecords normalizes raw rows that may mix types. A row's own type or category
// column wins; otherwise propertyType applies to it.
func FromRecords(records []domain.Record, propertyType string) []domain.Listing {
	fallback, _ := domain.ParseCategory(propertyType)
	out := make([]domain.Listing, 0, len(records))
	for _, r := range records {
		c := fallback
		for _, k := range []string{"type", "category"} {
			if s, ok := r[k].(string); ok {
				if own, ok := domain.ParseCategory(s); ok {
					c = own
					break
				}
			}
		}
		out = append(out, app.Normalize(r, c))
	}
	return out
}
