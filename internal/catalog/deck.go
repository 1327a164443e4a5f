package catalog

import "voyago/internal/domain"

// Deck is a rendered list with its interactions. Opening a card navigates to the
// detail route; reserving hands the listing to OnReserve and never navigates.
type Deck struct {
	Cards     []Card
	listings  []domain.Listing
	OnReserve func(domain.Listing)
}

func NewDeck(listings []domain.Listing, f *Formatter, onReserve func(domain.Listing)) *Deck {
	d := &Deck{listings: listings, OnReserve: onReserve}
	for _, l := range listings {
		d.Cards = append(d.Cards, NewCard(l, f))
	}
	return d
}

// Open returns the detail route for card i.
func (d *Deck) Open(i int) (string, bool) {
	if i < 0 || i >= len(d.Cards) {
		return "", false
	}
	return d.Cards[i].DetailPath, true
}

// Reserve invokes the callback for card i and reports whether it ran.
func (d *Deck) Reserve(i int) bool {
	if i < 0 || i >= len(d.listings) || d.OnReserve == nil {
		return false
	}
	d.OnReserve(d.listings[i])
	return true
}

func (d *Deck) Next(i int) {
	if i >= 0 && i < len(d.Cards) {
		d.Cards[i].Show(d.Cards[i].Carousel.Next())
	}
}

func (d *Deck) Prev(i int) {
	if i >= 0 && i < len(d.Cards) {
		d.Cards[i].Show(d.Cards[i].Carousel.Prev())
	}
}
