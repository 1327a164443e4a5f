package domain

// Record is one raw backend row, keyed by column name.
type Record = map[string]any

// Listing is the canonical shape every category normalizes into.
type Listing struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`  // always finite and >= 0
	Images      []string       `json:"images"` // never nil
	City        string         `json:"city"`
	Category    Category       `json:"category"`
	Details     map[string]any `json:"details,omitempty"` // category-specific extras
}

type Filter struct {
	Eq      map[string]string
	OrderBy string // column, "-" prefix for descending
	Limit   int
}
