// Package booking holds the in-progress reservation state of a browsing session and
// the hand-off that carries a chosen listing to the booking page.
package booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

var (
	ErrInvalidGuests = errors.New("guests must be at least 1")
	ErrInvalidStep   = errors.New("step must not be negative")
	ErrInvalidDates  = errors.New("check-out must be after check-in")
	ErrInvalidPatch  = errors.New("invalid reservation patch")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Date is a calendar day, encoded as YYYY-MM-DD.
type Date struct{ time.Time }

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string { return d.Format(dateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("date must be a %q string", dateLayout)
	}
	p, err := ParseDate(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*d = p
	return nil
}

// Draft is the in-progress booking of one session.
type Draft struct {
	PropertyID *string `json:"propertyId"`
	CheckIn    *Date   `json:"checkIn"`
	CheckOut   *Date   `json:"checkOut"`
	Guests     int     `json:"guests"`
	Step       int     `json:"step"`
}

func NewDraft() Draft {
	return Draft{Guests: 1}
}

// Clear discards everything, whatever the current state.
func (d Draft) Clear() Draft { return NewDraft() }

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	PropertyID *string `json:"propertyId,omitempty" validate:"omitempty,min=1"`
	CheckIn    *string `json:"checkIn,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CheckOut   *string `json:"checkOut,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Guests     *int    `json:"guests,omitempty" validate:"omitempty,min=1"`
	Step       *int    `json:"step,omitempty" validate:"omitempty,min=0"`
}

// Start selects a property and moves to the first form step. Dates and guests are kept.
func (d Draft) Start(propertyID string) Draft {
	id := propertyID
	d.PropertyID = &id
	d.Step = 1
	return d
}

// Apply merges p into d. On error d is returned unchanged.
func (d Draft) Apply(p Patch) (Draft, error) {
	if err := validate.Struct(p); err != nil {
		return d, classify(err)
	}
	next := d
	if p.PropertyID != nil {
		id := *p.PropertyID
		next.PropertyID = &id
	}
	if p.CheckIn != nil {
		in, _ := ParseDate(*p.CheckIn)
		next.CheckIn = &in
	}
	if p.CheckOut != nil {
		out, _ := ParseDate(*p.CheckOut)
		next.CheckOut = &out
	}
	if p.Guests != nil {
		next.Guests = *p.Guests
	}
	if p.Step != nil {
		next.Step = *p.Step
	}
	if next.CheckIn != nil && next.CheckOut != nil && !next.CheckOut.After(next.CheckIn.Time) {
		return d, ErrInvalidDates
	}
	return next, nil
}

// Nights is the stay length, 0 until both dates are set.
func (d Draft) Nights() int {
	if d.CheckIn == nil || d.CheckOut == nil {
		return 0
	}
	return int(d.CheckOut.Sub(d.CheckIn.Time).Hours() / 24)
}

func classify(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidPatch, err)
	}
	switch verrs[0].Field() {
	case "Guests":
		return fmt.Errorf("%w: %w", ErrInvalidGuests, verrs)
	case "Step":
		return fmt.Errorf("%w: %w", ErrInvalidStep, verrs)
	case "CheckIn", "CheckOut":
		return fmt.Errorf("%w: %w", ErrInvalidDates, verrs)
	}
	return fmt.Errorf("%w: %w", ErrInvalidPatch, verrs)
}
