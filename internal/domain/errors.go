package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidCategory = errors.New("invalid category")
)

// NotFoundError means the backend answered but had no row for the id.
type NotFoundError struct {
	Category Category
	ID       string
}

func (e *NotFoundError) Error() string {
	switch e.Category {
	case CategoryHotel:
		return "hotel not found"
	case CategoryApartment:
		return "apartment not found"
	case CategoryVilla:
		return "villa not found"
	case CategoryCar:
		return "car not found"
	case CategoryTour:
		return "tour not found"
	default:
		return "property not found"
	}
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// BackendError wraps a transport, permission or query failure from the listing source.
type BackendError struct {
	Table string
	Err   error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend query on %s failed: %v", e.Table, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
