package domain

import "strings"

type Category string

const (
	CategoryHotel     Category = "hotel"
	CategoryApartment Category = "apartment"
	CategoryVilla     Category = "villa"
	CategoryCar       Category = "car"
	CategoryTour      Category = "tour"
	CategoryOther     Category = "other" // anything outside the closed set, served from the services table
)

// Categories is the closed set, in display order.
var Categories = []Category{CategoryHotel, CategoryApartment, CategoryVilla, CategoryCar, CategoryTour}

var categoryAliases = map[string]Category{
	"hotel":     CategoryHotel,
	"apartment": CategoryApartment,
	"villa":     CategoryVilla,
	"car":       CategoryCar,
	"tour":      CategoryTour,
	"circuit":   CategoryTour,
	"tourism":   CategoryTour,
}

// ParseCategory maps a raw category key to the closed set.
// Unknown keys come back as CategoryOther with ok=false.
func ParseCategory(s string) (Category, bool) {
	c, ok := categoryAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return CategoryOther, false
	}
	return c, true
}

// Table is the backend source table queried for the category.
func (c Category) Table() string {
	switch c {
	case CategoryHotel:
		return "hotels"
	case CategoryApartment:
		return "apartments"
	case CategoryVilla:
		return "villas"
	case CategoryCar:
		return "car_rentals"
	case CategoryTour:
		return "tours"
	default:
		return "services"
	}
}

// PathSegment is the front-end URL segment for listing/detail routes.
func (c Category) PathSegment() string {
	switch c {
	case CategoryApartment:
		return "appartements"
	case CategoryVilla:
		return "villas"
	case CategoryHotel:
		return "hotels"
	case CategoryCar:
		return "voitures"
	default:
		return "tourisme"
	}
}

// CategoryFromSegment reverses PathSegment. "tourisme" resolves to CategoryTour.
func CategoryFromSegment(seg string) (Category, bool) {
	switch strings.ToLower(seg) {
	case "appartements":
		return CategoryApartment, true
	case "villas":
		return CategoryVilla, true
	case "hotels":
		return CategoryHotel, true
	case "voitures":
		return CategoryCar, true
	case "tourisme":
		return CategoryTour, true
	}
	return CategoryOther, false
}

// HandoffType is the tag the booking page keys its form logic on.
// It must be reproduced verbatim.
func (c Category) HandoffType() string {
	switch c {
	case CategoryApartment:
		return "appartement"
	case CategoryCar:
		return "voiture"
	case CategoryTour:
		return "circuit"
	case CategoryHotel:
		return "hotel"
	case CategoryVilla:
		return "villa"
	default:
		return "service"
	}
}

func (c Category) String() string { return string(c) }
