package app_test

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"

	"voyago/internal/app"
	"voyago/internal/domain"
)

func TestNormalize_TotalOnEmptyRecords(t *testing.T) {
	all := append([]domain.Category{domain.CategoryOther}, domain.Categories...)
	for _, c := range all {
		for _, rec := range []domain.Record{nil, {}, {"unrelated": true}} {
			l := app.Normalize(rec, c)
			if l.Images == nil {
				t.Fatalf("%s: images must never be nil", c)
			}
			if len(l.Images) != 0 {
				t.Fatalf("%s: expected no images, got %v", c, l.Images)
			}
			if l.Price != 0 {
				t.Fatalf("%s: expected price 0, got %v", c, l.Price)
			}
			if l.Title != "" || l.Description != "" || l.City != "" {
				t.Fatalf("%s: expected empty strings, got %+v", c, l)
			}
			if l.Category != c {
				t.Fatalf("category: got %s want %s", l.Category, c)
			}
		}
	}
}

func TestNormalize_TitlePrecedence(t *testing.T) {
	cases := []struct {
		rec  domain.Record
		want string
	}{
		{domain.Record{"title": "A", "name": "B"}, "A"},
		{domain.Record{"name": "B"}, "B"},
		{domain.Record{"title": "", "name": "B"}, "B"},
		{domain.Record{}, ""},
	}
	for _, c := range domain.Categories {
		for _, tc := range cases {
			if got := app.Normalize(tc.rec, c).Title; got != tc.want {
				t.Errorf("%s %v: title=%q want %q", c, tc.rec, got, tc.want)
			}
		}
	}
}

func TestNormalize_PricePrecedence(t *testing.T) {
	cases := []struct {
		name string
		rec  domain.Record
		want float64
	}{
		{"night wins over price", domain.Record{"price_per_night": 500.0, "price": 100.0}, 500},
		{"day before person", domain.Record{"price_per_day": 300.0, "price_per_person": 80.0}, 300},
		{"person before price", domain.Record{"price_per_person": 80.0, "price": 10.0}, 80},
		{"generic price", domain.Record{"price": 42.5}, 42.5},
		{"nil is skipped", domain.Record{"price_per_night": nil, "price_per_day": 250.0}, 250},
		{"numeric string", domain.Record{"price": "1 200,50"}, 1200.5},
		{"json number", domain.Record{"price": json.Number("99")}, 99},
		{"int", domain.Record{"price_per_day": 70}, 70},
		{"negative collapses", domain.Record{"price": -5.0}, 0},
		{"garbage collapses", domain.Record{"price_per_night": "call us", "price": 100.0}, 0},
		{"nan collapses", domain.Record{"price": math.NaN()}, 0},
		{"inf collapses", domain.Record{"price": math.Inf(1)}, 0},
		{"missing", domain.Record{}, 0},
	}
	for _, tc := range cases {
		for _, c := range domain.Categories {
			got := app.Normalize(tc.rec, c).Price
			if got != tc.want {
				t.Errorf("%s/%s: price=%v want %v", tc.name, c, got, tc.want)
			}
			if math.IsNaN(got) || math.IsInf(got, 0) || got < 0 {
				t.Errorf("%s/%s: price must be finite and >= 0, got %v", tc.name, c, got)
			}
		}
	}
}

func TestNormalize_ImageFallback(t *testing.T) {
	cases := []struct {
		name string
		rec  domain.Record
		want []string
	}{
		{"legacy scalar", domain.Record{"image": "x.jpg"}, []string{"x.jpg"}},
		{"array wins", domain.Record{"images": []any{"a.jpg", "b.jpg"}, "image": "x.jpg"}, []string{"a.jpg", "b.jpg"}},
		{"empty array still wins", domain.Record{"images": []any{}, "image": "x.jpg"}, []string{}},
		{"typed array", domain.Record{"images": []string{"a.jpg", ""}}, []string{"a.jpg"}},
		{"objects with url", domain.Record{"images": []any{map[string]any{"url": "u.jpg"}, map[string]any{"src": "s.jpg"}, 3.0}}, []string{"u.jpg", "s.jpg"}},
		{"non array images ignored", domain.Record{"images": "a.jpg", "image": "x.jpg"}, []string{"x.jpg"}},
		{"empty scalar", domain.Record{"image": ""}, []string{}},
		{"neither", domain.Record{}, []string{}},
	}
	for _, tc := range cases {
		got := app.Normalize(tc.rec, domain.CategoryVilla).Images
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%s: images=%v want %v", tc.name, got, tc.want)
		}
	}
}

func TestNormalize_IDAndCopyFields(t *testing.T) {
	l := app.Normalize(domain.Record{
		"id":          17.0,
		"name":        "Riad Yasmine",
		"description": "Patio and rooftop",
		"city":        "Marrakech",
	}, domain.CategoryHotel)
	if l.ID != "17" || l.Title != "Riad Yasmine" || l.Description != "Patio and rooftop" || l.City != "Marrakech" {
		t.Fatalf("unexpected listing: %+v", l)
	}
	if got := app.Normalize(domain.Record{"id": "a1b2"}, domain.CategoryCar).ID; got != "a1b2" {
		t.Fatalf("string id: %q", got)
	}
}

func TestNormalize_CategoryDetails(t *testing.T) {
	hotel := app.Normalize(domain.Record{"stars": 4.0, "address": "Rue 1"}, domain.CategoryHotel)
	if hotel.Details["stars"] != 4 || hotel.Details["address"] != "Rue 1" {
		t.Fatalf("hotel details: %+v", hotel.Details)
	}

	car := app.Normalize(domain.Record{"make": "Dacia", "model": "Logan", "seats": 5.0, "transmission": ""}, domain.CategoryCar)
	if car.Details["brand"] != "Dacia" || car.Details["model"] != "Logan" || car.Details["seats"] != 5.0 {
		t.Fatalf("car details: %+v", car.Details)
	}
	if _, ok := car.Details["transmission"]; ok {
		t.Fatalf("blank transmission must be dropped")
	}

	tour := app.Normalize(domain.Record{"duration_days": 3.0, "departure_city": "Fès"}, domain.CategoryTour)
	if tour.Details["duration"] != 3.0 || tour.Details["departure"] != "Fès" {
		t.Fatalf("tour details: %+v", tour.Details)
	}

	villa := app.Normalize(domain.Record{"has_pool": true, "rooms": 5.0}, domain.CategoryVilla)
	if villa.Details["pool"] != true || villa.Details["bedrooms"] != 5.0 {
		t.Fatalf("villa details: %+v", villa.Details)
	}

	apt := app.Normalize(domain.Record{"area": 80.0}, domain.CategoryApartment)
	if apt.Details["surface"] != 80.0 {
		t.Fatalf("apartment details: %+v", apt.Details)
	}

	if bare := app.Normalize(domain.Record{"title": "x"}, domain.CategoryCar); bare.Details != nil {
		t.Fatalf("no extras should leave details nil, got %+v", bare.Details)
	}
}

func TestNormalize_DetailsDoNotAffectCanonical(t *testing.T) {
	rec := domain.Record{"title": "Villa Azur", "price_per_night": 1200.0, "rooms": 4.0, "price": 1.0}
	l := app.Normalize(rec, domain.CategoryVilla)
	if l.Title != "Villa Azur" || l.Price != 1200 {
		t.Fatalf("canonical fields changed: %+v", l)
	}
}
