package app

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"voyago/internal/domain"
)

/********** canonical precedence (shared by every category) **********/

var (
	titleFields = []string{"title", "name"}
	priceFields = []string{"price_per_night", "price_per_day", "price_per_person", "price"}
)

/********** category extras (never touch canonical fields) **********/

var detailAliases = map[domain.Category]map[string][]string{
	domain.CategoryHotel: {
		"stars":   {"stars", "rating.stars"},
		"address": {"address", "address.line"},
	},
	domain.CategoryApartment: {
		"bedrooms":  {"bedrooms", "rooms"},
		"bathrooms": {"bathrooms"},
		"surface":   {"surface", "area"},
	},
	domain.CategoryVilla: {
		"bedrooms": {"bedrooms", "rooms"},
		"capacity": {"capacity", "max_guests"},
		"pool":     {"pool", "has_pool"},
	},
	domain.CategoryCar: {
		"brand":        {"brand", "make"},
		"model":        {"model"},
		"transmission": {"transmission", "gearbox"},
		"fuel":         {"fuel_type", "fuel"},
		"seats":        {"seats"},
	},
	domain.CategoryTour: {
		"duration":  {"duration", "duration_days"},
		"departure": {"departure_city", "departure"},
	},
	domain.CategoryOther: {
		"type": {"type", "category"},
	},
}

// Normalize maps a raw backend row into the canonical Listing for its category.
// It is total: a missing or malformed field falls back to its default.
func Normalize(rec domain.Record, c domain.Category) domain.Listing {
	switch c {
	case domain.CategoryHotel:
		return mapHotel(rec)
	case domain.CategoryApartment:
		return mapApartment(rec)
	case domain.CategoryVilla:
		return mapVilla(rec)
	case domain.CategoryCar:
		return mapCar(rec)
	case domain.CategoryTour:
		return mapTour(rec)
	default:
		return mapService(rec)
	}
}

func mapHotel(rec domain.Record) domain.Listing {
	l := canonical(rec, domain.CategoryHotel)
	l.Details = details(rec, domain.CategoryHotel)
	if s, ok := l.Details["stars"].(float64); ok {
		l.Details["stars"] = int(s)
	}
	return l
}

func mapApartment(rec domain.Record) domain.Listing {
	l := canonical(rec, domain.CategoryApartment)
	l.Details = details(rec, domain.CategoryApartment)
	return l
}

func mapVilla(rec domain.Record) domain.Listing {
	l := canonical(rec, domain.CategoryVilla)
	l.Details = details(rec, domain.CategoryVilla)
	return l
}

func mapCar(rec domain.Record) domain.Listing {
	l := canonical(rec, domain.CategoryCar)
	l.Details = details(rec, domain.CategoryCar)
	return l
}

func mapTour(rec domain.Record) domain.Listing {
	l := canonical(rec, domain.CategoryTour)
	l.Details = details(rec, domain.CategoryTour)
	return l
}

func mapService(rec domain.Record) domain.Listing {
	l := canonical(rec, domain.CategoryOther)
	l.Details = details(rec, domain.CategoryOther)
	return l
}

func canonical(rec domain.Record, c domain.Category) domain.Listing {
	return domain.Listing{
		ID:          idString(rec["id"]),
		Title:       firstNonEmpty(rec, titleFields...),
		Description: lookupStr(rec, "description"),
		Price:       priceOf(rec),
		Images:      imagesOf(rec),
		City:        lookupStr(rec, "city"),
		Category:    c,
	}
}

/********** field rules **********/

// priceOf takes the first present (non-nil) price field and coerces it.
// A present-but-unusable value yields 0; later fields are not consulted.
func priceOf(rec domain.Record) float64 {
	for _, k := range priceFields {
		v, ok := rec[k]
		if !ok || v == nil {
			continue
		}
		f, ok := toFloat(v)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
			return 0
		}
		return f
	}
	return 0
}

func imagesOf(rec domain.Record) []string {
	switch arr := rec["images"].(type) {
	case []string:
		out := make([]string, 0, len(arr))
		for _, s := range arr {
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		return sliceStrings(arr)
	}
	if s, ok := rec["image"].(string); ok && s != "" {
		return []string{s}
	}
	return []string{}
}

func details(rec domain.Record, c domain.Category) map[string]any {
	aliases := detailAliases[c]
	if len(aliases) == 0 {
		return nil
	}
	out := make(map[string]any, len(aliases))
	for key, paths := range aliases {
		for _, p := range paths {
			v := lookupAny(rec, p)
			if v == nil {
				continue
			}
			if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
				continue
			}
			out[key] = v
			break
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func firstNonEmpty(m map[string]any, paths ...string) string {
	for _, p := range paths {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

// toFloat: number from float/int/json.Number/string like "1 200,50".
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case []byte:
		return toFloat(string(t))
	case string:
		s := strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", ",", ".").Replace(strings.TrimSpace(t))
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

func idString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	}
	return ""
}

// sliceStrings: accept []any with either strings or {url/src}.
func sliceStrings(raw []any) []string {
	out := make([]string, 0, len(raw))
	for _, it := range raw {
		switch t := it.(type) {
		case string:
			if t != "" {
				out = append(out, t)
			}
		case map[string]any:
			if u, ok := t["url"].(string); ok && u != "" {
				out = append(out, u)
				continue
			}
			if u, ok := t["src"].(string); ok && u != "" {
				out = append(out, u)
			}
		}
	}
	return out
}
