package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"voyago/internal/app"
	"voyago/internal/booking"
	"voyago/internal/catalog"
	"voyago/internal/domain"
	"voyago/internal/payment"
)

const (
	defaultListLimit = 24
	maxListLimit     = 100
)

type Handlers struct {
	Listings *app.ListingService
	Handoff  *booking.Handoff
	Sessions *booking.Registry
	Payments *payment.Bridge
	Prices   *catalog.Formatter
	// FeaturedPerCategory caps each category on the featured view.
	FeaturedPerCategory int
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Get("/v1/listings", h.featured)
	s.mux.Get("/v1/listings/{category}", h.listCategory)
	s.mux.Get("/v1/listings/{category}/{id}", h.getListing)
	s.mux.Get("/v1/listings/{category}/{id}/carousel", h.carousel)
	s.mux.Post("/v1/listings/{category}/{id}/reserve", h.reserve)
	s.mux.Get("/v1/booking/{segment}/{id}", h.bookingContext)

	s.mux.Get("/v1/reservation", h.getReservation)
	s.mux.Post("/v1/reservation/start", h.startReservation)
	s.mux.Patch("/v1/reservation", h.updateReservation)
	s.mux.Delete("/v1/reservation", h.clearReservation)

	// any method reaches the handler so that it can answer 405 in its own format
	s.mux.HandleFunc("/api/create-payment-intent", h.createPaymentIntent)
	s.mux.HandleFunc("/v1/payments/intents", h.createPaymentIntent)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write cached body")
	}
}

// statusFor maps loader errors onto HTTP statuses.
func statusFor(err error) int {
	var nf *domain.NotFoundError
	switch {
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidCategory):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func writeLoadError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	title, detail := "Backend Error", catalog.ErrorMessage(err)
	switch status {
	case http.StatusNotFound:
		title = "Not Found"
	case http.StatusBadRequest:
		title, detail = "Invalid Category", "unknown category path segment"
	case http.StatusGatewayTimeout:
		title = "Timeout"
	}
	writeProblem(w, status, title, detail)
}

func categoryParam(r *http.Request) domain.Category {
	// unknown keys fall back to the generic services table
	c, _ := domain.ParseCategory(chi.URLParam(r, "category"))
	return c
}

type featuredResponse map[domain.Category]catalog.View

func (h *Handlers) featured(w http.ResponseWriter, r *http.Request) {
	per := h.FeaturedPerCategory
	if per <= 0 {
		per = 8
	}
	all, err := h.Listings.Featured(r.Context(), per)
	if err != nil {
		writeLoadError(w, err)
		return
	}
	out := make(featuredResponse, len(all))
	for c, ls := range all {
		out[c] = catalog.Render(ls, false, nil, h.Prices)
	}
	writeCached(w, r, out)
}

func (h *Handlers) listCategory(w http.ResponseWriter, r *http.Request) {
	c := categoryParam(r)
	q := r.URL.Query()

	limit := defaultListLimit
	if ls := q.Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > maxListLimit {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 100")
			return
		}
		limit = l
	}
	f := domain.Filter{Limit: limit, OrderBy: "-created_at"}
	if city := strings.TrimSpace(q.Get("city")); city != "" {
		f.Eq = map[string]string{"city": city}
	}

	var (
		listings []domain.Listing
		err      error
	)
	if c == domain.CategoryOther {
		var recs []domain.Record
		recs, err = h.Listings.ListRecords(r.Context(), c, f)
		listings = catalog.FromRecords(recs, q.Get("type"))
	} else {
		listings, err = h.Listings.ListListings(r.Context(), c, f)
	}

	view := catalog.Render(listings, false, err, h.Prices)
	if err != nil {
		writeJSON(w, statusFor(err), view)
		return
	}
	writeCached(w, r, view)
}

type detailResponse struct {
	Listing domain.Listing `json:"listing"`
	Card    catalog.Card   `json:"card"`
}

func (h *Handlers) getListing(w http.ResponseWriter, r *http.Request) {
	c := categoryParam(r)
	l, err := h.Listings.GetListing(r.Context(), c, chi.URLParam(r, "id"))
	if err != nil {
		writeLoadError(w, err)
		return
	}
	writeCached(w, r, detailResponse{Listing: l, Card: catalog.NewCard(l, h.Prices)})
}

func (h *Handlers) carousel(w http.ResponseWriter, r *http.Request) {
	c := categoryParam(r)
	l, err := h.Listings.GetListing(r.Context(), c, chi.URLParam(r, "id"))
	if err != nil {
		writeLoadError(w, err)
		return
	}
	card := catalog.NewCard(l, h.Prices)

	at := 0
	if s := r.URL.Query().Get("at"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid position", "at must be an integer")
			return
		}
		at = n
	}
	pos := card.Carousel.At(at)
	switch r.URL.Query().Get("dir") {
	case "next":
		pos = pos.Next()
	case "prev":
		pos = pos.Prev()
	case "":
	default:
		writeProblem(w, http.StatusBadRequest, "Invalid direction", "dir must be next or prev")
		return
	}
	card.Show(pos)
	writeJSON(w, http.StatusOK, card)
}

func (h *Handlers) reserve(w http.ResponseWriter, r *http.Request) {
	c := categoryParam(r)
	l, err := h.Listings.GetListing(r.Context(), c, chi.URLParam(r, "id"))
	if err != nil {
		writeLoadError(w, err)
		return
	}
	nav, _, err := h.Handoff.Reserve(r.Context(), &l)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Hand-off Failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, nav)
}

func (h *Handlers) bookingContext(w http.ResponseWriter, r *http.Request) {
	c, ok := domain.CategoryFromSegment(chi.URLParam(r, "segment"))
	if !ok {
		writeLoadError(w, domain.ErrInvalidCategory)
		return
	}
	res, err := h.Handoff.Resolve(r.Context(), c, chi.URLParam(r, "id"), r.URL.Query().Get("handoff"))
	if err != nil {
		writeLoadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
