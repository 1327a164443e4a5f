package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"voyago/internal/app"
	"voyago/internal/booking"
	"voyago/internal/catalog"
	"voyago/internal/domain"
)

const (
	SessionHeader = "X-Session-ID"
	sessionCookie = "voyago_session"
)

type propertyView struct {
	State   catalog.State   `json:"state"`
	Message string          `json:"message,omitempty"`
	Listing *domain.Listing `json:"listing,omitempty"`
	Card    *catalog.Card   `json:"card,omitempty"`
}

type reservationView struct {
	SessionID string        `json:"sessionId"`
	Draft     booking.Draft `json:"draft"`
	Nights    int           `json:"nights"`
	Property  *propertyView `json:"property,omitempty"`
}

type startRequest struct {
	Category   string `json:"category"`
	PropertyID string `json:"propertyId"`
}

// session finds the caller's reservation session from the header or cookie and
// creates one when neither names a live session.
func (h *Handlers) session(w http.ResponseWriter, r *http.Request) *booking.Session {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		if c, err := r.Cookie(sessionCookie); err == nil {
			id = c.Value
		}
	}
	s, created := h.Sessions.GetOrCreate(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    s.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	w.Header().Set(SessionHeader, s.ID)
	return s
}

func (h *Handlers) viewOf(snap booking.Snapshot) reservationView {
	v := reservationView{SessionID: snap.ID, Draft: snap.Draft, Nights: snap.Draft.Nights()}
	v.Property = h.propertyOf(snap.Property)
	return v
}

func (h *Handlers) propertyOf(st app.DetailState) *propertyView {
	switch {
	case st.Loading:
		return &propertyView{State: catalog.StateLoading, Message: catalog.Render(nil, true, nil, h.Prices).Message}
	case st.Err != nil:
		return &propertyView{State: catalog.StateError, Message: catalog.ErrorMessage(st.Err)}
	case st.Listing != nil:
		card := catalog.NewCard(*st.Listing, h.Prices)
		return &propertyView{State: catalog.StateReady, Listing: st.Listing, Card: &card}
	default:
		return nil
	}
}

func (h *Handlers) getReservation(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	writeJSON(w, http.StatusOK, h.viewOf(s.Snapshot()))
}

func (h *Handlers) startReservation(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "body must be a JSON object with category and propertyId")
		return
	}
	req.PropertyID = strings.TrimSpace(req.PropertyID)
	if req.PropertyID == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "propertyId is required")
		return
	}
	c, ok := domain.ParseCategory(req.Category)
	if !ok {
		if c, ok = domain.CategoryFromSegment(req.Category); !ok {
			writeLoadError(w, domain.ErrInvalidCategory)
			return
		}
	}

	s := h.session(w, r)
	_, settled := s.Start(r.Context(), c, req.PropertyID)
	if r.URL.Query().Get("wait") == "true" {
		select {
		case <-settled:
		case <-r.Context().Done():
		}
	}
	writeJSON(w, http.StatusOK, h.viewOf(s.Snapshot()))
}

func (h *Handlers) updateReservation(w http.ResponseWriter, r *http.Request) {
	var p booking.Patch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "body must be a JSON reservation patch")
		return
	}
	s := h.session(w, r)
	if _, err := s.Update(r.Context(), p); err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, booking.ErrInvalidPatch) {
			status = http.StatusBadRequest
		}
		writeProblem(w, status, "Invalid Reservation", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.viewOf(s.Snapshot()))
}

func (h *Handlers) clearReservation(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	s.Clear()
	writeJSON(w, http.StatusOK, h.viewOf(s.Snapshot()))
}
