package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"voyago/internal/adapters/observability"
	"voyago/internal/payment"
)

type paymentError struct {
	Error string `json:"error"`
}

// createPaymentIntent keeps the checkout page's contract: plain {"error": ...}
// bodies instead of problem+json.
func (h *Handlers) createPaymentIntent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, paymentError{Error: "Method not allowed"})
		return
	}

	if !h.Payments.Configured() {
		observability.ObservePayment("unconfigured")
		writeJSON(w, http.StatusInternalServerError, paymentError{Error: payment.ErrNotConfigured.Error()})
		return
	}

	var req payment.IntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.ObservePayment("invalid")
		writeJSON(w, http.StatusBadRequest, paymentError{Error: "Invalid amount"})
		return
	}

	resp, err := h.Payments.CreateIntent(r.Context(), req)
	switch {
	case err == nil:
		observability.ObservePayment("created")
		writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, payment.ErrInvalidAmount):
		observability.ObservePayment("invalid")
		writeJSON(w, http.StatusBadRequest, paymentError{Error: "Invalid amount"})
	case errors.Is(err, payment.ErrNotConfigured):
		observability.ObservePayment("unconfigured")
		writeJSON(w, http.StatusInternalServerError, paymentError{Error: err.Error()})
	default:
		observability.ObservePayment("failed")
		writeJSON(w, http.StatusInternalServerError, paymentError{Error: err.Error()})
	}
}
