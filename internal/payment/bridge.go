// Package payment validates checkout amounts and asks the processor for a payment intent.
package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const DefaultCurrency = "mad"

// MaxAmount is the processor's ceiling for one intent, in the smallest currency unit.
const MaxAmount = 99999999

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrNotConfigured = errors.New("payment processor is not configured")
)

// ProcessorError carries the processor's own message back to the caller.
type ProcessorError struct{ Err error }

func (e *ProcessorError) Error() string { return e.Err.Error() }
func (e *ProcessorError) Unwrap() error { return e.Err }

// IntentRequest is the decoded request body. Fields are untyped so that a wrong JSON
// type is reported as a validation failure rather than a decoding one.
type IntentRequest struct {
	Amount        any `json:"amount"`
	Currency      any `json:"currency"`
	BookingID     any `json:"bookingId"`
	CustomerEmail any `json:"customerEmail"`
	CustomerName  any `json:"customerName"`
}

type IntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// Intent is what the processor is asked to create.
// Amount is in the currency's smallest unit.
type Intent struct {
	Amount   int64
	Currency string
	Metadata map[string]string
}

type IntentCreator interface {
	CreatePaymentIntent(ctx context.Context, in Intent) (clientSecret string, err error)
}

type Bridge struct {
	creator         IntentCreator
	defaultCurrency string
}

// NewBridge accepts a nil creator: every call then fails with ErrNotConfigured.
func NewBridge(c IntentCreator, defaultCurrency string) *Bridge {
	cur := strings.ToLower(strings.TrimSpace(defaultCurrency))
	if cur == "" {
		cur = DefaultCurrency
	}
	return &Bridge{creator: c, defaultCurrency: cur}
}

func (b *Bridge) Configured() bool { return b.creator != nil }

// CreateIntent checks configuration, then the amount, then makes exactly one
// processor call. Processor failures are not retried.
func (b *Bridge) CreateIntent(ctx context.Context, req IntentRequest) (IntentResponse, error) {
	if b.creator == nil {
		return IntentResponse{}, ErrNotConfigured
	}
	amount, ok := positiveNumber(req.Amount)
	if !ok {
		return IntentResponse{}, ErrInvalidAmount
	}
	// checked as a float so that huge values cannot wrap when converted
	rounded := math.Round(amount)
	if rounded < 1 || rounded > MaxAmount {
		return IntentResponse{}, ErrInvalidAmount
	}

	in := Intent{
		Amount:   int64(rounded),
		Currency: b.currency(req.Currency),
		Metadata: map[string]string{
			"bookingId":     str(req.BookingID),
			"customerEmail": str(req.CustomerEmail),
			"customerName":  str(req.CustomerName),
		},
	}
	secret, err := b.creator.CreatePaymentIntent(ctx, in)
	if err != nil {
		log.Error().Err(err).Int64("amount", in.Amount).Str("currency", in.Currency).Msg("payment intent failed")
		return IntentResponse{}, &ProcessorError{Err: err}
	}
	log.Info().Int64("amount", in.Amount).Str("currency", in.Currency).Str("booking_id", in.Metadata["bookingId"]).Msg("payment intent created")
	return IntentResponse{ClientSecret: secret}, nil
}

func (b *Bridge) currency(v any) string {
	if s, ok := v.(string); ok {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			return s
		}
	}
	return b.defaultCurrency
}

// positiveNumber accepts numeric values only; numeric strings are rejected.
func positiveNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0, false
	}
	return f, true
}

// str renders a metadata value. Missing values are empty; anything else is its
// plain text form.
func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return fmt.Sprint(v)
}
