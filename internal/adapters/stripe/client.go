package stripead

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"

	"voyago/internal/adapters/observability"
	"voyago/internal/payment"
)

type Client struct{ sc *stripe.Client }

func New(key string) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}
	return &Client{sc: stripe.NewClient(key)}, nil
}

// NewWithBackends points the SDK at custom backends (stripe-mock, tests).
func NewWithBackends(key string, b *stripe.Backends) *Client {
	return &Client{sc: stripe.NewClient(key, stripe.WithBackends(b))}
}

func (c *Client) CreatePaymentIntent(ctx context.Context, in payment.Intent) (string, error) {
	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(in.Amount),
		Currency: stripe.String(in.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	start := time.Now()
	pi, err := c.sc.V1PaymentIntents.Create(ctx, params)
	observability.ObserveExternal("stripe", "payment_intents.create", statusOf(err), time.Since(start))
	if err != nil {
		var se *stripe.Error
		if errors.As(err, &se) && se.Msg != "" {
			return "", errors.New(se.Msg)
		}
		return "", err
	}
	return pi.ClientSecret, nil
}

func statusOf(err error) int {
	if err == nil {
		return 200
	}
	var se *stripe.Error
	if errors.As(err, &se) && se.HTTPStatusCode != 0 {
		return se.HTTPStatusCode
	}
	return 0
}
