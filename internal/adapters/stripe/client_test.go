package stripead_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stripe/stripe-go/v82"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stripead "voyago/internal/adapters/stripe"
	"voyago/internal/payment"
)

func newClient(t *testing.T, h http.HandlerFunc) *stripead.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	b := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
	})
	return stripead.NewWithBackends("sk_test_123", &stripe.Backends{API: b, Connect: b, Uploads: b})
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := stripead.New("")
	assert.Error(t, err)
	c, err := stripead.New("sk_test_123")
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestCreatePaymentIntent_SendsParams(t *testing.T) {
	var form url.Values
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"pi_123","object":"payment_intent","amount":10050,"currency":"mad","client_secret":"pi_123_secret_abc"}`)
	})

	secret, err := c.CreatePaymentIntent(context.Background(), payment.Intent{
		Amount:   10050,
		Currency: "mad",
		Metadata: map[string]string{"bookingId": "b-1", "customerEmail": "", "customerName": "Amina"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_123_secret_abc", secret)

	assert.Equal(t, "10050", form.Get("amount"))
	assert.Equal(t, "mad", form.Get("currency"))
	assert.Equal(t, "true", form.Get("automatic_payment_methods[enabled]"))
	assert.Equal(t, "b-1", form.Get("metadata[bookingId]"))
	assert.Equal(t, "Amina", form.Get("metadata[customerName]"))
}

func TestCreatePaymentIntent_ProcessorMessagePassthrough(t *testing.T) {
	calls := 0
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"type":"invalid_request_error","message":"Amount must be at least 5.00 mad"}}`)
	})

	_, err := c.CreatePaymentIntent(context.Background(), payment.Intent{Amount: 1, Currency: "mad"})
	require.Error(t, err)
	assert.Equal(t, "Amount must be at least 5.00 mad", err.Error())
	assert.Equal(t, 1, calls)
}
