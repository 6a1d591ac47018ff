package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRazorpayVerifySignature(t *testing.T) {
	p := NewRazorpayProvider("rzp_test_key", "secret")
	sig := Sign("secret", "order_1", "pay_1")

	require.True(t, p.VerifySignature("order_1", "pay_1", sig))
	require.False(t, p.VerifySignature("order_1", "pay_2", sig))
	require.False(t, p.VerifySignature("order_1", "pay_1", sig[:len(sig)-1]+"0"))
	require.False(t, p.VerifySignature("order_1", "pay_1", ""))

	unconfigured := NewRazorpayProvider("", "")
	require.False(t, unconfigured.VerifySignature("order_1", "pay_1", sig))
}

func TestRazorpayCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(50050), body["amount"])
		assert.Equal(t, "INR", body["currency"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"order_abc","amount":50050,"currency":"INR","receipt":"r1","status":"created"}`))
	}))
	defer srv.Close()

	p := NewRazorpayProvider("key", "secret")
	p.BaseURL = srv.URL
	o, err := p.CreateOrder(context.Background(), OrderRequest{Amount: decimal.RequireFromString("500.50"), Receipt: "r1"})
	require.NoError(t, err)
	require.Equal(t, "order_abc", o.ID)
	require.Equal(t, int64(50050), o.Amount)
	require.Equal(t, "key", o.KeyID)
}

func TestNewProviderSelection(t *testing.T) {
	p, err := New("production", "key", "secret")
	require.NoError(t, err)
	assert.Equal(t, "razorpay", p.Name())

	_, err = New("production", "", "")
	require.ErrorIs(t, err, ErrNotConfigured)

	p, err = New("development", "", "")
	require.NoError(t, err)
	assert.Equal(t, "stub", p.Name())
}
