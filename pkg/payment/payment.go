package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type OrderRequest struct {
	Amount  decimal.Decimal // rupees
	Receipt string          // our reference, echoed back by the gateway
	Notes   map[string]string
}

type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // paise
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
	KeyID    string `json:"key_id"`
}

// Provider opens checkout orders and verifies the signed result the client
// returns after payment.
type Provider interface {
	Name() string
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// ErrNotConfigured is returned by New when production has no gateway keys.
var ErrNotConfigured = errors.New("payment: razorpay credentials are required in production")

// New returns the Razorpay provider when a key secret is set. Outside
// production it falls back to the stub; in production it refuses to.
func New(env, keyID, keySecret string) (Provider, error) {
	if keySecret != "" {
		return NewRazorpayProvider(keyID, keySecret), nil
	}
	if env == "production" {
		return nil, ErrNotConfigured
	}
	return &StubProvider{}, nil
}
