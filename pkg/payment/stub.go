package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// StubProvider is a no-op provider for development: orders are local and any
// non-empty signature is accepted.
type StubProvider struct{}

func (s *StubProvider) Name() string { return "stub" }

func (s *StubProvider) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	return &Order{
		ID:       fmt.Sprintf("order_stub_%d", time.Now().UnixNano()),
		Amount:   req.Amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart(),
		Currency: "INR",
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}

func (s *StubProvider) VerifySignature(orderID, paymentID, signature string) bool {
	return orderID != "" && paymentID != "" && signature != ""
}
