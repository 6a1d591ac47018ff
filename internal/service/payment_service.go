package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fwf/internal/domain"
	"fwf/internal/models"
	"fwf/internal/repository"
	"fwf/pkg/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderInput opens a gateway order. UserID is nil for public donations;
// Reference is the quiz id for quiz orders.
type OrderInput struct {
	Purpose   domain.PaymentPurpose
	UserID    *uint
	Reference string
	Amount    decimal.Decimal
}

// Checkout is what the client posts back after paying.
type Checkout struct {
	OrderID   string
	PaymentID string
	Signature string
}

// PaymentService keeps a row per gateway order so that a checkout can only
// settle the amount and purpose the order was opened for, and only once.
type PaymentService struct {
	repo     *repository.PaymentRepository
	provider payment.Provider
	log      *zap.Logger
	now      func() time.Time
}

func NewPaymentService(repo *repository.PaymentRepository, provider payment.Provider, log *zap.Logger) *PaymentService {
	return &PaymentService{repo: repo, provider: provider, log: log, now: time.Now}
}

func (s *PaymentService) CreateOrder(ctx context.Context, in OrderInput) (*payment.Order, error) {
	if !in.Purpose.Valid() {
		return nil, ErrMissingFields
	}
	if !in.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	receipt := string(in.Purpose) + "-" + strings.ToUpper(uuid.NewString()[:8])
	order, err := s.provider.CreateOrder(ctx, payment.OrderRequest{
		Amount:  in.Amount,
		Receipt: receipt,
		Notes:   map[string]string{"purpose": string(in.Purpose), "reference": in.Reference},
	})
	if err != nil {
		return nil, fmt.Errorf("create gateway order: %w", err)
	}
	row := &models.PaymentOrder{
		UserID:      in.UserID,
		Provider:    s.provider.Name(),
		ProviderRef: order.ID,
		Purpose:     in.Purpose,
		Reference:   in.Reference,
		Amount:      in.Amount,
		Currency:    "INR",
		Receipt:     receipt,
		Status:      domain.PaymentCreated,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("store order: %w", err)
	}
	s.log.Info("payment order created",
		zap.String("order_id", order.ID),
		zap.String("purpose", string(in.Purpose)),
		zap.String("amount", in.Amount.String()))
	return order, nil
}

// Authorize checks the checkout signature and returns the stored order when
// it matches purpose, reference and user. It does not settle the order.
func (s *PaymentService) Authorize(ctx context.Context, c Checkout, purpose domain.PaymentPurpose, reference string, userID *uint) (*models.PaymentOrder, error) {
	if !s.provider.VerifySignature(c.OrderID, c.PaymentID, c.Signature) {
		s.log.Warn("payment signature mismatch", zap.String("order_id", c.OrderID))
		return nil, ErrPaymentSignature
	}
	o, err := s.repo.GetByProviderRef(ctx, c.OrderID, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPaymentOrderNotFound
		}
		return nil, err
	}
	if o.Purpose != purpose || o.Reference != reference {
		return nil, ErrPaymentMismatch
	}
	if o.UserID != nil && (userID == nil || *o.UserID != *userID) {
		return nil, ErrPaymentMismatch
	}
	if o.Status != domain.PaymentCreated {
		return nil, ErrPaymentReused
	}
	return o, nil
}

// Settle marks an authorized order paid inside tx. A second settle of the
// same order or payment id fails with ErrPaymentReused.
func (s *PaymentService) Settle(ctx context.Context, o *models.PaymentOrder, paymentID string, tx *gorm.DB) error {
	n, err := s.repo.MarkPaid(ctx, o.ID, paymentID, s.now(), tx)
	if err != nil {
		if isDuplicate(err) {
			return ErrPaymentReused
		}
		return err
	}
	if n == 0 {
		return ErrPaymentReused
	}
	o.Status = domain.PaymentPaid
	o.PaymentID = &paymentID
	return nil
}
