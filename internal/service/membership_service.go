package service

import (
	"context"
	"errors"
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

type MembershipPayment struct {
	FeeType string
	Checkout
}

type MembershipResult struct {
	Fee      *models.MembershipFee `json:"fee"`
	Referral *Activation           `json:"referral,omitempty"`
}

// FeeInput is an offline fee entered by an admin.
type FeeInput struct {
	MemberID    string
	Amount      decimal.Decimal
	FeeType     string
	PaymentMode string
	PaymentRef  string
	Status      string
	Notes       string
	RecordedBy  string
}

// FeeUpdate changes the status of a recorded fee. Nil fields are left alone.
type FeeUpdate struct {
	Status     string
	Notes      *string
	PaymentRef *string
	VerifiedBy string
}

type FeeList struct {
	Fees  []models.MembershipFee `json:"fees"`
	Total int64                  `json:"total"`
	Stats *repository.FeeStats   `json:"stats"`
}

// MembershipService records membership fees and activates the member,
// paying their referrer on the first verified payment.
type MembershipService struct {
	tx       *repository.Transactor
	feeRepo  *repository.MembershipFeeRepository
	userRepo *repository.UserRepository
	referral *ReferralService
	rules    *RulesProvider
	payments *PaymentService
	log      *zap.Logger
}

func NewMembershipService(
	tx *repository.Transactor,
	feeRepo *repository.MembershipFeeRepository,
	userRepo *repository.UserRepository,
	referral *ReferralService,
	rules *RulesProvider,
	payments *PaymentService,
	log *zap.Logger,
) *MembershipService {
	return &MembershipService{tx: tx, feeRepo: feeRepo, userRepo: userRepo, referral: referral, rules: rules, payments: payments, log: log}
}

// CreateOrder opens a membership order for userID. A non-positive amount
// means the configured default fee.
func (s *MembershipService) CreateOrder(ctx context.Context, userID uint, amount decimal.Decimal) (*payment.Order, error) {
	if !amount.IsPositive() {
		amount = s.rules.DefaultReferralFee()
	}
	return s.payments.CreateOrder(ctx, OrderInput{Purpose: domain.PaymentMembership, UserID: &userID, Amount: amount})
}

// Pay settles a membership order. The fee amount is the one the order was
// opened for.
func (s *MembershipService) Pay(ctx context.Context, userID uint, in MembershipPayment) (*MembershipResult, error) {
	order, err := s.payments.Authorize(ctx, in.Checkout, domain.PaymentMembership, "", &userID)
	if err != nil {
		return nil, err
	}
	amount := order.Amount
	feeType := in.FeeType
	if feeType != domain.FeeRenewal {
		feeType = domain.FeeJoining
	}
	rules := s.rules.Current(ctx)

	var res MembershipResult
	err = s.tx.InTx(ctx, nil, func(tx *gorm.DB) error {
		if err := s.payments.Settle(ctx, order, in.PaymentID, tx); err != nil {
			return err
		}
		user, err := s.userRepo.GetByID(ctx, userID, tx)
		if err != nil {
			if isNotFound(err) {
				return ErrMemberNotFound
			}
			return err
		}
		now := time.Now()
		ref := in.PaymentID
		fee := &models.MembershipFee{
			TxnID:       newFeeTxnID(),
			UserID:      user.ID,
			MemberID:    user.MemberID,
			MemberName:  user.Name,
			Amount:      amount,
			FeeType:     feeType,
			PaymentMode: "online",
			PaymentRef:  &ref,
			Status:      domain.FeeStatusVerified,
			VerifiedBy:  order.Provider,
			VerifiedAt:  &now,
		}
		if err := s.feeRepo.Create(ctx, fee, tx); err != nil {
			if isDuplicate(err) {
				return ErrPaymentReused
			}
			return fmt.Errorf("record fee: %w", err)
		}
		res.Fee = fee
		res.Referral, err = s.activate(ctx, user, amount, rules, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("membership fee verified", zap.Uint("user_id", userID), zap.String("txn_id", res.Fee.TxnID), zap.String("amount", amount.String()))
	s.referral.Announce(res.Referral)
	return &res, nil
}

// Record stores an offline fee. A fee recorded as verified activates the
// member straight away.
func (s *MembershipService) Record(ctx context.Context, in FeeInput) (*MembershipResult, error) {
	if in.MemberID == "" {
		return nil, ErrMissingFields
	}
	if !in.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	status := in.Status
	if status == "" {
		status = domain.FeeStatusPending
	}
	if !domain.ValidFeeStatus(status) {
		return nil, ErrInvalidFeeStatus
	}
	feeType := in.FeeType
	if feeType != domain.FeeRenewal {
		feeType = domain.FeeJoining
	}
	mode := in.PaymentMode
	if mode == "" {
		mode = "cash"
	}
	rules := s.rules.Current(ctx)

	var res MembershipResult
	err := s.tx.InTx(ctx, nil, func(tx *gorm.DB) error {
		user, err := s.userRepo.GetByMemberID(ctx, in.MemberID, tx)
		if err != nil {
			if isNotFound(err) {
				return ErrMemberNotFound
			}
			return err
		}
		fee := &models.MembershipFee{
			TxnID:       newFeeTxnID(),
			UserID:      user.ID,
			MemberID:    user.MemberID,
			MemberName:  user.Name,
			Amount:      in.Amount,
			FeeType:     feeType,
			PaymentMode: mode,
			PaymentRef:  optional(in.PaymentRef),
			Status:      status,
			Notes:       optional(in.Notes),
		}
		if status == domain.FeeStatusVerified {
			now := time.Now()
			fee.VerifiedBy = in.RecordedBy
			fee.VerifiedAt = &now
		}
		if err := s.feeRepo.Create(ctx, fee, tx); err != nil {
			if isDuplicate(err) {
				return ErrPaymentReused
			}
			return fmt.Errorf("record fee: %w", err)
		}
		res.Fee = fee
		if status != domain.FeeStatusVerified {
			return nil
		}
		res.Referral, err = s.activate(ctx, user, in.Amount, rules, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("membership fee recorded",
		zap.String("member_id", in.MemberID),
		zap.String("txn_id", res.Fee.TxnID),
		zap.String("status", status),
		zap.String("by", in.RecordedBy))
	s.referral.Announce(res.Referral)
	return &res, nil
}

// UpdateStatus moves a fee to a new status. Verifying activates the member;
// rejecting or refunding a joining fee deactivates them.
func (s *MembershipService) UpdateStatus(ctx context.Context, txnID string, in FeeUpdate) (*MembershipResult, error) {
	if in.Status == "" {
		return nil, ErrMissingFields
	}
	if !domain.ValidFeeStatus(in.Status) {
		return nil, ErrInvalidFeeStatus
	}
	rules := s.rules.Current(ctx)

	var res MembershipResult
	err := s.tx.InTx(ctx, nil, func(tx *gorm.DB) error {
		fee, err := s.feeRepo.GetByTxnID(ctx, txnID, tx)
		if err != nil {
			if isNotFound(err) {
				return ErrFeeNotFound
			}
			return err
		}
		updates := map[string]interface{}{"status": in.Status}
		if in.Notes != nil {
			updates["notes"] = *in.Notes
		}
		if in.PaymentRef != nil {
			updates["payment_ref"] = optional(*in.PaymentRef)
		}
		if in.Status == domain.FeeStatusVerified {
			now := time.Now()
			updates["verified_by"] = in.VerifiedBy
			updates["verified_at"] = now
		}
		if err := s.feeRepo.Update(ctx, fee.ID, updates, tx); err != nil {
			if isDuplicate(err) {
				return ErrPaymentReused
			}
			return err
		}
		if fee, err = s.feeRepo.GetByTxnID(ctx, txnID, tx); err != nil {
			return err
		}
		res.Fee = fee

		switch in.Status {
		case domain.FeeStatusVerified:
			user, err := s.userRepo.GetByID(ctx, fee.UserID, tx)
			if err != nil {
				if isNotFound(err) {
					return ErrMemberNotFound
				}
				return err
			}
			res.Referral, err = s.activate(ctx, user, fee.Amount, rules, tx)
			return err
		case domain.FeeStatusRejected, domain.FeeStatusRefunded:
			if fee.FeeType == domain.FeeJoining {
				return s.userRepo.SetMembershipActive(ctx, fee.UserID, false, tx)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("membership fee updated", zap.String("txn_id", txnID), zap.String("status", in.Status), zap.String("by", in.VerifiedBy))
	s.referral.Announce(res.Referral)
	return &res, nil
}

// activate pays the referrer on the first activation and marks the member
// active. Without a payable pending referral only the flag is set.
func (s *MembershipService) activate(ctx context.Context, user *models.User, amount decimal.Decimal, rules domain.Rules, tx *gorm.DB) (*Activation, error) {
	act, err := s.referral.ActivateTx(ctx, user, amount, rules, tx)
	switch {
	case err == nil:
	case errors.Is(err, ErrNoReferral), errors.Is(err, ErrReferralAlreadyActive), errors.Is(err, ErrInvalidTransition):
		act = nil
	default:
		return nil, err
	}
	if err := s.userRepo.SetMembershipActive(ctx, user.ID, true, tx); err != nil {
		return nil, err
	}
	return act, nil
}

func (s *MembershipService) Fees(ctx context.Context, userID uint) ([]models.MembershipFee, error) {
	return s.feeRepo.ListByUser(ctx, userID)
}

func (s *MembershipService) MemberFees(ctx context.Context, memberID string) ([]models.MembershipFee, error) {
	return s.feeRepo.ListByMemberID(ctx, memberID)
}

func (s *MembershipService) List(ctx context.Context, p repository.Page) (*FeeList, error) {
	fees, total, err := s.feeRepo.List(ctx, p)
	if err != nil {
		return nil, err
	}
	stats, err := s.feeRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &FeeList{Fees: fees, Total: total, Stats: stats}, nil
}

func newFeeTxnID() string {
	return "MF-" + strings.ToUpper(uuid.NewString()[:8])
}
