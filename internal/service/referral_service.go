package service

import (
	"context"
	"errors"
	"fmt"

	"fwf/internal/domain"
	"fwf/internal/models"
	"fwf/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReferralService links new members to their referrer and pays the referral
// reward once, on the referred member's first qualifying payment.
type ReferralService struct {
	tx           *repository.Transactor
	referralRepo *repository.ReferralRepository
	userRepo     *repository.UserRepository
	wallet       *WalletService
	rules        *RulesProvider
	notifier     Notifier
	log          *zap.Logger
}

func NewReferralService(
	tx *repository.Transactor,
	referralRepo *repository.ReferralRepository,
	userRepo *repository.UserRepository,
	wallet *WalletService,
	rules *RulesProvider,
	notifier Notifier,
	log *zap.Logger,
) *ReferralService {
	return &ReferralService{
		tx:           tx,
		referralRepo: referralRepo,
		userRepo:     userRepo,
		wallet:       wallet,
		rules:        rules,
		notifier:     notifier,
		log:          log,
	}
}

// Register creates a pending referral from the owner of code to newUserID.
func (s *ReferralService) Register(ctx context.Context, code string, newUserID uint, tx *gorm.DB) (*models.Referral, error) {
	if code == "" {
		return nil, ErrInvalidReferralCode
	}
	var ref *models.Referral
	err := s.tx.InTx(ctx, tx, func(tx *gorm.DB) error {
		referrer, err := s.userRepo.GetByReferralCode(ctx, code, tx)
		if err != nil {
			if isNotFound(err) {
				return ErrInvalidReferralCode
			}
			return err
		}
		if referrer.ID == newUserID {
			return ErrSelfReferral
		}
		newUser, err := s.userRepo.GetByID(ctx, newUserID, tx)
		if err != nil {
			if isNotFound(err) {
				return ErrMemberNotFound
			}
			return err
		}
		if newUser.ReferredBy != nil {
			return ErrAlreadyReferred
		}
		ref = &models.Referral{
			ReferrerID:     referrer.ID,
			ReferredUserID: newUser.ID,
			PaymentAmount:  decimal.Zero,
			ReferralPoints: decimal.Zero,
			Status:         domain.ReferralPending,
		}
		if err := s.referralRepo.CreateReferral(ctx, ref, tx); err != nil {
			return fmt.Errorf("create referral: %w", err)
		}
		return s.userRepo.SetReferredBy(ctx, newUser.ID, referrer.ID, tx)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("referral registered", zap.Uint("referrer_id", ref.ReferrerID), zap.Uint("referred_user_id", ref.ReferredUserID))
	return ref, nil
}

type Activation struct {
	ReferralID     uint            `json:"referral_id"`
	ReferrerID     uint            `json:"referrer_id"`
	ReferredUserID uint            `json:"referred_user_id"`
	PaymentAmount  decimal.Decimal `json:"payment_amount"`
	Points         decimal.Decimal `json:"points"`
}

// Activate is the admin entry point: pays the referrer of referredMemberID.
// amount <= 0 falls back to the default membership fee.
func (s *ReferralService) Activate(ctx context.Context, referredMemberID string, amount decimal.Decimal) (*Activation, error) {
	if !amount.IsPositive() {
		amount = s.rules.DefaultReferralFee()
	}
	rules := s.rules.Current(ctx)
	var act *Activation
	err := s.tx.InTx(ctx, nil, func(tx *gorm.DB) error {
		referred, err := s.userRepo.GetByMemberID(ctx, referredMemberID, tx)
		if err != nil {
			if isNotFound(err) {
				return ErrNoReferral
			}
			return err
		}
		act, err = s.ActivateTx(ctx, referred, amount, rules, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Announce(act)
	return act, nil
}

// ActivateTx runs the activation inside the caller's transaction. The referrer
// is credited only when the pending row actually flipped to active.
func (s *ReferralService) ActivateTx(ctx context.Context, referred *models.User, amount decimal.Decimal, rules domain.Rules, tx *gorm.DB) (*Activation, error) {
	if referred.ReferredBy == nil {
		return nil, ErrNoReferral
	}
	referrerID := *referred.ReferredBy
	ref, err := s.referralRepo.GetByReferredUserID(ctx, referred.ID, tx)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNoReferral
		}
		return nil, err
	}
	if ref.Status == domain.ReferralActive {
		return nil, ErrReferralAlreadyActive
	}
	if !ref.Status.CanTransition(domain.ReferralActive) {
		return nil, ErrInvalidTransition
	}
	_, points := rules.Reward(amount, rules.ReferralPercent)

	n, err := s.referralRepo.Activate(ctx, referrerID, referred.ID, amount, points, tx)
	if err != nil {
		return nil, fmt.Errorf("activate referral: %w", err)
	}
	if n == 0 {
		return nil, ErrReferralAlreadyActive
	}
	err = s.wallet.Credit(ctx, CreditRequest{
		UserID:      referrerID,
		Points:      points,
		Source:      domain.LedgerReferral,
		Description: fmt.Sprintf("Referral activated: %s paid ₹%s → %s points", referred.MemberID, amount.String(), points.String()),
		ReferenceID: &ref.ID,
	}, tx)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SetMembershipActive(ctx, referred.ID, true, tx); err != nil {
		return nil, err
	}
	s.log.Info("referral activated",
		zap.Uint("referrer_id", referrerID),
		zap.String("referred", referred.MemberID),
		zap.String("amount", amount.String()),
		zap.String("points", points.String()))
	return &Activation{
		ReferralID:     ref.ID,
		ReferrerID:     referrerID,
		ReferredUserID: referred.ID,
		PaymentAmount:  amount,
		Points:         points,
	}, nil
}

// Announce notifies the referrer; call after the activation committed.
func (s *ReferralService) Announce(act *Activation) {
	if s.notifier == nil || act == nil {
		return
	}
	s.notifier.Notify(act.ReferrerID, domain.NotifReferralActive, "Referral activated",
		fmt.Sprintf("Your referral joined. You earned %s points!", act.Points.String()),
		map[string]interface{}{"points": act.Points.String(), "referral_id": act.ReferralID})
}

type ReferralOverview struct {
	ReferralCode string                    `json:"referralCode"`
	Stats        *repository.ReferralStats `json:"stats"`
	Referrals    []models.Referral         `json:"referrals"`
}

func (s *ReferralService) ForReferrer(ctx context.Context, userID uint) (*ReferralOverview, error) {
	u, err := s.userRepo.GetByID(ctx, userID, nil)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	stats, err := s.referralRepo.StatsForReferrer(ctx, userID)
	if err != nil {
		return nil, err
	}
	list, err := s.referralRepo.ListByReferrerID(ctx, userID, 100, 0)
	if err != nil {
		return nil, err
	}
	code := ""
	if u.ReferralCode != nil {
		code = *u.ReferralCode
	}
	return &ReferralOverview{ReferralCode: code, Stats: stats, Referrals: list}, nil
}

func (s *ReferralService) List(ctx context.Context, status domain.ReferralStatus, p repository.Page) ([]models.Referral, int64, error) {
	return s.referralRepo.List(ctx, status, p)
}
