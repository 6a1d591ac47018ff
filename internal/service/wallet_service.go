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

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

var errUnknownSource = errors.New("unknown points source")

// CreditRequest describes one earning event. Points land on points_balance,
// total_points_earned and the counter for Source. INR, when set, lands on
// balance_inr and lifetime_earned_inr.
type CreditRequest struct {
	UserID      uint
	Points      decimal.Decimal
	INR         decimal.Decimal
	Source      domain.LedgerType
	Description string
	ReferenceID *uint
}

func (r CreditRequest) delta() (repository.WalletDelta, error) {
	d := repository.WalletDelta{
		BalanceINR:        r.INR,
		LifetimeEarnedINR: r.INR,
		PointsBalance:     r.Points,
		TotalPointsEarned: r.Points,
	}
	switch r.Source {
	case domain.LedgerDonation:
		d.PointsFromDonations = r.Points
	case domain.LedgerReferral:
		d.PointsFromReferrals = r.Points
	case domain.LedgerQuiz:
		d.PointsFromQuiz = r.Points
	case domain.LedgerSocialTask:
		d.PointsFromSocialTasks = r.Points
	default:
		if !r.Points.IsZero() {
			return d, fmt.Errorf("%w: %q", errUnknownSource, r.Source)
		}
	}
	return d, nil
}

type WalletService struct {
	tx         *repository.Transactor
	walletRepo *repository.WalletRepository
	ledgerRepo *repository.LedgerRepository
	log        *zap.Logger
}

func NewWalletService(tx *repository.Transactor, walletRepo *repository.WalletRepository, ledgerRepo *repository.LedgerRepository, log *zap.Logger) *WalletService {
	return &WalletService{tx: tx, walletRepo: walletRepo, ledgerRepo: ledgerRepo, log: log}
}

// Credit increments the wallet and appends the matching ledger row in one
// transaction: tx when the caller holds one, else a new one.
func (s *WalletService) Credit(ctx context.Context, req CreditRequest, tx *gorm.DB) error {
	if req.Points.IsNegative() || req.INR.IsNegative() {
		return ErrInvalidAmount
	}
	delta, err := req.delta()
	if err != nil {
		return err
	}
	return s.tx.InTx(ctx, tx, func(tx *gorm.DB) error {
		if err := s.walletRepo.Credit(ctx, req.UserID, delta, tx); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return fmt.Errorf("credit wallet: %w", err)
		}
		if req.Points.IsZero() {
			return nil
		}
		entry := &models.PointsLedger{
			UserID:      req.UserID,
			Points:      req.Points,
			Type:        req.Source,
			Description: req.Description,
			ReferenceID: req.ReferenceID,
		}
		if err := s.ledgerRepo.Append(ctx, entry, tx); err != nil {
			return fmt.Errorf("append ledger: %w", err)
		}
		return nil
	})
}

// Redeem spends points. The ledger row carries the negative amount.
func (s *WalletService) Redeem(ctx context.Context, userID uint, points decimal.Decimal, description string) (*models.Wallet, error) {
	if !points.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if description == "" {
		description = fmt.Sprintf("Redeemed %s points", points.String())
	}
	var w *models.Wallet
	err := s.tx.InTx(ctx, nil, func(tx *gorm.DB) error {
		if err := s.walletRepo.DebitPoints(ctx, userID, points, tx); err != nil {
			if errors.Is(err, repository.ErrInsufficientBalance) {
				return ErrInsufficientFunds
			}
			return err
		}
		entry := &models.PointsLedger{UserID: userID, Points: points.Neg(), Type: domain.LedgerRedeem, Description: description}
		if err := s.ledgerRepo.Append(ctx, entry, tx); err != nil {
			return err
		}
		var err error
		w, err = s.walletRepo.GetByUserID(ctx, userID, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("points redeemed", zap.Uint("user_id", userID), zap.String("points", points.String()))
	return w, nil
}

// ApplyBalance moves up to amount of balance_inr into lifetime_applied_inr
// and returns what was applied.
func (s *WalletService) ApplyBalance(ctx context.Context, userID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	w, err := s.walletRepo.GetByUserID(ctx, userID, nil)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrMemberNotFound
		}
		return decimal.Zero, err
	}
	if !w.BalanceINR.IsPositive() {
		return decimal.Zero, ErrInsufficientFunds
	}
	applied := decimal.Min(amount, w.BalanceINR)
	if !applied.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := s.walletRepo.ApplyBalance(ctx, userID, applied, nil); err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return decimal.Zero, ErrInsufficientFunds
		}
		return decimal.Zero, err
	}
	return applied, nil
}

func (s *WalletService) Get(ctx context.Context, userID uint) (*models.Wallet, error) {
	w, err := s.walletRepo.GetByUserID(ctx, userID, nil)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	}
	return w, err
}

// History returns the newest ledger rows first.
func (s *WalletService) History(ctx context.Context, userID uint, limit int) ([]models.PointsLedger, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.ledgerRepo.ListByUser(ctx, userID, limit)
}

// Reconciliation compares the wallet aggregate with its ledger.
type Reconciliation struct {
	Wallet       *models.Wallet       `json:"wallet"`
	BySource     []repository.TypeSum `json:"by_source"`
	LedgerEarned decimal.Decimal      `json:"ledger_earned"`
	LedgerNet    decimal.Decimal      `json:"ledger_net"`
	SourceSum    decimal.Decimal      `json:"source_sum"`
	Consistent   bool                 `json:"consistent"`
}

func (s *WalletService) Reconcile(ctx context.Context, userID uint) (*Reconciliation, error) {
	w, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	sums, err := s.ledgerRepo.SumByType(ctx, userID)
	if err != nil {
		return nil, err
	}
	rec := &Reconciliation{Wallet: w, BySource: sums, LedgerEarned: decimal.Zero, LedgerNet: decimal.Zero, SourceSum: w.SourceSum()}
	for _, ts := range sums {
		rec.LedgerNet = rec.LedgerNet.Add(ts.Points)
		if ts.Points.IsPositive() {
			rec.LedgerEarned = rec.LedgerEarned.Add(ts.Points)
		}
	}
	rec.Consistent = rec.SourceSum.Equal(w.TotalPointsEarned) &&
		rec.LedgerEarned.Equal(w.TotalPointsEarned) &&
		rec.LedgerNet.Equal(w.PointsBalance)
	if !rec.Consistent {
		s.log.Warn("wallet drift", zap.Uint("user_id", userID),
			zap.String("total_points_earned", w.TotalPointsEarned.String()),
			zap.String("source_sum", rec.SourceSum.String()),
			zap.String("ledger_earned", rec.LedgerEarned.String()),
			zap.String("ledger_net", rec.LedgerNet.String()))
	}
	return rec, nil
}
