package repository

import (
	"context"
	"errors"
	"time"

	"fwf/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrInsufficientBalance = errors.New("insufficient wallet balance")

// WalletDelta holds increments for the wallet_* columns. Zero fields are left
// untouched.
type WalletDelta struct {
	BalanceINR            decimal.Decimal
	LifetimeEarnedINR     decimal.Decimal
	LifetimeAppliedINR    decimal.Decimal
	PointsBalance         decimal.Decimal
	PointsFromDonations   decimal.Decimal
	PointsFromReferrals   decimal.Decimal
	PointsFromQuiz        decimal.Decimal
	PointsFromSocialTasks decimal.Decimal
	TotalPointsEarned     decimal.Decimal
}

func (d WalletDelta) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	add := func(col string, v decimal.Decimal) {
		if !v.IsZero() {
			cols[col] = gorm.Expr(col+" + ?", v)
		}
	}
	add("wallet_balance_inr", d.BalanceINR)
	add("wallet_lifetime_earned_inr", d.LifetimeEarnedINR)
	add("wallet_lifetime_applied_inr", d.LifetimeAppliedINR)
	add("wallet_points_balance", d.PointsBalance)
	add("wallet_points_from_donations", d.PointsFromDonations)
	add("wallet_points_from_referrals", d.PointsFromReferrals)
	add("wallet_points_from_quiz", d.PointsFromQuiz)
	add("wallet_points_from_social_tasks", d.PointsFromSocialTasks)
	add("wallet_total_points_earned", d.TotalPointsEarned)
	return cols
}

// WalletRepository mutates the wallet embedded on the users row. Every change
// is a single additive UPDATE so concurrent writers never lose increments.
type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) GetByUserID(ctx context.Context, userID uint, tx *gorm.DB) (*models.Wallet, error) {
	var u models.User
	err := conn(ctx, r.db, tx).Select("id", "wallet_balance_inr", "wallet_lifetime_earned_inr", "wallet_lifetime_applied_inr",
		"wallet_points_balance", "wallet_points_from_donations", "wallet_points_from_referrals", "wallet_points_from_quiz",
		"wallet_points_from_social_tasks", "wallet_total_points_earned", "wallet_last_changed_at").
		First(&u, userID).Error
	if err != nil {
		return nil, err
	}
	return &u.Wallet, nil
}

// Credit applies delta in one UPDATE. Returns gorm.ErrRecordNotFound when the
// user does not exist.
func (r *WalletRepository) Credit(ctx context.Context, userID uint, delta WalletDelta, tx *gorm.DB) error {
	cols := delta.columns()
	if len(cols) == 0 {
		return nil
	}
	cols["wallet_last_changed_at"] = time.Now()
	res := conn(ctx, r.db, tx).Model(&models.User{}).Where("id = ?", userID).UpdateColumns(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DebitPoints removes points from points_balance only if enough remain.
func (r *WalletRepository) DebitPoints(ctx context.Context, userID uint, points decimal.Decimal, tx *gorm.DB) error {
	res := conn(ctx, r.db, tx).Model(&models.User{}).
		Where("id = ? AND wallet_points_balance >= ?", userID, points).
		UpdateColumns(map[string]interface{}{
			"wallet_points_balance":  gorm.Expr("wallet_points_balance - ?", points),
			"wallet_last_changed_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientBalance
	}
	return nil
}

// ApplyBalance moves amount from balance_inr to lifetime_applied_inr when the
// balance covers it.
func (r *WalletRepository) ApplyBalance(ctx context.Context, userID uint, amount decimal.Decimal, tx *gorm.DB) error {
	res := conn(ctx, r.db, tx).Model(&models.User{}).
		Where("id = ? AND wallet_balance_inr >= ?", userID, amount).
		UpdateColumns(map[string]interface{}{
			"wallet_balance_inr":          gorm.Expr("wallet_balance_inr - ?", amount),
			"wallet_lifetime_applied_inr": gorm.Expr("wallet_lifetime_applied_inr + ?", amount),
			"wallet_last_changed_at":      time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientBalance
	}
	return nil
}
