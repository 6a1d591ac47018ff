package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Points and amounts go out as JSON numbers.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Wallet is embedded on the user row (wallet_* columns). Counters only move
// through additive SQL updates in WalletRepository.
type Wallet struct {
	BalanceINR            decimal.Decimal `gorm:"column:balance_inr;type:decimal(18,4);not null;default:0" json:"balance_inr"`
	LifetimeEarnedINR     decimal.Decimal `gorm:"column:lifetime_earned_inr;type:decimal(18,4);not null;default:0" json:"lifetime_earned_inr"`
	LifetimeAppliedINR    decimal.Decimal `gorm:"column:lifetime_applied_inr;type:decimal(18,4);not null;default:0" json:"lifetime_applied_inr"`
	PointsBalance         decimal.Decimal `gorm:"column:points_balance;type:decimal(18,4);not null;default:0" json:"points_balance"`
	PointsFromDonations   decimal.Decimal `gorm:"column:points_from_donations;type:decimal(18,4);not null;default:0" json:"points_from_donations"`
	PointsFromReferrals   decimal.Decimal `gorm:"column:points_from_referrals;type:decimal(18,4);not null;default:0" json:"points_from_referrals"`
	PointsFromQuiz        decimal.Decimal `gorm:"column:points_from_quiz;type:decimal(18,4);not null;default:0" json:"points_from_quiz"`
	PointsFromSocialTasks decimal.Decimal `gorm:"column:points_from_social_tasks;type:decimal(18,4);not null;default:0" json:"points_from_social_tasks"`
	TotalPointsEarned     decimal.Decimal `gorm:"column:total_points_earned;type:decimal(18,4);not null;default:0" json:"total_points_earned"`
	LastChangedAt         *time.Time      `gorm:"column:last_changed_at" json:"last_changed_at"`
}

// SourceSum is Σ points_from_*; equals TotalPointsEarned when the wallet is consistent.
func (w Wallet) SourceSum() decimal.Decimal {
	return w.PointsFromDonations.
		Add(w.PointsFromReferrals).
		Add(w.PointsFromQuiz).
		Add(w.PointsFromSocialTasks)
}
