package models

import (
	"time"

	"fwf/internal/domain"

	"github.com/shopspring/decimal"
)

// Referral tracks a referrer and the member who joined with their code.
// Created pending at registration; activated once, on the referred member's
// first qualifying payment.
type Referral struct {
	ID             uint                  `gorm:"primaryKey" json:"id"`
	ReferrerID     uint                  `gorm:"not null;index" json:"referrer_id"`
	ReferredUserID uint                  `gorm:"not null;index" json:"referred_user_id"`
	PaymentAmount  decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0" json:"payment_amount"`
	ReferralPoints decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0" json:"referral_points"`
	Status         domain.ReferralStatus `gorm:"size:20;not null;index;default:'pending'" json:"status"`
	CreatedAt      time.Time             `json:"created_at"`
	ActivatedAt    *time.Time            `json:"activated_at"`

	Referrer     User `gorm:"foreignKey:ReferrerID" json:"-"`
	ReferredUser User `gorm:"foreignKey:ReferredUserID" json:"referred_user,omitempty"`
}

func (Referral) TableName() string { return "referrals" }
