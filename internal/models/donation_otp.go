package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DonationOTP gates high-value donations. Replaced codes are soft-deleted so
// the send rate limit still counts them.
type DonationOTP struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Email         string          `gorm:"size:255;not null;index" json:"email"`
	Mobile        string          `gorm:"size:20;not null" json:"mobile"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	OTP           string          `gorm:"size:6;not null" json:"-"`
	Verified      bool            `gorm:"default:false" json:"verified"`
	VerifiedToken *string         `gorm:"uniqueIndex;size:64" json:"-"`
	VerifiedAt    *time.Time      `json:"verified_at"`
	Attempts      int             `gorm:"not null;default:0" json:"attempts"`
	ExpiresAt     time.Time       `gorm:"index" json:"expires_at"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (DonationOTP) TableName() string { return "donation_otps" }
