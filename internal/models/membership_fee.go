package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MembershipFee struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	TxnID       string          `gorm:"uniqueIndex;size:64;not null" json:"txn_id"`
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	MemberID    string          `gorm:"size:32;not null;index" json:"member_id"`
	MemberName  string          `gorm:"size:255" json:"member_name"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	FeeType     string          `gorm:"size:20;not null;default:'joining'" json:"fee_type"`
	PaymentMode string          `gorm:"size:20;default:'online'" json:"payment_mode"`
	PaymentRef  *string         `gorm:"size:64;uniqueIndex" json:"payment_ref"`
	Status      string          `gorm:"size:20;not null;index;default:'pending'" json:"status"`
	Notes       *string         `gorm:"type:text" json:"notes"`
	VerifiedBy  string          `gorm:"size:255" json:"verified_by"`
	VerifiedAt  *time.Time      `json:"verified_at"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (MembershipFee) TableName() string { return "membership_fees" }
