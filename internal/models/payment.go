package models

import (
	"time"

	"fwf/internal/domain"

	"github.com/shopspring/decimal"
)

// PaymentOrder is a gateway order opened by us. Checkout callbacks are
// settled against it, so the amount and purpose never come from the client.
type PaymentOrder struct {
	ID          uint                  `gorm:"primaryKey" json:"id"`
	UserID      *uint                 `gorm:"index" json:"user_id"` // nil for public donations
	Provider    string                `gorm:"size:30;not null" json:"provider"`
	ProviderRef string                `gorm:"size:64;uniqueIndex;not null" json:"provider_ref"` // gateway order id
	Purpose     domain.PaymentPurpose `gorm:"size:20;not null;index" json:"purpose"`
	Reference   string                `gorm:"size:64" json:"reference"` // quiz id for quiz orders
	Amount      decimal.Decimal       `gorm:"type:decimal(18,4);not null" json:"amount"`
	Currency    string                `gorm:"size:3;default:'INR'" json:"currency"`
	Receipt     string                `gorm:"size:64" json:"receipt"`
	Status      string                `gorm:"size:20;not null;index;default:'created'" json:"status"`
	PaymentID   *string               `gorm:"size:64;uniqueIndex" json:"payment_id"`
	PaidAt      *time.Time            `json:"paid_at"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

func (PaymentOrder) TableName() string { return "payment_orders" }
