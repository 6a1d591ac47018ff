package models

import (
	"time"

	"fwf/internal/domain"

	"github.com/shopspring/decimal"
)

type Donation struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	DonationID   *string         `gorm:"uniqueIndex;size:20" json:"donation_id"` // DON-000001, set after insert
	MemberID     *uint           `gorm:"index" json:"member_id"`                  // nil for anonymous donations
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	PointsEarned decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"points_earned"`

	DonorName    string  `gorm:"size:255;default:'Anonymous'" json:"donor_name"`
	DonorEmail   *string `gorm:"size:255" json:"donor_email"`
	DonorMobile  *string `gorm:"size:20" json:"donor_mobile"`
	DonorPAN     *string `gorm:"size:20" json:"donor_pan"`
	DonorAddress *string `gorm:"size:512" json:"donor_address"`

	Source    string  `gorm:"size:30;default:'razorpay'" json:"source"`
	PaymentID *string `gorm:"size:64;uniqueIndex" json:"payment_id"`
	OrderID   *string `gorm:"size:64" json:"order_id"`

	KYCRequired   bool             `gorm:"default:false" json:"kyc_required"`
	OTPVerified   bool             `gorm:"default:false" json:"otp_verified"`
	KYCStatus     domain.KYCStatus `gorm:"size:20;not null;index;default:'not_required'" json:"kyc_status"`
	ReceiptIssued bool             `gorm:"default:false" json:"receipt_issued"`
	AdminNotes    *string          `gorm:"type:text" json:"admin_notes"`
	CreatedAt     time.Time        `gorm:"index" json:"created_at"`
}

func (Donation) TableName() string { return "donations" }

func (d *Donation) Ref() string {
	if d.DonationID == nil {
		return ""
	}
	return *d.DonationID
}
