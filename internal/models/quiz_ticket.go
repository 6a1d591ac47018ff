package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuizTicket is one recorded sale by a member. Identical sales are allowed.
type QuizTicket struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	SellerID     uint            `gorm:"not null;index" json:"seller_id"`
	QuizRef      string          `gorm:"size:32;index" json:"quiz_ref"`
	Token        string          `gorm:"uniqueIndex;size:64" json:"token"`
	BuyerName    string          `gorm:"size:255" json:"buyer_name"`
	BuyerContact string          `gorm:"size:64" json:"buyer_contact"`
	BuyerEmail   string          `gorm:"size:255" json:"buyer_email"`
	TicketPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"ticket_price"`
	PointsEarned decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"points_earned"`
	SoldAt       time.Time       `gorm:"autoCreateTime;index" json:"sold_at"`
}

func (QuizTicket) TableName() string { return "quiz_tickets" }
