package models

import (
	"time"

	"fwf/internal/domain"

	"github.com/shopspring/decimal"
)

// PointsLedger is an append-only audit row; positive points = earned, negative = spent.
type PointsLedger struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	UserID      uint              `gorm:"not null;index:idx_ledger_user_created,priority:1" json:"user_id"`
	Points      decimal.Decimal   `gorm:"type:decimal(18,4);not null" json:"points"`
	Type        domain.LedgerType `gorm:"size:20;not null;index" json:"type"`
	Description string            `gorm:"size:512" json:"description"`
	ReferenceID *uint             `json:"reference_id,omitempty"`
	CreatedAt   time.Time         `gorm:"index:idx_ledger_user_created,priority:2" json:"created_at"`
}

func (PointsLedger) TableName() string { return "points_ledger" }
