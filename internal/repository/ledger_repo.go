package repository

import (
	"context"
	"errors"

	"fwf/internal/domain"
	"fwf/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

var ErrInvalidLedgerType = errors.New("invalid ledger type")

func (r *LedgerRepository) Append(ctx context.Context, e *models.PointsLedger, tx *gorm.DB) error {
	if !e.Type.Valid() {
		return ErrInvalidLedgerType
	}
	return conn(ctx, r.db, tx).Create(e).Error
}

func (r *LedgerRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.PointsLedger, error) {
	var list []models.PointsLedger
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// TypeSum is the total of a user's ledger rows of one type.
type TypeSum struct {
	Type   domain.LedgerType `json:"type"`
	Points decimal.Decimal   `json:"points"`
	Count  int64             `json:"count"`
}

func (r *LedgerRepository) SumByType(ctx context.Context, userID uint) ([]TypeSum, error) {
	var rows []TypeSum
	err := r.db.WithContext(ctx).Model(&models.PointsLedger{}).
		Select("type, COALESCE(SUM(points), 0) AS points, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("type").
		Scan(&rows).Error
	return rows, err
}
