package repository

import (
	"context"

	"fwf/internal/domain"
	"fwf/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MembershipFeeRepository struct {
	db *gorm.DB
}

func NewMembershipFeeRepository(db *gorm.DB) *MembershipFeeRepository {
	return &MembershipFeeRepository{db: db}
}

func (r *MembershipFeeRepository) Create(ctx context.Context, f *models.MembershipFee, tx *gorm.DB) error {
	return conn(ctx, r.db, tx).Create(f).Error
}

func (r *MembershipFeeRepository) GetByTxnID(ctx context.Context, txnID string, tx *gorm.DB) (*models.MembershipFee, error) {
	var f models.MembershipFee
	if err := conn(ctx, r.db, tx).Where("txn_id = ?", txnID).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *MembershipFeeRepository) Update(ctx context.Context, id uint, updates map[string]interface{}, tx *gorm.DB) error {
	return conn(ctx, r.db, tx).Model(&models.MembershipFee{}).Where("id = ?", id).Updates(updates).Error
}

func (r *MembershipFeeRepository) ListByUser(ctx context.Context, userID uint) ([]models.MembershipFee, error) {
	var list []models.MembershipFee
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").Find(&list).Error
	return list, err
}

func (r *MembershipFeeRepository) ListByMemberID(ctx context.Context, memberID string) ([]models.MembershipFee, error) {
	var list []models.MembershipFee
	err := r.db.WithContext(ctx).Where("member_id = ?", memberID).Order("id DESC").Find(&list).Error
	return list, err
}

func (r *MembershipFeeRepository) List(ctx context.Context, p Page) ([]models.MembershipFee, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.MembershipFee{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.MembershipFee
	err := q.Order("id DESC").Limit(p.limit()).Offset(p.offset()).Find(&list).Error
	return list, total, err
}

// FeeStats summarises membership fees for the admin fee page.
type FeeStats struct {
	Total         int64           `json:"total"`
	Pending       int64           `json:"pending"`
	Verified      int64           `json:"verified"`
	Rejected      int64           `json:"rejected"`
	Refunded      int64           `json:"refunded"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PendingAmount decimal.Decimal `json:"pendingAmount"`
}

func (r *MembershipFeeRepository) Stats(ctx context.Context) (*FeeStats, error) {
	var rows []struct {
		Status string
		Count  int64
		Amount decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&models.MembershipFee{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	s := &FeeStats{TotalAmount: decimal.Zero, PendingAmount: decimal.Zero}
	for _, row := range rows {
		s.Total += row.Count
		switch row.Status {
		case domain.FeeStatusPending:
			s.Pending = row.Count
			s.PendingAmount = row.Amount
		case domain.FeeStatusVerified:
			s.Verified = row.Count
			s.TotalAmount = row.Amount
		case domain.FeeStatusRejected:
			s.Rejected = row.Count
		case domain.FeeStatusRefunded:
			s.Refunded = row.Count
		}
	}
	return s, nil
}
