package repository

import (
	"context"
	"time"

	"fwf/internal/domain"
	"fwf/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReferralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// CreateReferral persists a new pending referral relationship.
func (r *ReferralRepository) CreateReferral(ctx context.Context, ref *models.Referral, tx *gorm.DB) error {
	return conn(ctx, r.db, tx).Create(ref).Error
}

// GetByReferredUserID returns the referral for a user that was referred by someone.
func (r *ReferralRepository) GetByReferredUserID(ctx context.Context, userID uint, tx *gorm.DB) (*models.Referral, error) {
	var ref models.Referral
	err := conn(ctx, r.db, tx).Where("referred_user_id = ?", userID).First(&ref).Error
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// Activate flips the pending referral between referrer and referred to
// active. The returned count is 0 when it was already active or missing.
func (r *ReferralRepository) Activate(ctx context.Context, referrerID, referredID uint, amount, points decimal.Decimal, tx *gorm.DB) (int64, error) {
	res := conn(ctx, r.db, tx).Model(&models.Referral{}).
		Where("referrer_id = ? AND referred_user_id = ? AND status = ?", referrerID, referredID, domain.ReferralPending).
		Updates(map[string]interface{}{
			"status":          domain.ReferralActive,
			"payment_amount":  amount,
			"referral_points": points,
			"activated_at":    time.Now(),
		})
	return res.RowsAffected, res.Error
}

// ListByReferrerID returns all referrals created by the given referrer, with referred user preloaded.
func (r *ReferralRepository) ListByReferrerID(ctx context.Context, referrerID uint, limit, offset int) ([]models.Referral, error) {
	var list []models.Referral
	err := r.db.WithContext(ctx).Where("referrer_id = ?", referrerID).
		Preload("ReferredUser").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

type ReferralStats struct {
	Total        int64           `json:"total"`
	Active       int64           `json:"active"`
	Pending      int64           `json:"pending"`
	PointsEarned decimal.Decimal `json:"points_earned"`
}

func (r *ReferralRepository) StatsForReferrer(ctx context.Context, referrerID uint) (*ReferralStats, error) {
	var rows []struct {
		Status domain.ReferralStatus
		Count  int64
		Points decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&models.Referral{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(referral_points), 0) AS points").
		Where("referrer_id = ?", referrerID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	s := &ReferralStats{PointsEarned: decimal.Zero}
	for _, row := range rows {
		s.Total += row.Count
		switch row.Status {
		case domain.ReferralActive:
			s.Active = row.Count
			s.PointsEarned = s.PointsEarned.Add(row.Points)
		case domain.ReferralPending:
			s.Pending = row.Count
		}
	}
	return s, nil
}

// List returns all referrals for the admin view.
func (r *ReferralRepository) List(ctx context.Context, status domain.ReferralStatus, p Page) ([]models.Referral, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Referral{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.Referral
	err := q.Preload("Referrer").Preload("ReferredUser").
		Order("created_at DESC").Limit(p.limit()).Offset(p.offset()).
		Find(&list).Error
	return list, total, err
}
