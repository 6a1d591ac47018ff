package repository

import (
	"context"
	"fmt"

	"fwf/internal/domain"
	"fwf/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DonationRepository struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

// Create inserts d and assigns its DON-NNNNNN reference from the row ID.
func (r *DonationRepository) Create(ctx context.Context, d *models.Donation, tx *gorm.DB) error {
	db := conn(ctx, r.db, tx)
	if err := db.Create(d).Error; err != nil {
		return err
	}
	ref := fmt.Sprintf("DON-%06d", d.ID)
	if err := db.Model(d).Update("donation_id", ref).Error; err != nil {
		return err
	}
	d.DonationID = &ref
	return nil
}

func (r *DonationRepository) GetByRef(ctx context.Context, ref string) (*models.Donation, error) {
	var d models.Donation
	err := r.db.WithContext(ctx).Where("donation_id = ?", ref).First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DonationRepository) ListByMember(ctx context.Context, memberID uint, limit int) ([]models.Donation, error) {
	var list []models.Donation
	err := r.db.WithContext(ctx).Where("member_id = ?", memberID).Order("created_at DESC").Limit(limit).Find(&list).Error
	return list, err
}

// DonationFilter narrows the admin donation list.
type DonationFilter struct {
	KYCStatus domain.KYCStatus
	Source    string
}

func (r *DonationRepository) List(ctx context.Context, f DonationFilter, p Page) ([]models.Donation, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Donation{})
	if f.KYCStatus != "" {
		q = q.Where("kyc_status = ?", f.KYCStatus)
	}
	if f.Source != "" {
		q = q.Where("source = ?", f.Source)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.Donation
	err := q.Order("created_at DESC").Limit(p.limit()).Offset(p.offset()).Find(&list).Error
	return list, total, err
}

// UpdateKYC moves a donation from one KYC status to another. It matches on
// the current status so concurrent reviews cannot both apply.
func (r *DonationRepository) UpdateKYC(ctx context.Context, id uint, from, to domain.KYCStatus, notes *string) (int64, error) {
	updates := map[string]interface{}{"kyc_status": to}
	if notes != nil {
		updates["admin_notes"] = *notes
	}
	res := r.db.WithContext(ctx).Model(&models.Donation{}).
		Where("id = ? AND kyc_status = ?", id, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *DonationRepository) MarkReceiptIssued(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Donation{}).Where("id = ?", id).Update("receipt_issued", true).Error
}

func (r *DonationRepository) SumByMember(ctx context.Context, memberID uint) (decimal.Decimal, int64, error) {
	var row struct {
		Total decimal.Decimal
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&models.Donation{}).
		Select("COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("member_id = ?", memberID).
		Scan(&row).Error
	return row.Total, row.Count, err
}
