package repository

import (
	"context"
	"time"

	"fwf/internal/models"

	"gorm.io/gorm"
)

type OTPRepository struct {
	db *gorm.DB
}

func NewOTPRepository(db *gorm.DB) *OTPRepository {
	return &OTPRepository{db: db}
}

// CountSince counts codes issued to email since t, replaced ones included.
func (r *OTPRepository) CountSince(ctx context.Context, email string, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Unscoped().Model(&models.DonationOTP{}).
		Where("email = ? AND created_at >= ?", email, since).
		Count(&n).Error
	return n, err
}

// ReplaceUnverified soft-deletes pending codes for email and stores o.
func (r *OTPRepository) ReplaceUnverified(ctx context.Context, o *models.DonationOTP) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ? AND verified = ?", o.Email, false).Delete(&models.DonationOTP{}).Error; err != nil {
			return err
		}
		return tx.Create(o).Error
	})
}

// FindPending returns the newest unverified, unexpired code for email.
func (r *OTPRepository) FindPending(ctx context.Context, email string, now time.Time) (*models.DonationOTP, error) {
	var o models.DonationOTP
	err := r.db.WithContext(ctx).
		Where("email = ? AND verified = ? AND expires_at > ?", email, false, now).
		Order("created_at DESC").Order("id DESC").
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OTPRepository) IncrementAttempts(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.DonationOTP{}).Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
}

func (r *OTPRepository) MarkVerified(ctx context.Context, id uint, token string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.DonationOTP{}).Where("id = ?", id).
		Updates(map[string]interface{}{"verified": true, "verified_token": token, "verified_at": at}).Error
}

func (r *OTPRepository) Delete(ctx context.Context, id uint, tx *gorm.DB) error {
	return conn(ctx, r.db, tx).Delete(&models.DonationOTP{}, id).Error
}

// ConsumeVerified retires a verified record. It returns 0 when the record
// was already consumed.
func (r *OTPRepository) ConsumeVerified(ctx context.Context, id uint, tx *gorm.DB) (int64, error) {
	res := conn(ctx, r.db, tx).Where("verified = ?", true).Delete(&models.DonationOTP{}, id)
	return res.RowsAffected, res.Error
}

// FindVerified returns the verified record for token if it was verified at or
// after since.
func (r *OTPRepository) FindVerified(ctx context.Context, token string, since time.Time, tx *gorm.DB) (*models.DonationOTP, error) {
	var o models.DonationOTP
	err := conn(ctx, r.db, tx).
		Where("verified_token = ? AND verified = ? AND verified_at >= ?", token, true, since).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}
