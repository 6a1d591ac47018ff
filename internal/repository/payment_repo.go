package repository

import (
	"context"
	"time"

	"fwf/internal/domain"
	"fwf/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, o *models.PaymentOrder) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *PaymentRepository) GetByProviderRef(ctx context.Context, ref string, tx *gorm.DB) (*models.PaymentOrder, error) {
	var o models.PaymentOrder
	if err := conn(ctx, r.db, tx).Where("provider_ref = ?", ref).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// MarkPaid settles a created order with paymentID. It returns 0 when the
// order was already settled.
func (r *PaymentRepository) MarkPaid(ctx context.Context, id uint, paymentID string, at time.Time, tx *gorm.DB) (int64, error) {
	res := conn(ctx, r.db, tx).Model(&models.PaymentOrder{}).
		Where("id = ? AND status = ?", id, domain.PaymentCreated).
		Updates(map[string]interface{}{"status": domain.PaymentPaid, "payment_id": paymentID, "paid_at": at})
	return res.RowsAffected, res.Error
}
