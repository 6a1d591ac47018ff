package repository

import (
	"context"

	"fwf/internal/models"

	"gorm.io/gorm"
)

type TicketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) Create(ctx context.Context, t *models.QuizTicket, tx *gorm.DB) error {
	return conn(ctx, r.db, tx).Create(t).Error
}

func (r *TicketRepository) CountBySeller(ctx context.Context, sellerID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.QuizTicket{}).Where("seller_id = ?", sellerID).Count(&n).Error
	return n, err
}

func (r *TicketRepository) List(ctx context.Context, sellerID uint, p Page) ([]models.QuizTicket, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.QuizTicket{})
	if sellerID != 0 {
		q = q.Where("seller_id = ?", sellerID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.QuizTicket
	err := q.Order("sold_at DESC").Limit(p.limit()).Offset(p.offset()).Find(&list).Error
	return list, total, err
}
