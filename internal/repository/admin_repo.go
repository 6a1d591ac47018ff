package repository

import (
	"context"

	"fwf/internal/domain"
	"fwf/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DashboardStats struct {
	Members              int64           `json:"members"`
	ActiveMembers        int64           `json:"active_members"`
	TotalPoints          decimal.Decimal `json:"total_points"`
	TotalDonationsCount  int64           `json:"total_donations_count"`
	TotalDonationsAmount decimal.Decimal `json:"total_donations_amount"`
	PendingKYC           int64           `json:"pending_kyc"`
	TotalReferrals       int64           `json:"total_referrals"`
	ActiveReferrals      int64           `json:"active_referrals"`
	TotalTicketsSold     int64           `json:"total_tickets_sold"`
	TaskCompletions      int64           `json:"task_completions"`
	PendingFees          int64           `json:"pending_fees"`
	TotalFeeCollected    decimal.Decimal `json:"total_fee_collected"`
}

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	db := r.db.WithContext(ctx)
	var s DashboardStats
	members := db.Model(&models.User{}).Where("role = ?", domain.RoleMember)
	counts := []struct {
		q   *gorm.DB
		dst *int64
	}{
		{members.Session(&gorm.Session{}), &s.Members},
		{members.Session(&gorm.Session{}).Where("membership_active = ?", true), &s.ActiveMembers},
		{db.Model(&models.Donation{}), &s.TotalDonationsCount},
		{db.Model(&models.Donation{}).Where("kyc_status = ?", domain.KYCPendingDocs), &s.PendingKYC},
		{db.Model(&models.Referral{}), &s.TotalReferrals},
		{db.Model(&models.Referral{}).Where("status = ?", domain.ReferralActive), &s.ActiveReferrals},
		{db.Model(&models.QuizTicket{}), &s.TotalTicketsSold},
		{db.Model(&models.TaskCompletion{}), &s.TaskCompletions},
		{db.Model(&models.MembershipFee{}).Where("status = ?", domain.FeeStatusPending), &s.PendingFees},
	}
	for _, c := range counts {
		if err := c.q.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}

	sums := []struct {
		q   *gorm.DB
		col string
		dst *decimal.Decimal
	}{
		{members.Session(&gorm.Session{}), "wallet_total_points_earned", &s.TotalPoints},
		{db.Model(&models.Donation{}), "amount", &s.TotalDonationsAmount},
		{db.Model(&models.MembershipFee{}).Where("status = ?", domain.FeeStatusVerified), "amount", &s.TotalFeeCollected},
	}
	for _, sm := range sums {
		var row struct{ Total decimal.Decimal }
		if err := sm.q.Select("COALESCE(SUM(" + sm.col + "), 0) AS total").Scan(&row).Error; err != nil {
			return nil, err
		}
		*sm.dst = row.Total
	}
	return &s, nil
}

// LatestMembers returns the most recently registered members.
func (r *AdminRepository) LatestMembers(ctx context.Context, limit int) ([]models.User, error) {
	var list []models.User
	err := r.db.WithContext(ctx).Where("role = ?", domain.RoleMember).Order("id DESC").Limit(limit).Find(&list).Error
	return list, err
}
