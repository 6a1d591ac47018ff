package service

import (
	"context"

	"fwf/internal/domain"
	"fwf/internal/models"
	"fwf/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Overview struct {
	Stats         *repository.DashboardStats `json:"stats"`
	LatestMembers []models.User              `json:"latestMembers"`
}

type MemberDetail struct {
	User      *models.User           `json:"user"`
	Ledger    []models.PointsLedger  `json:"ledger"`
	Donations []models.Donation      `json:"donations"`
	Referral  *ReferralOverview      `json:"referral"`
	Fees      []models.MembershipFee `json:"fees"`
}

// AdminService backs the read-mostly admin dashboards and member management.
type AdminService struct {
	adminRepo    *repository.AdminRepository
	userRepo     *repository.UserRepository
	ledgerRepo   *repository.LedgerRepository
	donationRepo *repository.DonationRepository
	feeRepo      *repository.MembershipFeeRepository
	settingRepo  *repository.SettingRepository
	referral     *ReferralService
	wallet       *WalletService
	log          *zap.Logger
}

func NewAdminService(
	adminRepo *repository.AdminRepository,
	userRepo *repository.UserRepository,
	ledgerRepo *repository.LedgerRepository,
	donationRepo *repository.DonationRepository,
	feeRepo *repository.MembershipFeeRepository,
	settingRepo *repository.SettingRepository,
	referral *ReferralService,
	wallet *WalletService,
	log *zap.Logger,
) *AdminService {
	return &AdminService{
		adminRepo:    adminRepo,
		userRepo:     userRepo,
		ledgerRepo:   ledgerRepo,
		donationRepo: donationRepo,
		feeRepo:      feeRepo,
		settingRepo:  settingRepo,
		referral:     referral,
		wallet:       wallet,
		log:          log,
	}
}

func (s *AdminService) Overview(ctx context.Context) (*Overview, error) {
	stats, err := s.adminRepo.GetDashboardStats(ctx)
	if err != nil {
		return nil, err
	}
	latest, err := s.adminRepo.LatestMembers(ctx, 10)
	if err != nil {
		return nil, err
	}
	return &Overview{Stats: stats, LatestMembers: latest}, nil
}

func (s *AdminService) Members(ctx context.Context, search string, p repository.Page) ([]models.User, int64, error) {
	return s.userRepo.List(ctx, search, p)
}

func (s *AdminService) member(ctx context.Context, memberID string) (*models.User, error) {
	u, err := s.userRepo.GetByMemberID(ctx, memberID, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *AdminService) Member(ctx context.Context, memberID string) (*MemberDetail, error) {
	u, err := s.member(ctx, memberID)
	if err != nil {
		return nil, err
	}
	d := &MemberDetail{User: u}
	if d.Ledger, err = s.ledgerRepo.ListByUser(ctx, u.ID, 50); err != nil {
		return nil, err
	}
	if d.Donations, err = s.donationRepo.ListByMember(ctx, u.ID, 50); err != nil {
		return nil, err
	}
	if d.Referral, err = s.referral.ForReferrer(ctx, u.ID); err != nil {
		return nil, err
	}
	if d.Fees, err = s.feeRepo.ListByUser(ctx, u.ID); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *AdminService) Reconcile(ctx context.Context, memberID string) (*Reconciliation, error) {
	u, err := s.member(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return s.wallet.Reconcile(ctx, u.ID)
}

// ToggleMember flips membership_active and returns the new value.
func (s *AdminService) ToggleMember(ctx context.Context, memberID string) (bool, error) {
	u, err := s.member(ctx, memberID)
	if err != nil {
		return false, err
	}
	active := !u.MembershipActive
	if err := s.userRepo.SetMembershipActive(ctx, u.ID, active, nil); err != nil {
		return false, err
	}
	s.log.Info("membership toggled", zap.String("member_id", memberID), zap.Bool("active", active))
	return active, nil
}

func (s *AdminService) DeleteMember(ctx context.Context, memberID string) error {
	u, err := s.member(ctx, memberID)
	if err != nil {
		return err
	}
	if u.Role == domain.RoleAdmin {
		return ErrInvalidTransition
	}
	if err := s.userRepo.DeleteCascade(ctx, u.ID); err != nil {
		if isNotFound(err) {
			return ErrMemberNotFound
		}
		return err
	}
	s.log.Info("member deleted", zap.String("member_id", memberID))
	return nil
}

func (s *AdminService) Settings(ctx context.Context) ([]models.SystemSetting, error) {
	return s.settingRepo.GetAll(ctx)
}

// UpdateSettings writes point-rule overrides; unknown keys are rejected.
func (s *AdminService) UpdateSettings(ctx context.Context, values map[string]string) error {
	for k, v := range values {
		if !IsRuleKey(k) {
			return ErrMissingFields
		}
		if d, err := decimal.NewFromString(v); err != nil || d.IsNegative() {
			return ErrInvalidAmount
		}
	}
	for k, v := range values {
		if err := s.settingRepo.Set(ctx, k, v); err != nil {
			return err
		}
		s.log.Info("setting updated", zap.String("key", k), zap.String("value", v))
	}
	return nil
}
