package service

import (
	"context"

	"fwf/internal/models"
	"fwf/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PointInfo struct {
	PointValue        decimal.Decimal `json:"pointValue"`
	DonationPercent   decimal.Decimal `json:"donationPercent"`
	ReferralPercent   decimal.Decimal `json:"referralPercent"`
	QuizTicketPercent decimal.Decimal `json:"quizTicketPercent"`
	QuizTicketPrice   decimal.Decimal `json:"quizTicketPrice"`
}

type Dashboard struct {
	User           *models.User              `json:"user"`
	Wallet         models.Wallet             `json:"wallet"`
	Referral       *repository.ReferralStats `json:"referralStats"`
	TicketsSold    int64                     `json:"ticketsSold"`
	DonationTotal  decimal.Decimal           `json:"donationTotal"`
	DonationCount  int64                     `json:"donationCount"`
	QuizzesEntered int                       `json:"quizzesEntered"`
	RecentPoints   []models.PointsLedger     `json:"recentPoints"`
	PointInfo      PointInfo                 `json:"pointInfo"`
}

// MemberService serves the member dashboard and profile.
type MemberService struct {
	userRepo     *repository.UserRepository
	referralRepo *repository.ReferralRepository
	ticketRepo   *repository.TicketRepository
	donationRepo *repository.DonationRepository
	quizRepo     *repository.QuizRepository
	ledgerRepo   *repository.LedgerRepository
	rules        *RulesProvider
	log          *zap.Logger
}

func NewMemberService(
	userRepo *repository.UserRepository,
	referralRepo *repository.ReferralRepository,
	ticketRepo *repository.TicketRepository,
	donationRepo *repository.DonationRepository,
	quizRepo *repository.QuizRepository,
	ledgerRepo *repository.LedgerRepository,
	rules *RulesProvider,
	log *zap.Logger,
) *MemberService {
	return &MemberService{
		userRepo:     userRepo,
		referralRepo: referralRepo,
		ticketRepo:   ticketRepo,
		donationRepo: donationRepo,
		quizRepo:     quizRepo,
		ledgerRepo:   ledgerRepo,
		rules:        rules,
		log:          log,
	}
}

func (s *MemberService) Me(ctx context.Context, userID uint) (*Dashboard, error) {
	u, err := s.userRepo.GetByID(ctx, userID, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	if u.ReferralCode == nil {
		// Accounts created outside registration (the seeded admin) get a code on first view.
		code, err := referralCodeFor(u.MemberID)
		if err != nil {
			return nil, err
		}
		if err := s.userRepo.SetReferralCode(ctx, u.ID, code, nil); err != nil {
			return nil, err
		}
		u.ReferralCode = &code
	}
	d := &Dashboard{User: u, Wallet: u.Wallet}
	if d.Referral, err = s.referralRepo.StatsForReferrer(ctx, userID); err != nil {
		return nil, err
	}
	if d.TicketsSold, err = s.ticketRepo.CountBySeller(ctx, userID); err != nil {
		return nil, err
	}
	if d.DonationTotal, d.DonationCount, err = s.donationRepo.SumByMember(ctx, userID); err != nil {
		return nil, err
	}
	parts, err := s.quizRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	d.QuizzesEntered = len(parts)
	if d.RecentPoints, err = s.ledgerRepo.ListByUser(ctx, userID, 10); err != nil {
		return nil, err
	}
	r := s.rules.Current(ctx)
	d.PointInfo = PointInfo{
		PointValue:        r.PointValue,
		DonationPercent:   r.DonationPercent,
		ReferralPercent:   r.ReferralPercent,
		QuizTicketPercent: r.QuizTicketPercent,
		QuizTicketPrice:   r.QuizTicketPrice,
	}
	return d, nil
}

func (s *MemberService) UpdateProfile(ctx context.Context, userID uint, name, bio, avatarURL string) (*models.User, error) {
	u, err := s.userRepo.GetByID(ctx, userID, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	if name == "" {
		name = u.Name
	}
	if avatarURL == "" {
		avatarURL = u.AvatarURL
	}
	if err := s.userRepo.UpdateProfile(ctx, userID, name, bio, avatarURL); err != nil {
		return nil, err
	}
	u.Name, u.Bio, u.AvatarURL = name, bio, avatarURL
	return u, nil
}

func (s *MemberService) RegisterDevice(ctx context.Context, userID uint, fcmToken string) error {
	if fcmToken == "" {
		return ErrMissingFields
	}
	return s.userRepo.UpdateFCMToken(ctx, userID, fcmToken)
}

// Resolve returns the users.id for a member ID.
func (s *MemberService) Resolve(ctx context.Context, memberID string) (uint, error) {
	u, err := s.userRepo.GetByMemberID(ctx, memberID, nil)
	if err != nil {
		if isNotFound(err) {
			return 0, ErrMemberNotFound
		}
		return 0, err
	}
	return u.ID, nil
}
