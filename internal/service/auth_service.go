package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"fwf/config"
	"fwf/internal/auth"
	"fwf/internal/domain"
	"fwf/internal/models"
	"fwf/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const memberIDAttempts = 3

type RegisterInput struct {
	Name         string
	Email        string
	Mobile       string
	Password     string
	ReferralCode string
}

type AuthService struct {
	cfg      *config.Config
	tx       *repository.Transactor
	userRepo *repository.UserRepository
	referral *ReferralService
	log      *zap.Logger
}

func NewAuthService(cfg *config.Config, tx *repository.Transactor, userRepo *repository.UserRepository, referral *ReferralService, log *zap.Logger) *AuthService {
	return &AuthService{cfg: cfg, tx: tx, userRepo: userRepo, referral: referral, log: log}
}

// HashPassword is also used to seed the admin account.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Register creates a member with the next member ID and, when a referral
// code is given, a pending referral to its owner.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Mobile = strings.TrimSpace(in.Mobile)
	if in.Name == "" || in.Email == "" || in.Mobile == "" || len(in.Password) < 6 {
		return nil, "", ErrMissingFields
	}
	if _, err := s.userRepo.GetByEmail(ctx, in.Email); err == nil {
		return nil, "", ErrEmailExists
	} else if !isNotFound(err) {
		return nil, "", err
	}
	if _, err := s.userRepo.GetByIdentifier(ctx, in.Mobile); err == nil {
		return nil, "", ErrMobileExists
	} else if !isNotFound(err) {
		return nil, "", err
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}

	var u *models.User
	for attempt := 1; ; attempt++ {
		u, err = s.create(ctx, in, hash)
		if err == nil || !isDuplicate(err) || attempt == memberIDAttempts {
			break
		}
		s.log.Warn("member id collision, retrying", zap.Int("attempt", attempt))
	}
	if err != nil {
		if isDuplicate(err) {
			return nil, "", ErrEmailExists
		}
		return nil, "", err
	}
	s.log.Info("member registered", zap.String("member_id", u.MemberID), zap.Bool("referred", u.ReferredBy != nil))

	token, err := auth.GenerateToken(&s.cfg.JWT, u.ID, u.MemberID, u.Role)
	if err != nil {
		return u, "", err
	}
	return u, token, nil
}

func (s *AuthService) create(ctx context.Context, in RegisterInput, hash string) (*models.User, error) {
	var u *models.User
	err := s.tx.InTx(ctx, nil, func(tx *gorm.DB) error {
		memberID, err := s.userRepo.NextMemberID(ctx, s.cfg.Admin.OrgPrefix, tx)
		if err != nil {
			return err
		}
		code, err := referralCodeFor(memberID)
		if err != nil {
			return err
		}
		email, mobile := in.Email, in.Mobile
		u = &models.User{
			MemberID:     memberID,
			Name:         in.Name,
			Email:        &email,
			Mobile:       &mobile,
			PasswordHash: hash,
			Role:         domain.RoleMember,
			ReferralCode: &code,
		}
		if err := s.userRepo.Create(ctx, u, tx); err != nil {
			return err
		}
		if in.ReferralCode == "" {
			return nil
		}
		ref, err := s.referral.Register(ctx, in.ReferralCode, u.ID, tx)
		if err != nil {
			return err
		}
		u.ReferredBy = &ref.ReferrerID
		return nil
	})
	return u, err
}

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// referralCodeFor returns the member ID without dashes plus four random characters.
func referralCodeFor(memberID string) (string, error) {
	var b strings.Builder
	b.WriteString(strings.ReplaceAll(memberID, "-", ""))
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < 4; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("referral code: %w", err)
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// Login accepts a member ID, email or mobile number as identifier.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*models.User, string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, "", ErrInvalidCreds
	}
	u, err := s.userRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		if isNotFound(err) {
			return nil, "", ErrInvalidCreds
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCreds
	}
	if !u.FirstLoginDone && !u.IsAdmin() {
		if err := s.userRepo.MarkFirstLogin(ctx, u.ID); err != nil {
			s.log.Warn("mark first login", zap.Uint("user_id", u.ID), zap.Error(err))
		}
	}
	token, err := auth.GenerateToken(&s.cfg.JWT, u.ID, u.MemberID, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *AuthService) AdminLogin(ctx context.Context, identifier, password string) (*models.User, string, error) {
	u, token, err := s.Login(ctx, identifier, password)
	if err != nil {
		return nil, "", err
	}
	if !u.IsAdmin() {
		return nil, "", ErrInvalidCreds
	}
	return u, token, nil
}

// ChangePassword requires the current password.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return ErrMissingFields
	}
	u, err := s.userRepo.GetByID(ctx, userID, nil)
	if err != nil {
		if isNotFound(err) {
			return ErrInvalidCreds
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCreds
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.userRepo.SetPasswordHash(ctx, u.ID, hash)
}

// ResetPassword is the admin override; no current password needed.
func (s *AuthService) ResetPassword(ctx context.Context, memberID, newPassword string) error {
	if len(newPassword) < 6 {
		return ErrMissingFields
	}
	u, err := s.userRepo.GetByMemberID(ctx, memberID, nil)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.userRepo.SetPasswordHash(ctx, u.ID, hash)
}
