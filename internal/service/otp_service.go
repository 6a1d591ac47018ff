package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"fwf/config"
	"fwf/internal/models"
	"fwf/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SendOTPInput struct {
	Email  string
	Mobile string
	Name   string
	Amount decimal.Decimal
}

type SendOTPResult struct {
	Message      string `json:"message"`
	MaskedEmail  string `json:"maskedEmail"`
	MaskedMobile string `json:"maskedMobile"`
}

// OTPService gates high-value donations behind an email/SMS code.
type OTPService struct {
	repo  *repository.OTPRepository
	cfg   config.OTPConfig
	rules *RulesProvider
	mail  MailSender
	sms   SMSSender
	log   *zap.Logger
	now   func() time.Time
}

func NewOTPService(repo *repository.OTPRepository, cfg config.OTPConfig, rules *RulesProvider, mail MailSender, sms SMSSender, log *zap.Logger) *OTPService {
	return &OTPService{repo: repo, cfg: cfg, rules: rules, mail: mail, sms: sms, log: log, now: time.Now}
}

func (s *OTPService) Send(ctx context.Context, in SendOTPInput) (*SendOTPResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Mobile = strings.TrimSpace(in.Mobile)
	if in.Email == "" || in.Mobile == "" || strings.TrimSpace(in.Name) == "" || !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: email, mobile, name, and amount are required", ErrMissingFields)
	}
	if !s.rules.Current(ctx).KYCRequired(in.Amount) {
		return nil, ErrOTPBelowThreshold
	}

	now := s.now()
	sent, err := s.repo.CountSince(ctx, in.Email, now.Add(-s.cfg.SendWindow))
	if err != nil {
		return nil, err
	}
	if sent >= int64(s.cfg.SendLimit) {
		return nil, ErrOTPRateLimited
	}

	code, err := generateOTP()
	if err != nil {
		return nil, err
	}
	rec := &models.DonationOTP{
		Email:     in.Email,
		Mobile:    in.Mobile,
		Name:      in.Name,
		Amount:    in.Amount,
		OTP:       code,
		ExpiresAt: now.Add(s.cfg.TTL),
		CreatedAt: now,
	}
	if err := s.repo.ReplaceUnverified(ctx, rec); err != nil {
		return nil, err
	}

	if s.sms != nil {
		fireAndForget(s.log, "sms otp", func(ctx context.Context) error { return s.sms.SendOTP(ctx, in.Mobile, code) })
	}
	if s.mail != nil {
		body := fmt.Sprintf("Dear %s,\n\nYou are making a donation of ₹%s to Foundation for Women's Future.\n"+
			"Identity verification via OTP is mandatory for donations of ₹50,000 or more.\n\n"+
			"Your OTP code: %s\n\nIt expires in %d minutes. If you did not initiate this donation, ignore this email.\n",
			in.Name, in.Amount.StringFixed(2), code, int(s.cfg.TTL.Minutes()))
		fireAndForget(s.log, "otp email", func(ctx context.Context) error {
			return s.mail.Send(ctx, in.Email, "FWF — Donation Verification OTP", body)
		})
	}

	masked := maskEmail(in.Email)
	s.log.Info("donation otp issued", zap.String("email", masked), zap.Time("expires_at", rec.ExpiresAt))
	return &SendOTPResult{
		Message:      "OTP sent to " + masked,
		MaskedEmail:  masked,
		MaskedMobile: maskMobile(in.Mobile),
	}, nil
}

// Verify checks code against the newest pending record for email and returns
// the verified token on a match.
func (s *OTPService) Verify(ctx context.Context, email, code string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return "", fmt.Errorf("%w: email and otp are required", ErrMissingFields)
	}
	rec, err := s.repo.FindPending(ctx, email, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrOTPNotFound
		}
		return "", err
	}
	if rec.Attempts >= s.cfg.MaxAttempts {
		if err := s.repo.Delete(ctx, rec.ID, nil); err != nil {
			return "", err
		}
		return "", ErrOTPTooManyAttempts
	}
	if rec.OTP != code {
		if err := s.repo.IncrementAttempts(ctx, rec.ID); err != nil {
			return "", err
		}
		return "", &OTPMismatchError{Remaining: s.cfg.MaxAttempts - rec.Attempts - 1}
	}
	token, err := randomHex(32)
	if err != nil {
		return "", err
	}
	if err := s.repo.MarkVerified(ctx, rec.ID, token, s.now()); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve returns the verified record behind token while it is still fresh.
func (s *OTPService) Resolve(ctx context.Context, token string, tx *gorm.DB) (*models.DonationOTP, error) {
	if token == "" {
		return nil, ErrKYCNotVerified
	}
	rec, err := s.repo.FindVerified(ctx, token, s.now().Add(-s.cfg.VerifiedTokenTTL), tx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKYCNotVerified
		}
		return nil, err
	}
	return rec, nil
}

// Consume retires a verified record once its donation is stored. Only one
// caller can consume a record.
func (s *OTPService) Consume(ctx context.Context, id uint, tx *gorm.DB) error {
	n, err := s.repo.ConsumeVerified(ctx, id, tx)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrKYCNotVerified
	}
	return nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

var (
	emailMask  = regexp.MustCompile(`^(.{2})(.*)(@.*)$`)
	mobileMask = regexp.MustCompile(`(\d{2})(\d{6})(\d{2})`)
)

func maskEmail(email string) string {
	return emailMask.ReplaceAllString(email, "${1}***${3}")
}

func maskMobile(mobile string) string {
	return mobileMask.ReplaceAllString(mobile, "${1}******${3}")
}
