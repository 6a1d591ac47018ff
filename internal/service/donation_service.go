package service

import (
	"context"
	"fmt"
	"strings"

	"fwf/internal/domain"
	"fwf/internal/models"
	"fwf/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type DonationInput struct {
	Amount        decimal.Decimal
	MemberID      *uint // users.id of the collecting/donating member; nil for anonymous
	DonorName     string
	DonorEmail    string
	DonorMobile   string
	DonorPAN      string
	DonorAddress  string
	Source        string
	PaymentID     string
	OrderID       string
	VerifiedToken string
}

type DonationResult struct {
	Donation     *models.Donation
	Points       decimal.Decimal
	PointsRupees decimal.Decimal
	Receipt80G   bool
}

type DonationService struct {
	tx           *repository.Transactor
	donationRepo *repository.DonationRepository
	wallet       *WalletService
	otp          *OTPService
	payments     *PaymentService
	rules        *RulesProvider
	notifier     Notifier
	mail         MailSender
	alerter      AdminAlerter
	adminEmail   string
	log          *zap.Logger
}

func NewDonationService(
	tx *repository.Transactor,
	donationRepo *repository.DonationRepository,
	wallet *WalletService,
	otp *OTPService,
	payments *PaymentService,
	rules *RulesProvider,
	notifier Notifier,
	mail MailSender,
	alerter AdminAlerter,
	adminEmail string,
	log *zap.Logger,
) *DonationService {
	return &DonationService{
		tx:           tx,
		donationRepo: donationRepo,
		wallet:       wallet,
		otp:          otp,
		payments:     payments,
		rules:        rules,
		notifier:     notifier,
		mail:         mail,
		alerter:      alerter,
		adminEmail:   adminEmail,
		log:          log,
	}
}

// Record stores a donation and credits the linked member. Amounts at or above
// the high-value threshold need a fresh verified OTP token, which is consumed.
func (s *DonationService) Record(ctx context.Context, in DonationInput) (*DonationResult, error) {
	return s.record(ctx, in, nil)
}

// Pay records an online donation against a stored gateway order. The amount
// is the order amount and the order is settled with the donation.
func (s *DonationService) Pay(ctx context.Context, c Checkout, in DonationInput) (*DonationResult, error) {
	order, err := s.payments.Authorize(ctx, c, domain.PaymentDonation, "", nil)
	if err != nil {
		return nil, err
	}
	in.Amount = order.Amount
	in.Source = domain.DonationSourceRazorpay
	in.PaymentID = c.PaymentID
	in.OrderID = c.OrderID
	return s.record(ctx, in, func(tx *gorm.DB) error {
		return s.payments.Settle(ctx, order, c.PaymentID, tx)
	})
}

func (s *DonationService) record(ctx context.Context, in DonationInput, settle func(tx *gorm.DB) error) (*DonationResult, error) {
	if !in.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	rules := s.rules.Current(ctx)
	kyc := rules.KYCRequired(in.Amount)
	if kyc && in.VerifiedToken == "" {
		return nil, ErrKYCNotVerified
	}
	pointsRupees, points := rules.Reward(in.Amount, rules.DonationPercent)
	if in.MemberID == nil {
		pointsRupees, points = decimal.Zero, decimal.Zero
	}

	name := strings.TrimSpace(in.DonorName)
	if name == "" {
		name = "Anonymous"
	}
	source := in.Source
	if source == "" {
		source = domain.DonationSourceRazorpay
	}
	d := &models.Donation{
		MemberID:     in.MemberID,
		Amount:       in.Amount,
		PointsEarned: points,
		DonorName:    name,
		DonorEmail:   optional(strings.ToLower(in.DonorEmail)),
		DonorMobile:  optional(in.DonorMobile),
		DonorPAN:     optional(strings.ToUpper(in.DonorPAN)),
		DonorAddress: optional(in.DonorAddress),
		Source:       source,
		PaymentID:    optional(in.PaymentID),
		OrderID:      optional(in.OrderID),
		KYCRequired:  kyc,
		KYCStatus:    domain.KYCNotRequired,
	}

	err := s.tx.InTx(ctx, nil, func(tx *gorm.DB) error {
		if settle != nil {
			if err := settle(tx); err != nil {
				return err
			}
		}
		var otpID uint
		if kyc {
			rec, err := s.otp.Resolve(ctx, in.VerifiedToken, tx)
			if err != nil {
				return err
			}
			if !rec.Amount.Equal(in.Amount) || (d.DonorEmail != nil && *d.DonorEmail != rec.Email) {
				return ErrKYCMismatch
			}
			if d.DonorEmail == nil {
				email := rec.Email
				d.DonorEmail = &email
			}
			otpID = rec.ID
			d.OTPVerified = true
			d.KYCStatus = domain.KYCOTPVerified
		}
		if err := s.donationRepo.Create(ctx, d, tx); err != nil {
			if isDuplicate(err) {
				return ErrPaymentReused
			}
			return fmt.Errorf("insert donation: %w", err)
		}
		if in.MemberID != nil {
			err := s.wallet.Credit(ctx, CreditRequest{
				UserID:      *in.MemberID,
				Points:      points,
				INR:         pointsRupees,
				Source:      domain.LedgerDonation,
				Description: fmt.Sprintf("₹%s donation from %s → %s points", in.Amount.String(), name, points.String()),
				ReferenceID: &d.ID,
			}, tx)
			if err != nil {
				return err
			}
		}
		if kyc {
			return s.otp.Consume(ctx, otpID, tx)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("donation recorded",
		zap.String("donation_id", d.Ref()),
		zap.String("amount", in.Amount.String()),
		zap.String("source", source),
		zap.Bool("kyc_required", kyc),
		zap.String("points", points.String()))

	res := &DonationResult{Donation: d, Points: points, PointsRupees: pointsRupees}
	if in.MemberID != nil && s.notifier != nil {
		s.notifier.Notify(*in.MemberID, domain.NotifDonationReceived, "Donation recorded",
			fmt.Sprintf("₹%s donation recorded. You earned %s points!", in.Amount.String(), points.String()),
			map[string]interface{}{"donation_id": d.Ref(), "amount": in.Amount.String(), "points": points.String()})
	}
	res.Receipt80G = s.dispatch(d)
	return res, nil
}

// dispatch sends the donor confirmation, the 80G receipt and the admin alert.
// It reports whether an 80G receipt was queued.
func (s *DonationService) dispatch(d *models.Donation) bool {
	email := ""
	if d.DonorEmail != nil {
		email = *d.DonorEmail
	}
	receipt := email != "" && d.DonorPAN != nil
	if s.mail != nil && email != "" {
		body := fmt.Sprintf("Dear %s,\n\nThank you for your donation of ₹%s to Foundation for Women's Future.\nDonation ID: %s\n",
			d.DonorName, d.Amount.StringFixed(2), d.Ref())
		fireAndForget(s.log, "donation confirmation email", func(ctx context.Context) error {
			return s.mail.Send(ctx, email, "Thank you for your donation — "+d.Ref(), body)
		})
		if receipt {
			fireAndForget(s.log, "80G receipt", func(ctx context.Context) error {
				if err := s.mail.Send(ctx, email, "80G Donation Receipt — "+d.Ref(), receiptBody(d)); err != nil {
					return err
				}
				return s.donationRepo.MarkReceiptIssued(ctx, d.ID)
			})
		}
	}
	alert := fmt.Sprintf("New donation %s: ₹%s from %s (%s)", d.Ref(), d.Amount.StringFixed(2), d.DonorName, d.Source)
	if d.KYCRequired {
		alert += " [high value, OTP verified]"
	}
	if s.mail != nil && s.adminEmail != "" {
		fireAndForget(s.log, "admin donation email", func(ctx context.Context) error {
			return s.mail.Send(ctx, s.adminEmail, "New donation "+d.Ref(), alert)
		})
	}
	if s.alerter != nil {
		fireAndForget(s.log, "admin donation alert", func(ctx context.Context) error { return s.alerter.Alert(ctx, alert) })
	}
	return receipt && s.mail != nil
}

func receiptBody(d *models.Donation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Receipt No: %s\n", d.Ref())
	fmt.Fprintf(&b, "Date: %s\n", d.CreatedAt.Format("02 Jan 2006"))
	fmt.Fprintf(&b, "Donor: %s\n", d.DonorName)
	fmt.Fprintf(&b, "PAN: %s\n", *d.DonorPAN)
	if d.DonorAddress != nil {
		fmt.Fprintf(&b, "Address: %s\n", *d.DonorAddress)
	}
	fmt.Fprintf(&b, "Amount: ₹%s\n", d.Amount.StringFixed(2))
	if d.PaymentID != nil {
		fmt.Fprintf(&b, "Payment reference: %s\n", *d.PaymentID)
	}
	b.WriteString("\nThis donation is eligible for deduction under Section 80G of the Income Tax Act.\n")
	return b.String()
}

func (s *DonationService) List(ctx context.Context, f repository.DonationFilter, p repository.Page) ([]models.Donation, int64, error) {
	return s.donationRepo.List(ctx, f, p)
}

// UpdateKYC moves a donation along otp_verified → pending_docs → doc_verified.
func (s *DonationService) UpdateKYC(ctx context.Context, ref string, to domain.KYCStatus, notes *string) (*models.Donation, error) {
	d, err := s.donationRepo.GetByRef(ctx, ref)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrDonationNotFound
		}
		return nil, err
	}
	if !d.KYCStatus.CanTransition(to) {
		return nil, ErrInvalidTransition
	}
	n, err := s.donationRepo.UpdateKYC(ctx, d.ID, d.KYCStatus, to, notes)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrInvalidTransition
	}
	s.log.Info("donation kyc updated", zap.String("donation_id", ref), zap.String("from", string(d.KYCStatus)), zap.String("to", string(to)))
	return s.donationRepo.GetByRef(ctx, ref)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
