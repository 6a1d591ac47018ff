package service

import (
	"context"
	"testing"

	"fwf/config"
	"fwf/internal/repository"
	"fwf/internal/testutil"
	"fwf/pkg/payment"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

// harness is the service graph over one in-memory database, without
// notifications or outbound clients.
type harness struct {
	db         *gorm.DB
	cfg        *config.Config
	rules      *RulesProvider
	settings   *repository.SettingRepository
	wallet     *WalletService
	payment    *PaymentService
	otp        *OTPService
	donation   *DonationService
	referral   *ReferralService
	ticket     *TicketService
	task       *TaskService
	quiz       *QuizService
	membership *MembershipService
	auth       *AuthService
	member     *MemberService
	admin      *AdminService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := testutil.Config()
	log := zaptest.NewLogger(t)

	tx := repository.NewTransactor(db, log)
	userRepo := repository.NewUserRepository(db)
	referralRepo := repository.NewReferralRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	donationRepo := repository.NewDonationRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	feeRepo := repository.NewMembershipFeeRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	h := &harness{db: db, cfg: cfg, settings: settingRepo}
	h.rules = NewRulesProvider(&cfg.Points, settingRepo)
	h.wallet = NewWalletService(tx, repository.NewWalletRepository(db), ledgerRepo, log)
	h.payment = NewPaymentService(repository.NewPaymentRepository(db), &payment.StubProvider{}, log)
	h.otp = NewOTPService(repository.NewOTPRepository(db), cfg.OTP, h.rules, nil, nil, log)
	h.donation = NewDonationService(tx, donationRepo, h.wallet, h.otp, h.payment, h.rules, nil, nil, nil, "", log)
	h.referral = NewReferralService(tx, referralRepo, userRepo, h.wallet, h.rules, nil, log)
	h.ticket = NewTicketService(tx, ticketRepo, h.wallet, h.rules, nil, log)
	h.task = NewTaskService(tx, repository.NewTaskRepository(db), repository.NewPostRepository(db), userRepo, h.wallet, nil, log)
	h.quiz = NewQuizService(tx, quizRepo, userRepo, h.wallet, h.payment, h.rules, cfg.Quiz, nil, log)
	h.membership = NewMembershipService(tx, feeRepo, userRepo, h.referral, h.rules, h.payment, log)
	h.auth = NewAuthService(cfg, tx, userRepo, h.referral, log)
	h.member = NewMemberService(userRepo, referralRepo, ticketRepo, donationRepo, quizRepo, ledgerRepo, h.rules, log)
	h.admin = NewAdminService(repository.NewAdminRepository(db), userRepo, ledgerRepo, donationRepo, feeRepo, settingRepo, h.referral, h.wallet, log)
	return h
}

// paid opens an order through the stub gateway and returns the checkout a
// client would post back for it.
func (h *harness) paid(t *testing.T, in OrderInput, paymentID string) Checkout {
	t.Helper()
	order, err := h.payment.CreateOrder(context.Background(), in)
	require.NoError(t, err)
	return Checkout{OrderID: order.ID, PaymentID: paymentID, Signature: "sig"}
}
