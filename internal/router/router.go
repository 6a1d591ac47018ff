package router

import (
	"net/http"

	"fwf/config"
	"fwf/internal/handler"
	"fwf/internal/middleware"
	"fwf/internal/repository"
	"fwf/internal/service"
	"fwf/internal/ws"
	"fwf/pkg/cloudinary"
	"fwf/pkg/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the process-level collaborators. Nil outbound clients disable
// that channel.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Log      *zap.Logger
	Hub      *ws.Hub
	Cloud    cloudinary.Client
	Payments payment.Provider
	Mail     service.MailSender
	SMS      service.SMSSender
	Alerter  service.AdminAlerter
	FCM      *service.FCMService
	Limiter  *middleware.InMemoryRateLimiter
}

func Setup(d Deps) *gin.Engine {
	cfg, db, log := d.Config, d.DB, d.Log
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.Recovery(log.Named("http")))
	r.Use(middleware.RequestLogger(log.Named("http")))
	if d.Limiter != nil {
		r.Use(middleware.RateLimit(d.Limiter))
	}

	// Repositories
	tx := repository.NewTransactor(db, log.Named("tx"))
	userRepo := repository.NewUserRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	donationRepo := repository.NewDonationRepository(db)
	otpRepo := repository.NewOTPRepository(db)
	referralRepo := repository.NewReferralRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	postRepo := repository.NewPostRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	feeRepo := repository.NewMembershipFeeRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// Services
	var live service.LiveFeed
	if d.Hub != nil {
		live = d.Hub
	}
	notifSvc := service.NewNotificationService(notificationRepo, userRepo, d.FCM, live, log.Named("notify"))
	rules := service.NewRulesProvider(&cfg.Points, settingRepo)
	walletSvc := service.NewWalletService(tx, walletRepo, ledgerRepo, log.Named("wallet"))
	paymentSvc := service.NewPaymentService(paymentRepo, d.Payments, log.Named("payment"))
	otpSvc := service.NewOTPService(otpRepo, cfg.OTP, rules, d.Mail, d.SMS, log.Named("otp"))
	donationSvc := service.NewDonationService(tx, donationRepo, walletSvc, otpSvc, paymentSvc, rules, notifSvc, d.Mail, d.Alerter, cfg.Mail.AdminEmail, log.Named("donation"))
	referralSvc := service.NewReferralService(tx, referralRepo, userRepo, walletSvc, rules, notifSvc, log.Named("referral"))
	ticketSvc := service.NewTicketService(tx, ticketRepo, walletSvc, rules, notifSvc, log.Named("ticket"))
	taskSvc := service.NewTaskService(tx, taskRepo, postRepo, userRepo, walletSvc, notifSvc, log.Named("task"))
	quizSvc := service.NewQuizService(tx, quizRepo, userRepo, walletSvc, paymentSvc, rules, cfg.Quiz, notifSvc, log.Named("quiz"))
	membershipSvc := service.NewMembershipService(tx, feeRepo, userRepo, referralSvc, rules, paymentSvc, log.Named("membership"))
	authSvc := service.NewAuthService(cfg, tx, userRepo, referralSvc, log.Named("auth"))
	memberSvc := service.NewMemberService(userRepo, referralRepo, ticketRepo, donationRepo, quizRepo, ledgerRepo, rules, log.Named("member"))
	adminSvc := service.NewAdminService(adminRepo, userRepo, ledgerRepo, donationRepo, feeRepo, settingRepo, referralSvc, walletSvc, log.Named("admin"))

	// Handlers
	hlog := log.Named("handler")
	authHandler := handler.NewAuthHandler(authSvc, cfg, hlog)
	meHandler := handler.NewMeHandler(memberSvc, walletSvc, hlog)
	donationHandler := handler.NewDonationHandler(donationSvc, otpSvc, memberSvc, paymentSvc, hlog)
	referralHandler := handler.NewReferralHandler(referralSvc, hlog)
	ticketHandler := handler.NewTicketHandler(ticketSvc, hlog)
	taskHandler := handler.NewTaskHandler(taskSvc, hlog)
	quizHandler := handler.NewQuizHandler(quizSvc, hlog)
	membershipHandler := handler.NewMembershipHandler(membershipSvc, hlog)
	notificationHandler := handler.NewNotificationHandler(notifSvc, hlog)
	uploadHandler := handler.NewUploadHandler(d.Cloud, hlog)
	adminHandler := handler.NewAdminHandler(adminSvc, donationSvc, referralSvc, ticketSvc, memberSvc, authSvc, hlog)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	if d.Hub != nil {
		r.GET("/ws/live", ws.UpgradeLive(&cfg.JWT, d.Hub, log.Named("ws")))
	}

	authed := middleware.AuthRequired(&cfg.JWT)
	admin := middleware.AdminRequired()

	api := r.Group("/api")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)
		api.POST("/auth/change-password", authed, authHandler.ChangePassword)
		api.POST("/admin/login", authHandler.AdminLogin)

		api.POST("/donation-otp", donationHandler.DonationOTP)
		api.POST("/pay/order", donationHandler.CreateOrder)
		api.POST("/pay/donation", donationHandler.PayDonation)
		api.POST("/pay/membership/order", authed, membershipHandler.CreateOrder)
		api.POST("/pay/membership", authed, membershipHandler.Pay)

		api.POST("/cloudinary-sign", authed, uploadHandler.Sign)
		api.GET("/social-tasks", authed, taskHandler.List)
		api.GET("/social/feed", authed, taskHandler.Feed)

		api.GET("/quizzes", authed, quizHandler.List)
		api.GET("/quiz/:quizId", authed, quizHandler.Get)
		api.POST("/quiz/:quizId/order", authed, quizHandler.CreateOrder)
		api.POST("/quiz/:quizId/enroll", authed, quizHandler.Enroll)
		api.POST("/quiz/:quizId/submit", authed, quizHandler.Submit)
	}

	member := api.Group("/member", authed)
	{
		member.GET("/me", meHandler.Me)
		member.PUT("/profile", meHandler.UpdateProfile)
		member.POST("/device", meHandler.RegisterDevice)
		member.GET("/points-history", meHandler.PointsHistory)
		member.POST("/apply-wallet", meHandler.ApplyWallet)
		member.POST("/redeem-points", meHandler.RedeemPoints)

		member.POST("/record-donation", donationHandler.RecordDonation)
		member.POST("/sell-ticket", ticketHandler.Sell)
		member.GET("/tickets", ticketHandler.Mine)
		member.POST("/complete-task", taskHandler.Complete)
		member.POST("/upload/task-photo", uploadHandler.TaskPhoto)

		member.GET("/referrals", referralHandler.MyReferrals)
		member.POST("/register-referral", referralHandler.RegisterReferral)
		member.POST("/activate-referral", admin, referralHandler.ActivateReferral)

		member.GET("/quizzes", quizHandler.Mine)
		member.GET("/fees", membershipHandler.Mine)
		member.GET("/notifications", notificationHandler.List)
		member.PUT("/notifications/:id/read", notificationHandler.MarkRead)
	}

	adminGroup := api.Group("/admin", authed, admin)
	{
		adminGroup.GET("/overview", adminHandler.Overview)
		adminGroup.GET("/members", adminHandler.Members)
		adminGroup.GET("/member/:memberId", adminHandler.Member)
		adminGroup.GET("/member/:memberId/reconcile", adminHandler.Reconcile)
		adminGroup.POST("/member/:memberId/reset-password", adminHandler.ResetPassword)
		adminGroup.DELETE("/member/:memberId", adminHandler.DeleteMember)
		adminGroup.POST("/toggle-member", adminHandler.ToggleMember)
		adminGroup.GET("/donations", adminHandler.Donations)
		adminGroup.POST("/donation/:donationId/kyc", adminHandler.UpdateKYC)
		adminGroup.GET("/referrals", adminHandler.Referrals)
		adminGroup.GET("/tickets", adminHandler.Tickets)
		adminGroup.GET("/settings", adminHandler.Settings)
		adminGroup.PUT("/settings", adminHandler.UpdateSettings)

		adminGroup.GET("/membership-fees", membershipHandler.AdminList)
		adminGroup.GET("/membership-fees/:memberId", membershipHandler.AdminMemberFees)
		adminGroup.POST("/membership-fee", membershipHandler.AdminRecord)
		adminGroup.POST("/membership-fee/:txnId", membershipHandler.AdminUpdate)

		adminGroup.POST("/quiz", quizHandler.Create)
		adminGroup.POST("/quiz/:quizId/status", quizHandler.SetStatus)
		adminGroup.POST("/quiz/:quizId/declare", quizHandler.Declare)
	}

	return r
}
