package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"fwf/config"
	"fwf/internal/database"
	"fwf/internal/domain"
	"fwf/internal/logger"
	"fwf/internal/middleware"
	"fwf/internal/repository"
	"fwf/internal/router"
	"fwf/internal/service"
	"fwf/internal/ws"
	"fwf/pkg/cloudinary"
	"fwf/pkg/notify"
	"fwf/pkg/payment"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// ruleDefaults makes the point rules visible in the admin settings page on
// first boot. Later config changes do not override stored values.
func ruleDefaults(p *config.PointsConfig) map[string]string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return map[string]string{
		domain.SettingPointValue:         f(p.PointValue),
		domain.SettingDonationPercent:    f(p.DonationPercent),
		domain.SettingReferralPercent:    f(p.ReferralPercent),
		domain.SettingQuizTicketPercent:  f(p.QuizTicketPercent),
		domain.SettingQuizTicketPrice:    f(p.QuizTicketPrice),
		domain.SettingHighValueThreshold: f(p.HighValueThreshold),
	}
}

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.Init(cfg.Server.Env)
	defer log.Sync()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatal("database", zap.Error(err))
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}
	if err := database.SeedAdmin(db, &cfg.Admin, service.HashPassword, log.Named("seed")); err != nil {
		log.Fatal("seed admin", zap.Error(err))
	}
	if err := database.SeedSocialTasks(db, log.Named("seed")); err != nil {
		log.Fatal("seed tasks", zap.Error(err))
	}
	if err := repository.NewSettingRepository(db).SeedDefaults(context.Background(), ruleDefaults(&cfg.Points)); err != nil {
		log.Fatal("seed settings", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := router.Deps{
		Config:  cfg,
		DB:      db,
		Log:     log,
		Hub:     ws.NewHub(),
		FCM:     service.NewFCMService(cfg.Firebase.ServiceAccountPath, log.Named("fcm")),
		Limiter: middleware.NewInMemoryRateLimiter(cfg.Server.RateLimit, cfg.Server.RateWindow),
	}
	go deps.Limiter.Run(ctx)

	deps.Payments, err = payment.New(cfg.Server.Env, cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	if err != nil {
		log.Fatal("payments", zap.Error(err))
	}
	if deps.Payments.Name() == "stub" {
		log.Warn("razorpay not configured; using stub payments")
	}
	if cfg.Mail.Host != "" {
		deps.Mail = notify.NewMailer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From)
	} else {
		log.Info("mail disabled: set MAIL_HOST to enable")
	}
	if cfg.SMS.AuthKey != "" {
		deps.SMS = notify.NewMSG91(cfg.SMS.BaseURL, cfg.SMS.AuthKey, cfg.SMS.TemplateID)
	} else {
		log.Info("sms disabled: set SMS_AUTH_KEY to enable")
	}
	if cfg.Telegram.BotToken != "" {
		tg, err := notify.NewTelegramAlerter(cfg.Telegram.BotToken, cfg.Telegram.AdminChatID)
		if err != nil {
			log.Warn("telegram alerts disabled", zap.Error(err))
		} else {
			deps.Alerter = tg
		}
	}
	if cloud, err := cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret, cfg.Cloudinary.Folder); err == nil {
		deps.Cloud = cloud
	} else {
		log.Info("cloudinary disabled", zap.Error(err))
	}
	if deps.FCM == nil {
		log.Info("push notifications disabled: set FIREBASE_SERVICE_ACCOUNT_PATH to enable")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.Setup(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
		os.Exit(1)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server stopped")
}
