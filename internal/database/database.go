package database

import (
	"errors"
	"fmt"

	"fwf/config"
	"fwf/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "mysql":
		return mysql.Open(cfg.DSN), nil
	case "postgres":
		return postgres.New(postgres.Config{DSN: cfg.DSN, PreferSimpleProtocol: true}), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(d, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
		TranslateError: true,                                 // unique violations -> gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.PointsLedger{},
		&models.Donation{},
		&models.DonationOTP{},
		&models.Referral{},
		&models.QuizTicket{},
		&models.Quiz{},
		&models.QuizParticipation{},
		&models.SocialTask{},
		&models.TaskCompletion{},
		&models.SocialPost{},
		&models.MembershipFee{},
		&models.Notification{},
		&models.SystemSetting{},
		&models.PaymentOrder{},
	)
}

// SeedAdmin creates the admin account from config when no admin exists.
func SeedAdmin(db *gorm.DB, cfg *config.AdminConfig, hash func(string) (string, error), log *zap.Logger) error {
	var existing models.User
	err := db.Where("role = ?", "admin").First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	pw, err := hash(cfg.Password)
	if err != nil {
		return err
	}
	email := cfg.Email
	admin := &models.User{
		MemberID:         cfg.OrgPrefix + "-ADMIN-001",
		Name:             cfg.OrgPrefix + " Admin",
		Email:            &email,
		PasswordHash:     pw,
		Role:             "admin",
		MembershipActive: true,
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}
	log.Info("admin created", zap.String("email", email), zap.String("member_id", admin.MemberID))
	return nil
}
