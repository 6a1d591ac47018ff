package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Admin      AdminConfig      `mapstructure:"admin"`
	Points     PointsConfig     `mapstructure:"points"`
	OTP        OTPConfig        `mapstructure:"otp"`
	Quiz       QuizConfig       `mapstructure:"quiz"`
	Razorpay   RazorpayConfig   `mapstructure:"razorpay"`
	Mail       MailConfig       `mapstructure:"mail"`
	SMS        SMSConfig        `mapstructure:"sms"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Firebase   FirebaseConfig   `mapstructure:"firebase"`
	Cloudinary CloudinaryConfig `mapstructure:"cloudinary"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Env          string        `mapstructure:"env"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// RateLimit is requests per RateWindow per client IP.
	RateLimit  int           `mapstructure:"rate_limit"`
	RateWindow time.Duration `mapstructure:"rate_window"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // mysql | postgres | sqlite
	DSN             string        `mapstructure:"dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiry     time.Duration `mapstructure:"expiry"`
	Issuer     string        `mapstructure:"issuer"`
	CookieName string        `mapstructure:"cookie_name"`
}

type AdminConfig struct {
	Email     string `mapstructure:"email"`
	Password  string `mapstructure:"password"`
	OrgPrefix string `mapstructure:"org_prefix"`
}

// PointsConfig holds the reward percentages. 1 point = PointValue rupees.
type PointsConfig struct {
	PointValue         float64 `mapstructure:"point_value"`
	DonationPercent    float64 `mapstructure:"donation_percent"`
	ReferralPercent    float64 `mapstructure:"referral_percent"`
	QuizTicketPercent  float64 `mapstructure:"quiz_ticket_percent"`
	QuizTicketPrice    float64 `mapstructure:"quiz_ticket_price"`
	HighValueThreshold float64 `mapstructure:"high_value_threshold"`
	DefaultReferralFee float64 `mapstructure:"default_referral_fee"`
}

type OTPConfig struct {
	TTL              time.Duration `mapstructure:"ttl"`
	MaxAttempts      int           `mapstructure:"max_attempts"`
	SendLimit        int           `mapstructure:"send_limit"`
	SendWindow       time.Duration `mapstructure:"send_window"`
	VerifiedTokenTTL time.Duration `mapstructure:"verified_token_ttl"`
}

type QuizConfig struct {
	PrizePoolPercent float64 `mapstructure:"prize_pool_percent"`
}

type RazorpayConfig struct {
	KeyID     string `mapstructure:"key_id"`
	KeySecret string `mapstructure:"key_secret"`
}

type MailConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	From       string `mapstructure:"from"`
	AdminEmail string `mapstructure:"admin_email"`
}

// SMSConfig for MSG91 OTP delivery.
type SMSConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	AuthKey    string `mapstructure:"auth_key"`
	TemplateID string `mapstructure:"template_id"`
}

type TelegramConfig struct {
	BotToken    string `mapstructure:"bot_token"`
	AdminChatID int64  `mapstructure:"admin_chat_id"`
}

type FirebaseConfig struct {
	ServiceAccountPath string `mapstructure:"service_account_path"`
}

type CloudinaryConfig struct {
	CloudName string `mapstructure:"cloud_name"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	Folder    string `mapstructure:"folder"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.rate_limit", 100)
	v.SetDefault("server.rate_window", 60*time.Second)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "fwf:fwf@tcp(localhost:3306)/fwf?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.expiry", 7*24*time.Hour)
	v.SetDefault("jwt.issuer", "fwf")
	v.SetDefault("jwt.cookie_name", "token")

	v.SetDefault("admin.email", "admin@fwf")
	v.SetDefault("admin.password", "Admin@12345")
	v.SetDefault("admin.org_prefix", "FWF")

	v.SetDefault("points.point_value", 10)
	v.SetDefault("points.donation_percent", 10)
	v.SetDefault("points.referral_percent", 50)
	v.SetDefault("points.quiz_ticket_percent", 10)
	v.SetDefault("points.quiz_ticket_price", 100)
	v.SetDefault("points.high_value_threshold", 50000)
	v.SetDefault("points.default_referral_fee", 500)

	v.SetDefault("otp.ttl", 10*time.Minute)
	v.SetDefault("otp.max_attempts", 5)
	v.SetDefault("otp.send_limit", 3)
	v.SetDefault("otp.send_window", 10*time.Minute)
	v.SetDefault("otp.verified_token_ttl", 30*time.Minute)

	v.SetDefault("quiz.prize_pool_percent", 50)

	// Empty defaults register the keys so AutomaticEnv can fill them on Unmarshal.
	for _, k := range []string{
		"razorpay.key_id", "razorpay.key_secret",
		"mail.host", "mail.username", "mail.password", "mail.admin_email",
		"sms.auth_key", "sms.template_id",
		"telegram.bot_token",
		"firebase.service_account_path",
		"cloudinary.cloud_name", "cloudinary.api_key", "cloudinary.api_secret",
	} {
		v.SetDefault(k, "")
	}
	v.SetDefault("telegram.admin_chat_id", 0)
	v.SetDefault("mail.port", 465)
	v.SetDefault("mail.from", "FWF <no-reply@fwfindia.org>")
	v.SetDefault("sms.base_url", "https://control.msg91.com")
	v.SetDefault("cloudinary.folder", "fwf-posts")
}

// Load reads config.yaml (optional, from ./ or ./config) and environment
// variables. SERVER_PORT overrides server.port, and so on.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var notFound viper.ConfigFileNotFoundError
	if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration with only built-in defaults applied.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}
