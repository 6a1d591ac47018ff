package service

import (
	"context"

	"fwf/config"
	"fwf/internal/domain"
	"fwf/internal/repository"

	"github.com/shopspring/decimal"
)

// RulesProvider resolves the point rules for a request: config values,
// overridden by system settings when an admin has set them.
type RulesProvider struct {
	base        domain.Rules
	referralFee decimal.Decimal
	settingRepo *repository.SettingRepository
}

func NewRulesProvider(cfg *config.PointsConfig, settingRepo *repository.SettingRepository) *RulesProvider {
	return &RulesProvider{
		base: domain.Rules{
			PointValue:         decimal.NewFromFloat(cfg.PointValue),
			DonationPercent:    decimal.NewFromFloat(cfg.DonationPercent),
			ReferralPercent:    decimal.NewFromFloat(cfg.ReferralPercent),
			QuizTicketPercent:  decimal.NewFromFloat(cfg.QuizTicketPercent),
			QuizTicketPrice:    decimal.NewFromFloat(cfg.QuizTicketPrice),
			HighValueThreshold: decimal.NewFromFloat(cfg.HighValueThreshold),
		},
		referralFee: decimal.NewFromFloat(cfg.DefaultReferralFee),
		settingRepo: settingRepo,
	}
}

// Current reads the rules; call it before opening a transaction.
func (p *RulesProvider) Current(ctx context.Context) domain.Rules {
	r := p.base
	r.PointValue = p.getSettingDecimal(ctx, domain.SettingPointValue, r.PointValue)
	r.DonationPercent = p.getSettingDecimal(ctx, domain.SettingDonationPercent, r.DonationPercent)
	r.ReferralPercent = p.getSettingDecimal(ctx, domain.SettingReferralPercent, r.ReferralPercent)
	r.QuizTicketPercent = p.getSettingDecimal(ctx, domain.SettingQuizTicketPercent, r.QuizTicketPercent)
	r.QuizTicketPrice = p.getSettingDecimal(ctx, domain.SettingQuizTicketPrice, r.QuizTicketPrice)
	r.HighValueThreshold = p.getSettingDecimal(ctx, domain.SettingHighValueThreshold, r.HighValueThreshold)
	return r
}

func (p *RulesProvider) DefaultReferralFee() decimal.Decimal { return p.referralFee }

func (p *RulesProvider) getSettingDecimal(ctx context.Context, key string, fallback decimal.Decimal) decimal.Decimal {
	if p.settingRepo == nil {
		return fallback
	}
	val, err := p.settingRepo.Get(ctx, key)
	if err != nil || val == "" {
		return fallback
	}
	d, err := decimal.NewFromString(val)
	if err != nil || d.IsNegative() {
		return fallback
	}
	return d
}

// IsRuleKey reports whether key is one of the point-rule settings.
func IsRuleKey(key string) bool {
	switch key {
	case domain.SettingPointValue, domain.SettingDonationPercent, domain.SettingReferralPercent,
		domain.SettingQuizTicketPercent, domain.SettingQuizTicketPrice, domain.SettingHighValueThreshold:
		return true
	}
	return false
}
