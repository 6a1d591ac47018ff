package models

import (
	"time"

	"fwf/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	MemberID         string         `gorm:"uniqueIndex;size:32;not null" json:"member_id"` // FWF-000001
	Name             string         `gorm:"size:255;not null" json:"name"`
	Email            *string        `gorm:"uniqueIndex;size:255" json:"email"` // nil keeps the unique index sparse
	Mobile           *string        `gorm:"uniqueIndex;size:20" json:"mobile"`
	PasswordHash     string         `gorm:"size:255;not null" json:"-"`
	Role             string         `gorm:"size:20;not null;index;default:'member'" json:"role"`
	MembershipActive bool           `gorm:"default:false;index" json:"membership_active"`
	FirstLoginDone   bool           `gorm:"default:false" json:"first_login_done"`
	ReferralCode     *string        `gorm:"uniqueIndex;size:32" json:"referral_code"`
	ReferredBy       *uint          `gorm:"index" json:"referred_by"`
	AvatarURL        string         `gorm:"size:512" json:"avatar_url"`
	Bio              string         `gorm:"type:text" json:"bio"`
	FCMToken         string         `gorm:"size:512" json:"-"`
	Wallet           Wallet         `gorm:"embedded;embeddedPrefix:wallet_" json:"wallet"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

func (u *User) IsAdmin() bool { return u.Role == domain.RoleAdmin }

// DisplayEmail returns the email or "" when unset.
func (u *User) DisplayEmail() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}
