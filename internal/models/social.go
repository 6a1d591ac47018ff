package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SocialTask is one of the ten recurring welfare tasks.
type SocialTask struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	TaskID           string          `gorm:"uniqueIndex;size:32;not null" json:"task_id"`
	WeekNumber       int             `gorm:"not null;index" json:"week_number"`
	Title            string          `gorm:"size:255;not null" json:"title"`
	Description      string          `gorm:"type:text" json:"description"`
	PhotoInstruction string          `gorm:"type:text" json:"photo_instruction"`
	Icon             string          `gorm:"size:16" json:"icon"`
	PointsReward     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:10" json:"points_reward"`
	IsActive         bool            `gorm:"default:true;index" json:"is_active"`
	CreatedAt        time.Time       `json:"created_at"`
}

func (SocialTask) TableName() string { return "social_tasks" }

// TaskCompletion is unique per (user, task) for the member's lifetime.
// WeekNumber is copied from the task and is descriptive only.
type TaskCompletion struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"not null;uniqueIndex:idx_user_task,priority:1" json:"user_id"`
	MemberID        string          `gorm:"size:32;not null;index" json:"member_id"`
	TaskID          string          `gorm:"size:32;not null;uniqueIndex:idx_user_task,priority:2" json:"task_id"`
	WeekNumber      int             `gorm:"not null" json:"week_number"`
	PhotoURL        string          `gorm:"size:1024;not null" json:"photo_url"`
	Latitude        *float64        `json:"latitude"`
	Longitude       *float64        `json:"longitude"`
	LocationAddress string          `gorm:"size:512" json:"location_address"`
	PointsEarned    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"points_earned"`
	Status          string          `gorm:"size:20;not null;default:'completed'" json:"status"`
	SocialPostID    *uint           `json:"social_post_id"`
	CompletedAt     time.Time       `gorm:"autoCreateTime;index" json:"completed_at"`
}

func (TaskCompletion) TableName() string { return "task_completions" }

type PostLocation struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Address   string   `json:"address,omitempty"`
}

type SocialPost struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	UserID           uint         `gorm:"not null;index" json:"user_id"`
	MemberID         string       `gorm:"size:32;not null" json:"member_id"`
	UserName         string       `gorm:"size:255;not null" json:"user_name"`
	UserAvatar       string       `gorm:"size:512" json:"user_avatar"`
	PostType         string       `gorm:"size:30;not null;index;default:'other'" json:"post_type"`
	Content          string       `gorm:"type:text;not null" json:"content"`
	Images           []string     `gorm:"serializer:json;type:text" json:"images"`
	TaskCompletionID *uint        `json:"task_completion_id"`
	Location         PostLocation `gorm:"serializer:json;type:text" json:"location"`
	LikesCount       int          `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount    int          `gorm:"not null;default:0" json:"comments_count"`
	Status           string       `gorm:"size:20;not null;default:'active'" json:"status"`
	IsAutoGenerated  bool         `gorm:"default:false" json:"is_auto_generated"`
	CreatedAt        time.Time    `gorm:"index" json:"created_at"`
}

func (SocialPost) TableName() string { return "social_posts" }
