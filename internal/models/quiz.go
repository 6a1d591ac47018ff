package models

import (
	"time"

	"fwf/internal/domain"

	"github.com/shopspring/decimal"
)

type QuizQuestion struct {
	QNo           int      `json:"q_no"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"` // option index
	Points        int      `json:"points"`
}

type QuizPrizes struct {
	First  decimal.Decimal `json:"first"`
	Second decimal.Decimal `json:"second"`
	Third  decimal.Decimal `json:"third"`
}

type QuizWinner struct {
	Rank             int             `json:"rank"`
	UserID           uint            `json:"user_id"`
	MemberID         string          `json:"member_id"`
	Name             string          `json:"name"`
	EnrollmentNumber string          `json:"enrollment_number"`
	PrizeAmount      decimal.Decimal `json:"prize_amount"`
	Score            int             `json:"score"`
}

type Quiz struct {
	ID                uint              `gorm:"primaryKey" json:"id"`
	QuizID            string            `gorm:"uniqueIndex;size:32;not null" json:"quiz_id"` // e.g. M2506
	Title             string            `gorm:"size:255;not null" json:"title"`
	Description       string            `gorm:"type:text" json:"description"`
	Type              domain.QuizType   `gorm:"size:20;not null;index" json:"type"`
	EntryFee          decimal.Decimal   `gorm:"type:decimal(18,4);not null" json:"entry_fee"`
	PrizePool         decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0" json:"prize_pool"`
	Questions         []QuizQuestion    `gorm:"serializer:json;type:text" json:"questions,omitempty"`
	Prizes            QuizPrizes        `gorm:"serializer:json;type:text" json:"prizes"`
	StartDate         time.Time         `json:"start_date"`
	EndDate           time.Time         `json:"end_date"` // enrollment deadline
	ResultDate        time.Time         `json:"result_date"`
	Status            domain.QuizStatus `gorm:"size:20;not null;index;default:'upcoming'" json:"status"`
	TotalParticipants int               `gorm:"not null;default:0" json:"total_participants"`
	TotalCollection   decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0" json:"total_collection"`
	Winners           []QuizWinner      `gorm:"serializer:json;type:text" json:"winners"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

func (Quiz) TableName() string { return "quizzes" }

type QuizAnswer struct {
	QNo       int  `json:"q_no"`
	Selected  int  `json:"selected"`
	IsCorrect bool `json:"is_correct"`
}

// QuizParticipation is unique per (quiz, user).
type QuizParticipation struct {
	ID               uint                       `gorm:"primaryKey" json:"id"`
	QuizID           uint                       `gorm:"not null;uniqueIndex:idx_quiz_user,priority:1" json:"quiz_id"`
	QuizRef          string                     `gorm:"size:32;not null" json:"quiz_ref"`
	UserID           uint                       `gorm:"not null;uniqueIndex:idx_quiz_user,priority:2;index" json:"user_id"`
	MemberID         string                     `gorm:"size:32;not null" json:"member_id"`
	Name             string                     `gorm:"size:255;not null" json:"name"`
	EnrollmentNumber string                     `gorm:"uniqueIndex;size:64;not null" json:"enrollment_number"`
	PaymentID        string                     `gorm:"size:64" json:"payment_id"`
	AmountPaid       decimal.Decimal            `gorm:"type:decimal(18,4);not null" json:"amount_paid"`
	PointsEarned     decimal.Decimal            `gorm:"type:decimal(18,4);not null;default:0" json:"points_earned"`
	Answers          []QuizAnswer               `gorm:"serializer:json;type:text" json:"answers"`
	Score            int                        `gorm:"not null;default:0" json:"score"`
	QuizSubmitted    bool                       `gorm:"default:false" json:"quiz_submitted"`
	SubmittedAt      *time.Time                 `json:"submitted_at"`
	ReferredBy       string                     `gorm:"size:32;index" json:"referred_by"`
	ReferrerID       *uint                      `json:"referrer_id"`
	Status           domain.ParticipationStatus `gorm:"size:20;not null;default:'enrolled'" json:"status"`
	PrizeWon         decimal.Decimal            `gorm:"type:decimal(18,4);not null;default:0" json:"prize_won"`
	CreatedAt        time.Time                  `json:"created_at"`
	UpdatedAt        time.Time                  `json:"updated_at"`
}

func (QuizParticipation) TableName() string { return "quiz_participations" }
