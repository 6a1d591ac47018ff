package repository

import (
	"context"

	"fwf/internal/domain"
	"fwf/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type QuizRepository struct {
	db *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

func (r *QuizRepository) Create(ctx context.Context, q *models.Quiz) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *QuizRepository) GetByQuizID(ctx context.Context, quizID string, tx *gorm.DB) (*models.Quiz, error) {
	var q models.Quiz
	if err := conn(ctx, r.db, tx).Where("quiz_id = ?", quizID).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuizRepository) List(ctx context.Context, statuses ...domain.QuizStatus) ([]models.Quiz, error) {
	q := r.db.WithContext(ctx).Omit("questions")
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var list []models.Quiz
	err := q.Order("start_date DESC").Find(&list).Error
	return list, err
}

// SetStatus moves the quiz from one status to another; 0 rows means the quiz
// was not in from.
func (r *QuizRepository) SetStatus(ctx context.Context, id uint, from, to domain.QuizStatus, tx *gorm.DB) (int64, error) {
	res := conn(ctx, r.db, tx).Model(&models.Quiz{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

// AddEnrollment bumps participant count, collection and prize pool and
// returns the new participant count. The count never goes down, so it is
// safe to number enrollments with.
func (r *QuizRepository) AddEnrollment(ctx context.Context, id uint, fee, poolShare decimal.Decimal, tx *gorm.DB) (int, error) {
	db := conn(ctx, r.db, tx)
	err := db.Model(&models.Quiz{}).Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"total_participants": gorm.Expr("total_participants + 1"),
			"total_collection":   gorm.Expr("total_collection + ?", fee),
			"prize_pool":         gorm.Expr("prize_pool + ?", poolShare),
		}).Error
	if err != nil {
		return 0, err
	}
	var q models.Quiz
	if err := db.Select("total_participants").Where("id = ?", id).First(&q).Error; err != nil {
		return 0, err
	}
	return q.TotalParticipants, nil
}

func (r *QuizRepository) SaveWinners(ctx context.Context, id uint, winners []models.QuizWinner, tx *gorm.DB) error {
	return conn(ctx, r.db, tx).Model(&models.Quiz{ID: id}).Select("winners").
		Updates(&models.Quiz{Winners: winners}).Error
}

func (r *QuizRepository) CreateParticipation(ctx context.Context, p *models.QuizParticipation, tx *gorm.DB) error {
	return conn(ctx, r.db, tx).Create(p).Error
}

func (r *QuizRepository) GetParticipation(ctx context.Context, quizID, userID uint, tx *gorm.DB) (*models.QuizParticipation, error) {
	var p models.QuizParticipation
	err := conn(ctx, r.db, tx).Where("quiz_id = ? AND user_id = ?", quizID, userID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveSubmission stores answers for an enrolled participation. Returns 0
// when it was already submitted.
func (r *QuizRepository) SaveSubmission(ctx context.Context, p *models.QuizParticipation) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.QuizParticipation{}).
		Where("id = ? AND status = ?", p.ID, domain.ParticipationEnrolled).
		Select("answers", "score", "quiz_submitted", "submitted_at", "status").
		Updates(p)
	return res.RowsAffected, res.Error
}

// Ranked returns submitted participations, best score first, earliest
// submission breaking ties.
func (r *QuizRepository) Ranked(ctx context.Context, quizID uint, tx *gorm.DB) ([]models.QuizParticipation, error) {
	var list []models.QuizParticipation
	err := conn(ctx, r.db, tx).
		Where("quiz_id = ? AND status = ?", quizID, domain.ParticipationSubmitted).
		Order("score DESC").Order("submitted_at ASC").Order("id ASC").
		Find(&list).Error
	return list, err
}

func (r *QuizRepository) SetResult(ctx context.Context, participationID uint, status domain.ParticipationStatus, prize decimal.Decimal, tx *gorm.DB) error {
	return conn(ctx, r.db, tx).Model(&models.QuizParticipation{}).Where("id = ?", participationID).
		Updates(map[string]interface{}{"status": status, "prize_won": prize}).Error
}

// MarkLost sets every remaining submitted participation of the quiz to lost.
func (r *QuizRepository) MarkLost(ctx context.Context, quizID uint, tx *gorm.DB) error {
	return conn(ctx, r.db, tx).Model(&models.QuizParticipation{}).
		Where("quiz_id = ? AND status = ?", quizID, domain.ParticipationSubmitted).
		Update("status", domain.ParticipationLost).Error
}

func (r *QuizRepository) ListByUser(ctx context.Context, userID uint) ([]models.QuizParticipation, error) {
	var list []models.QuizParticipation
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&list).Error
	return list, err
}
