package repository

import (
	"context"
	"errors"

	"fwf/internal/domain"
	"fwf/internal/models"

	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) ListActive(ctx context.Context) ([]models.SocialTask, error) {
	var list []models.SocialTask
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("week_number ASC").Find(&list).Error
	return list, err
}

func (r *TaskRepository) GetActive(ctx context.Context, taskID string, tx *gorm.DB) (*models.SocialTask, error) {
	var t models.SocialTask
	err := conn(ctx, r.db, tx).Where("task_id = ? AND is_active = ?", taskID, true).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) CompletionExists(ctx context.Context, userID uint, taskID string, tx *gorm.DB) (bool, error) {
	var c models.TaskCompletion
	err := conn(ctx, r.db, tx).Select("id").Where("user_id = ? AND task_id = ?", userID, taskID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *TaskRepository) CreateCompletion(ctx context.Context, c *models.TaskCompletion, tx *gorm.DB) error {
	return conn(ctx, r.db, tx).Create(c).Error
}

func (r *TaskRepository) ListCompletions(ctx context.Context, userID uint) ([]models.TaskCompletion, error) {
	var list []models.TaskCompletion
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("completed_at DESC").Find(&list).Error
	return list, err
}

// PostRepository stores the social feed.
type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, p *models.SocialPost, tx *gorm.DB) error {
	return conn(ctx, r.db, tx).Create(p).Error
}

func (r *PostRepository) LinkCompletion(ctx context.Context, postID, completionID uint, tx *gorm.DB) error {
	return conn(ctx, r.db, tx).Model(&models.SocialPost{}).Where("id = ?", postID).
		Update("task_completion_id", completionID).Error
}

func (r *PostRepository) Feed(ctx context.Context, p Page) ([]models.SocialPost, error) {
	var list []models.SocialPost
	err := r.db.WithContext(ctx).Where("status = ?", domain.PostStatusActive).
		Order("created_at DESC").Order("id DESC").
		Limit(p.limit()).Offset(p.offset()).
		Find(&list).Error
	return list, err
}
