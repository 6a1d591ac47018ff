package service

import (
	"context"
	"fmt"
	"strings"

	"fwf/internal/domain"
	"fwf/internal/models"
	"fwf/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TaskSubmission struct {
	TaskID          string
	PhotoURL        string
	Latitude        *float64
	Longitude       *float64
	LocationAddress string
}

type TaskResult struct {
	Completion *models.TaskCompletion
	Post       *models.SocialPost
}

type TaskService struct {
	tx       *repository.Transactor
	taskRepo *repository.TaskRepository
	postRepo *repository.PostRepository
	userRepo *repository.UserRepository
	wallet   *WalletService
	notifier Notifier
	log      *zap.Logger
}

func NewTaskService(
	tx *repository.Transactor,
	taskRepo *repository.TaskRepository,
	postRepo *repository.PostRepository,
	userRepo *repository.UserRepository,
	wallet *WalletService,
	notifier Notifier,
	log *zap.Logger,
) *TaskService {
	return &TaskService{tx: tx, taskRepo: taskRepo, postRepo: postRepo, userRepo: userRepo, wallet: wallet, notifier: notifier, log: log}
}

func (s *TaskService) ListTasks(ctx context.Context) ([]models.SocialTask, error) {
	return s.taskRepo.ListActive(ctx)
}

func (s *TaskService) Completions(ctx context.Context, userID uint) ([]models.TaskCompletion, error) {
	return s.taskRepo.ListCompletions(ctx, userID)
}

func (s *TaskService) Feed(ctx context.Context, p repository.Page) ([]models.SocialPost, error) {
	return s.postRepo.Feed(ctx, p)
}

// Complete records a member's one-time completion of a social task, posts the
// proof photo to the feed and credits the task reward.
func (s *TaskService) Complete(ctx context.Context, userID uint, in TaskSubmission) (*TaskResult, error) {
	in.TaskID = strings.TrimSpace(in.TaskID)
	in.PhotoURL = strings.TrimSpace(in.PhotoURL)
	if in.TaskID == "" || in.PhotoURL == "" {
		return nil, ErrPhotoRequired
	}
	var res TaskResult
	err := s.tx.InTx(ctx, nil, func(tx *gorm.DB) error {
		task, err := s.taskRepo.GetActive(ctx, in.TaskID, tx)
		if err != nil {
			if isNotFound(err) {
				return ErrTaskNotFound
			}
			return err
		}
		done, err := s.taskRepo.CompletionExists(ctx, userID, task.TaskID, tx)
		if err != nil {
			return err
		}
		if done {
			return ErrTaskAlreadyCompleted
		}
		user, err := s.userRepo.GetByID(ctx, userID, tx)
		if err != nil {
			if isNotFound(err) {
				return ErrMemberNotFound
			}
			return err
		}

		post := &models.SocialPost{
			UserID:     user.ID,
			MemberID:   user.MemberID,
			UserName:   user.Name,
			UserAvatar: user.AvatarURL,
			PostType:   domain.PostTypeTaskCompletion,
			Content:    fmt.Sprintf("%s %s — completed \"%s\"", task.Icon, user.Name, task.Title),
			Images:     []string{in.PhotoURL},
			Location: models.PostLocation{
				Latitude:  in.Latitude,
				Longitude: in.Longitude,
				Address:   in.LocationAddress,
			},
			Status:          domain.PostStatusActive,
			IsAutoGenerated: true,
		}
		if err := s.postRepo.Create(ctx, post, tx); err != nil {
			return fmt.Errorf("create post: %w", err)
		}

		c := &models.TaskCompletion{
			UserID:          user.ID,
			MemberID:        user.MemberID,
			TaskID:          task.TaskID,
			WeekNumber:      task.WeekNumber,
			PhotoURL:        in.PhotoURL,
			Latitude:        in.Latitude,
			Longitude:       in.Longitude,
			LocationAddress: in.LocationAddress,
			PointsEarned:    task.PointsReward,
			Status:          domain.TaskCompleted,
			SocialPostID:    &post.ID,
		}
		if err := s.taskRepo.CreateCompletion(ctx, c, tx); err != nil {
			if isDuplicate(err) {
				return ErrTaskAlreadyCompleted
			}
			return fmt.Errorf("create completion: %w", err)
		}
		if err := s.postRepo.LinkCompletion(ctx, post.ID, c.ID, tx); err != nil {
			return err
		}
		post.TaskCompletionID = &c.ID

		err = s.wallet.Credit(ctx, CreditRequest{
			UserID:      user.ID,
			Points:      task.PointsReward,
			Source:      domain.LedgerSocialTask,
			Description: fmt.Sprintf("Social task %s completed: %s", task.TaskID, task.Title),
			ReferenceID: &c.ID,
		}, tx)
		if err != nil {
			return err
		}
		res = TaskResult{Completion: c, Post: post}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("social task completed", zap.Uint("user_id", userID), zap.String("task_id", in.TaskID))
	if s.notifier != nil {
		pointsEarned(s.notifier, userID, res.Completion.PointsEarned, domain.LedgerSocialTask,
			fmt.Sprintf("Task completed! You earned %s points.", res.Completion.PointsEarned.String()))
		s.notifier.PostPublished(res.Post)
	}
	return &res, nil
}
