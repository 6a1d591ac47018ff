package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fwf/internal/domain"
	"fwf/internal/models"
	"fwf/internal/repository"
	"fwf/internal/ws"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Notifier delivers member notifications. Calls never block the request
// that triggered them.
type Notifier interface {
	Notify(userID uint, notifType, title, body string, data map[string]interface{})
	PostPublished(post *models.SocialPost)
}

// LiveFeed pushes events to connected websocket clients.
type LiveFeed interface {
	BroadcastToUser(userID uint, ev ws.Event)
	BroadcastAll(ev ws.Event)
}

const notifyTimeout = 10 * time.Second

type NotificationService struct {
	repo     *repository.NotificationRepository
	userRepo *repository.UserRepository
	fcm      *FCMService
	live     LiveFeed
	log      *zap.Logger
}

func NewNotificationService(repo *repository.NotificationRepository, userRepo *repository.UserRepository, fcm *FCMService, live LiveFeed, log *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo, fcm: fcm, live: live, log: log}
}

// Notify stores an in-app notification, pushes it over FCM and the live feed.
// It runs on its own goroutine with a detached context.
func (s *NotificationService) Notify(userID uint, notifType, title, body string, data map[string]interface{}) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.deliver(ctx, userID, notifType, title, body, data); err != nil {
			s.log.Warn("notification failed", zap.Uint("user_id", userID), zap.String("type", notifType), zap.Error(err))
		}
	}()
}

func (s *NotificationService) deliver(ctx context.Context, userID uint, notifType, title, body string, data map[string]interface{}) error {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	n := &models.Notification{UserID: userID, Type: notifType, Title: title, Body: body, Data: dataJSON}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	if s.live != nil {
		s.live.BroadcastToUser(userID, ws.Event{Type: "notification", Data: n})
		if notifType == domain.NotifPointsEarned {
			s.live.BroadcastToUser(userID, ws.Event{Type: "points", Data: data})
		}
	}
	s.sendPush(ctx, userID, notifType, title, body, data)
	return nil
}

func (s *NotificationService) sendPush(ctx context.Context, userID uint, notifType, title, body string, data map[string]interface{}) {
	if s.fcm == nil || s.userRepo == nil {
		return
	}
	u, err := s.userRepo.GetByID(ctx, userID, nil)
	if err != nil || u.FCMToken == "" {
		return
	}
	_ = s.fcm.SendToUser(ctx, u.FCMToken, notifType, title, body, data)
}

// PostPublished announces a new feed post to every live client.
func (s *NotificationService) PostPublished(post *models.SocialPost) {
	if s.live != nil {
		s.live.BroadcastAll(ws.Event{Type: "feed_post", Data: post})
	}
}

func (s *NotificationService) List(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, int64, error) {
	list, err := s.repo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	return list, unread, err
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID uint) error {
	n, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// pointsEarned sends the standard "points credited" notification.
func pointsEarned(n Notifier, userID uint, points decimal.Decimal, source domain.LedgerType, message string) {
	if n == nil || points.IsZero() {
		return
	}
	n.Notify(userID, domain.NotifPointsEarned, fmt.Sprintf("+%s points", points.StringFixed(2)), message,
		map[string]interface{}{"points": points.String(), "source": string(source)})
}
