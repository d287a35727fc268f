package services

import (
	"go.uber.org/zap"

	"servicehub/internal/domain"
	applog "servicehub/internal/log"
	"servicehub/internal/repos"
)

type NotificationService struct {
	Repo  *repos.NotificationRepo
	Clock Clock
}

func NewNotificationService(repo *repos.NotificationRepo) *NotificationService {
	return &NotificationService{Repo: repo}
}

// Notify stores a notification. Failures are logged, not returned: the
// action that triggered it has already happened.
func (s *NotificationService) Notify(userID string, typ domain.NotificationType, title, message string) {
	n := domain.Notification{
		ID:        newID(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      typ,
		CreatedAt: s.Clock.stamp(),
	}
	if err := s.Repo.Create(n); err != nil {
		applog.L().Warn("notify.fail", zap.String("action", "notify.fail"),
			zap.String("user_id", userID), zap.String("title", title), zap.Error(err))
	}
}

// NotificationList is the notifications page view-model.
type NotificationList struct {
	Items       []domain.Notification `json:"items"`
	UnreadCount int                   `json:"unread_count"`
	Type        string                `json:"type"`
	UnreadOnly  bool                  `json:"unread_only"`
}

func (s *NotificationService) List(userID string, typ domain.NotificationType, unreadOnly bool) (NotificationList, error) {
	items, err := s.Repo.ByUser(userID, typ, unreadOnly)
	if err != nil {
		return NotificationList{}, err
	}
	unread, err := s.Repo.UnreadCount(userID)
	if err != nil {
		return NotificationList{}, err
	}
	return NotificationList{Items: items, UnreadCount: unread, Type: string(typ), UnreadOnly: unreadOnly}, nil
}

func (s *NotificationService) MarkRead(userID, id string) error {
	return notFound(s.Repo.MarkRead(userID, id))
}

func (s *NotificationService) MarkAllRead(userID string) (int64, error) {
	return s.Repo.MarkAllRead(userID)
}

func (s *NotificationService) Delete(userID, id string) error {
	return notFound(s.Repo.Delete(userID, id))
}

func (s *NotificationService) UnreadCount(userID string) (int, error) {
	return s.Repo.UnreadCount(userID)
}
