// Package notification содержит бизнес-логику in-app уведомлений:
// создание с учетом пользовательских настроек, выборка ленты и
// пометка прочитанными.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/novashelf/novashelf/internal/lib/sl"
	"github.com/novashelf/novashelf/internal/models"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Repository контракт хранилища уведомлений.
type Repository interface {
	CreateNotification(ctx context.Context, n models.Notification) (int64, error)
	ListNotifications(ctx context.Context, userUID string, unreadOnly bool, before *time.Time, limit int) ([]*models.Notification, error)
	MarkNotificationsRead(ctx context.Context, userUID string, ids []int64) error
	MarkAllNotificationsRead(ctx context.Context, userUID string) error
}

// PrefsReader возвращает пользователя для проверки настроек уведомлений.
type PrefsReader interface {
	GetUserByID(ctx context.Context, userUID string) (*models.User, error)
}

// Service реализует операции с уведомлениями.
type Service struct {
	repo  Repository
	users PrefsReader
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, users PrefsReader, log *slog.Logger) *Service {
	return &Service{repo: repo, users: users, log: log}
}

// Notify создает уведомление, если получатель не отключил этот тип.
// Отсутствие настройки трактуется как включенный тип. Ошибки доставки
// уведомлений никогда не прерывают породившую их операцию, поэтому
// метод только логирует сбои.
func (s *Service) Notify(ctx context.Context, userUID, notifType, title, body string, data map[string]any) {
	user, err := s.users.GetUserByID(ctx, userUID)
	if err != nil {
		s.log.Warn("notification recipient lookup failed",
			slog.String("user_uid", userUID), sl.Err(err))
		return
	}
	if enabled, ok := user.NotificationPrefs[notifType]; ok && !enabled {
		return
	}

	n := models.Notification{
		UserUID: userUID,
		Type:    notifType,
		Title:   title,
		Body:    body,
		Data:    data,
	}
	if _, err := s.repo.CreateNotification(ctx, n); err != nil {
		s.log.Warn("failed to create notification",
			slog.String("user_uid", userUID), slog.String("type", notifType), sl.Err(err))
	}
}

// List возвращает уведомления пользователя, новые первыми.
// Лимит ограничивается сверху; неположительный лимит заменяется
// значением по умолчанию.
func (s *Service) List(ctx context.Context, userUID string, unreadOnly bool, before *time.Time, limit int) ([]*models.Notification, error) {
	const op = "notification.List"

	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	items, err := s.repo.ListNotifications(ctx, userUID, unreadOnly, before, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// MarkRead помечает перечисленные уведомления пользователя прочитанными.
// Чужие и несуществующие идентификаторы молча пропускаются.
func (s *Service) MarkRead(ctx context.Context, userUID string, ids []int64) error {
	const op = "notification.MarkRead"

	if len(ids) == 0 {
		return nil
	}
	if err := s.repo.MarkNotificationsRead(ctx, userUID, ids); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MarkAllRead помечает все уведомления пользователя прочитанными.
func (s *Service) MarkAllRead(ctx context.Context, userUID string) error {
	const op = "notification.MarkAllRead"

	if err := s.repo.MarkAllNotificationsRead(ctx, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
