// Package notifier реализует обработчик событий публикации глав:
// по каждому событию рассылает in-app уведомления подписчикам автора
// и читателям, у которых книга в библиотеке.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/novashelf/novashelf/internal/models"
)

// Repository контракт хранилища для выборки получателей.
type Repository interface {
	ListFollowerUIDs(ctx context.Context, userUID string) ([]string, error)
	ListLibraryHolderUIDs(ctx context.Context, bookID int64) ([]string, error)
}

// Notifier создает in-app уведомления.
type Notifier interface {
	Notify(ctx context.Context, userUID, notifType, title, body string, data map[string]any)
}

// Service потребляет события релиза глав.
type Service struct {
	repo     Repository
	notifier Notifier
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, notifier Notifier, log *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, log: log}
}

// HandleChapterRelease обрабатывает одно сообщение из очереди.
// Получатели — объединение подписчиков автора и держателей книги в
// библиотеке, каждый уведомляется один раз; сам автор исключается.
func (s *Service) HandleChapterRelease(ctx context.Context, body []byte) error {
	const op = "notifier.HandleChapterRelease"

	var event models.ChapterReleaseEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	followers, err := s.repo.ListFollowerUIDs(ctx, event.AuthorUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	holders, err := s.repo.ListLibraryHolderUIDs(ctx, event.BookID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	recipients := make(map[string]struct{}, len(followers)+len(holders))
	for _, uid := range followers {
		recipients[uid] = struct{}{}
	}
	for _, uid := range holders {
		recipients[uid] = struct{}{}
	}
	delete(recipients, event.AuthorUID)

	data := map[string]any{
		"book_id":    event.BookID,
		"chapter_id": event.ChapterID,
	}
	title := "New chapter of " + event.BookTitle
	bodyText := fmt.Sprintf("Chapter %q has just been released", event.ChapterTitle)

	for uid := range recipients {
		s.notifier.Notify(ctx, uid, models.NotificationChapterRelease, title, bodyText, data)
	}

	s.log.Info("chapter release processed",
		slog.Int64("chapter_id", event.ChapterID),
		slog.Int("recipients", len(recipients)))
	return nil
}
