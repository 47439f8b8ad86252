// Package chapter содержит бизнес-логику глав: CRUD с проверкой владельца
// книги, поддержку счетчика глав и публикацию события о новой главе.
package chapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/novashelf/novashelf/internal/lib/rabbitmq"
	"github.com/novashelf/novashelf/internal/lib/sl"
	"github.com/novashelf/novashelf/internal/models"
	"github.com/novashelf/novashelf/internal/storage/repository"
)

// ErrNotOwner операция над главой чужой книги.
var ErrNotOwner = errors.New("not authorized")

// ErrBookNotFound книга не найдена.
var ErrBookNotFound = errors.New("book not found")

// ErrChapterNotFound глава не найдена.
var ErrChapterNotFound = errors.New("chapter not found")

// Repository контракт хранилища глав.
type Repository interface {
	GetBook(ctx context.Context, id int64) (*models.Book, error)
	CreateChapter(ctx context.Context, chapter models.Chapter) (int64, error)
	ListChaptersByBook(ctx context.Context, bookID int64) ([]*models.Chapter, error)
	GetChapter(ctx context.Context, id int64) (*models.Chapter, error)
	UpdateChapter(ctx context.Context, chapter *models.Chapter) error
	DeleteChapter(ctx context.Context, id int64) error
	AddChaptersCount(ctx context.Context, bookID int64, delta int) error
}

// Publisher отправляет события в очередь.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// Service реализует операции с главами.
type Service struct {
	repo      Repository
	publisher Publisher
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, publisher Publisher, log *slog.Logger) *Service {
	return &Service{repo: repo, publisher: publisher, log: log}
}

// List возвращает главы книги в порядке чтения.
func (s *Service) List(ctx context.Context, bookID int64) ([]*models.Chapter, error) {
	const op = "chapter.List"

	if _, err := s.repo.GetBook(ctx, bookID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	chapters, err := s.repo.ListChaptersByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return chapters, nil
}

// Create добавляет главу в конец книги; разрешено только владельцу книги.
// После сохранения глава увеличивает счетчик глав и порождает событие
// релиза, по которому воркер рассылает уведомления читателям.
func (s *Service) Create(ctx context.Context, userUID string, bookID int64, title, content string) (*models.Chapter, error) {
	const op = "chapter.Create"

	book, err := s.repo.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if book.OwnerUID != userUID {
		return nil, ErrNotOwner
	}

	ch := models.Chapter{
		BookID:   bookID,
		OwnerUID: userUID,
		Title:    title,
		Content:  content,
	}
	id, err := s.repo.CreateChapter(ctx, ch)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.AddChaptersCount(ctx, bookID, 1); err != nil {
		s.log.Warn("failed to bump chapters count",
			slog.Int64("book_id", bookID), sl.Err(err))
	}

	created, err := s.repo.GetChapter(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	event := models.ChapterReleaseEvent{
		BookID:       bookID,
		BookTitle:    book.Title,
		ChapterID:    created.ID,
		ChapterTitle: created.Title,
		AuthorUID:    book.OwnerUID,
	}
	if err := s.publisher.Publish(rabbitmq.ChapterReleaseKey, event); err != nil {
		s.log.Error("failed to publish chapter release event",
			slog.Int64("chapter_id", created.ID), sl.Err(err))
	}

	return created, nil
}

// Update обновляет главу; разрешено только владельцу книги.
func (s *Service) Update(ctx context.Context, userUID string, chapterID int64, title, content string) (*models.Chapter, error) {
	const op = "chapter.Update"

	ch, err := s.ownedChapter(ctx, userUID, chapterID)
	if err != nil {
		return nil, err
	}

	if title != "" {
		ch.Title = title
	}
	if content != "" {
		ch.Content = content
	}
	if err := s.repo.UpdateChapter(ctx, ch); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ch, nil
}

// Delete удаляет главу и уменьшает счетчик глав книги.
func (s *Service) Delete(ctx context.Context, userUID string, chapterID int64) error {
	const op = "chapter.Delete"

	ch, err := s.ownedChapter(ctx, userUID, chapterID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteChapter(ctx, chapterID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.AddChaptersCount(ctx, ch.BookID, -1); err != nil {
		s.log.Warn("failed to decrement chapters count",
			slog.Int64("book_id", ch.BookID), sl.Err(err))
	}
	return nil
}

func (s *Service) ownedChapter(ctx context.Context, userUID string, chapterID int64) (*models.Chapter, error) {
	const op = "chapter.ownedChapter"

	ch, err := s.repo.GetChapter(ctx, chapterID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrChapterNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	book, err := s.repo.GetBook(ctx, ch.BookID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if book.OwnerUID != userUID {
		return nil, ErrNotOwner
	}
	return ch, nil
}
