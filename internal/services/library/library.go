// Package library содержит бизнес-логику личной библиотеки читателя:
// добавление и удаление книг, прогресс чтения.
package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/novashelf/novashelf/internal/models"
	"github.com/novashelf/novashelf/internal/storage/repository"
)

// ErrBookNotFound книга не найдена.
var ErrBookNotFound = errors.New("book not found")

// ErrEntryNotFound книги нет в библиотеке пользователя.
var ErrEntryNotFound = errors.New("book is not in library")

// ErrInvalidChapter глава не относится к книге.
var ErrInvalidChapter = errors.New("chapter does not belong to the book")

// ErrInvalidProgress процент прогресса вне диапазона 0..100.
var ErrInvalidProgress = errors.New("progress must be between 0 and 100")

// Repository контракт хранилища библиотеки.
type Repository interface {
	GetBook(ctx context.Context, id int64) (*models.Book, error)
	GetChapter(ctx context.Context, id int64) (*models.Chapter, error)
	AddLibraryEntry(ctx context.Context, userUID string, bookID int64) (int64, error)
	GetLibraryEntry(ctx context.Context, userUID string, bookID int64) (*models.LibraryEntry, error)
	RemoveLibraryEntry(ctx context.Context, userUID string, bookID int64) error
	UpsertProgress(ctx context.Context, userUID string, bookID int64, currentChapterID *int64, progressPercent *float64) (*models.LibraryEntry, error)
	ListLibrary(ctx context.Context, userUID string) ([]*models.LibraryEntry, error)
}

// Service реализует операции с библиотекой.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Add добавляет книгу в библиотеку. Повторное добавление не ошибка:
// возвращается существующая запись.
func (s *Service) Add(ctx context.Context, userUID string, bookID int64) (*models.LibraryEntry, error) {
	const op = "library.Add"

	if _, err := s.repo.GetBook(ctx, bookID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if entry, err := s.repo.GetLibraryEntry(ctx, userUID, bookID); err == nil {
		return entry, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.repo.AddLibraryEntry(ctx, userUID, bookID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	entry, err := s.repo.GetLibraryEntry(ctx, userUID, bookID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entry, nil
}

// Remove убирает книгу из библиотеки. Отсутствие записи не ошибка.
func (s *Service) Remove(ctx context.Context, userUID string, bookID int64) error {
	const op = "library.Remove"

	if err := s.repo.RemoveLibraryEntry(ctx, userUID, bookID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateProgress сохраняет позицию чтения. Если книги еще нет в
// библиотеке, запись создается. Глава, если указана, должна
// принадлежать книге.
func (s *Service) UpdateProgress(ctx context.Context, userUID string, bookID int64, currentChapterID *int64, progressPercent *float64) (*models.LibraryEntry, error) {
	const op = "library.UpdateProgress"

	if _, err := s.repo.GetBook(ctx, bookID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if progressPercent != nil && (*progressPercent < 0 || *progressPercent > 100) {
		return nil, ErrInvalidProgress
	}
	if currentChapterID != nil {
		ch, err := s.repo.GetChapter(ctx, *currentChapterID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrInvalidChapter
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if ch.BookID != bookID {
			return nil, ErrInvalidChapter
		}
	}

	entry, err := s.repo.UpsertProgress(ctx, userUID, bookID, currentChapterID, progressPercent)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entry, nil
}

// List возвращает библиотеку пользователя, недавно читаемое первым.
func (s *Service) List(ctx context.Context, userUID string) ([]*models.LibraryEntry, error) {
	const op = "library.List"

	entries, err := s.repo.ListLibrary(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}
