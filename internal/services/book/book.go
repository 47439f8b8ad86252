// Package book содержит бизнес-логику каталога книг: публичные выборки
// с кэшированием и CRUD с проверкой владельца.
package book

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/novashelf/novashelf/internal/lib/sl"
	"github.com/novashelf/novashelf/internal/models"
	"github.com/novashelf/novashelf/internal/storage/repository"
)

// ErrNotOwner операция над чужой книгой.
var ErrNotOwner = errors.New("not authorized")

// ErrBookNotFound книга не найдена.
var ErrBookNotFound = errors.New("book not found")

const (
	catalogCacheKey = "books:catalog"
	catalogCacheTTL = 5 * time.Minute
)

// Repository контракт хранилища книг.
type Repository interface {
	CreateBook(ctx context.Context, book models.Book) (int64, error)
	ListBooks(ctx context.Context, search, genre string) ([]*models.Book, error)
	GetBook(ctx context.Context, id int64) (*models.Book, error)
	UpdateBook(ctx context.Context, book *models.Book) error
	DeleteBook(ctx context.Context, id int64) error
	ListChaptersByBook(ctx context.Context, bookID int64) ([]*models.Chapter, error)
}

// Cache контракт кэша каталога.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Service реализует операции каталога.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

// UpdateBookInput непустые поля перезаписывают текущие значения книги.
type UpdateBookInput struct {
	Title       string
	Author      string
	Description string
	Genres      []string
	CoverImage  *string
}

// List возвращает книги каталога. Выборка без фильтров проходит
// через кэш; фильтрованные запросы всегда идут в базу.
func (s *Service) List(ctx context.Context, search, genre string) ([]*models.Book, error) {
	const op = "book.List"

	if search == "" && genre == "" {
		var cached []*models.Book
		ok, err := s.cache.Get(ctx, catalogCacheKey, &cached)
		if err != nil {
			s.log.Warn("catalog cache read failed", sl.Err(err))
		}
		if ok {
			return cached, nil
		}
	}

	books, err := s.repo.ListBooks(ctx, search, genre)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if search == "" && genre == "" {
		if err := s.cache.Set(ctx, catalogCacheKey, books, catalogCacheTTL); err != nil {
			s.log.Warn("catalog cache write failed", sl.Err(err))
		}
	}
	return books, nil
}

// Get возвращает книгу вместе с главами в порядке чтения.
func (s *Service) Get(ctx context.Context, id int64) (*models.BookWithChapters, error) {
	const op = "book.Get"

	b, err := s.repo.GetBook(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	chapters, err := s.repo.ListChaptersByBook(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result := &models.BookWithChapters{Book: *b, Chapters: make([]models.Chapter, 0, len(chapters))}
	for _, c := range chapters {
		result.Chapters = append(result.Chapters, *c)
	}
	return result, nil
}

// Create сохраняет новую книгу текущего пользователя.
func (s *Service) Create(ctx context.Context, ownerUID, title, author, description string, genres []string, coverImage *string) (*models.Book, error) {
	const op = "book.Create"

	if genres == nil {
		genres = []string{}
	}
	b := models.Book{
		OwnerUID:    ownerUID,
		Title:       title,
		Author:      author,
		Description: description,
		Genres:      genres,
		CoverImage:  coverImage,
	}
	id, err := s.repo.CreateBook(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidateCatalog(ctx)

	created, err := s.repo.GetBook(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// Update обновляет книгу; разрешено только владельцу.
func (s *Service) Update(ctx context.Context, userUID string, id int64, in UpdateBookInput) (*models.Book, error) {
	const op = "book.Update"

	b, err := s.repo.GetBook(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if b.OwnerUID != userUID {
		return nil, ErrNotOwner
	}

	if in.Title != "" {
		b.Title = in.Title
	}
	if in.Author != "" {
		b.Author = in.Author
	}
	if in.Description != "" {
		b.Description = in.Description
	}
	if in.Genres != nil {
		b.Genres = in.Genres
	}
	if in.CoverImage != nil {
		b.CoverImage = in.CoverImage
	}

	if err := s.repo.UpdateBook(ctx, b); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidateCatalog(ctx)
	return b, nil
}

// Delete удаляет книгу; разрешено только владельцу.
func (s *Service) Delete(ctx context.Context, userUID string, id int64) error {
	const op = "book.Delete"

	b, err := s.repo.GetBook(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBookNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if b.OwnerUID != userUID {
		return ErrNotOwner
	}

	if err := s.repo.DeleteBook(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidateCatalog(ctx)
	return nil
}

func (s *Service) invalidateCatalog(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, catalogCacheKey); err != nil {
		s.log.Warn("catalog cache invalidation failed", sl.Err(err))
	}
}
