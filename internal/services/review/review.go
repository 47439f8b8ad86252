// Package review содержит бизнес-логику рецензий на книги.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/novashelf/novashelf/internal/models"
	"github.com/novashelf/novashelf/internal/storage/repository"
)

// ErrNotOwner операция над чужой рецензией.
var ErrNotOwner = errors.New("not authorized")

// ErrBookNotFound книга не найдена.
var ErrBookNotFound = errors.New("book not found")

// ErrReviewNotFound рецензия не найдена.
var ErrReviewNotFound = errors.New("review not found")

// ErrInvalidRating оценка вне диапазона 1..5.
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// Repository контракт хранилища рецензий.
type Repository interface {
	GetBook(ctx context.Context, id int64) (*models.Book, error)
	CreateReview(ctx context.Context, review models.Review) (int64, error)
	ListReviewsByBook(ctx context.Context, bookID int64) ([]*models.Review, error)
	GetReview(ctx context.Context, id int64) (*models.Review, error)
	UpdateReview(ctx context.Context, review *models.Review) error
	DeleteReview(ctx context.Context, id int64) error
}

// Service реализует операции с рецензиями.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// List возвращает рецензии книги, новые первыми.
func (s *Service) List(ctx context.Context, bookID int64) ([]*models.Review, error) {
	const op = "review.List"

	if _, err := s.repo.GetBook(ctx, bookID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	reviews, err := s.repo.ListReviewsByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return reviews, nil
}

// Create сохраняет рецензию пользователя на книгу.
func (s *Service) Create(ctx context.Context, userUID string, bookID int64, rating int, comment string) (*models.Review, error) {
	const op = "review.Create"

	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	if _, err := s.repo.GetBook(ctx, bookID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r := models.Review{
		BookID:  bookID,
		UserUID: userUID,
		Rating:  rating,
		Comment: comment,
	}
	id, err := s.repo.CreateReview(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.repo.GetReview(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// Update обновляет рецензию; разрешено только автору рецензии.
func (s *Service) Update(ctx context.Context, userUID string, reviewID int64, rating int, comment string) (*models.Review, error) {
	const op = "review.Update"

	r, err := s.repo.GetReview(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if r.UserUID != userUID {
		return nil, ErrNotOwner
	}

	if rating != 0 {
		if rating < 1 || rating > 5 {
			return nil, ErrInvalidRating
		}
		r.Rating = rating
	}
	if comment != "" {
		r.Comment = comment
	}

	if err := s.repo.UpdateReview(ctx, r); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// Delete удаляет рецензию; разрешено только автору рецензии.
func (s *Service) Delete(ctx context.Context, userUID string, reviewID int64) error {
	const op = "review.Delete"

	r, err := s.repo.GetReview(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if r.UserUID != userUID {
		return ErrNotOwner
	}

	if err := s.repo.DeleteReview(ctx, reviewID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
