// Package comment содержит бизнес-логику комментариев к книгам и главам,
// включая треды ответов и уведомления авторам.
package comment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/novashelf/novashelf/internal/models"
	"github.com/novashelf/novashelf/internal/storage/repository"
)

// ErrNotOwner удаление чужого комментария.
var ErrNotOwner = errors.New("not authorized")

// ErrTargetNotFound цель комментария не найдена.
var ErrTargetNotFound = errors.New("target not found")

// ErrCommentNotFound комментарий не найден.
var ErrCommentNotFound = errors.New("comment not found")

// ErrInvalidTarget неизвестный тип цели комментария.
var ErrInvalidTarget = errors.New("invalid target type")

// ErrInvalidParent родительский комментарий не найден или относится
// к другой цели.
var ErrInvalidParent = errors.New("invalid parent comment")

// Repository контракт хранилища комментариев.
type Repository interface {
	GetBook(ctx context.Context, id int64) (*models.Book, error)
	GetChapter(ctx context.Context, id int64) (*models.Chapter, error)
	GetUserByID(ctx context.Context, userUID string) (*models.User, error)
	CreateComment(ctx context.Context, comment models.Comment) (int64, error)
	ListComments(ctx context.Context, targetType string, targetID int64) ([]*models.Comment, error)
	GetComment(ctx context.Context, id int64) (*models.Comment, error)
	DeleteComment(ctx context.Context, id int64) error
}

// Notifier создает in-app уведомления.
type Notifier interface {
	Notify(ctx context.Context, userUID, notifType, title, body string, data map[string]any)
}

// Service реализует операции с комментариями.
type Service struct {
	repo     Repository
	notifier Notifier
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, notifier Notifier, log *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, log: log}
}

// List возвращает комментарии цели, новые первыми.
func (s *Service) List(ctx context.Context, targetType string, targetID int64) ([]*models.Comment, error) {
	const op = "comment.List"

	if _, err := s.resolveTargetBook(ctx, targetType, targetID); err != nil {
		return nil, err
	}
	comments, err := s.repo.ListComments(ctx, targetType, targetID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return comments, nil
}

// Create сохраняет комментарий и уведомляет владельца книги, а при
// ответе в треде — автора родительского комментария. Автор никогда
// не получает уведомлений о собственных комментариях.
func (s *Service) Create(ctx context.Context, userUID, targetType string, targetID int64, content string, parentID *int64) (*models.Comment, error) {
	const op = "comment.Create"

	book, err := s.resolveTargetBook(ctx, targetType, targetID)
	if err != nil {
		return nil, err
	}

	var parent *models.Comment
	if parentID != nil {
		parent, err = s.repo.GetComment(ctx, *parentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrInvalidParent
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if parent.TargetType != targetType || parent.TargetID != targetID {
			return nil, ErrInvalidParent
		}
	}

	c := models.Comment{
		TargetType: targetType,
		TargetID:   targetID,
		UserUID:    userUID,
		Content:    content,
		ParentID:   parentID,
	}
	id, err := s.repo.CreateComment(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	created, err := s.repo.GetComment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.fanOut(ctx, created, book, parent)

	return created, nil
}

// Delete удаляет комментарий; разрешено его автору и администраторам.
func (s *Service) Delete(ctx context.Context, userUID string, commentID int64) error {
	const op = "comment.Delete"

	c, err := s.repo.GetComment(ctx, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if c.UserUID != userUID {
		caller, err := s.repo.GetUserByID(ctx, userUID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotOwner
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		if !caller.IsAdmin {
			return ErrNotOwner
		}
	}

	if err := s.repo.DeleteComment(ctx, commentID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// resolveTargetBook проверяет существование цели и возвращает книгу,
// к которой цель относится.
func (s *Service) resolveTargetBook(ctx context.Context, targetType string, targetID int64) (*models.Book, error) {
	const op = "comment.resolveTargetBook"

	switch targetType {
	case models.CommentTargetBook:
		book, err := s.repo.GetBook(ctx, targetID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrTargetNotFound
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return book, nil
	case models.CommentTargetChapter:
		ch, err := s.repo.GetChapter(ctx, targetID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrTargetNotFound
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		book, err := s.repo.GetBook(ctx, ch.BookID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrTargetNotFound
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return book, nil
	default:
		return nil, ErrInvalidTarget
	}
}

func (s *Service) fanOut(ctx context.Context, c *models.Comment, book *models.Book, parent *models.Comment) {
	data := map[string]any{
		"comment_id":  c.ID,
		"target_type": c.TargetType,
		"target_id":   c.TargetID,
		"book_id":     book.ID,
	}

	if book.OwnerUID != c.UserUID {
		s.notifier.Notify(ctx, book.OwnerUID, models.NotificationNewComment,
			"New comment on "+book.Title,
			fmt.Sprintf("%s commented on your book", c.UserName), data)
	}

	// Автор родительского комментария получает отдельное уведомление,
	// если это не он сам и не владелец книги (тому уже отправлено).
	if parent != nil && parent.UserUID != c.UserUID && parent.UserUID != book.OwnerUID {
		s.notifier.Notify(ctx, parent.UserUID, models.NotificationNewComment,
			"New reply to your comment",
			fmt.Sprintf("%s replied to your comment on %s", c.UserName, book.Title), data)
	}
}
