// Package user содержит бизнес-логику профилей, подписок между
// пользователями и сводки личного кабинета.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/novashelf/novashelf/internal/lib/password"
	"github.com/novashelf/novashelf/internal/models"
	"github.com/novashelf/novashelf/internal/storage/repository"
)

// ErrUserNotFound пользователь не найден.
var ErrUserNotFound = errors.New("user not found")

// ErrSelfFollow попытка подписаться на самого себя.
var ErrSelfFollow = errors.New("cannot follow yourself")

// Repository контракт хранилища для профилей и подписок.
type Repository interface {
	GetUserByID(ctx context.Context, userUID string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdateNotificationPrefs(ctx context.Context, userUID string, prefs map[string]bool) error
	Follow(ctx context.Context, followerUID, followeeUID string) error
	Unfollow(ctx context.Context, followerUID, followeeUID string) error
	ListFollowers(ctx context.Context, userUID string) ([]models.PublicProfile, error)
	ListFollowing(ctx context.Context, userUID string) ([]models.PublicProfile, error)
	CountFollowers(ctx context.Context, userUID string) (int, error)
	CountFollowing(ctx context.Context, userUID string) (int, error)
	CountBooksByOwner(ctx context.Context, ownerUID string) (int, error)
	CountLibraryEntries(ctx context.Context, userUID string) (int, error)
	CountReviewsByUser(ctx context.Context, userUID string) (int, error)
}

// Notifier создает in-app уведомления.
type Notifier interface {
	Notify(ctx context.Context, userUID, notifType, title, body string, data map[string]any)
}

// Service реализует операции с профилями и подписками.
type Service struct {
	repo     Repository
	notifier Notifier
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, notifier Notifier, log *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, log: log}
}

// UpdateProfileInput изменяемые поля профиля. Nil-поля не трогаются.
type UpdateProfileInput struct {
	Name              *string
	Username          *string
	Bio               *string
	Avatar            *string
	Social            *models.SocialLinks
	Password          *string
	NotificationPrefs map[string]bool
}

// Dashboard сводка личного кабинета.
type Dashboard struct {
	Profile        models.PublicProfile `json:"profile"`
	BooksCount     int                  `json:"booksCount"`
	LibraryCount   int                  `json:"libraryCount"`
	ReviewsCount   int                  `json:"reviewsCount"`
	FollowersCount int                  `json:"followersCount"`
	FollowingCount int                  `json:"followingCount"`
}

// Profile возвращает публичный профиль пользователя.
func (s *Service) Profile(ctx context.Context, userUID string) (*models.PublicProfile, error) {
	const op = "user.Profile"

	u, err := s.repo.GetUserByID(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p := u.Public()
	return &p, nil
}

// UpdateProfile применяет изменения профиля текущего пользователя.
// Новый пароль, если задан, хэшируется перед сохранением.
func (s *Service) UpdateProfile(ctx context.Context, userUID string, in UpdateProfileInput) (*models.PublicProfile, error) {
	const op = "user.UpdateProfile"

	u, err := s.repo.GetUserByID(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if in.Name != nil && *in.Name != "" {
		u.Name = *in.Name
	}
	if in.Username != nil {
		u.Username = in.Username
	}
	if in.Bio != nil {
		u.Bio = in.Bio
	}
	if in.Avatar != nil {
		u.Avatar = in.Avatar
	}
	if in.Social != nil {
		u.Social = *in.Social
	}
	if in.Password != nil && *in.Password != "" {
		hashed, err := password.GetHash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		u.PasswordHash = hashed
	}

	if err := s.repo.UpdateProfile(ctx, u); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if in.NotificationPrefs != nil {
		if err := s.repo.UpdateNotificationPrefs(ctx, userUID, in.NotificationPrefs); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		u.NotificationPrefs = in.NotificationPrefs
	}

	p := u.Public()
	return &p, nil
}

// Follow подписывает текущего пользователя на другого. Повторная
// подписка не ошибка и не порождает второе уведомление.
func (s *Service) Follow(ctx context.Context, followerUID, followeeUID string) error {
	const op = "user.Follow"

	if followerUID == followeeUID {
		return ErrSelfFollow
	}
	follower, err := s.repo.GetUserByID(ctx, followerUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.repo.GetUserByID(ctx, followeeUID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	following, err := s.repo.ListFollowing(ctx, followerUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, p := range following {
		if p.UID == followeeUID {
			return nil
		}
	}

	if err := s.repo.Follow(ctx, followerUID, followeeUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.notifier.Notify(ctx, followeeUID, models.NotificationNewFollower,
		"New follower",
		fmt.Sprintf("%s started following you", follower.Name),
		map[string]any{"follower_uid": followerUID})

	return nil
}

// Unfollow отменяет подписку. Отсутствие подписки не ошибка.
func (s *Service) Unfollow(ctx context.Context, followerUID, followeeUID string) error {
	const op = "user.Unfollow"

	if err := s.repo.Unfollow(ctx, followerUID, followeeUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Followers возвращает подписчиков пользователя.
func (s *Service) Followers(ctx context.Context, userUID string) ([]models.PublicProfile, error) {
	const op = "user.Followers"

	list, err := s.repo.ListFollowers(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Following возвращает подписки пользователя.
func (s *Service) Following(ctx context.Context, userUID string) ([]models.PublicProfile, error) {
	const op = "user.Following"

	list, err := s.repo.ListFollowing(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// GetDashboard собирает сводку личного кабинета: профиль и счетчики.
func (s *Service) GetDashboard(ctx context.Context, userUID string) (*Dashboard, error) {
	const op = "user.GetDashboard"

	u, err := s.repo.GetUserByID(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	d := &Dashboard{Profile: u.Public()}
	if d.BooksCount, err = s.repo.CountBooksByOwner(ctx, userUID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if d.LibraryCount, err = s.repo.CountLibraryEntries(ctx, userUID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if d.ReviewsCount, err = s.repo.CountReviewsByUser(ctx, userUID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if d.FollowersCount, err = s.repo.CountFollowers(ctx, userUID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if d.FollowingCount, err = s.repo.CountFollowing(ctx, userUID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return d, nil
}
