package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/novashelf/novashelf/internal/models"
)

// CreateNotification сохраняет уведомление и возвращает его идентификатор.
func (s *Storage) CreateNotification(ctx context.Context, n models.Notification) (int64, error) {
	const op = "storage.CreateNotification"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	data, err := json.Marshal(n.Data)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var id int64
	query := `INSERT INTO notifications (user_uid, type, title, body, data)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		n.UserUID, n.Type, n.Title, n.Body, data).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListNotifications возвращает уведомления пользователя, новые сначала.
// unreadOnly ограничивает выборку непрочитанными, before задает курсор по времени.
func (s *Storage) ListNotifications(ctx context.Context, userUID string, unreadOnly bool, before *time.Time, limit int) ([]*models.Notification, error) {
	const op = "storage.ListNotifications"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, type, title, body, data, read, read_at, created_at
			  FROM notifications
			  WHERE user_uid = $1
			    AND ($2 = FALSE OR read = FALSE)
			    AND ($3::timestamptz IS NULL OR created_at < $3)
			  ORDER BY created_at DESC
			  LIMIT $4`
	rows, err := s.DB.QueryContext(ctx, query, userUID, unreadOnly, before, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		var data []byte
		var readAt sql.NullTime
		if err := rows.Scan(&n.ID, &n.UserUID, &n.Type, &n.Title, &n.Body, &data,
			&n.Read, &readAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if readAt.Valid {
			n.ReadAt = &readAt.Time
		}
		n.Data = map[string]any{}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &n.Data); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}
		result = append(result, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// MarkNotificationsRead помечает прочитанными указанные уведомления пользователя.
func (s *Storage) MarkNotificationsRead(ctx context.Context, userUID string, ids []int64) error {
	const op = "storage.MarkNotificationsRead"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE notifications
			  SET read = TRUE, read_at = now()
			  WHERE user_uid = $1 AND read = FALSE AND id = ANY($2)`
	_, err := s.DB.ExecContext(ctx, query, userUID, ids)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MarkAllNotificationsRead помечает прочитанными все уведомления пользователя.
func (s *Storage) MarkAllNotificationsRead(ctx context.Context, userUID string) error {
	const op = "storage.MarkAllNotificationsRead"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE notifications
			  SET read = TRUE, read_at = now()
			  WHERE user_uid = $1 AND read = FALSE`
	_, err := s.DB.ExecContext(ctx, query, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
