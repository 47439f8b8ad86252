package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/novashelf/novashelf/internal/models"
)

// CreateComment сохраняет комментарий и возвращает его идентификатор.
func (s *Storage) CreateComment(ctx context.Context, comment models.Comment) (int64, error) {
	const op = "storage.CreateComment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var id int64
	query := `INSERT INTO comments (target_type, target_id, user_uid, content, parent_id)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		comment.TargetType, comment.TargetID, comment.UserUID, comment.Content,
		comment.ParentID).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListComments возвращает комментарии цели, новые сначала,
// вместе с именем и аватаром автора.
func (s *Storage) ListComments(ctx context.Context, targetType string, targetID int64) ([]*models.Comment, error) {
	const op = "storage.ListComments"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT c.id, c.target_type, c.target_id, c.user_uid, u.name, u.avatar,
			      c.content, c.parent_id, c.created_at
			  FROM comments c
			  JOIN users u ON u.uid = c.user_uid
			  WHERE c.target_type = $1 AND c.target_id = $2
			  ORDER BY c.created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, targetType, targetID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Comment
	for rows.Next() {
		c := &models.Comment{}
		var avatar sql.NullString
		var parentID sql.NullInt64
		if err := rows.Scan(&c.ID, &c.TargetType, &c.TargetID, &c.UserUID, &c.UserName,
			&avatar, &c.Content, &parentID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if avatar.Valid {
			c.UserAvatar = &avatar.String
		}
		if parentID.Valid {
			c.ParentID = &parentID.Int64
		}
		result = append(result, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetComment возвращает комментарий по идентификатору вместе
// с именем и аватаром автора.
func (s *Storage) GetComment(ctx context.Context, id int64) (*models.Comment, error) {
	const op = "storage.GetComment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	c := &models.Comment{}
	var avatar sql.NullString
	var parentID sql.NullInt64
	query := `SELECT c.id, c.target_type, c.target_id, c.user_uid, u.name, u.avatar,
			      c.content, c.parent_id, c.created_at
			  FROM comments c
			  JOIN users u ON u.uid = c.user_uid
			  WHERE c.id = $1`
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.TargetType, &c.TargetID,
		&c.UserUID, &c.UserName, &avatar, &c.Content, &parentID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if avatar.Valid {
		c.UserAvatar = &avatar.String
	}
	if parentID.Valid {
		c.ParentID = &parentID.Int64
	}
	return c, nil
}

// DeleteComment удаляет комментарий.
func (s *Storage) DeleteComment(ctx context.Context, id int64) error {
	const op = "storage.DeleteComment"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
