package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/novashelf/novashelf/internal/models"
)

// CreateReview сохраняет рецензию и возвращает ее идентификатор.
func (s *Storage) CreateReview(ctx context.Context, review models.Review) (int64, error) {
	const op = "storage.CreateReview"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var id int64
	query := `INSERT INTO reviews (book_id, user_uid, rating, comment)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		review.BookID, review.UserUID, review.Rating, review.Comment).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListReviewsByBook возвращает рецензии на книгу вместе с именами авторов.
func (s *Storage) ListReviewsByBook(ctx context.Context, bookID int64) ([]*models.Review, error) {
	const op = "storage.ListReviewsByBook"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT r.id, r.book_id, r.user_uid, u.name, r.rating, r.comment,
			      r.created_at, r.updated_at
			  FROM reviews r
			  JOIN users u ON u.uid = r.user_uid
			  WHERE r.book_id = $1
			  ORDER BY r.created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Review
	for rows.Next() {
		r := &models.Review{}
		if err := rows.Scan(&r.ID, &r.BookID, &r.UserUID, &r.UserName, &r.Rating,
			&r.Comment, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetReview возвращает рецензию по идентификатору.
func (s *Storage) GetReview(ctx context.Context, id int64) (*models.Review, error) {
	const op = "storage.GetReview"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	r := &models.Review{}
	query := `SELECT id, book_id, user_uid, rating, comment, created_at, updated_at
			  FROM reviews WHERE id = $1`
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&r.ID, &r.BookID, &r.UserUID,
		&r.Rating, &r.Comment, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// UpdateReview обновляет оценку и текст рецензии.
func (s *Storage) UpdateReview(ctx context.Context, review *models.Review) error {
	const op = "storage.UpdateReview"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE reviews SET rating = $1, comment = $2, updated_at = now() WHERE id = $3`
	res, err := s.DB.ExecContext(ctx, query, review.Rating, review.Comment, review.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// DeleteReview удаляет рецензию.
func (s *Storage) DeleteReview(ctx context.Context, id int64) error {
	const op = "storage.DeleteReview"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// CountReviewsByUser возвращает количество рецензий пользователя.
func (s *Storage) CountReviewsByUser(ctx context.Context, userUID string) (int, error) {
	const op = "storage.CountReviewsByUser"
	var n int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reviews WHERE user_uid = $1`, userUID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
