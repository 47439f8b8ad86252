package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/novashelf/novashelf/internal/models"
)

const chapterColumns = `id, book_id, owner_uid, title, content, ord, created_at, updated_at`

func scanChapter(row interface{ Scan(...any) error }) (*models.Chapter, error) {
	c := &models.Chapter{}
	if err := row.Scan(&c.ID, &c.BookID, &c.OwnerUID, &c.Title, &c.Content,
		&c.Order, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateChapter сохраняет новую главу, порядковый номер выдается
// следующим за максимальным в книге.
func (s *Storage) CreateChapter(ctx context.Context, chapter models.Chapter) (int64, error) {
	const op = "storage.CreateChapter"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var id int64
	query := `INSERT INTO chapters (book_id, owner_uid, title, content, ord)
			  VALUES ($1, $2, $3, $4,
			      (SELECT COALESCE(MAX(ord), 0) + 1 FROM chapters WHERE book_id = $1))
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		chapter.BookID, chapter.OwnerUID, chapter.Title, chapter.Content).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListChaptersByBook возвращает главы книги в порядке чтения.
func (s *Storage) ListChaptersByBook(ctx context.Context, bookID int64) ([]*models.Chapter, error) {
	const op = "storage.ListChaptersByBook"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + chapterColumns + ` FROM chapters WHERE book_id = $1 ORDER BY ord`
	rows, err := s.DB.QueryContext(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Chapter
	for rows.Next() {
		c, err := scanChapter(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetChapter возвращает главу по идентификатору.
func (s *Storage) GetChapter(ctx context.Context, id int64) (*models.Chapter, error) {
	const op = "storage.GetChapter"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + chapterColumns + ` FROM chapters WHERE id = $1`
	c, err := scanChapter(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// UpdateChapter обновляет название и текст главы.
func (s *Storage) UpdateChapter(ctx context.Context, chapter *models.Chapter) error {
	const op = "storage.UpdateChapter"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE chapters SET title = $1, content = $2, updated_at = now() WHERE id = $3`
	res, err := s.DB.ExecContext(ctx, query, chapter.Title, chapter.Content, chapter.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// DeleteChapter удаляет главу.
func (s *Storage) DeleteChapter(ctx context.Context, id int64) error {
	const op = "storage.DeleteChapter"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM chapters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
