package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/novashelf/novashelf/internal/models"
)

const bookColumns = `id, owner_uid, title, author, description, genres, cover_image,
	chapters_count, created_at, updated_at`

func scanBook(row interface{ Scan(...any) error }) (*models.Book, error) {
	b := &models.Book{}
	var genres []byte
	var cover sql.NullString
	if err := row.Scan(&b.ID, &b.OwnerUID, &b.Title, &b.Author, &b.Description,
		&genres, &cover, &b.ChaptersCount, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if cover.Valid {
		b.CoverImage = &cover.String
	}
	b.Genres = []string{}
	if len(genres) > 0 {
		if err := json.Unmarshal(genres, &b.Genres); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// CreateBook сохраняет новую книгу и возвращает ее идентификатор.
func (s *Storage) CreateBook(ctx context.Context, book models.Book) (int64, error) {
	const op = "storage.CreateBook"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	genres, err := json.Marshal(book.Genres)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var id int64
	query := `INSERT INTO books (owner_uid, title, author, description, genres, cover_image)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		book.OwnerUID, book.Title, book.Author, book.Description, genres,
		book.CoverImage).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListBooks возвращает книги каталога, новые сначала.
// Поиск идет по подстроке в названии или имени автора, фильтр по жанру точный.
func (s *Storage) ListBooks(ctx context.Context, search, genre string) ([]*models.Book, error) {
	const op = "storage.ListBooks"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + bookColumns + `
			  FROM books
			  WHERE ($1 = '' OR title ILIKE '%' || $1 || '%' OR author ILIKE '%' || $1 || '%')
			    AND ($2 = '' OR genres @> to_jsonb(ARRAY[$2]))
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, search, genre)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetBook возвращает книгу по идентификатору.
func (s *Storage) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	const op = "storage.GetBook"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`
	b, err := scanBook(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return b, nil
}

// UpdateBook обновляет поля книги.
func (s *Storage) UpdateBook(ctx context.Context, book *models.Book) error {
	const op = "storage.UpdateBook"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	genres, err := json.Marshal(book.Genres)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE books
			  SET title = $1, author = $2, description = $3, genres = $4,
			      cover_image = $5, updated_at = now()
			  WHERE id = $6`
	res, err := s.DB.ExecContext(ctx, query,
		book.Title, book.Author, book.Description, genres, book.CoverImage, book.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// DeleteBook удаляет книгу вместе с главами (каскадом).
func (s *Storage) DeleteBook(ctx context.Context, id int64) error {
	const op = "storage.DeleteBook"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// AddChaptersCount сдвигает счетчик глав книги на delta, не опускаясь ниже нуля.
func (s *Storage) AddChaptersCount(ctx context.Context, bookID int64, delta int) error {
	const op = "storage.AddChaptersCount"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE books
			  SET chapters_count = GREATEST(0, chapters_count + $1), updated_at = now()
			  WHERE id = $2`
	_, err := s.DB.ExecContext(ctx, query, delta, bookID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CountBooksByOwner возвращает количество книг пользователя.
func (s *Storage) CountBooksByOwner(ctx context.Context, ownerUID string) (int, error) {
	const op = "storage.CountBooksByOwner"
	var n int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM books WHERE owner_uid = $1`, ownerUID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
