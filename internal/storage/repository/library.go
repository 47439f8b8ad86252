package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/novashelf/novashelf/internal/models"
)

// AddLibraryEntry добавляет книгу в библиотеку пользователя.
// Повторное добавление той же книги завершится ошибкой уникальности.
func (s *Storage) AddLibraryEntry(ctx context.Context, userUID string, bookID int64) (int64, error) {
	const op = "storage.AddLibraryEntry"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var id int64
	query := `INSERT INTO library_entries (user_uid, book_id, last_read_at)
			  VALUES ($1, $2, now())
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query, userUID, bookID).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// GetLibraryEntry возвращает запись библиотеки по пользователю и книге.
func (s *Storage) GetLibraryEntry(ctx context.Context, userUID string, bookID int64) (*models.LibraryEntry, error) {
	const op = "storage.GetLibraryEntry"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	e := &models.LibraryEntry{}
	var chapterID sql.NullInt64
	var lastReadAt sql.NullTime
	query := `SELECT id, user_uid, book_id, current_chapter_id, progress_percent,
			      last_read_at, created_at
			  FROM library_entries
			  WHERE user_uid = $1 AND book_id = $2`
	err := s.DB.QueryRowContext(ctx, query, userUID, bookID).Scan(&e.ID, &e.UserUID,
		&e.BookID, &chapterID, &e.ProgressPercent, &lastReadAt, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if chapterID.Valid {
		e.CurrentChapterID = &chapterID.Int64
	}
	if lastReadAt.Valid {
		e.LastReadAt = &lastReadAt.Time
	}
	return e, nil
}

// RemoveLibraryEntry убирает книгу из библиотеки пользователя.
// Отсутствующая запись не считается ошибкой.
func (s *Storage) RemoveLibraryEntry(ctx context.Context, userUID string, bookID int64) error {
	const op = "storage.RemoveLibraryEntry"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	_, err := s.DB.ExecContext(ctx,
		`DELETE FROM library_entries WHERE user_uid = $1 AND book_id = $2`, userUID, bookID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpsertProgress обновляет прогресс чтения, создавая запись при ее отсутствии.
func (s *Storage) UpsertProgress(ctx context.Context, userUID string, bookID int64, currentChapterID *int64, progressPercent *float64) (*models.LibraryEntry, error) {
	const op = "storage.UpsertProgress"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO library_entries (user_uid, book_id, current_chapter_id, progress_percent, last_read_at)
			  VALUES ($1, $2, $3, COALESCE($4, 0), $5)
			  ON CONFLICT (user_uid, book_id) DO UPDATE
			  SET current_chapter_id = COALESCE($3, library_entries.current_chapter_id),
			      progress_percent = COALESCE($4, library_entries.progress_percent),
			      last_read_at = $5`
	_, err := s.DB.ExecContext(ctx, query, userUID, bookID, currentChapterID, progressPercent, time.Now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.GetLibraryEntry(ctx, userUID, bookID)
}

// ListLibrary возвращает библиотеку пользователя вместе с данными книг.
func (s *Storage) ListLibrary(ctx context.Context, userUID string) ([]*models.LibraryEntry, error) {
	const op = "storage.ListLibrary"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT e.id, e.user_uid, e.book_id, e.current_chapter_id, e.progress_percent,
			      e.last_read_at, e.created_at,
			      b.id, b.owner_uid, b.title, b.author, b.description, b.genres,
			      b.cover_image, b.chapters_count, b.created_at, b.updated_at
			  FROM library_entries e
			  JOIN books b ON b.id = e.book_id
			  WHERE e.user_uid = $1
			  ORDER BY e.last_read_at DESC NULLS LAST`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.LibraryEntry
	for rows.Next() {
		e := &models.LibraryEntry{}
		b := &models.Book{}
		var chapterID sql.NullInt64
		var lastReadAt sql.NullTime
		var genres []byte
		var cover sql.NullString
		if err := rows.Scan(&e.ID, &e.UserUID, &e.BookID, &chapterID, &e.ProgressPercent,
			&lastReadAt, &e.CreatedAt,
			&b.ID, &b.OwnerUID, &b.Title, &b.Author, &b.Description, &genres,
			&cover, &b.ChaptersCount, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if chapterID.Valid {
			e.CurrentChapterID = &chapterID.Int64
		}
		if lastReadAt.Valid {
			e.LastReadAt = &lastReadAt.Time
		}
		if cover.Valid {
			b.CoverImage = &cover.String
		}
		b.Genres = []string{}
		if len(genres) > 0 {
			if err := json.Unmarshal(genres, &b.Genres); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}
		e.Book = b
		result = append(result, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListLibraryHolderUIDs возвращает uid пользователей, у которых книга в библиотеке.
func (s *Storage) ListLibraryHolderUIDs(ctx context.Context, bookID int64) ([]string, error) {
	const op = "storage.ListLibraryHolderUIDs"
	rows, err := s.DB.QueryContext(ctx,
		`SELECT user_uid FROM library_entries WHERE book_id = $1`, bookID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var uids []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		uids = append(uids, uid)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return uids, nil
}

// CountLibraryEntries возвращает размер библиотеки пользователя.
func (s *Storage) CountLibraryEntries(ctx context.Context, userUID string) (int, error) {
	const op = "storage.CountLibraryEntries"
	var n int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM library_entries WHERE user_uid = $1`, userUID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
