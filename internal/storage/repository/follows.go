package repository

import (
	"context"
	"fmt"

	"github.com/novashelf/novashelf/internal/models"
)

// Follow добавляет связь "follower читает followee".
// Повторный вызов с той же парой безвреден.
//
// Связь хранится одной строкой и читается в обе стороны, поэтому
// подписки и подписчики не могут разойтись между собой.
func (s *Storage) Follow(ctx context.Context, followerUID, followeeUID string) error {
	const op = "storage.Follow"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO follows (follower_uid, followee_uid)
			  VALUES ($1, $2)
			  ON CONFLICT DO NOTHING`
	_, err := s.DB.ExecContext(ctx, query, followerUID, followeeUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Unfollow удаляет связь; отсутствие связи не считается ошибкой.
func (s *Storage) Unfollow(ctx context.Context, followerUID, followeeUID string) error {
	const op = "storage.Unfollow"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	_, err := s.DB.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_uid = $1 AND followee_uid = $2`,
		followerUID, followeeUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) listProfiles(ctx context.Context, op, query, uid string) ([]models.PublicProfile, error) {
	rows, err := s.DB.QueryContext(ctx, query, uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []models.PublicProfile{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u.Public())
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListFollowers возвращает публичные профили подписчиков пользователя.
func (s *Storage) ListFollowers(ctx context.Context, userUID string) ([]models.PublicProfile, error) {
	query := `SELECT ` + userColumns + `
			  FROM users
			  JOIN follows ON follows.follower_uid = users.uid
			  WHERE follows.followee_uid = $1
			  ORDER BY follows.created_at DESC`
	return s.listProfiles(ctx, "storage.ListFollowers", query, userUID)
}

// ListFollowing возвращает публичные профили пользователей, на которых подписан userUID.
func (s *Storage) ListFollowing(ctx context.Context, userUID string) ([]models.PublicProfile, error) {
	query := `SELECT ` + userColumns + `
			  FROM users
			  JOIN follows ON follows.followee_uid = users.uid
			  WHERE follows.follower_uid = $1
			  ORDER BY follows.created_at DESC`
	return s.listProfiles(ctx, "storage.ListFollowing", query, userUID)
}

// ListFollowerUIDs возвращает uid подписчиков пользователя.
func (s *Storage) ListFollowerUIDs(ctx context.Context, userUID string) ([]string, error) {
	const op = "storage.ListFollowerUIDs"
	rows, err := s.DB.QueryContext(ctx,
		`SELECT follower_uid FROM follows WHERE followee_uid = $1`, userUID)
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

// CountFollowers возвращает число подписчиков пользователя.
func (s *Storage) CountFollowers(ctx context.Context, userUID string) (int, error) {
	const op = "storage.CountFollowers"
	var n int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM follows WHERE followee_uid = $1`, userUID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// CountFollowing возвращает число подписок пользователя.
func (s *Storage) CountFollowing(ctx context.Context, userUID string) (int, error) {
	const op = "storage.CountFollowing"
	var n int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM follows WHERE follower_uid = $1`, userUID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
