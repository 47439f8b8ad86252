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

const userColumns = `uid, name, email, username, password_hash, role, bio, avatar, social,
	is_admin, is_email_verified, otp, otp_expires, notification_prefs, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	var username, bio, avatar, otp sql.NullString
	var otpExpires sql.NullTime
	var social, prefs []byte

	if err := row.Scan(&u.UID, &u.Name, &u.Email, &username, &u.PasswordHash, &u.Role,
		&bio, &avatar, &social, &u.IsAdmin, &u.IsEmailVerified, &otp, &otpExpires,
		&prefs, &u.CreatedAt); err != nil {
		return nil, err
	}

	if username.Valid {
		u.Username = &username.String
	}
	if bio.Valid {
		u.Bio = &bio.String
	}
	if avatar.Valid {
		u.Avatar = &avatar.String
	}
	if otp.Valid {
		u.OTP = &otp.String
	}
	if otpExpires.Valid {
		u.OTPExpires = &otpExpires.Time
	}
	if len(social) > 0 {
		if err := json.Unmarshal(social, &u.Social); err != nil {
			return nil, err
		}
	}
	u.NotificationPrefs = map[string]bool{}
	if len(prefs) > 0 {
		if err := json.Unmarshal(prefs, &u.NotificationPrefs); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// CreateUser сохраняет нового неподтвержденного пользователя вместе
// с одноразовым кодом и возвращает его UID.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	social, err := json.Marshal(user.Social)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var newUID string
	query := `INSERT INTO users (name, email, password_hash, role, social,
			      is_email_verified, otp, otp_expires)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.Role, social,
		user.IsEmailVerified, user.OTP, user.OTPExpires).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByEmail возвращает пользователя по его email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByID возвращает пользователя по его UID.
func (s *Storage) GetUserByID(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUserByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateOTP перезаписывает ожидающий одноразовый код и срок его действия.
// Предыдущий код при этом перестает действовать.
func (s *Storage) UpdateOTP(ctx context.Context, userUID, code string, expiresAt time.Time) error {
	const op = "storage.UpdateOTP"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET otp = $1, otp_expires = $2 WHERE uid = $3`
	res, err := s.DB.ExecContext(ctx, query, code, expiresAt, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// MarkEmailVerified выставляет флаг подтверждения почты и сбрасывает
// одноразовый код вместе со сроком действия в NULL.
func (s *Storage) MarkEmailVerified(ctx context.Context, userUID string) error {
	const op = "storage.MarkEmailVerified"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET is_email_verified = TRUE, otp = NULL, otp_expires = NULL
			  WHERE uid = $1`
	res, err := s.DB.ExecContext(ctx, query, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// DeleteUser удаляет учетную запись. Используется как компенсирующее
// действие, когда письмо с кодом не удалось отправить при регистрации.
func (s *Storage) DeleteUser(ctx context.Context, userUID string) error {
	const op = "storage.DeleteUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	_, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE uid = $1`, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateProfile обновляет профильные поля пользователя.
func (s *Storage) UpdateProfile(ctx context.Context, user *models.User) error {
	const op = "storage.UpdateProfile"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	social, err := json.Marshal(user.Social)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE users
			  SET name = $1, email = $2, username = $3, bio = $4, avatar = $5,
			      social = $6, password_hash = $7
			  WHERE uid = $8`
	res, err := s.DB.ExecContext(ctx, query,
		user.Name, user.Email, user.Username, user.Bio, user.Avatar,
		social, user.PasswordHash, user.UID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// UpdateNotificationPrefs сохраняет настройки in-app уведомлений.
func (s *Storage) UpdateNotificationPrefs(ctx context.Context, userUID string, prefs map[string]bool) error {
	const op = "storage.UpdateNotificationPrefs"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	raw, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET notification_prefs = $1 WHERE uid = $2`, raw, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
