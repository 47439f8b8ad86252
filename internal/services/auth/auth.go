// Package auth содержит бизнес-логику регистрации с подтверждением почты
// одноразовым кодом, а также авторизации пользователей.
//
// Жизненный цикл учетной записи: аккаунт создается неподтвержденным с
// привязанным кодом, переходит в подтвержденное состояние ровно один раз
// при успешной проверке кода и только после этого может получать токены.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/novashelf/novashelf/internal/lib/jwt"
	"github.com/novashelf/novashelf/internal/lib/otp"
	"github.com/novashelf/novashelf/internal/lib/password"
	"github.com/novashelf/novashelf/internal/lib/sl"
	"github.com/novashelf/novashelf/internal/models"
	"github.com/novashelf/novashelf/internal/storage/repository"
)

// Ошибки уровня бизнес-логики; обработчики сопоставляют их HTTP-статусам.
var (
	// ErrEmailTaken почта уже зарегистрирована.
	ErrEmailTaken = errors.New("user already exists")
	// ErrUserNotFound учетная запись не найдена.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidOTP код отсутствует, истек или не совпал. Причина
	// намеренно не уточняется, чтобы не помогать перебору.
	ErrInvalidOTP = errors.New("invalid or expired otp")
	// ErrAlreadyVerified повторная отправка кода на подтвержденный аккаунт.
	ErrAlreadyVerified = errors.New("email is already verified")
	// ErrNotVerified вход до подтверждения почты; отличается от
	// ErrInvalidCredentials, чтобы клиент отправил пользователя
	// на повторную верификацию, а не на повтор пароля.
	ErrNotVerified = errors.New("email is not verified")
	// ErrInvalidCredentials пара почта/пароль не подошла.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrDeliveryFailed письмо с кодом не удалось отправить.
	ErrDeliveryFailed = errors.New("failed to send verification email")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, userUID string) (*models.User, error)
	UpdateOTP(ctx context.Context, userUID, code string, expiresAt time.Time) error
	MarkEmailVerified(ctx context.Context, userUID string) error
	DeleteUser(ctx context.Context, userUID string) error
}

// Mailer описывает контракт отправки писем. Ошибка отправки отличима от
// успеха: от этого зависит, будет ли выполнен компенсирующий откат.
type Mailer interface {
	SendOTPEmail(email, name, code string) error
	SendWelcomeEmail(email, name string) error
}

// Service реализует машину состояний регистрации и верификации.
type Service struct {
	users    UserRepository
	mailer   Mailer
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(users UserRepository, mailer Mailer, jwtMaker jwt.Maker, log *slog.Logger) *Service {
	return &Service{
		users:    users,
		mailer:   mailer,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// RegisterResult результат первого шага регистрации.
// Токен на этом шаге не выдается.
type RegisterResult struct {
	UserUID              string
	Email                string
	Role                 string
	RequiresVerification bool
}

// AuthResult результат успешной верификации или входа.
type AuthResult struct {
	Profile models.PublicProfile
	Token   string
}

// Register создает неподтвержденную учетную запись и синхронно отправляет
// письмо с одноразовым кодом.
//
// Если письмо отправить не удалось, только что созданная запись удаляется:
// система не должна хранить аккаунт, который никто не сможет подтвердить.
func (s *Service) Register(ctx context.Context, name, email, rawPassword, role string) (*RegisterResult, error) {
	const op = "auth.Register"

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	code, expiresAt, err := otp.GenerateWithExpiry()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		Name:            name,
		Email:           email,
		PasswordHash:    hashed,
		Role:            models.NormalizeRole(role),
		IsEmailVerified: false,
		OTP:             &code,
		OTPExpires:      &expiresAt,
	}
	uid, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.mailer.SendOTPEmail(email, name, code); err != nil {
		s.log.Error("otp email delivery failed, rolling back registration",
			slog.String("email", email), sl.Err(err))
		if delErr := s.users.DeleteUser(ctx, uid); delErr != nil {
			s.log.Error("compensating delete failed", sl.Err(delErr))
		}
		return nil, ErrDeliveryFailed
	}

	return &RegisterResult{
		UserUID:              uid,
		Email:                email,
		Role:                 user.Role,
		RequiresVerification: true,
	}, nil
}

// VerifyOTP проверяет одноразовый код и завершает регистрацию.
//
// При успехе флаг подтверждения выставляется, код и срок действия
// сбрасываются в NULL, выдается токен. Приветственное письмо уходит
// в отдельной горутине, его ошибка никогда не влияет на ответ.
func (s *Service) VerifyOTP(ctx context.Context, userUID, code string) (*AuthResult, error) {
	const op = "auth.VerifyOTP"

	user, err := s.users.GetUserByID(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !otp.Validate(code, user.OTP, user.OTPExpires) {
		return nil, ErrInvalidOTP
	}

	if err := s.users.MarkEmailVerified(ctx, user.UID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.IsEmailVerified = true
	user.OTP = nil
	user.OTPExpires = nil

	go func(email, name string) {
		if err := s.mailer.SendWelcomeEmail(email, name); err != nil {
			s.log.Warn("welcome email delivery failed", sl.Err(err))
		}
	}(user.Email, user.Name)

	token, err := s.jwtMaker.GenerateToken(user.UID, user.Name, user.Role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &AuthResult{Profile: user.Public(), Token: token}, nil
}

// ResendOTP выпускает новый одноразовый код взамен прежнего и отправляет его.
//
// Новый код перезаписывается до попытки отправки; неудача доставки
// поднимается наверх, но записанный код не откатывается — в отличие от
// первичной регистрации у аккаунта уже есть устойчивая идентичность.
func (s *Service) ResendOTP(ctx context.Context, userUID string) error {
	const op = "auth.ResendOTP"

	user, err := s.users.GetUserByID(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if user.IsEmailVerified {
		return ErrAlreadyVerified
	}

	code, expiresAt, err := otp.GenerateWithExpiry()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.UpdateOTP(ctx, user.UID, code, expiresAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.mailer.SendOTPEmail(user.Email, user.Name, code); err != nil {
		s.log.Error("otp email delivery failed on resend",
			slog.String("email", user.Email), sl.Err(err))
		return ErrDeliveryFailed
	}
	return nil
}

// Login проверяет пароль, требует подтвержденную почту и выдает токен.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*AuthResult, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsEmailVerified {
		return nil, ErrNotVerified
	}

	token, err := s.jwtMaker.GenerateToken(user.UID, user.Name, user.Role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &AuthResult{Profile: user.Public(), Token: token}, nil
}
