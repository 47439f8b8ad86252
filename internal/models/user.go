// Package models содержит доменные модели сервиса: пользователей,
// книги, главы, рецензии, комментарии, библиотеку и уведомления.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// Роли пользователей. Любое другое значение при регистрации
// заменяется на RoleReader.
const (
	RoleReader = "reader"
	RoleAuthor = "author"
)

// SocialLinks ссылки на внешние профили пользователя.
type SocialLinks struct {
	Website   string `json:"website,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Github    string `json:"github,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
}

// User представляет учётную запись пользователя системы.
//
// Поля OTP и OTPExpires заполнены только пока аккаунт не подтвержден;
// после успешной верификации они сбрасываются в NULL и больше не появляются.
type User struct {
	UID               string          // Уникальный идентификатор пользователя
	Name              string          // Отображаемое имя
	Email             string          // Электронная почта (уникальная)
	Username          *string         // Необязательный никнейм (уникальный)
	PasswordHash      string          // bcrypt-хэш пароля
	Role              string          // reader или author
	Bio               *string         // Описание профиля
	Avatar            *string         // Имя файла аватара
	Social            SocialLinks     // Ссылки на соцсети
	IsAdmin           bool            // Флаг администратора
	IsEmailVerified   bool            // Флаг подтверждения почты
	OTP               *string         // Ожидающий одноразовый код
	OTPExpires        *time.Time      // Срок действия кода
	NotificationPrefs map[string]bool // Вкл/выкл in-app уведомлений по типам
	CreatedAt         time.Time
}

// PublicProfile публичная часть профиля без учетных данных.
type PublicProfile struct {
	UID      string      `json:"id"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Username *string     `json:"username,omitempty"`
	Role     string      `json:"role"`
	Bio      *string     `json:"bio,omitempty"`
	Avatar   *string     `json:"avatar,omitempty"`
	Social   SocialLinks `json:"social"`
}

// Public возвращает публичное представление пользователя.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		UID:      u.UID,
		Name:     u.Name,
		Email:    u.Email,
		Username: u.Username,
		Role:     u.Role,
		Bio:      u.Bio,
		Avatar:   u.Avatar,
		Social:   u.Social,
	}
}

// NormalizeRole приводит роль к допустимому значению.
// Неизвестные и пустые роли заменяются на reader.
func NormalizeRole(role string) string {
	switch role {
	case RoleReader, RoleAuthor:
		return role
	default:
		return RoleReader
	}
}
