// Package updateprofile реализует HTTP-обработчик изменения профиля
// текущего пользователя.
package updateprofile

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/novashelf/novashelf/internal/http/middlewarectx"
	"github.com/novashelf/novashelf/internal/http/response"
	"github.com/novashelf/novashelf/internal/lib/sl"
	"github.com/novashelf/novashelf/internal/models"
	"github.com/novashelf/novashelf/internal/services/user"
)

// Request — структура входных данных для изменения профиля.
// Nil-поля не изменяются.
type Request struct {
	Name              *string             `json:"name,omitempty"`
	Username          *string             `json:"username,omitempty"`
	Bio               *string             `json:"bio,omitempty"`
	Avatar            *string             `json:"avatar,omitempty"`
	Social            *models.SocialLinks `json:"social,omitempty"`
	Password          *string             `json:"password,omitempty"`
	NotificationPrefs map[string]bool     `json:"notificationPrefs,omitempty"`
}

// Service описывает интерфейс бизнес-логики изменения профиля.
type Service interface {
	UpdateProfile(ctx context.Context, userUID string, in user.UpdateProfileInput) (*models.PublicProfile, error)
}

// Handler обрабатывает HTTP-запросы изменения профиля.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Изменение профиля
// @Description Обновляет профиль текущего пользователя, включая пароль и настройки уведомлений.
// @Tags Users
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body Request true "Изменяемые поля профиля"
// @Success 200 {object} response.Response "Обновленный профиль"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users/me [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.updateprofile"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user identification missing"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), userUID, user.UpdateProfileInput{
		Name:              req.Name,
		Username:          req.Username,
		Bio:               req.Bio,
		Avatar:            req.Avatar,
		Social:            req.Social,
		Password:          req.Password,
		NotificationPrefs: req.NotificationPrefs,
	})
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	case err != nil:
		log.Error("failed to update profile", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("profile updated", slog.String("user_uid", userUID))
	render.JSON(w, r, response.OKWithData(updated))
}
