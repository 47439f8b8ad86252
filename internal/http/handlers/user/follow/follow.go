// Package follow реализует HTTP-обработчик подписки на пользователя.
package follow

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/novashelf/novashelf/internal/http/middlewarectx"
	"github.com/novashelf/novashelf/internal/http/response"
	"github.com/novashelf/novashelf/internal/lib/sl"
	"github.com/novashelf/novashelf/internal/services/user"
)

// Service описывает интерфейс бизнес-логики подписок.
type Service interface {
	Follow(ctx context.Context, followerUID, followeeUID string) error
}

// Handler обрабатывает HTTP-запросы подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Подписка на пользователя
// @Description Подписывает текущего пользователя на указанного. Повторная подписка идемпотентна.
// @Tags Users
// @Security BearerAuth
// @Produce  json
// @Param uid path string true "Идентификатор пользователя"
// @Success 200 {object} response.Response "Подписка оформлена"
// @Failure 400 {object} response.ErrorResponse "Подписка на самого себя"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users/{uid}/follow [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.follow"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	followerUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || followerUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user identification missing"))
		return
	}

	followeeUID := chi.URLParam(r, "uid")

	err := h.service.Follow(r.Context(), followerUID, followeeUID)
	switch {
	case errors.Is(err, user.ErrSelfFollow):
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("cannot follow yourself"))
		return
	case errors.Is(err, user.ErrUserNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	case err != nil:
		log.Error("failed to follow user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("user followed", slog.String("followee_uid", followeeUID))
	render.JSON(w, r, response.OK())
}
