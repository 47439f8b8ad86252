// Package unfollow реализует HTTP-обработчик отмены подписки.
package unfollow

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/novashelf/novashelf/internal/http/middlewarectx"
	"github.com/novashelf/novashelf/internal/http/response"
	"github.com/novashelf/novashelf/internal/lib/sl"
)

// Service описывает интерфейс бизнес-логики подписок.
type Service interface {
	Unfollow(ctx context.Context, followerUID, followeeUID string) error
}

// Handler обрабатывает HTTP-запросы отмены подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отмена подписки
// @Description Отписывает текущего пользователя от указанного. Отсутствие подписки не ошибка.
// @Tags Users
// @Security BearerAuth
// @Produce  json
// @Param uid path string true "Идентификатор пользователя"
// @Success 200 {object} response.Response "Подписка отменена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users/{uid}/follow [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.unfollow"

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

	if err := h.service.Unfollow(r.Context(), followerUID, followeeUID); err != nil {
		log.Error("failed to unfollow user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("user unfollowed", slog.String("followee_uid", followeeUID))
	render.JSON(w, r, response.OK())
}
