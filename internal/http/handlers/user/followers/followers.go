// Package followers реализует HTTP-обработчик списка подписчиков.
package followers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/novashelf/novashelf/internal/http/response"
	"github.com/novashelf/novashelf/internal/lib/sl"
	"github.com/novashelf/novashelf/internal/models"
)

// Service описывает интерфейс бизнес-логики подписок.
type Service interface {
	Followers(ctx context.Context, userUID string) ([]models.PublicProfile, error)
}

// Handler обрабатывает HTTP-запросы списка подписчиков.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Подписчики пользователя
// @Tags Users
// @Produce  json
// @Param uid path string true "Идентификатор пользователя"
// @Success 200 {object} response.Response "Список профилей"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users/{uid}/followers [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.followers"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid := chi.URLParam(r, "uid")

	list, err := h.service.Followers(r.Context(), uid)
	if err != nil {
		log.Error("failed to list followers", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	render.JSON(w, r, response.OKWithData(list))
}
