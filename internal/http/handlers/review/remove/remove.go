// Package remove реализует HTTP-обработчик удаления рецензии.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/novashelf/novashelf/internal/http/middlewarectx"
	"github.com/novashelf/novashelf/internal/http/response"
	"github.com/novashelf/novashelf/internal/lib/sl"
	"github.com/novashelf/novashelf/internal/services/review"
)

// Service описывает интерфейс бизнес-логики удаления рецензии.
type Service interface {
	Delete(ctx context.Context, userUID string, reviewID int64) error
}

// Handler обрабатывает HTTP-запросы удаления рецензии.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удаление рецензии
// @Description Удаляет рецензию. Доступно только ее автору.
// @Tags Reviews
// @Security BearerAuth
// @Produce  json
// @Param id path int true "Идентификатор рецензии"
// @Success 200 {object} response.Response "Рецензия удалена"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 403 {object} response.ErrorResponse "Рецензия другого пользователя"
// @Failure 404 {object} response.ErrorResponse "Рецензия не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /reviews/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.review.remove"

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

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("invalid review id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid review id"))
		return
	}

	err = h.service.Delete(r.Context(), userUID, id)
	switch {
	case errors.Is(err, review.ErrReviewNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("review not found"))
		return
	case errors.Is(err, review.ErrNotOwner):
		log.Info("review delete rejected, not an owner", slog.Int64("review_id", id))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("not authorized"))
		return
	case err != nil:
		log.Error("failed to delete review", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("review deleted", slog.Int64("review_id", id))
	render.JSON(w, r, response.OK())
}
