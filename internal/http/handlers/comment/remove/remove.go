// Package remove реализует HTTP-обработчик удаления комментария.
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
	"github.com/novashelf/novashelf/internal/services/comment"
)

// Service описывает интерфейс бизнес-логики удаления комментария.
type Service interface {
	Delete(ctx context.Context, userUID string, commentID int64) error
}

// Handler обрабатывает HTTP-запросы удаления комментария.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удаление комментария
// @Description Удаляет комментарий. Доступно только его автору.
// @Tags Comments
// @Security BearerAuth
// @Produce  json
// @Param id path int true "Идентификатор комментария"
// @Success 200 {object} response.Response "Комментарий удален"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 403 {object} response.ErrorResponse "Комментарий другого пользователя"
// @Failure 404 {object} response.ErrorResponse "Комментарий не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /comments/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.comment.remove"

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
		log.Error("invalid comment id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid comment id"))
		return
	}

	err = h.service.Delete(r.Context(), userUID, id)
	switch {
	case errors.Is(err, comment.ErrCommentNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("comment not found"))
		return
	case errors.Is(err, comment.ErrNotOwner):
		log.Info("comment delete rejected, not an owner", slog.Int64("comment_id", id))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("not authorized"))
		return
	case err != nil:
		log.Error("failed to delete comment", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("comment deleted", slog.Int64("comment_id", id))
	render.JSON(w, r, response.OK())
}
