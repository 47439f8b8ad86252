// Package remove реализует HTTP-обработчик удаления главы.
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
	"github.com/novashelf/novashelf/internal/services/chapter"
)

// Service описывает интерфейс бизнес-логики удаления главы.
type Service interface {
	Delete(ctx context.Context, userUID string, chapterID int64) error
}

// Handler обрабатывает HTTP-запросы удаления главы.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удаление главы
// @Description Удаляет главу книги. Доступно только владельцу книги.
// @Tags Chapters
// @Security BearerAuth
// @Produce  json
// @Param id path int true "Идентификатор главы"
// @Success 200 {object} response.Response "Глава удалена"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 403 {object} response.ErrorResponse "Глава чужой книги"
// @Failure 404 {object} response.ErrorResponse "Глава не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /chapters/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chapter.remove"

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
		log.Error("invalid chapter id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid chapter id"))
		return
	}

	err = h.service.Delete(r.Context(), userUID, id)
	switch {
	case errors.Is(err, chapter.ErrChapterNotFound), errors.Is(err, chapter.ErrBookNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("chapter not found"))
		return
	case errors.Is(err, chapter.ErrNotOwner):
		log.Info("chapter delete rejected, not an owner", slog.Int64("chapter_id", id))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("not authorized"))
		return
	case err != nil:
		log.Error("failed to delete chapter", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("chapter deleted", slog.Int64("chapter_id", id))
	render.JSON(w, r, response.OK())
}
