// Package remove реализует HTTP-обработчик удаления книги владельцем.
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
	"github.com/novashelf/novashelf/internal/services/book"
)

// Service описывает интерфейс бизнес-логики удаления книги.
type Service interface {
	Delete(ctx context.Context, userUID string, id int64) error
}

// Handler обрабатывает HTTP-запросы удаления книги.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удаление книги
// @Description Удаляет книгу вместе с главами. Доступно только владельцу.
// @Tags Books
// @Security BearerAuth
// @Produce  json
// @Param id path int true "Идентификатор книги"
// @Success 200 {object} response.Response "Книга удалена"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 403 {object} response.ErrorResponse "Книга принадлежит другому пользователю"
// @Failure 404 {object} response.ErrorResponse "Книга не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /books/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.book.remove"

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
		log.Error("invalid book id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid book id"))
		return
	}

	err = h.service.Delete(r.Context(), userUID, id)
	switch {
	case errors.Is(err, book.ErrBookNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("book not found"))
		return
	case errors.Is(err, book.ErrNotOwner):
		log.Info("delete rejected, not an owner", slog.Int64("book_id", id))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("not authorized"))
		return
	case err != nil:
		log.Error("failed to delete book", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("book deleted", slog.Int64("book_id", id))
	render.JSON(w, r, response.OK())
}
