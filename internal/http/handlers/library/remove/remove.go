// Package remove реализует HTTP-обработчик удаления книги из библиотеки.
package remove

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/novashelf/novashelf/internal/http/middlewarectx"
	"github.com/novashelf/novashelf/internal/http/response"
	"github.com/novashelf/novashelf/internal/lib/sl"
)

// Service описывает интерфейс бизнес-логики библиотеки.
type Service interface {
	Remove(ctx context.Context, userUID string, bookID int64) error
}

// Handler обрабатывает HTTP-запросы удаления из библиотеки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удаление книги из библиотеки
// @Description Убирает книгу из личной библиотеки. Отсутствие записи не ошибка.
// @Tags Library
// @Security BearerAuth
// @Produce  json
// @Param bookId path int true "Идентификатор книги"
// @Success 200 {object} response.Response "Книга убрана из библиотеки"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /library/{bookId} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.library.remove"

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

	bookID, err := strconv.ParseInt(chi.URLParam(r, "bookId"), 10, 64)
	if err != nil {
		log.Error("invalid book id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid book id"))
		return
	}

	if err := h.service.Remove(r.Context(), userUID, bookID); err != nil {
		log.Error("failed to remove book from library", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("book removed from library", slog.Int64("book_id", bookID))
	render.JSON(w, r, response.OK())
}
