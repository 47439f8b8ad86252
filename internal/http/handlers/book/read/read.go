// Package read реализует HTTP-обработчик чтения одной книги с главами.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/novashelf/novashelf/internal/http/response"
	"github.com/novashelf/novashelf/internal/lib/sl"
	"github.com/novashelf/novashelf/internal/models"
	"github.com/novashelf/novashelf/internal/services/book"
)

// Service описывает интерфейс бизнес-логики чтения книги.
type Service interface {
	Get(ctx context.Context, id int64) (*models.BookWithChapters, error)
}

// Handler обрабатывает HTTP-запросы чтения книги.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Книга по идентификатору
// @Description Возвращает книгу вместе с главами в порядке чтения.
// @Tags Books
// @Produce  json
// @Param id path int true "Идентификатор книги"
// @Success 200 {object} response.Response "Книга с главами"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 404 {object} response.ErrorResponse "Книга не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /books/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.book.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("invalid book id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid book id"))
		return
	}

	result, err := h.service.Get(r.Context(), id)
	switch {
	case errors.Is(err, book.ErrBookNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("book not found"))
		return
	case err != nil:
		log.Error("failed to get book", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	render.JSON(w, r, response.OKWithData(result))
}
