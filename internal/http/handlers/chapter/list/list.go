// Package list реализует HTTP-обработчик списка глав книги.
package list

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
	"github.com/novashelf/novashelf/internal/services/chapter"
)

// Service описывает интерфейс бизнес-логики списка глав.
type Service interface {
	List(ctx context.Context, bookID int64) ([]*models.Chapter, error)
}

// Handler обрабатывает HTTP-запросы списка глав.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Главы книги
// @Description Возвращает главы книги в порядке чтения.
// @Tags Chapters
// @Produce  json
// @Param bookId path int true "Идентификатор книги"
// @Success 200 {object} response.Response "Список глав"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 404 {object} response.ErrorResponse "Книга не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /books/{bookId}/chapters [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chapter.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	bookID, err := strconv.ParseInt(chi.URLParam(r, "bookId"), 10, 64)
	if err != nil {
		log.Error("invalid book id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid book id"))
		return
	}

	chapters, err := h.service.List(r.Context(), bookID)
	switch {
	case errors.Is(err, chapter.ErrBookNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("book not found"))
		return
	case err != nil:
		log.Error("failed to list chapters", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	render.JSON(w, r, response.OKWithData(chapters))
}
