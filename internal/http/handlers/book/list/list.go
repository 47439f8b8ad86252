// Package list реализует HTTP-обработчик публичного каталога книг
// с фильтрами по названию и жанру.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/novashelf/novashelf/internal/http/response"
	"github.com/novashelf/novashelf/internal/lib/sl"
	"github.com/novashelf/novashelf/internal/models"
)

// Service описывает интерфейс бизнес-логики каталога.
type Service interface {
	List(ctx context.Context, search, genre string) ([]*models.Book, error)
}

// Handler обрабатывает HTTP-запросы списка книг.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Каталог книг
// @Description Возвращает книги каталога с необязательными фильтрами search и genre.
// @Tags Books
// @Produce  json
// @Param search query string false "Подстрока названия или автора"
// @Param genre query string false "Жанр"
// @Success 200 {object} response.Response "Список книг"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /books [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.book.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	search := r.URL.Query().Get("search")
	genre := r.URL.Query().Get("genre")

	books, err := h.service.List(r.Context(), search, genre)
	if err != nil {
		log.Error("failed to list books", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	render.JSON(w, r, response.OKWithData(books))
}
