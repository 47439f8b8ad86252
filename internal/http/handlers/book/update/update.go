// Package update реализует HTTP-обработчик изменения книги владельцем.
package update

import (
	"context"
	"encoding/json"
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
	"github.com/novashelf/novashelf/internal/models"
	"github.com/novashelf/novashelf/internal/services/book"
)

// Request — структура входных данных для изменения книги.
// Пустые поля не изменяются.
type Request struct {
	Title       string   `json:"title,omitempty"`
	Author      string   `json:"author,omitempty"`
	Description string   `json:"description,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	CoverImage  *string  `json:"coverImage,omitempty"`
}

// Service описывает интерфейс бизнес-логики изменения книги.
type Service interface {
	Update(ctx context.Context, userUID string, id int64, in book.UpdateBookInput) (*models.Book, error)
}

// Handler обрабатывает HTTP-запросы изменения книги.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Изменение книги
// @Description Обновляет поля книги. Доступно только владельцу.
// @Tags Books
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param id path int true "Идентификатор книги"
// @Param request body Request true "Изменяемые поля"
// @Success 200 {object} response.Response "Обновленная книга"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 403 {object} response.ErrorResponse "Книга принадлежит другому пользователю"
// @Failure 404 {object} response.ErrorResponse "Книга не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /books/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.book.update"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	updated, err := h.service.Update(r.Context(), userUID, id, book.UpdateBookInput{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		Genres:      req.Genres,
		CoverImage:  req.CoverImage,
	})
	switch {
	case errors.Is(err, book.ErrBookNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("book not found"))
		return
	case errors.Is(err, book.ErrNotOwner):
		log.Info("update rejected, not an owner", slog.Int64("book_id", id))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("not authorized"))
		return
	case err != nil:
		log.Error("failed to update book", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("book updated", slog.Int64("book_id", id))
	render.JSON(w, r, response.OKWithData(updated))
}
