// Package create реализует HTTP-обработчик публикации новой главы.
package create

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
	"github.com/go-playground/validator"

	"github.com/novashelf/novashelf/internal/http/middlewarectx"
	"github.com/novashelf/novashelf/internal/http/response"
	"github.com/novashelf/novashelf/internal/lib/sl"
	"github.com/novashelf/novashelf/internal/models"
	"github.com/novashelf/novashelf/internal/services/chapter"
)

// Request — структура входных данных для публикации главы.
type Request struct {
	Title   string `json:"title" validate:"required,min=1,max=300"`
	Content string `json:"content" validate:"required"`
}

// Service описывает интерфейс бизнес-логики публикации главы.
type Service interface {
	Create(ctx context.Context, userUID string, bookID int64, title, content string) (*models.Chapter, error)
}

// Handler обрабатывает HTTP-запросы публикации главы.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Публикация главы
// @Description Добавляет главу в конец книги и рассылает уведомления читателям.
// @Tags Chapters
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param bookId path int true "Идентификатор книги"
// @Param request body Request true "Данные главы"
// @Success 201 {object} response.Response "Созданная глава"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 403 {object} response.ErrorResponse "Книга принадлежит другому пользователю"
// @Failure 404 {object} response.ErrorResponse "Книга не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /books/{bookId}/chapters [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chapter.create"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	created, err := h.service.Create(r.Context(), userUID, bookID, req.Title, req.Content)
	switch {
	case errors.Is(err, chapter.ErrBookNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("book not found"))
		return
	case errors.Is(err, chapter.ErrNotOwner):
		log.Info("chapter create rejected, not an owner", slog.Int64("book_id", bookID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("not authorized"))
		return
	case err != nil:
		log.Error("failed to create chapter", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("chapter created", slog.Int64("chapter_id", created.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(created))
}
