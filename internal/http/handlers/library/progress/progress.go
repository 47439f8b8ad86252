// Package progress реализует HTTP-обработчик сохранения позиции чтения.
package progress

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
	"github.com/novashelf/novashelf/internal/services/library"
)

// Request — структура входных данных для сохранения прогресса.
// Nil-поля не изменяются.
type Request struct {
	CurrentChapterID *int64   `json:"currentChapterId,omitempty"`
	ProgressPercent  *float64 `json:"progressPercent,omitempty"`
}

// Service описывает интерфейс бизнес-логики прогресса чтения.
type Service interface {
	UpdateProgress(ctx context.Context, userUID string, bookID int64, currentChapterID *int64, progressPercent *float64) (*models.LibraryEntry, error)
}

// Handler обрабатывает HTTP-запросы сохранения прогресса.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Сохранение прогресса чтения
// @Description Обновляет текущую главу и процент прочитанного. Создает запись библиотеки при отсутствии.
// @Tags Library
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param bookId path int true "Идентификатор книги"
// @Param request body Request true "Позиция чтения"
// @Success 200 {object} response.Response "Обновленная запись библиотеки"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос или глава другой книги"
// @Failure 404 {object} response.ErrorResponse "Книга не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /library/{bookId}/progress [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.library.progress"

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

	entry, err := h.service.UpdateProgress(r.Context(), userUID, bookID, req.CurrentChapterID, req.ProgressPercent)
	switch {
	case errors.Is(err, library.ErrBookNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("book not found"))
		return
	case errors.Is(err, library.ErrInvalidChapter):
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("chapter does not belong to the book"))
		return
	case errors.Is(err, library.ErrInvalidProgress):
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("progress must be between 0 and 100"))
		return
	case err != nil:
		log.Error("failed to update reading progress", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	render.JSON(w, r, response.OKWithData(entry))
}
