// Package update реализует HTTP-обработчик изменения главы.
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
	"github.com/novashelf/novashelf/internal/services/chapter"
)

// Request — структура входных данных для изменения главы.
// Пустые поля не изменяются.
type Request struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

// Service описывает интерфейс бизнес-логики изменения главы.
type Service interface {
	Update(ctx context.Context, userUID string, chapterID int64, title, content string) (*models.Chapter, error)
}

// Handler обрабатывает HTTP-запросы изменения главы.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Изменение главы
// @Description Обновляет название или текст главы. Доступно только владельцу книги.
// @Tags Chapters
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param id path int true "Идентификатор главы"
// @Param request body Request true "Изменяемые поля"
// @Success 200 {object} response.Response "Обновленная глава"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 403 {object} response.ErrorResponse "Глава чужой книги"
// @Failure 404 {object} response.ErrorResponse "Глава не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /chapters/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chapter.update"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	updated, err := h.service.Update(r.Context(), userUID, id, req.Title, req.Content)
	switch {
	case errors.Is(err, chapter.ErrChapterNotFound), errors.Is(err, chapter.ErrBookNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("chapter not found"))
		return
	case errors.Is(err, chapter.ErrNotOwner):
		log.Info("chapter update rejected, not an owner", slog.Int64("chapter_id", id))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("not authorized"))
		return
	case err != nil:
		log.Error("failed to update chapter", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("chapter updated", slog.Int64("chapter_id", id))
	render.JSON(w, r, response.OKWithData(updated))
}
