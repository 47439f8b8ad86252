// Package list реализует HTTP-обработчик списка комментариев
// к книге или главе.
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
	"github.com/novashelf/novashelf/internal/services/comment"
)

// Service описывает интерфейс бизнес-логики списка комментариев.
type Service interface {
	List(ctx context.Context, targetType string, targetID int64) ([]*models.Comment, error)
}

// Handler обрабатывает HTTP-запросы списка комментариев.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Комментарии книги или главы
// @Description Возвращает комментарии цели, новые первыми.
// @Tags Comments
// @Produce  json
// @Param targetType path string true "Тип цели: book или chapter"
// @Param targetId path int true "Идентификатор цели"
// @Success 200 {object} response.Response "Список комментариев"
// @Failure 400 {object} response.ErrorResponse "Некорректная цель"
// @Failure 404 {object} response.ErrorResponse "Цель не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /comments/{targetType}/{targetId} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.comment.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	targetType := chi.URLParam(r, "targetType")
	targetID, err := strconv.ParseInt(chi.URLParam(r, "targetId"), 10, 64)
	if err != nil {
		log.Error("invalid target id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid target id"))
		return
	}

	comments, err := h.service.List(r.Context(), targetType, targetID)
	switch {
	case errors.Is(err, comment.ErrInvalidTarget):
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid target type"))
		return
	case errors.Is(err, comment.ErrTargetNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("target not found"))
		return
	case err != nil:
		log.Error("failed to list comments", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	render.JSON(w, r, response.OKWithData(comments))
}
