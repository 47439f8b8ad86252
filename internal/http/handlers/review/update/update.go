// Package update реализует HTTP-обработчик изменения рецензии.
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
	"github.com/novashelf/novashelf/internal/services/review"
)

// Request — структура входных данных для изменения рецензии.
// Нулевая оценка и пустой текст не изменяются.
type Request struct {
	Rating  int    `json:"rating,omitempty"`
	Comment string `json:"comment,omitempty"`
}

// Service описывает интерфейс бизнес-логики изменения рецензии.
type Service interface {
	Update(ctx context.Context, userUID string, reviewID int64, rating int, comment string) (*models.Review, error)
}

// Handler обрабатывает HTTP-запросы изменения рецензии.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Изменение рецензии
// @Description Обновляет оценку или текст рецензии. Доступно только автору рецензии.
// @Tags Reviews
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param id path int true "Идентификатор рецензии"
// @Param request body Request true "Изменяемые поля"
// @Success 200 {object} response.Response "Обновленная рецензия"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 403 {object} response.ErrorResponse "Рецензия другого пользователя"
// @Failure 404 {object} response.ErrorResponse "Рецензия не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /reviews/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.review.update"

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
		log.Error("invalid review id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid review id"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	updated, err := h.service.Update(r.Context(), userUID, id, req.Rating, req.Comment)
	switch {
	case errors.Is(err, review.ErrReviewNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("review not found"))
		return
	case errors.Is(err, review.ErrNotOwner):
		log.Info("review update rejected, not an owner", slog.Int64("review_id", id))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("not authorized"))
		return
	case errors.Is(err, review.ErrInvalidRating):
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("rating must be between 1 and 5"))
		return
	case err != nil:
		log.Error("failed to update review", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("review updated", slog.Int64("review_id", id))
	render.JSON(w, r, response.OKWithData(updated))
}
