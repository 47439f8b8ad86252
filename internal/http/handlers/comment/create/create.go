// Package create реализует HTTP-обработчик добавления комментария
// к книге или главе, включая ответы в тредах.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/novashelf/novashelf/internal/http/middlewarectx"
	"github.com/novashelf/novashelf/internal/http/response"
	"github.com/novashelf/novashelf/internal/lib/sl"
	"github.com/novashelf/novashelf/internal/models"
	"github.com/novashelf/novashelf/internal/services/comment"
)

// Request — структура входных данных для добавления комментария.
type Request struct {
	TargetType string `json:"targetType" validate:"required,oneof=book chapter"`
	TargetID   int64  `json:"targetId" validate:"required"`
	Content    string `json:"content" validate:"required,min=1,max=5000"`
	ParentID   *int64 `json:"parentId,omitempty"`
}

// Service описывает интерфейс бизнес-логики добавления комментария.
type Service interface {
	Create(ctx context.Context, userUID, targetType string, targetID int64, content string, parentID *int64) (*models.Comment, error)
}

// Handler обрабатывает HTTP-запросы добавления комментария.
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
// @Summary Добавление комментария
// @Description Сохраняет комментарий к книге или главе и уведомляет заинтересованных.
// @Tags Comments
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body Request true "Цель и текст комментария"
// @Success 201 {object} response.Response "Созданный комментарий"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос или родительский комментарий"
// @Failure 404 {object} response.ErrorResponse "Цель не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /comments [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.comment.create"

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

	created, err := h.service.Create(r.Context(), userUID, req.TargetType, req.TargetID, req.Content, req.ParentID)
	switch {
	case errors.Is(err, comment.ErrInvalidTarget):
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid target type"))
		return
	case errors.Is(err, comment.ErrTargetNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("target not found"))
		return
	case errors.Is(err, comment.ErrInvalidParent):
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid parent comment"))
		return
	case err != nil:
		log.Error("failed to create comment", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("comment created", slog.Int64("comment_id", created.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(created))
}
