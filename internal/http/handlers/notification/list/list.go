// Package list реализует HTTP-обработчик ленты уведомлений пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/novashelf/novashelf/internal/http/middlewarectx"
	"github.com/novashelf/novashelf/internal/http/response"
	"github.com/novashelf/novashelf/internal/lib/sl"
	"github.com/novashelf/novashelf/internal/models"
)

// Service описывает интерфейс бизнес-логики уведомлений.
type Service interface {
	List(ctx context.Context, userUID string, unreadOnly bool, before *time.Time, limit int) ([]*models.Notification, error)
}

// Handler обрабатывает HTTP-запросы ленты уведомлений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Лента уведомлений
// @Description Возвращает уведомления пользователя, новые первыми. Поддерживает курсор before и фильтр unread.
// @Tags Notifications
// @Security BearerAuth
// @Produce  json
// @Param unread query bool false "Только непрочитанные"
// @Param before query string false "Курсор: время в формате RFC3339"
// @Param limit query int false "Максимум записей (по умолчанию 20, не больше 100)"
// @Success 200 {object} response.Response "Список уведомлений"
// @Failure 400 {object} response.ErrorResponse "Некорректный курсор"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /notifications [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notification.list"

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

	unreadOnly := r.URL.Query().Get("unread") == "true"

	var before *time.Time
	if raw := r.URL.Query().Get("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			log.Error("invalid before cursor", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid before cursor"))
			return
		}
		before = &t
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	items, err := h.service.List(r.Context(), userUID, unreadOnly, before, limit)
	if err != nil {
		log.Error("failed to list notifications", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	render.JSON(w, r, response.OKWithData(items))
}
