// Package list реализует HTTP-обработчик личной библиотеки читателя.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/novashelf/novashelf/internal/http/middlewarectx"
	"github.com/novashelf/novashelf/internal/http/response"
	"github.com/novashelf/novashelf/internal/lib/sl"
	"github.com/novashelf/novashelf/internal/models"
)

// Service описывает интерфейс бизнес-логики библиотеки.
type Service interface {
	List(ctx context.Context, userUID string) ([]*models.LibraryEntry, error)
}

// Handler обрабатывает HTTP-запросы списка библиотеки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Личная библиотека
// @Description Возвращает книги библиотеки пользователя с прогрессом чтения.
// @Tags Library
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} response.Response "Список записей библиотеки"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /library [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.library.list"

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

	entries, err := h.service.List(r.Context(), userUID)
	if err != nil {
		log.Error("failed to list library", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	render.JSON(w, r, response.OKWithData(entries))
}
