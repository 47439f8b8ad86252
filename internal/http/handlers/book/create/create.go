// Package create реализует HTTP-обработчик добавления книги в каталог.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/novashelf/novashelf/internal/http/middlewarectx"
	"github.com/novashelf/novashelf/internal/http/response"
	"github.com/novashelf/novashelf/internal/lib/sl"
	"github.com/novashelf/novashelf/internal/models"
)

// Request — структура входных данных для создания книги.
type Request struct {
	Title       string   `json:"title" validate:"required,min=1,max=300"`
	Author      string   `json:"author,omitempty"`
	Description string   `json:"description,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	CoverImage  *string  `json:"coverImage,omitempty"`
}

// Service описывает интерфейс бизнес-логики создания книги.
type Service interface {
	Create(ctx context.Context, ownerUID, title, author, description string, genres []string, coverImage *string) (*models.Book, error)
}

// Handler обрабатывает HTTP-запросы создания книги.
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
// @Summary Создание книги
// @Description Добавляет новую книгу текущего пользователя в каталог.
// @Tags Books
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные книги"
// @Success 201 {object} response.Response "Созданная книга"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /books [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.book.create"

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

	created, err := h.service.Create(r.Context(), userUID, req.Title, req.Author, req.Description, req.Genres, req.CoverImage)
	if err != nil {
		log.Error("failed to create book", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("book created", slog.Int64("book_id", created.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(created))
}
