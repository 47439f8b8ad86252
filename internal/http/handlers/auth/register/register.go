// Package register реализует HTTP-обработчик регистрации новой учетной записи.
//
// Обработчик декодирует и валидирует входные данные, делегирует регистрацию
// бизнес-логике и возвращает созданный идентификатор. Токен на этом шаге
// не выдается: аккаунт еще не подтвержден.
package register

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/novashelf/novashelf/internal/http/response"
	"github.com/novashelf/novashelf/internal/lib/sl"
	"github.com/novashelf/novashelf/internal/services/auth"
)

// Request — структура входных данных для регистрации.
type Request struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role,omitempty"`
}

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	Register(ctx context.Context, name, email, password, role string) (*auth.RegisterResult, error)
}

// Handler обрабатывает HTTP-запросы регистрации.
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
// @Summary Регистрация пользователя
// @Description Создает неподтвержденную учетную запись и отправляет одноразовый код на почту.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные новой учетной записи"
// @Success 201 {object} response.Response "Учетная запись создана, требуется верификация"
// @Failure 400 {object} response.ErrorResponse "Некорректные данные или почта занята"
// @Failure 500 {object} response.ErrorResponse "Письмо с кодом не отправлено"
// @Router /auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	result, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password, req.Role)
	switch {
	case errors.Is(err, auth.ErrEmailTaken):
		log.Info("email already registered", slog.String("email", req.Email))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("user already exists"))
		return
	case errors.Is(err, auth.ErrDeliveryFailed):
		log.Error("verification email delivery failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to send verification email"))
		return
	case err != nil:
		log.Error("registration failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("user registered", slog.String("user_uid", result.UserUID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"userId":               result.UserUID,
		"email":                result.Email,
		"role":                 result.Role,
		"requiresVerification": result.RequiresVerification,
	}))
}
