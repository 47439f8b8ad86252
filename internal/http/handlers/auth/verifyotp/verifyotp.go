// Package verifyotp реализует HTTP-обработчик подтверждения почты
// одноразовым кодом. При успехе возвращает профиль и JWT.
package verifyotp

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

// Request — структура входных данных для подтверждения кода.
type Request struct {
	UserID string `json:"userId" validate:"required,uuid"`
	OTP    string `json:"otp" validate:"required,len=6,numeric"`
}

// Service описывает интерфейс бизнес-логики верификации.
type Service interface {
	VerifyOTP(ctx context.Context, userUID, code string) (*auth.AuthResult, error)
}

// Handler обрабатывает HTTP-запросы подтверждения кода.
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
// @Summary Подтверждение почты одноразовым кодом
// @Description Проверяет код, завершает регистрацию и возвращает JWT.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Идентификатор пользователя и код"
// @Success 200 {object} response.Response "Почта подтверждена"
// @Failure 400 {object} response.ErrorResponse "Код не совпал или истек"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/verify-otp [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.verifyotp"

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

	result, err := h.service.VerifyOTP(r.Context(), req.UserID, req.OTP)
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		log.Info("user not found", slog.String("user_uid", req.UserID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	case errors.Is(err, auth.ErrInvalidOTP):
		log.Info("otp rejected", slog.String("user_uid", req.UserID))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid or expired otp"))
		return
	case err != nil:
		log.Error("verification failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("email verified", slog.String("user_uid", req.UserID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user":  result.Profile,
		"token": result.Token,
	}))
}
