// Package resendotp реализует HTTP-обработчик повторной отправки
// одноразового кода. Прежний код при этом перестает действовать.
package resendotp

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

// Request — структура входных данных для повторной отправки кода.
type Request struct {
	UserID string `json:"userId" validate:"required,uuid"`
}

// Service описывает интерфейс бизнес-логики повторной отправки.
type Service interface {
	ResendOTP(ctx context.Context, userUID string) error
}

// Handler обрабатывает HTTP-запросы повторной отправки кода.
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
// @Summary Повторная отправка одноразового кода
// @Description Выпускает новый код взамен прежнего и отправляет его на почту.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Идентификатор пользователя"
// @Success 200 {object} response.Response "Код отправлен"
// @Failure 400 {object} response.ErrorResponse "Почта уже подтверждена"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Письмо с кодом не отправлено"
// @Router /auth/resend-otp [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.resendotp"

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

	err := h.service.ResendOTP(r.Context(), req.UserID)
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		log.Info("user not found", slog.String("user_uid", req.UserID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	case errors.Is(err, auth.ErrAlreadyVerified):
		log.Info("email already verified", slog.String("user_uid", req.UserID))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("email is already verified"))
		return
	case errors.Is(err, auth.ErrDeliveryFailed):
		log.Error("verification email delivery failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to send verification email"))
		return
	case err != nil:
		log.Error("resend failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("otp resent", slog.String("user_uid", req.UserID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "verification code sent",
	}))
}
