// Package ordercreate реализует HTTP-обработчик создания платежного
// ордера на донат.
package ordercreate

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
	"github.com/novashelf/novashelf/internal/services/payment"
)

// Request — структура входных данных для создания ордера.
// Amount задается в минимальных единицах валюты (пайсах).
type Request struct {
	Amount   int64  `json:"amount" validate:"required,min=100"`
	Currency string `json:"currency,omitempty"`
}

// Service описывает интерфейс бизнес-логики донатов.
type Service interface {
	CreateOrder(ctx context.Context, userUID string, amount int64, currency string) (*models.DonationOrder, error)
}

// Handler обрабатывает HTTP-запросы создания ордера.
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
// @Summary Создание ордера на донат
// @Description Создает ордер у платежного провайдера и сохраняет его.
// @Tags Payments
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body Request true "Сумма и валюта"
// @Success 201 {object} response.Response "Созданный ордер"
// @Failure 400 {object} response.ErrorResponse "Некорректная сумма"
// @Failure 500 {object} response.ErrorResponse "Ошибка провайдера или хранилища"
// @Router /payments/orders [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.ordercreate"

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
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	order, err := h.service.CreateOrder(r.Context(), userUID, req.Amount, req.Currency)
	switch {
	case errors.Is(err, payment.ErrAmountTooSmall):
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("amount must be at least 100"))
		return
	case err != nil:
		log.Error("failed to create donation order", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create order"))
		return
	}

	log.Info("donation order created", slog.String("provider_order_id", order.ProviderOrderID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(order))
}
