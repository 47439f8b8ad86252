// Package publickey реализует HTTP-обработчик выдачи публичного ключа
// платежного провайдера для клиентского SDK.
package publickey

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/novashelf/novashelf/internal/http/response"
)

// Service описывает интерфейс бизнес-логики донатов.
type Service interface {
	PublicKey() string
}

// Handler обрабатывает HTTP-запросы публичного ключа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Публичный ключ платежного провайдера
// @Tags Payments
// @Produce  json
// @Success 200 {object} response.Response "Ключ"
// @Router /payments/key [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithData(map[string]string{
		"key": h.service.PublicKey(),
	}))
}
