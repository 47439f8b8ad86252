// Package payment содержит бизнес-логику донатов: создание платежных
// ордеров у провайдера и их сохранение.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/novashelf/novashelf/internal/models"
	"github.com/novashelf/novashelf/internal/paymentprovider"
)

// Минимально допустимая сумма доната в пайсах (1 INR).
const minAmount = 100

// ErrAmountTooSmall сумма меньше минимально допустимой.
var ErrAmountTooSmall = errors.New("amount must be at least 100")

// OrderClient контракт платежного провайдера.
type OrderClient interface {
	CreateOrder(reqParams paymentprovider.CreateOrderRequest) (*paymentprovider.CreateOrderResponse, error)
	KeyID() string
}

// Repository контракт хранилища ордеров.
type Repository interface {
	SaveDonationOrder(ctx context.Context, order models.DonationOrder) (int64, error)
}

// Service реализует операции с донатами.
type Service struct {
	client OrderClient
	repo   Repository
	log    *slog.Logger
}

// New создает новый экземпляр Service.
func New(client OrderClient, repo Repository, log *slog.Logger) *Service {
	return &Service{client: client, repo: repo, log: log}
}

// CreateOrder создает ордер у провайдера и сохраняет его локально.
// Пустая валюта заменяется на INR.
func (s *Service) CreateOrder(ctx context.Context, userUID string, amount int64, currency string) (*models.DonationOrder, error) {
	const op = "payment.CreateOrder"

	if amount < minAmount {
		return nil, ErrAmountTooSmall
	}
	if currency == "" {
		currency = "INR"
	}

	receipt := "donation_" + uuid.NewString()
	resp, err := s.client.CreateOrder(paymentprovider.CreateOrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Notes:    map[string]string{"user_uid": userUID},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	order := models.DonationOrder{
		UserUID:         userUID,
		ProviderOrderID: resp.ID,
		Receipt:         receipt,
		Amount:          resp.Amount,
		Currency:        resp.Currency,
		Status:          resp.Status,
	}
	id, err := s.repo.SaveDonationOrder(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	order.ID = id
	return &order, nil
}

// PublicKey возвращает публичный ключ провайдера для клиентского SDK.
func (s *Service) PublicKey() string {
	return s.client.KeyID()
}
