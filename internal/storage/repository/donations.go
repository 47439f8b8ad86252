package repository

import (
	"context"
	"fmt"

	"github.com/novashelf/novashelf/internal/models"
)

// SaveDonationOrder сохраняет созданный у провайдера ордер на донат.
func (s *Storage) SaveDonationOrder(ctx context.Context, order models.DonationOrder) (int64, error) {
	const op = "storage.SaveDonationOrder"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var id int64
	query := `INSERT INTO donation_orders (user_uid, provider_order_id, receipt, amount, currency, status)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		order.UserUID, order.ProviderOrderID, order.Receipt, order.Amount,
		order.Currency, order.Status).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}
