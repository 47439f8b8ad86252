package models

import "time"

// DonationOrder созданный у платёжного провайдера ордер на донат.
type DonationOrder struct {
	ID              int64     `json:"id"`
	UserUID         string    `json:"userId"`
	ProviderOrderID string    `json:"providerOrderId"`
	Receipt         string    `json:"receipt"`
	Amount          int64     `json:"amount"`   // в минимальных единицах валюты (пайсах)
	Currency        string    `json:"currency"` // по умолчанию INR
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}
