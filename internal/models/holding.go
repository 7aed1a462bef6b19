package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase is one buy lot. Sells consume lots oldest first.
type Purchase struct {
	ID        int64     `json:"id"`
	BuyerID   int64     `json:"buyer_id"`
	Symbol    string    `json:"symbol"`
	Quantity  int64     `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// Holding is the aggregate quantity of a symbol owned by a user.
type Holding struct {
	Symbol   string `json:"symbol"`
	Quantity int64  `json:"quantity"`
}

type Quote struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}

type PortfolioLine struct {
	Symbol   string          `json:"symbol"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Value    decimal.Decimal `json:"value"`
}

type Portfolio struct {
	Username   string          `json:"username"`
	Cash       decimal.Decimal `json:"cash"`
	Holdings   []PortfolioLine `json:"holdings"`
	StockValue decimal.Decimal `json:"stock_value"`
	Total      decimal.Decimal `json:"total"`
}
