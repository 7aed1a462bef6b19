package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxnBuy  TransactionType = "buy"
	TxnSell TransactionType = "sell"
)

// Transaction is an entry of the append-only trade log.
type Transaction struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Symbol    string          `json:"symbol"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Type      TransactionType `json:"type"`
	CreatedAt time.Time       `json:"created_at"`
}

// Total is the cash moved by the transaction.
func (t Transaction) Total() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Quantity))
}
