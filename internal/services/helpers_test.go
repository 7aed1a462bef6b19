package services

import (
	"context"
	"sync"

	"github.com/baharkarakas/stocksim/internal/models"
	"github.com/baharkarakas/stocksim/internal/quote"
	"github.com/shopspring/decimal"
)

// stubQuoter serves fixed prices; symbols without a price are unknown.
type stubQuoter struct {
	mu     sync.Mutex
	prices map[string]string
	err    error
	calls  int
}

func newStubQuoter(prices map[string]string) *stubQuoter {
	return &stubQuoter{prices: prices}
}

func (q *stubQuoter) set(symbol, price string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.prices[symbol] = price
}

func (q *stubQuoter) Lookup(_ context.Context, symbol string) (models.Quote, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.calls++
	if q.err != nil {
		return models.Quote{}, q.err
	}
	p, ok := q.prices[symbol]
	if !ok {
		return models.Quote{}, quote.ErrUnknownSymbol
	}
	return models.Quote{Symbol: symbol, Name: symbol + " Inc", Price: decimal.RequireFromString(p)}, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
