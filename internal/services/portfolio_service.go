package services

import (
	"context"
	"fmt"

	"github.com/baharkarakas/stocksim/internal/models"
	repo "github.com/baharkarakas/stocksim/internal/repository"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type PortfolioService struct {
	repos       repo.Repos
	quotes      Quoter
	concurrency int
}

func NewPortfolioService(r repo.Repos, q Quoter, concurrency int) *PortfolioService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &PortfolioService{repos: r, quotes: q, concurrency: concurrency}
}

// Portfolio values every holding at its current price. The total is cash plus
// the sum of quantity*price over all holdings.
func (s *PortfolioService) Portfolio(ctx context.Context, userID int64) (models.Portfolio, error) {
	u, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return models.Portfolio{}, fmt.Errorf("portfolio: %w", err)
	}
	holdings, err := s.repos.Purchases.Holdings(ctx, userID)
	if err != nil {
		return models.Portfolio{}, fmt.Errorf("portfolio: %w", err)
	}

	lines := make([]models.PortfolioLine, len(holdings))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, h := range holdings {
		g.Go(func() error {
			q, err := s.quotes.Lookup(gctx, h.Symbol)
			if err != nil {
				return fmt.Errorf("price %s: %w", h.Symbol, err)
			}
			lines[i] = models.PortfolioLine{
				Symbol:   h.Symbol,
				Quantity: h.Quantity,
				Price:    q.Price,
				Value:    q.Price.Mul(decimal.NewFromInt(h.Quantity)),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.Portfolio{}, fmt.Errorf("portfolio: %w", err)
	}

	stockValue := decimal.Zero
	for _, l := range lines {
		stockValue = stockValue.Add(l.Value)
	}
	return models.Portfolio{
		Username:   u.Username,
		Cash:       u.Cash,
		Holdings:   lines,
		StockValue: stockValue,
		Total:      u.Cash.Add(stockValue),
	}, nil
}

func (s *PortfolioService) Cash(ctx context.Context, userID int64) (decimal.Decimal, error) {
	u, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cash: %w", err)
	}
	return u.Cash, nil
}

// OwnedSymbols lists the symbols the user can sell.
func (s *PortfolioService) OwnedSymbols(ctx context.Context, userID int64) ([]string, error) {
	holdings, err := s.repos.Purchases.Holdings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("owned symbols: %w", err)
	}
	out := make([]string, 0, len(holdings))
	for _, h := range holdings {
		out = append(out, h.Symbol)
	}
	return out, nil
}
