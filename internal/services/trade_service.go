package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/baharkarakas/stocksim/internal/metrics"
	"github.com/baharkarakas/stocksim/internal/models"
	"github.com/baharkarakas/stocksim/internal/quote"
	repo "github.com/baharkarakas/stocksim/internal/repository"
	"github.com/baharkarakas/stocksim/internal/validate"
	"github.com/shopspring/decimal"
)

// Quoter resolves the current price of a symbol.
type Quoter interface {
	Lookup(ctx context.Context, symbol string) (models.Quote, error)
}

type TradeService struct {
	store  repo.Store
	quotes Quoter
}

func NewTradeService(store repo.Store, q Quoter) *TradeService {
	return &TradeService{store: store, quotes: q}
}

type TradeArgs struct {
	Symbol string `validate:"required"`
	Shares string `validate:"required"`
}

type TradeResult struct {
	Transaction models.Transaction `json:"transaction"`
	Cash        decimal.Decimal    `json:"cash"`
}

func parseTrade(args TradeArgs) (string, int64, error) {
	args.Symbol = strings.ToUpper(strings.TrimSpace(args.Symbol))
	args.Shares = strings.TrimSpace(args.Shares)
	if err := validate.Struct(args); err != nil {
		return "", 0, ErrEmptyFields
	}
	shares, err := strconv.ParseInt(args.Shares, 10, 64)
	if err != nil {
		return "", 0, ErrInvalidShares
	}
	if shares <= 0 {
		return "", 0, ErrNonPositiveShares
	}
	return args.Symbol, shares, nil
}

// Quote looks up a symbol on behalf of a user-facing request.
func (s *TradeService) Quote(ctx context.Context, symbol string) (models.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return models.Quote{}, ErrEmptySymbol
	}
	return s.lookup(ctx, symbol)
}

func (s *TradeService) lookup(ctx context.Context, symbol string) (models.Quote, error) {
	if err := validate.Struct(struct {
		Symbol string `validate:"symbol"`
	}{symbol}); err != nil {
		return models.Quote{}, ErrInvalidSymbol
	}
	q, err := s.quotes.Lookup(ctx, symbol)
	if errors.Is(err, quote.ErrUnknownSymbol) {
		return models.Quote{}, ErrInvalidSymbol
	}
	if err != nil {
		return models.Quote{}, fmt.Errorf("lookup %s: %w", symbol, err)
	}
	return q, nil
}

// Buy debits price*shares from the user's cash, records a purchase lot and
// appends a buy transaction, all in one database transaction.
func (s *TradeService) Buy(ctx context.Context, userID int64, args TradeArgs) (res TradeResult, err error) {
	defer func() { metrics.ObserveTrade(string(models.TxnBuy), err) }()

	symbol, shares, err := parseTrade(args)
	if err != nil {
		return TradeResult{}, err
	}
	q, err := s.lookup(ctx, symbol)
	if err != nil {
		return TradeResult{}, err
	}
	cost := q.Price.Mul(decimal.NewFromInt(shares))

	err = s.store.WithTx(ctx, func(r repo.Repos) error {
		cash, err := r.Users.LockCash(ctx, userID)
		if err != nil {
			return err
		}
		if cash.LessThan(cost) {
			return ErrInsufficientFunds
		}
		if _, err := r.Purchases.Create(ctx, userID, symbol, shares); err != nil {
			return err
		}
		newCash, err := r.Users.AddCash(ctx, userID, cost.Round(2).Neg())
		if err != nil {
			return err
		}
		tx, err := r.Transactions.Append(ctx, models.Transaction{
			UserID:   userID,
			Symbol:   symbol,
			Quantity: shares,
			Price:    q.Price,
			Type:     models.TxnBuy,
		})
		if err != nil {
			return err
		}
		res = TradeResult{Transaction: tx, Cash: newCash}
		return nil
	})
	if err != nil {
		return TradeResult{}, wrapTx("buy", err)
	}
	return res, nil
}

// Sell credits price*shares to the user's cash, consumes purchase lots oldest
// first and appends a sell transaction, all in one database transaction.
func (s *TradeService) Sell(ctx context.Context, userID int64, args TradeArgs) (res TradeResult, err error) {
	defer func() { metrics.ObserveTrade(string(models.TxnSell), err) }()

	symbol, shares, err := parseTrade(args)
	if err != nil {
		return TradeResult{}, err
	}

	holdings, err := s.store.Repos().Purchases.Holdings(ctx, userID)
	if err != nil {
		return TradeResult{}, fmt.Errorf("sell: %w", err)
	}
	owned := ownedQuantity(holdings, symbol)
	if owned == 0 {
		return TradeResult{}, ErrNotOwned
	}
	if shares > owned {
		return TradeResult{}, ErrOversell
	}

	q, err := s.lookup(ctx, symbol)
	if err != nil {
		return TradeResult{}, err
	}
	proceeds := q.Price.Mul(decimal.NewFromInt(shares)).Round(2)

	err = s.store.WithTx(ctx, func(r repo.Repos) error {
		lots, err := r.Purchases.LockLots(ctx, userID, symbol)
		if err != nil {
			return err
		}
		// holdings may have changed since the unlocked check
		if err := consumeLots(ctx, r.Purchases, lots, shares); err != nil {
			return err
		}
		newCash, err := r.Users.AddCash(ctx, userID, proceeds)
		if err != nil {
			return err
		}
		tx, err := r.Transactions.Append(ctx, models.Transaction{
			UserID:   userID,
			Symbol:   symbol,
			Quantity: shares,
			Price:    q.Price,
			Type:     models.TxnSell,
		})
		if err != nil {
			return err
		}
		res = TradeResult{Transaction: tx, Cash: newCash}
		return nil
	})
	if err != nil {
		return TradeResult{}, wrapTx("sell", err)
	}
	return res, nil
}

func ownedQuantity(holdings []models.Holding, symbol string) int64 {
	for _, h := range holdings {
		if h.Symbol == symbol {
			return h.Quantity
		}
	}
	return 0
}

// consumeLots removes shares from lots in order, never taking a lot below zero.
func consumeLots(ctx context.Context, purchases repo.Purchases, lots []models.Purchase, shares int64) error {
	var owned int64
	for _, l := range lots {
		owned += l.Quantity
	}
	if owned == 0 {
		return ErrNotOwned
	}
	if shares > owned {
		return ErrOversell
	}

	remaining := shares
	for _, l := range lots {
		if remaining == 0 {
			break
		}
		take := min(l.Quantity, remaining)
		if err := purchases.SetQuantity(ctx, l.ID, l.Quantity-take); err != nil {
			return err
		}
		remaining -= take
	}
	return nil
}

func wrapTx(op string, err error) error {
	var rej *Rejection
	if errors.As(err, &rej) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
