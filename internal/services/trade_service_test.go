package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/baharkarakas/stocksim/internal/models"
	"github.com/baharkarakas/stocksim/internal/quote"
	"github.com/baharkarakas/stocksim/internal/repository/memory"
	"github.com/stretchr/testify/suite"
)

type TradeServiceTestSuite struct {
	suite.Suite
	store  *memory.Store
	quotes *stubQuoter
	trades *TradeService
	userID int64
}

func TestTradeServiceSuite(t *testing.T) {
	suite.Run(t, new(TradeServiceTestSuite))
}

func (s *TradeServiceTestSuite) SetupTest() {
	s.store = memory.NewStore()
	s.quotes = newStubQuoter(map[string]string{"AAPL": "150.00", "NFLX": "400.50"})
	s.trades = NewTradeService(s.store, s.quotes)

	u, err := s.store.Repos().Users.Create(context.Background(), "alice", "hash", dec("1000.00"))
	s.Require().NoError(err)
	s.userID = u.ID
}

func (s *TradeServiceTestSuite) cash() string {
	u, err := s.store.Repos().Users.GetByID(context.Background(), s.userID)
	s.Require().NoError(err)
	return u.Cash.StringFixed(2)
}

func (s *TradeServiceTestSuite) history() []models.Transaction {
	txs, err := s.store.Repos().Transactions.ListByUser(context.Background(), s.userID)
	s.Require().NoError(err)
	return txs
}

func (s *TradeServiceTestSuite) TestBuy_DebitsCashAndAppendsTransaction() {
	res, err := s.trades.Buy(context.Background(), s.userID, TradeArgs{Symbol: " aapl ", Shares: "3"})
	s.Require().NoError(err)

	s.Equal("550.00", res.Cash.StringFixed(2))
	s.Equal("550.00", s.cash())

	txs := s.history()
	s.Require().Len(txs, 1)
	s.Equal(models.TxnBuy, txs[0].Type)
	s.Equal("AAPL", txs[0].Symbol)
	s.Equal(int64(3), txs[0].Quantity)
	s.True(dec("150").Equal(txs[0].Price))
	s.Equal(res.Transaction, txs[0])
}

func (s *TradeServiceTestSuite) TestBuy_Rejections() {
	cases := []struct {
		name    string
		args    TradeArgs
		wantErr error
	}{
		{name: "empty symbol", args: TradeArgs{Shares: "1"}, wantErr: ErrEmptyFields},
		{name: "empty shares", args: TradeArgs{Symbol: "AAPL"}, wantErr: ErrEmptyFields},
		{name: "not a number", args: TradeArgs{Symbol: "AAPL", Shares: "two"}, wantErr: ErrInvalidShares},
		{name: "fractional", args: TradeArgs{Symbol: "AAPL", Shares: "1.5"}, wantErr: ErrInvalidShares},
		{name: "zero", args: TradeArgs{Symbol: "AAPL", Shares: "0"}, wantErr: ErrNonPositiveShares},
		{name: "negative", args: TradeArgs{Symbol: "AAPL", Shares: "-2"}, wantErr: ErrNonPositiveShares},
		{name: "unknown symbol", args: TradeArgs{Symbol: "ZZZZ", Shares: "1"}, wantErr: ErrInvalidSymbol},
		{name: "malformed symbol", args: TradeArgs{Symbol: "A A", Shares: "1"}, wantErr: ErrInvalidSymbol},
		{name: "unaffordable", args: TradeArgs{Symbol: "NFLX", Shares: "3"}, wantErr: ErrInsufficientFunds},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			_, err := s.trades.Buy(context.Background(), s.userID, t.args)
			s.Require().ErrorIs(err, t.wantErr)
			s.Equal("1000.00", s.cash())
			s.Empty(s.history())
		})
	}
}

func (s *TradeServiceTestSuite) TestBuy_ExactBalance() {
	s.quotes.set("AAPL", "250.00")
	res, err := s.trades.Buy(context.Background(), s.userID, TradeArgs{Symbol: "AAPL", Shares: "4"})
	s.Require().NoError(err)
	s.True(res.Cash.IsZero())
}

func (s *TradeServiceTestSuite) TestBuy_QuoteOutage() {
	s.quotes.err = quote.ErrUnavailable
	_, err := s.trades.Buy(context.Background(), s.userID, TradeArgs{Symbol: "AAPL", Shares: "1"})
	s.Require().ErrorIs(err, quote.ErrUnavailable)

	var rej *Rejection
	s.False(errors.As(err, &rej))
}

func (s *TradeServiceTestSuite) TestSell_CreditsCashAndConsumesLotsOldestFirst() {
	ctx := context.Background()
	_, err := s.trades.Buy(ctx, s.userID, TradeArgs{Symbol: "AAPL", Shares: "2"})
	s.Require().NoError(err)
	_, err = s.trades.Buy(ctx, s.userID, TradeArgs{Symbol: "AAPL", Shares: "3"})
	s.Require().NoError(err)
	s.Equal("250.00", s.cash())

	s.quotes.set("AAPL", "160.00")
	res, err := s.trades.Sell(ctx, s.userID, TradeArgs{Symbol: "aapl", Shares: "4"})
	s.Require().NoError(err)
	s.Equal("890.00", res.Cash.StringFixed(2))
	s.Equal(models.TxnSell, res.Transaction.Type)
	s.True(dec("160").Equal(res.Transaction.Price))

	lots, err := s.store.Repos().Purchases.LockLots(ctx, s.userID, "AAPL")
	s.Require().NoError(err)
	s.Require().Len(lots, 1)
	s.Equal(int64(1), lots[0].Quantity)

	holdings, err := s.store.Repos().Purchases.Holdings(ctx, s.userID)
	s.Require().NoError(err)
	s.Equal([]models.Holding{{Symbol: "AAPL", Quantity: 1}}, holdings)
	s.Len(s.history(), 3)
}

func (s *TradeServiceTestSuite) TestSell_Everything() {
	ctx := context.Background()
	_, err := s.trades.Buy(ctx, s.userID, TradeArgs{Symbol: "AAPL", Shares: "2"})
	s.Require().NoError(err)

	_, err = s.trades.Sell(ctx, s.userID, TradeArgs{Symbol: "AAPL", Shares: "2"})
	s.Require().NoError(err)
	s.Equal("1000.00", s.cash())

	holdings, err := s.store.Repos().Purchases.Holdings(ctx, s.userID)
	s.Require().NoError(err)
	s.Empty(holdings)

	_, err = s.trades.Sell(ctx, s.userID, TradeArgs{Symbol: "AAPL", Shares: "1"})
	s.Require().ErrorIs(err, ErrNotOwned)
}

func (s *TradeServiceTestSuite) TestSell_Rejections() {
	ctx := context.Background()
	_, err := s.trades.Buy(ctx, s.userID, TradeArgs{Symbol: "AAPL", Shares: "2"})
	s.Require().NoError(err)
	calls := s.quotes.calls

	cases := []struct {
		name    string
		args    TradeArgs
		wantErr error
	}{
		{name: "oversell", args: TradeArgs{Symbol: "AAPL", Shares: "3"}, wantErr: ErrOversell},
		{name: "not owned", args: TradeArgs{Symbol: "NFLX", Shares: "1"}, wantErr: ErrNotOwned},
		{name: "bad shares", args: TradeArgs{Symbol: "AAPL", Shares: "x"}, wantErr: ErrInvalidShares},
		{name: "empty", args: TradeArgs{}, wantErr: ErrEmptyFields},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			_, err := s.trades.Sell(ctx, s.userID, t.args)
			s.Require().ErrorIs(err, t.wantErr)
			s.Equal("700.00", s.cash())
		})
	}
	s.Equal(calls, s.quotes.calls, "rejected sells must not hit the quote provider")
}

func (s *TradeServiceTestSuite) TestQuote() {
	q, err := s.trades.Quote(context.Background(), "nflx")
	s.Require().NoError(err)
	s.Equal("NFLX", q.Symbol)

	_, err = s.trades.Quote(context.Background(), " ")
	s.Require().ErrorIs(err, ErrEmptySymbol)

	_, err = s.trades.Quote(context.Background(), "ZZZZ")
	s.Require().ErrorIs(err, ErrInvalidSymbol)
}

func (s *TradeServiceTestSuite) TestBuy_RejectsSubCentShortfall() {
	s.quotes.set("AAPL", "333.3334")
	_, err := s.trades.Buy(context.Background(), s.userID, TradeArgs{Symbol: "AAPL", Shares: "3"})
	s.Require().ErrorIs(err, ErrInsufficientFunds)
	s.Equal("1000.00", s.cash())
}

// renamingQuoter reports every quote under a fixed symbol.
type renamingQuoter struct {
	Quoter
	symbol string
}

func (q renamingQuoter) Lookup(ctx context.Context, symbol string) (models.Quote, error) {
	m, err := q.Quoter.Lookup(ctx, symbol)
	m.Symbol = q.symbol
	return m, err
}

func (s *TradeServiceTestSuite) TestBuy_KeysOnRequestedSymbol() {
	ctx := context.Background()
	trades := NewTradeService(s.store, renamingQuoter{Quoter: s.quotes, symbol: "AAPL.O"})

	res, err := trades.Buy(ctx, s.userID, TradeArgs{Symbol: "aapl", Shares: "2"})
	s.Require().NoError(err)
	s.Equal("AAPL", res.Transaction.Symbol)

	holdings, err := s.store.Repos().Purchases.Holdings(ctx, s.userID)
	s.Require().NoError(err)
	s.Equal([]models.Holding{{Symbol: "AAPL", Quantity: 2}}, holdings)

	_, err = trades.Sell(ctx, s.userID, TradeArgs{Symbol: "AAPL", Shares: "2"})
	s.Require().NoError(err)
}

func (s *TradeServiceTestSuite) TestConsumeLots_RechecksLockedQuantity() {
	ctx := context.Background()
	purchases := s.store.Repos().Purchases
	_, err := purchases.Create(ctx, s.userID, "AAPL", 2)
	s.Require().NoError(err)
	_, err = purchases.Create(ctx, s.userID, "AAPL", 1)
	s.Require().NoError(err)

	lots, err := purchases.LockLots(ctx, s.userID, "AAPL")
	s.Require().NoError(err)

	s.Require().ErrorIs(consumeLots(ctx, purchases, lots, 4), ErrOversell)
	s.Require().ErrorIs(consumeLots(ctx, purchases, nil, 1), ErrNotOwned)

	after, err := purchases.LockLots(ctx, s.userID, "AAPL")
	s.Require().NoError(err)
	s.Equal(lots, after)
}

func (s *TradeServiceTestSuite) TestSell_ConcurrentOversell() {
	ctx := context.Background()
	_, err := s.trades.Buy(ctx, s.userID, TradeArgs{Symbol: "AAPL", Shares: "3"})
	s.Require().NoError(err)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.trades.Sell(ctx, s.userID, TradeArgs{Symbol: "AAPL", Shares: "2"})
		}()
	}
	wg.Wait()

	var ok, oversold int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrOversell):
			oversold++
		}
	}
	s.Equal(1, ok)
	s.Equal(1, oversold)

	holdings, err := s.store.Repos().Purchases.Holdings(ctx, s.userID)
	s.Require().NoError(err)
	s.Equal([]models.Holding{{Symbol: "AAPL", Quantity: 1}}, holdings)
	s.Equal("850.00", s.cash())
}
