package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/baharkarakas/stocksim/internal/models"
	repo "github.com/baharkarakas/stocksim/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsers_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	_, err := s.Repos().Users.Create(ctx, "alice", "h", decimal.NewFromInt(100))
	require.NoError(t, err)

	_, err = s.Repos().Users.Create(ctx, "alice", "h2", decimal.NewFromInt(100))
	assert.ErrorIs(t, err, repo.ErrDuplicate)

	_, err = s.Repos().Users.GetByUsername(ctx, "bob")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestHoldings_AggregatesPositiveSums(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	p := s.Repos().Purchases

	_, _ = p.Create(ctx, 1, "NFLX", 2)
	_, _ = p.Create(ctx, 1, "AAPL", 3)
	_, _ = p.Create(ctx, 1, "AAPL", 4)
	lot, _ := p.Create(ctx, 1, "MSFT", 1)
	_, _ = p.Create(ctx, 2, "AAPL", 50)
	require.NoError(t, p.SetQuantity(ctx, lot.ID, -5))

	holdings, err := p.Holdings(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []models.Holding{
		{Symbol: "AAPL", Quantity: 7},
		{Symbol: "NFLX", Quantity: 2},
	}, holdings)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u, err := s.Repos().Users.Create(ctx, "alice", "h", decimal.NewFromInt(100))
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.WithTx(ctx, func(r repo.Repos) error {
		if _, err := r.Users.AddCash(ctx, u.ID, decimal.NewFromInt(-40)); err != nil {
			return err
		}
		if _, err := r.Purchases.Create(ctx, u.ID, "AAPL", 1); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Repos().Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(got.Cash))

	holdings, err := s.Repos().Purchases.Holdings(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, holdings)
}

func TestWithTx_Commits(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u, _ := s.Repos().Users.Create(ctx, "alice", "h", decimal.NewFromInt(100))

	err := s.WithTx(ctx, func(r repo.Repos) error {
		_, err := r.Transactions.Append(ctx, models.Transaction{UserID: u.ID, Symbol: "AAPL", Quantity: 1, Type: models.TxnBuy})
		return err
	})
	require.NoError(t, err)

	txs, err := s.Repos().Transactions.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.NotZero(t, txs[0].ID)
	assert.False(t, txs[0].CreatedAt.IsZero())
}
