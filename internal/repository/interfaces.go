package repository

import (
	"context"
	"errors"

	"github.com/baharkarakas/stocksim/internal/models"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

type Users interface {
	Create(ctx context.Context, username, passwordHash string, cash decimal.Decimal) (models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	// LockCash reads the cash balance and holds the row until the surrounding transaction ends.
	LockCash(ctx context.Context, id int64) (decimal.Decimal, error)
	AddCash(ctx context.Context, id int64, delta decimal.Decimal) (decimal.Decimal, error)
}

type Purchases interface {
	Create(ctx context.Context, buyerID int64, symbol string, quantity int64) (models.Purchase, error)
	// Holdings returns the symbols with a positive aggregate quantity, sorted by symbol.
	Holdings(ctx context.Context, buyerID int64) ([]models.Holding, error)
	// LockLots returns the non-empty lots of a symbol oldest first, locked for update.
	LockLots(ctx context.Context, buyerID int64, symbol string) ([]models.Purchase, error)
	SetQuantity(ctx context.Context, id int64, quantity int64) error
}

type Transactions interface {
	Append(ctx context.Context, tx models.Transaction) (models.Transaction, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Transaction, error)
}

// Repos groups the repositories bound to one connection or transaction.
type Repos struct {
	Users        Users
	Purchases    Purchases
	Transactions Transactions
}

type Store interface {
	Repos() Repos
	// WithTx runs fn in a single database transaction. Any error rolls it back.
	WithTx(ctx context.Context, fn func(Repos) error) error
}
