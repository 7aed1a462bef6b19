// Package memory is an in-process repository backend. It is used by tests and
// by STORE_DRIVER=memory for local runs without PostgreSQL.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/baharkarakas/stocksim/internal/models"
	repo "github.com/baharkarakas/stocksim/internal/repository"
	"github.com/shopspring/decimal"
)

type state struct {
	users        []models.User
	purchases    []models.Purchase
	transactions []models.Transaction
	nextID       int64
}

func (s *state) clone() *state {
	return &state{
		users:        slices.Clone(s.users),
		purchases:    slices.Clone(s.purchases),
		transactions: slices.Clone(s.transactions),
		nextID:       s.nextID,
	}
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

// Store serializes every operation behind one mutex. WithTx holds the mutex
// for the whole callback and restores a snapshot when it fails.
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

func NewStore() *Store {
	return &Store{st: &state{}, now: time.Now}
}

func (s *Store) Repos() repo.Repos {
	return s.repos(false)
}

func (s *Store) WithTx(ctx context.Context, fn func(repo.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(s.repos(true)); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func (s *Store) repos(inTx bool) repo.Repos {
	b := &binding{store: s, inTx: inTx}
	return repo.Repos{
		Users:        &usersRepo{b},
		Purchases:    &purchasesRepo{b},
		Transactions: &transactionsRepo{b},
	}
}

type binding struct {
	store *Store
	inTx  bool
}

// do runs fn against the current state, taking the lock unless a transaction already holds it.
func (b *binding) do(fn func(st *state) error) error {
	if !b.inTx {
		b.store.mu.Lock()
		defer b.store.mu.Unlock()
	}
	return fn(b.store.st)
}

type usersRepo struct{ *binding }

func (r *usersRepo) Create(_ context.Context, username, hash string, cash decimal.Decimal) (models.User, error) {
	var u models.User
	err := r.do(func(st *state) error {
		for _, existing := range st.users {
			if existing.Username == username {
				return repo.ErrDuplicate
			}
		}
		u = models.User{ID: st.id(), Username: username, PasswordHash: hash, Cash: cash, CreatedAt: r.store.now()}
		st.users = append(st.users, u)
		return nil
	})
	return u, err
}

func (r *usersRepo) find(st *state, match func(models.User) bool) (int, error) {
	for i, u := range st.users {
		if match(u) {
			return i, nil
		}
	}
	return -1, repo.ErrNotFound
}

func (r *usersRepo) GetByID(_ context.Context, id int64) (models.User, error) {
	var u models.User
	err := r.do(func(st *state) error {
		i, err := r.find(st, func(u models.User) bool { return u.ID == id })
		if err != nil {
			return err
		}
		u = st.users[i]
		return nil
	})
	return u, err
}

func (r *usersRepo) GetByUsername(_ context.Context, username string) (models.User, error) {
	var u models.User
	err := r.do(func(st *state) error {
		i, err := r.find(st, func(u models.User) bool { return u.Username == username })
		if err != nil {
			return err
		}
		u = st.users[i]
		return nil
	})
	return u, err
}

func (r *usersRepo) LockCash(ctx context.Context, id int64) (decimal.Decimal, error) {
	u, err := r.GetByID(ctx, id)
	return u.Cash, err
}

func (r *usersRepo) AddCash(_ context.Context, id int64, delta decimal.Decimal) (decimal.Decimal, error) {
	var cash decimal.Decimal
	err := r.do(func(st *state) error {
		i, err := r.find(st, func(u models.User) bool { return u.ID == id })
		if err != nil {
			return err
		}
		st.users[i].Cash = st.users[i].Cash.Add(delta)
		cash = st.users[i].Cash
		return nil
	})
	return cash, err
}

type purchasesRepo struct{ *binding }

func (r *purchasesRepo) Create(_ context.Context, buyerID int64, symbol string, quantity int64) (models.Purchase, error) {
	var p models.Purchase
	err := r.do(func(st *state) error {
		p = models.Purchase{ID: st.id(), BuyerID: buyerID, Symbol: symbol, Quantity: quantity, CreatedAt: r.store.now()}
		st.purchases = append(st.purchases, p)
		return nil
	})
	return p, err
}

func (r *purchasesRepo) Holdings(_ context.Context, buyerID int64) ([]models.Holding, error) {
	var out []models.Holding
	err := r.do(func(st *state) error {
		sums := map[string]int64{}
		for _, p := range st.purchases {
			if p.BuyerID == buyerID {
				sums[p.Symbol] += p.Quantity
			}
		}
		for sym, q := range sums {
			if q > 0 {
				out = append(out, models.Holding{Symbol: sym, Quantity: q})
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
		return nil
	})
	return out, err
}

func (r *purchasesRepo) LockLots(_ context.Context, buyerID int64, symbol string) ([]models.Purchase, error) {
	var out []models.Purchase
	err := r.do(func(st *state) error {
		for _, p := range st.purchases {
			if p.BuyerID == buyerID && p.Symbol == symbol && p.Quantity > 0 {
				out = append(out, p)
			}
		}
		// ids grow monotonically, so id order is creation order
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, err
}

func (r *purchasesRepo) SetQuantity(_ context.Context, id int64, quantity int64) error {
	return r.do(func(st *state) error {
		for i := range st.purchases {
			if st.purchases[i].ID == id {
				st.purchases[i].Quantity = max(quantity, 0)
				return nil
			}
		}
		return repo.ErrNotFound
	})
}

type transactionsRepo struct{ *binding }

func (r *transactionsRepo) Append(_ context.Context, tx models.Transaction) (models.Transaction, error) {
	err := r.do(func(st *state) error {
		tx.ID = st.id()
		tx.CreatedAt = r.store.now()
		st.transactions = append(st.transactions, tx)
		return nil
	})
	return tx, err
}

func (r *transactionsRepo) ListByUser(_ context.Context, userID int64) ([]models.Transaction, error) {
	var out []models.Transaction
	err := r.do(func(st *state) error {
		for _, tx := range st.transactions {
			if tx.UserID == userID {
				out = append(out, tx)
			}
		}
		return nil
	})
	return out, err
}
