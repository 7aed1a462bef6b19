package postgres

import (
	"context"

	"github.com/baharkarakas/stocksim/internal/models"
	"github.com/shopspring/decimal"
)

type usersRepo struct{ db dbtx }

func (r *usersRepo) Create(ctx context.Context, username, hash string, cash decimal.Decimal) (models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx,
		`INSERT INTO users(username, hash, cash) VALUES($1, $2, $3)
		 RETURNING id, username, hash, cash, created_at`,
		username, hash, cash,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Cash, &u.CreatedAt)
	return u, convertErr(err, "create user")
}

func (r *usersRepo) GetByID(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx,
		`SELECT id, username, hash, cash, created_at FROM users WHERE id=$1`, id,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Cash, &u.CreatedAt)
	return u, convertErr(err, "get user")
}

func (r *usersRepo) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx,
		`SELECT id, username, hash, cash, created_at FROM users WHERE username=$1`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Cash, &u.CreatedAt)
	return u, convertErr(err, "get user by username")
}

func (r *usersRepo) LockCash(ctx context.Context, id int64) (decimal.Decimal, error) {
	var cash decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT cash FROM users WHERE id=$1 FOR UPDATE`, id).Scan(&cash)
	return cash, convertErr(err, "lock cash")
}

func (r *usersRepo) AddCash(ctx context.Context, id int64, delta decimal.Decimal) (decimal.Decimal, error) {
	var cash decimal.Decimal
	err := r.db.QueryRow(ctx,
		`UPDATE users SET cash = cash + $2 WHERE id=$1 RETURNING cash`, id, delta,
	).Scan(&cash)
	return cash, convertErr(err, "add cash")
}
