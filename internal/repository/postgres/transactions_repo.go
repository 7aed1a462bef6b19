package postgres

import (
	"context"

	"github.com/baharkarakas/stocksim/internal/models"
)

type transactionsRepo struct{ db dbtx }

func (r *transactionsRepo) Append(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	const q = `
INSERT INTO transactions (user_id, symbol, quantity, price, type)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, user_id, symbol, quantity, price, type, created_at;
`
	err := r.db.QueryRow(ctx, q,
		tx.UserID, tx.Symbol, tx.Quantity, tx.Price, tx.Type,
	).Scan(&tx.ID, &tx.UserID, &tx.Symbol, &tx.Quantity, &tx.Price, &tx.Type, &tx.CreatedAt)
	return tx, convertErr(err, "append transaction")
}

func (r *transactionsRepo) ListByUser(ctx context.Context, userID int64) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, symbol, quantity, price, type, created_at
		   FROM transactions
		  WHERE user_id=$1
		  ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, convertErr(err, "list transactions")
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Symbol, &tx.Quantity, &tx.Price, &tx.Type, &tx.CreatedAt); err != nil {
			return nil, convertErr(err, "scan transaction")
		}
		out = append(out, tx)
	}
	return out, convertErr(rows.Err(), "list transactions")
}
