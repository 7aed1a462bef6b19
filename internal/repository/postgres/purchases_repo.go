package postgres

import (
	"context"

	"github.com/baharkarakas/stocksim/internal/models"
)

type purchasesRepo struct{ db dbtx }

func (r *purchasesRepo) Create(ctx context.Context, buyerID int64, symbol string, quantity int64) (models.Purchase, error) {
	var p models.Purchase
	err := r.db.QueryRow(ctx,
		`INSERT INTO usr_purchases(buyer_id, stocksym, quantity) VALUES($1, $2, $3)
		 RETURNING id, buyer_id, stocksym, quantity, created_at`,
		buyerID, symbol, quantity,
	).Scan(&p.ID, &p.BuyerID, &p.Symbol, &p.Quantity, &p.CreatedAt)
	return p, convertErr(err, "create purchase")
}

func (r *purchasesRepo) Holdings(ctx context.Context, buyerID int64) ([]models.Holding, error) {
	rows, err := r.db.Query(ctx,
		`SELECT stocksym, SUM(quantity)::bigint
		   FROM usr_purchases
		  WHERE buyer_id=$1
		  GROUP BY stocksym
		 HAVING SUM(quantity) > 0
		  ORDER BY stocksym`,
		buyerID,
	)
	if err != nil {
		return nil, convertErr(err, "list holdings")
	}
	defer rows.Close()

	var out []models.Holding
	for rows.Next() {
		var h models.Holding
		if err := rows.Scan(&h.Symbol, &h.Quantity); err != nil {
			return nil, convertErr(err, "scan holding")
		}
		out = append(out, h)
	}
	return out, convertErr(rows.Err(), "list holdings")
}

func (r *purchasesRepo) LockLots(ctx context.Context, buyerID int64, symbol string) ([]models.Purchase, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, buyer_id, stocksym, quantity, created_at
		   FROM usr_purchases
		  WHERE buyer_id=$1 AND stocksym=$2 AND quantity > 0
		  ORDER BY created_at, id
		    FOR UPDATE`,
		buyerID, symbol,
	)
	if err != nil {
		return nil, convertErr(err, "lock lots")
	}
	defer rows.Close()

	var out []models.Purchase
	for rows.Next() {
		var p models.Purchase
		if err := rows.Scan(&p.ID, &p.BuyerID, &p.Symbol, &p.Quantity, &p.CreatedAt); err != nil {
			return nil, convertErr(err, "scan lot")
		}
		out = append(out, p)
	}
	return out, convertErr(rows.Err(), "lock lots")
}

func (r *purchasesRepo) SetQuantity(ctx context.Context, id int64, quantity int64) error {
	_, err := r.db.Exec(ctx, `UPDATE usr_purchases SET quantity=$2 WHERE id=$1`, id, max(quantity, 0))
	return convertErr(err, "set lot quantity")
}
