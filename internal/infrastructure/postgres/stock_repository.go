package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/billmaster-api/internal/domain"
	"github.com/jhoicas/billmaster-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo ajusta products.stock_quantity (usable con pool o tx).
// Cada método es una sola sentencia UPDATE ... RETURNING, atómica frente a ventas concurrentes.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Decrement resta qty sin bajar de cero.
func (r *StockRepo) Decrement(ctx context.Context, productID int64, qty int) (int, error) {
	return r.update(ctx, "decrement stock",
		`UPDATE products SET stock_quantity = GREATEST(0, stock_quantity - $2), updated_at = now()
		 WHERE id = $1 RETURNING stock_quantity`, productID, qty)
}

// Add suma qty a la existencia.
func (r *StockRepo) Add(ctx context.Context, productID int64, qty int) (int, error) {
	return r.update(ctx, "add stock",
		`UPDATE products SET stock_quantity = stock_quantity + $2, updated_at = now()
		 WHERE id = $1 RETURNING stock_quantity`, productID, qty)
}

// Set fija la existencia en qty.
func (r *StockRepo) Set(ctx context.Context, productID int64, qty int) (int, error) {
	return r.update(ctx, "set stock",
		`UPDATE products SET stock_quantity = $2, updated_at = now()
		 WHERE id = $1 RETURNING stock_quantity`, productID, qty)
}

func (r *StockRepo) update(ctx context.Context, op, query string, productID int64, qty int) (int, error) {
	var stock int
	err := r.q.QueryRow(ctx, query, productID, qty).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%s product %d: %w", op, productID, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return stock, nil
}
