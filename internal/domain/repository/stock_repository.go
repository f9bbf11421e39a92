package repository

import "context"

// StockRepository ajusta products.stock_quantity con sentencias atómicas.
// Cada método devuelve la nueva existencia o un error que cumple
// errors.Is(err, domain.ErrNotFound) si el producto no existe.
type StockRepository interface {
	// Decrement resta qty sin bajar de cero.
	Decrement(ctx context.Context, productID int64, qty int) (int, error)
	Add(ctx context.Context, productID int64, qty int) (int, error)
	Set(ctx context.Context, productID int64, qty int) (int, error)
}
