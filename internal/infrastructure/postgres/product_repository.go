package postgres

import (
	"context"

	"github.com/jhoicas/billmaster-api/internal/domain/entity"
	"github.com/jhoicas/billmaster-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo lectura de productos. Dentro de RunBilling se construye sobre la tx
// para que el nombre congelado en la línea salga de la misma foto que el descuento de stock.
type ProductRepo struct {
	q Querier
}

func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	row := r.q.QueryRow(ctx, `
		SELECT id, name, price, stock_quantity, COALESCE(unit, ''), is_active, created_at, updated_at
		FROM products
		WHERE id = $1`, id)
	return scanOne(row, "product", func(p *entity.Product) []any {
		return []any{&p.ID, &p.Name, &p.Price, &p.StockQuantity, &p.Unit, &p.IsActive, &p.CreatedAt, &p.UpdatedAt}
	})
}
