package postgres

import (
	"context"

	"github.com/jhoicas/billmaster-api/internal/domain/entity"
	"github.com/jhoicas/billmaster-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo lectura de clientes; la facturación solo necesita existencia y datos de contacto.
type CustomerRepo struct {
	q Querier
}

func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

func (r *CustomerRepo) GetByID(ctx context.Context, id int64) (*entity.Customer, error) {
	row := r.q.QueryRow(ctx, `
		SELECT id, name, COALESCE(phone, ''), COALESCE(email, ''), COALESCE(address, ''), created_at
		FROM customers
		WHERE id = $1`, id)
	return scanOne(row, "customer", func(c *entity.Customer) []any {
		return []any{&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.CreatedAt}
	})
}
