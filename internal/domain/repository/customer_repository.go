package repository

import (
	"context"

	"github.com/jhoicas/billmaster-api/internal/domain/entity"
)

// CustomerRepository lectura de clientes.
type CustomerRepository interface {
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id int64) (*entity.Customer, error)
}
