package repository

import (
	"context"

	"github.com/jhoicas/billmaster-api/internal/domain/entity"
)

// ProductRepository lectura de productos (el CRUD vive fuera de este servicio).
type ProductRepository interface {
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
}
