package repository

import (
	"context"

	"github.com/jhoicas/billmaster-api/internal/domain/entity"
)

// UserRepository define el puerto de lectura de usuarios para autenticación.
type UserRepository interface {
	// FindByUsername devuelve (nil, nil) si no existe.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindByID(ctx context.Context, id int64) (*entity.User, error)
}
