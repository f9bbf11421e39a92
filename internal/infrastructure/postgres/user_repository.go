package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/billmaster-api/internal/domain/entity"
	"github.com/jhoicas/billmaster-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo usuarios para login y para validar la sesión (Me).
type UserRepo struct {
	q Querier
}

func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const selectUser = `
	SELECT id, username, password_hash, COALESCE(full_name, ''), role, is_active, created_at
	FROM users`

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return scanUser(r.q.QueryRow(ctx, selectUser+` WHERE username = $1`, username))
}

func (r *UserRepo) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	return scanUser(r.q.QueryRow(ctx, selectUser+` WHERE id = $1`, id))
}

func scanUser(row pgx.Row) (*entity.User, error) {
	return scanOne(row, "user", func(u *entity.User) []any {
		return []any{&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Role, &u.Active, &u.CreatedAt}
	})
}
