package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE unique_violation.
const codeUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// constraintName devuelve el constraint violado, o "" si el error no viene de PostgreSQL.
func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// scanOne lee una sola fila en un T nuevo. Sin filas devuelve (nil, nil), igual que los puertos.
// fields entrega los destinos de Scan en el orden del SELECT.
func scanOne[T any](row pgx.Row, what string, fields func(*T) []any) (*T, error) {
	v := new(T)
	if err := row.Scan(fields(v)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", what, err)
	}
	return v, nil
}

// clampLimit aplica un valor por defecto cuando limit no es positivo.
func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}
