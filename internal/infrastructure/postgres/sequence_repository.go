package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/billmaster-api/internal/domain/repository"
)

var _ repository.InvoiceSequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo contador diario en la tabla invoice_sequences.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa y devuelve el contador del día en una sola sentencia (upsert atómico).
func (r *SequenceRepo) Next(ctx context.Context, day string) (int64, error) {
	const query = `
		INSERT INTO invoice_sequences (day, last_number)
		VALUES (to_date($1, 'YYYYMMDD'), 1)
		ON CONFLICT (day) DO UPDATE SET last_number = invoice_sequences.last_number + 1
		RETURNING last_number`
	var n int64
	if err := r.q.QueryRow(ctx, query, day).Scan(&n); err != nil {
		return 0, fmt.Errorf("next invoice sequence %s: %w", day, err)
	}
	return n, nil
}
