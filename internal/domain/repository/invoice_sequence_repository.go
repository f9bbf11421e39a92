package repository

import "context"

// InvoiceSequenceRepository contador atómico por día para el consecutivo de facturas.
// day tiene formato YYYYMMDD. Next debe ser una única operación atómica: dos llamadas
// concurrentes nunca obtienen el mismo valor.
type InvoiceSequenceRepository interface {
	Next(ctx context.Context, day string) (int64, error)
}
