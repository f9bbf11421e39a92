package repository

import (
	"context"
	"time"

	"github.com/jhoicas/billmaster-api/internal/domain/entity"
)

// InvoiceFilter criterios de listado. Status vacío = todos.
type InvoiceFilter struct {
	Status entity.PaymentStatus
	Limit  int
}

// InvoiceRepository define el puerto de persistencia para Invoice y sus líneas.
// Las implementaciones deben ser usables tanto con el pool como dentro de una transacción.
type InvoiceRepository interface {
	// Create persiste la cabecera y asigna ID. Si invoice_number ya existe devuelve un
	// error que cumple errors.Is(err, domain.ErrDuplicate).
	Create(ctx context.Context, invoice *entity.Invoice) error
	// CreateLineItem persiste una línea (snapshot de nombre y precio) y asigna ID.
	CreateLineItem(ctx context.Context, item *entity.InvoiceLineItem) error
	// GetByID devuelve (nil, nil) si la factura no existe.
	GetByID(ctx context.Context, id int64) (*entity.Invoice, error)
	// GetLineItems devuelve las líneas en el orden de captura (line_no).
	GetLineItems(ctx context.Context, invoiceID int64) ([]*entity.InvoiceLineItem, error)
	List(ctx context.Context, filter InvoiceFilter) ([]*entity.InvoiceSummary, error)
	// UpdatePaymentStatus es la única mutación permitida después de creada la factura.
	// Devuelve false si la factura no existe.
	UpdatePaymentStatus(ctx context.Context, id int64, status entity.PaymentStatus, now time.Time) (bool, error)
}
