package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/billmaster-api/internal/domain"
	"github.com/jhoicas/billmaster-api/internal/domain/entity"
	"github.com/jhoicas/billmaster-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create inserta la cabecera y asigna ID. Una colisión de invoice_number se reporta como domain.ErrDuplicate.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	const query = `
		INSERT INTO invoices (
			invoice_number, customer_id, user_id, subtotal, tax_rate, tax_amount,
			discount_amount, total_amount, payment_method, payment_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		inv.InvoiceNumber, inv.CustomerID, inv.UserID,
		inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.DiscountAmount, inv.TotalAmount,
		string(inv.PaymentMethod), string(inv.PaymentStatus), inv.CreatedAt, inv.UpdatedAt,
	).Scan(&inv.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert invoice %s (%s): %w", inv.InvoiceNumber, constraintName(err), domain.ErrDuplicate)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateLineItem inserta una línea con la foto del producto.
func (r *InvoiceRepo) CreateLineItem(ctx context.Context, item *entity.InvoiceLineItem) error {
	const query = `
		INSERT INTO invoice_items (invoice_id, line_no, product_id, product_name, quantity, unit_price, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		item.InvoiceID, item.LineNo, item.ProductID, item.ProductName,
		item.Quantity, item.UnitPrice, item.TotalPrice,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("insert invoice item: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera de una factura.
func (r *InvoiceRepo) GetByID(ctx context.Context, id int64) (*entity.Invoice, error) {
	const query = `
		SELECT id, invoice_number, customer_id, user_id, subtotal, tax_rate, tax_amount,
		       discount_amount, total_amount, payment_method, payment_status, created_at, updated_at
		FROM invoices WHERE id = $1`
	var (
		inv            entity.Invoice
		method, status string
	)
	err := r.q.QueryRow(ctx, query, id).Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.CustomerID, &inv.UserID,
		&inv.Subtotal, &inv.TaxRate, &inv.TaxAmount, &inv.DiscountAmount, &inv.TotalAmount,
		&method, &status, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	inv.PaymentMethod = entity.PaymentMethod(method)
	inv.PaymentStatus = entity.PaymentStatus(status)
	return &inv, nil
}

// GetLineItems obtiene las líneas de una factura en el orden del carrito.
func (r *InvoiceRepo) GetLineItems(ctx context.Context, invoiceID int64) ([]*entity.InvoiceLineItem, error) {
	const query = `
		SELECT id, invoice_id, line_no, product_id, product_name, quantity, unit_price, total_price
		FROM invoice_items WHERE invoice_id = $1 ORDER BY line_no, id`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceLineItem
	for rows.Next() {
		var it entity.InvoiceLineItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.LineNo, &it.ProductID, &it.ProductName,
			&it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// List devuelve las facturas más recientes con el nombre del cliente.
func (r *InvoiceRepo) List(ctx context.Context, filter repository.InvoiceFilter) ([]*entity.InvoiceSummary, error) {
	const query = `
		SELECT i.id, i.invoice_number, i.customer_id, COALESCE(c.name, ''), i.total_amount,
		       i.payment_method, i.payment_status, i.created_at
		FROM invoices i
		LEFT JOIN customers c ON c.id = i.customer_id
		WHERE ($1 = '' OR i.payment_status = $1)
		ORDER BY i.created_at DESC, i.id DESC
		LIMIT $2`
	rows, err := r.q.Query(ctx, query, string(filter.Status), clampLimit(filter.Limit, 20))
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	return scanInvoiceSummaries(rows)
}

// UpdatePaymentStatus cambia solo payment_status y updated_at.
func (r *InvoiceRepo) UpdatePaymentStatus(ctx context.Context, id int64, status entity.PaymentStatus, now time.Time) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE invoices SET payment_status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), now,
	)
	if err != nil {
		return false, fmt.Errorf("update payment status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanInvoiceSummaries(rows pgx.Rows) ([]*entity.InvoiceSummary, error) {
	var list []*entity.InvoiceSummary
	for rows.Next() {
		var (
			s              entity.InvoiceSummary
			method, status string
		)
		if err := rows.Scan(&s.ID, &s.InvoiceNumber, &s.CustomerID, &s.CustomerName, &s.TotalAmount,
			&method, &status, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan invoice summary: %w", err)
		}
		s.PaymentMethod = entity.PaymentMethod(method)
		s.PaymentStatus = entity.PaymentStatus(status)
		list = append(list, &s)
	}
	return list, rows.Err()
}
