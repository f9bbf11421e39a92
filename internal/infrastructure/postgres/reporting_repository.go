package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/billmaster-api/internal/domain/entity"
	"github.com/jhoicas/billmaster-api/internal/domain/repository"
)

var _ repository.ReportingRepository = (*ReportingRepo)(nil)

// ReportingRepo consultas de solo lectura para el dashboard y los reportes de ventas.
// Todas las ventanas son semiabiertas: created_at >= from AND created_at < to.
// Un from nulo (ventana "all") no acota por abajo.
type ReportingRepo struct {
	q Querier
}

// NewReportingRepository construye el adaptador de reportes.
func NewReportingRepository(q Querier) *ReportingRepo {
	return &ReportingRepo{q: q}
}

// windowFilter predicado de ventana sobre el alias i; usa $1 (from, nullable) y $2 (to).
const windowFilter = `($1::timestamptz IS NULL OR i.created_at >= $1) AND i.created_at < $2`

func windowArgs(w repository.Window) (any, time.Time) {
	if w.From.IsZero() {
		return nil, w.To
	}
	return w.From, w.To
}

// SalesTotals conteo, ingresos y unidades vendidas en la ventana.
// Usa COALESCE para devolver cero si no hay filas.
func (r *ReportingRepo) SalesTotals(ctx context.Context, w repository.Window) (repository.SalesTotals, error) {
	const query = `
	SELECT
	    COUNT(*)                                                                   AS invoices,
	    COALESCE(SUM(i.total_amount), 0)                                           AS revenue,
	    COALESCE(SUM(i.total_amount) FILTER (WHERE i.payment_status = 'paid'), 0)    AS paid,
	    COALESCE(SUM(i.total_amount) FILTER (WHERE i.payment_status = 'pending'), 0) AS pending,
	    COUNT(DISTINCT i.customer_id)                                              AS unique_customers,
	    COALESCE((
	        SELECT SUM(ii.quantity)
	        FROM invoice_items ii
	        JOIN invoices i ON i.id = ii.invoice_id
	        WHERE ` + windowFilter + `
	    ), 0)                                                                      AS items_sold
	FROM invoices i
	WHERE ` + windowFilter

	from, to := windowArgs(w)
	var t repository.SalesTotals
	err := r.q.QueryRow(ctx, query, from, to).Scan(
		&t.Invoices, &t.Revenue, &t.Paid, &t.Pending, &t.UniqueCustomers, &t.ItemsSold,
	)
	if err != nil {
		return repository.SalesTotals{}, fmt.Errorf("reporting.SalesTotals: %w", err)
	}
	return t, nil
}

// SalesByStatus conteo e ingresos por estado de pago (solo estados con facturas).
func (r *ReportingRepo) SalesByStatus(ctx context.Context, w repository.Window) ([]repository.StatusTotals, error) {
	const query = `
	SELECT i.payment_status, COUNT(*), COALESCE(SUM(i.total_amount), 0)
	FROM invoices i
	WHERE ` + windowFilter + `
	GROUP BY i.payment_status
	ORDER BY i.payment_status`

	from, to := windowArgs(w)
	rows, err := r.q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("reporting.SalesByStatus: %w", err)
	}
	defer rows.Close()

	var out []repository.StatusTotals
	for rows.Next() {
		var (
			row    repository.StatusTotals
			status string
		)
		if err := rows.Scan(&status, &row.Invoices, &row.Revenue); err != nil {
			return nil, fmt.Errorf("reporting.SalesByStatus scan: %w", err)
		}
		row.Status = entity.PaymentStatus(status)
		out = append(out, row)
	}
	return out, rows.Err()
}

var bucketFormats = map[repository.Granularity]string{
	repository.ByHour:  "HH24",
	repository.ByDay:   "YYYY-MM-DD",
	repository.ByMonth: "YYYY-MM",
}

// SalesBuckets agrupa por hora, día o mes en la zona horaria loc.
func (r *ReportingRepo) SalesBuckets(ctx context.Context, w repository.Window, g repository.Granularity, loc *time.Location) ([]repository.SalesBucket, error) {
	format, ok := bucketFormats[g]
	if !ok {
		return nil, fmt.Errorf("reporting.SalesBuckets: granularidad desconocida %q", g)
	}
	const query = `
	SELECT
	    to_char(i.created_at AT TIME ZONE $3, $4)                                 AS bucket,
	    COUNT(*)                                                                  AS invoices,
	    COALESCE(SUM(i.total_amount), 0)                                          AS revenue,
	    COALESCE(SUM(i.total_amount) FILTER (WHERE i.payment_status = 'paid'), 0) AS paid
	FROM invoices i
	WHERE ` + windowFilter + `
	GROUP BY bucket
	ORDER BY bucket`

	from, to := windowArgs(w)
	rows, err := r.q.Query(ctx, query, from, to, pgTimeZone(loc), format)
	if err != nil {
		return nil, fmt.Errorf("reporting.SalesBuckets: %w", err)
	}
	defer rows.Close()

	var out []repository.SalesBucket
	for rows.Next() {
		var b repository.SalesBucket
		if err := rows.Scan(&b.Key, &b.Invoices, &b.Revenue, &b.Paid); err != nil {
			return nil, fmt.Errorf("reporting.SalesBuckets scan: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// PaymentMethodTotals ingresos por medio de pago, total desc y método asc.
func (r *ReportingRepo) PaymentMethodTotals(ctx context.Context, w repository.Window) ([]repository.PaymentMethodTotals, error) {
	const query = `
	SELECT i.payment_method, COUNT(*), COALESCE(SUM(i.total_amount), 0) AS total
	FROM invoices i
	WHERE ` + windowFilter + `
	GROUP BY i.payment_method
	ORDER BY total DESC, i.payment_method ASC`

	from, to := windowArgs(w)
	rows, err := r.q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("reporting.PaymentMethodTotals: %w", err)
	}
	defer rows.Close()

	var out []repository.PaymentMethodTotals
	for rows.Next() {
		var (
			row    repository.PaymentMethodTotals
			method string
		)
		if err := rows.Scan(&method, &row.Invoices, &row.Total); err != nil {
			return nil, fmt.Errorf("reporting.PaymentMethodTotals scan: %w", err)
		}
		row.Method = entity.PaymentMethod(method)
		out = append(out, row)
	}
	return out, rows.Err()
}

// TopProducts ranking por ingresos de línea. Las líneas de productos borrados
// (product_id NULL) no participan.
func (r *ReportingRepo) TopProducts(ctx context.Context, w repository.Window, limit int) ([]repository.ProductSales, error) {
	const query = `
	SELECT
	    p.id,
	    p.name,
	    p.price,
	    SUM(ii.quantity)    AS sold,
	    SUM(ii.total_price) AS revenue
	FROM invoice_items ii
	JOIN invoices i ON i.id = ii.invoice_id
	JOIN products p ON p.id = ii.product_id
	WHERE ` + windowFilter + `
	GROUP BY p.id, p.name, p.price
	ORDER BY revenue DESC, p.id ASC
	LIMIT $3`

	from, to := windowArgs(w)
	rows, err := r.q.Query(ctx, query, from, to, clampLimit(limit, 5))
	if err != nil {
		return nil, fmt.Errorf("reporting.TopProducts: %w", err)
	}
	defer rows.Close()

	var out []repository.ProductSales
	for rows.Next() {
		var row repository.ProductSales
		if err := rows.Scan(&row.ProductID, &row.Name, &row.UnitPrice, &row.Sold, &row.Revenue); err != nil {
			return nil, fmt.Errorf("reporting.TopProducts scan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// LowStockProducts productos activos con existencia <= threshold.
func (r *ReportingRepo) LowStockProducts(ctx context.Context, threshold, limit int) ([]*entity.Product, error) {
	const query = `
	SELECT id, name, price, stock_quantity, COALESCE(unit, ''), is_active, created_at, updated_at
	FROM products
	WHERE is_active AND stock_quantity <= $1
	ORDER BY stock_quantity ASC, id ASC
	LIMIT $2`

	rows, err := r.q.Query(ctx, query, threshold, clampLimit(limit, 10))
	if err != nil {
		return nil, fmt.Errorf("reporting.LowStockProducts: %w", err)
	}
	defer rows.Close()

	var out []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.StockQuantity, &p.Unit, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("reporting.LowStockProducts scan: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// RecentInvoices últimas facturas con nombre de cliente.
func (r *ReportingRepo) RecentInvoices(ctx context.Context, limit int) ([]*entity.InvoiceSummary, error) {
	const query = `
	SELECT i.id, i.invoice_number, i.customer_id, COALESCE(c.name, ''), i.total_amount,
	       i.payment_method, i.payment_status, i.created_at
	FROM invoices i
	LEFT JOIN customers c ON c.id = i.customer_id
	ORDER BY i.created_at DESC, i.id DESC
	LIMIT $1`

	rows, err := r.q.Query(ctx, query, clampLimit(limit, 10))
	if err != nil {
		return nil, fmt.Errorf("reporting.RecentInvoices: %w", err)
	}
	defer rows.Close()
	return scanInvoiceSummaries(rows)
}

// TopCustomers clientes con al menos una factura, por gasto total.
func (r *ReportingRepo) TopCustomers(ctx context.Context, limit int) ([]repository.CustomerTotals, error) {
	const query = `
	SELECT c.id, c.name, COALESCE(c.phone, ''),
	       COUNT(i.id)         AS total_orders,
	       SUM(i.total_amount) AS total_spent,
	       MAX(i.created_at)   AS last_order
	FROM customers c
	JOIN invoices i ON i.customer_id = c.id
	GROUP BY c.id, c.name, c.phone
	ORDER BY total_spent DESC, c.id ASC
	LIMIT $1`

	rows, err := r.q.Query(ctx, query, clampLimit(limit, 5))
	if err != nil {
		return nil, fmt.Errorf("reporting.TopCustomers: %w", err)
	}
	defer rows.Close()

	var out []repository.CustomerTotals
	for rows.Next() {
		var row repository.CustomerTotals
		if err := rows.Scan(&row.ID, &row.Name, &row.Phone, &row.TotalOrders, &row.TotalSpent, &row.LastOrder); err != nil {
			return nil, fmt.Errorf("reporting.TopCustomers scan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// CatalogCounts productos activos y clientes registrados.
func (r *ReportingRepo) CatalogCounts(ctx context.Context) (repository.CatalogCounts, error) {
	const query = `
	SELECT
	    (SELECT COUNT(*) FROM products WHERE is_active),
	    (SELECT COUNT(*) FROM customers)`
	var c repository.CatalogCounts
	if err := r.q.QueryRow(ctx, query).Scan(&c.ActiveProducts, &c.Customers); err != nil {
		return repository.CatalogCounts{}, fmt.Errorf("reporting.CatalogCounts: %w", err)
	}
	return c, nil
}

// pgTimeZone nombre IANA para AT TIME ZONE. config.Location nunca entrega time.Local;
// un "Local" que llegue por otro camino se trata como UTC, la misma zona que usa Clock con nil.
func pgTimeZone(loc *time.Location) string {
	if loc == nil || loc.String() == "Local" || loc.String() == "" {
		return "UTC"
	}
	return loc.String()
}
