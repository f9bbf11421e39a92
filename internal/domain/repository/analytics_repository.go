package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/billmaster-api/internal/domain/entity"
)

// Granularity resolución de agrupación de las series de ventas.
type Granularity string

const (
	ByHour  Granularity = "hour"  // clave "HH" (00–23)
	ByDay   Granularity = "day"   // clave "YYYY-MM-DD"
	ByMonth Granularity = "month" // clave "YYYY-MM"
)

// Window rango semiabierto [From, To). Un From cero significa "desde siempre".
type Window struct {
	From time.Time
	To   time.Time
}

// Contains indica si t cae dentro de la ventana.
func (w Window) Contains(t time.Time) bool {
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	return t.Before(w.To)
}

// SalesTotals agregados de facturas dentro de una ventana.
// Usa COALESCE en las implementaciones SQL: sin facturas todo vale cero.
type SalesTotals struct {
	Invoices        int64
	Revenue         decimal.Decimal
	Paid            decimal.Decimal
	Pending         decimal.Decimal
	UniqueCustomers int64
	ItemsSold       int64
}

// StatusTotals conteo e ingresos por estado de pago.
type StatusTotals struct {
	Status   entity.PaymentStatus
	Invoices int64
	Revenue  decimal.Decimal
}

// SalesBucket fila de una serie agrupada. Key depende de la Granularity.
type SalesBucket struct {
	Key      string
	Invoices int64
	Revenue  decimal.Decimal
	Paid     decimal.Decimal
}

// PaymentMethodTotals ingresos por medio de pago.
type PaymentMethodTotals struct {
	Method   entity.PaymentMethod
	Invoices int64
	Total    decimal.Decimal
}

// ProductSales ventas agregadas de un producto. UnitPrice es el precio actual del catálogo.
type ProductSales struct {
	ProductID int64
	Name      string
	UnitPrice decimal.Decimal
	Sold      int64
	Revenue   decimal.Decimal
}

// CustomerTotals ranking de clientes por gasto.
type CustomerTotals struct {
	ID          int64
	Name        string
	Phone       string
	TotalOrders int64
	TotalSpent  decimal.Decimal
	LastOrder   time.Time
}

// CatalogCounts tamaño del catálogo.
type CatalogCounts struct {
	ActiveProducts int64
	Customers      int64
}

// ReportingRepository consultas de solo lectura sobre el histórico de facturas.
// Todos los listados tienen orden total (desempate por id) para que dos llamadas
// sobre los mismos datos devuelvan exactamente lo mismo.
type ReportingRepository interface {
	SalesTotals(ctx context.Context, w Window) (SalesTotals, error)
	SalesByStatus(ctx context.Context, w Window) ([]StatusTotals, error)
	// SalesBuckets agrupa por hora, día o mes calculados en loc. Solo devuelve
	// los buckets con datos, ordenados por Key; el relleno con ceros es del caso de uso.
	SalesBuckets(ctx context.Context, w Window, g Granularity, loc *time.Location) ([]SalesBucket, error)
	// PaymentMethodTotals ordenado por total desc, método asc.
	PaymentMethodTotals(ctx context.Context, w Window) ([]PaymentMethodTotals, error)
	// TopProducts ordenado por revenue desc, product_id asc. Ignora líneas cuyo producto fue borrado.
	TopProducts(ctx context.Context, w Window, limit int) ([]ProductSales, error)
	// LowStockProducts productos activos con existencia <= threshold, ascendente.
	LowStockProducts(ctx context.Context, threshold, limit int) ([]*entity.Product, error)
	RecentInvoices(ctx context.Context, limit int) ([]*entity.InvoiceSummary, error)
	// TopCustomers clientes con al menos una factura, por gasto desc.
	TopCustomers(ctx context.Context, limit int) ([]CustomerTotals, error)
	CatalogCounts(ctx context.Context) (CatalogCounts, error)
}
