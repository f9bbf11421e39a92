package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Query parameters ──────────────────────────────────────────────────────────

// SalesChartRequest GET /api/analytics/sales-chart.
type SalesChartRequest struct {
	Days int `query:"days"` // default 7, max 366
}

// TopProductsRequest GET /api/analytics/top-products.
type TopProductsRequest struct {
	Limit int `query:"limit"` // default 5
	Days  int `query:"days"`  // default 30
}

// ── Series ────────────────────────────────────────────────────────────────────

// DailySalesDTO un día de la serie de ventas.
type DailySalesDTO struct {
	Date  string          `json:"date"` // YYYY-MM-DD
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
	Paid  decimal.Decimal `json:"paid"`
}

// HourlySalesDTO una hora del día actual.
type HourlySalesDTO struct {
	Hour     int             `json:"hour"`
	Invoices int64           `json:"invoices"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// MonthlySalesDTO un mes de la serie mensual.
type MonthlySalesDTO struct {
	Month     string          `json:"month"`      // YYYY-MM
	MonthName string          `json:"month_name"` // ej: "May 2024"
	Invoices  int64           `json:"invoices"`
	Revenue   decimal.Decimal `json:"revenue"`
	Paid      decimal.Decimal `json:"paid"`
}

// ── Rankings ──────────────────────────────────────────────────────────────────

// PaymentMethodShareDTO participación de un medio de pago en los últimos 30 días.
type PaymentMethodShareDTO struct {
	PaymentMethod string          `json:"payment_method"`
	Total         decimal.Decimal `json:"total"`
	Count         int64           `json:"count"`
	Percentage    decimal.Decimal `json:"percentage"` // 1 decimal
}

// TopProductDTO producto más vendido. AvgPrice = Revenue / Sold.
type TopProductDTO struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Sold      int64           `json:"sold"`
	Revenue   decimal.Decimal `json:"revenue"`
	AvgPrice  decimal.Decimal `json:"avg_price"`
}

// LowStockDTO producto activo con existencia baja.
type LowStockDTO struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	StockQuantity int             `json:"stock_quantity"`
	Unit          string          `json:"unit"`
	Price         decimal.Decimal `json:"price"`
}

// TopCustomerDTO cliente por gasto acumulado.
type TopCustomerDTO struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Phone       string          `json:"phone"`
	TotalOrders int64           `json:"total_orders"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
	LastOrder   time.Time       `json:"last_order"`
}

// ── Resumen ───────────────────────────────────────────────────────────────────

// PeriodSummaryDTO respuesta de GET /api/analytics/summary.
type PeriodSummaryDTO struct {
	Period          string          `json:"period"`
	TotalInvoices   int64           `json:"total_invoices"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	PendingAmount   decimal.Decimal `json:"pending_amount"`
	AvgOrderValue   decimal.Decimal `json:"avg_order_value"`
	UniqueCustomers int64           `json:"unique_customers"`
	ItemsSold       int64           `json:"items_sold"`
}
