package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest body para POST /api/invoices.
// Los campos omitidos toman valores por defecto en el caso de uso:
// tax_rate → setting "tax_rate" (o 0), payment_method → cash, payment_status → paid.
type CreateInvoiceRequest struct {
	CustomerID     *int64               `json:"customer_id,omitempty"`
	Items          []InvoiceItemRequest `json:"items"`
	TaxRate        *decimal.Decimal     `json:"tax_rate,omitempty"`
	DiscountAmount decimal.Decimal      `json:"discount_amount"`
	PaymentMethod  string               `json:"payment_method,omitempty"`
	PaymentStatus  string               `json:"payment_status,omitempty"`
}

// InvoiceItemRequest línea del carrito.
type InvoiceItemRequest struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateInvoiceResult resultado del caso de uso.
type CreateInvoiceResult struct {
	InvoiceID     int64  `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number"`
}

// CreateInvoiceResponse respuesta exitosa de POST /api/invoices.
type CreateInvoiceResponse struct {
	Success       bool   `json:"success"`
	InvoiceID     int64  `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number"`
}

// InvoiceResponse factura con cliente y líneas para GET /api/invoices/:id.
type InvoiceResponse struct {
	ID              int64                 `json:"id"`
	InvoiceNumber   string                `json:"invoice_number"`
	CustomerID      *int64                `json:"customer_id"`
	CustomerName    string                `json:"customer_name,omitempty"`
	CustomerPhone   string                `json:"customer_phone,omitempty"`
	CustomerAddress string                `json:"customer_address,omitempty"`
	UserID          int64                 `json:"user_id"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	TaxRate         decimal.Decimal       `json:"tax_rate"`
	TaxAmount       decimal.Decimal       `json:"tax_amount"`
	DiscountAmount  decimal.Decimal       `json:"discount_amount"`
	TotalAmount     decimal.Decimal       `json:"total_amount"`
	PaymentMethod   string                `json:"payment_method"`
	PaymentStatus   string                `json:"payment_status"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
	Items           []InvoiceItemResponse `json:"items"`
}

// InvoiceItemResponse línea con la foto del producto al momento de la venta.
type InvoiceItemResponse struct {
	ID          int64           `json:"id"`
	ProductID   *int64          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// InvoiceSummaryResponse fila de listados (GET /api/invoices, recent-invoices).
type InvoiceSummaryResponse struct {
	ID            int64           `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    *int64          `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
	PaymentStatus string          `json:"payment_status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ListInvoicesRequest query de GET /api/invoices.
type ListInvoicesRequest struct {
	Status string `query:"status"`
	Limit  int    `query:"limit"`
}

// UpdatePaymentStatusRequest body para PATCH /api/invoices/:id/status.
type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status"`
}

// TodaySummaryDTO respuesta de GET /api/invoices/today-summary.
type TodaySummaryDTO struct {
	TotalInvoices int64           `json:"total_invoices"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}
