package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod medio de pago de la factura.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
	PaymentUPI          PaymentMethod = "upi"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCredit       PaymentMethod = "credit"
)

// PaymentMethods en el orden en que se listan en reportes.
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentCard, PaymentUPI, PaymentBankTransfer, PaymentCredit}

// Valid indica si el medio de pago es uno de los admitidos.
func (m PaymentMethod) Valid() bool {
	for _, v := range PaymentMethods {
		if m == v {
			return true
		}
	}
	return false
}

// PaymentStatus estado de cobro; es el único campo mutable de una factura emitida.
type PaymentStatus string

const (
	PaymentPaid      PaymentStatus = "paid"
	PaymentPending   PaymentStatus = "pending"
	PaymentPartial   PaymentStatus = "partial"
	PaymentCancelled PaymentStatus = "cancelled"
)

// PaymentStatuses en el orden en que se listan en reportes.
var PaymentStatuses = []PaymentStatus{PaymentPaid, PaymentPending, PaymentPartial, PaymentCancelled}

// Valid indica si el estado es uno de los admitidos.
func (s PaymentStatus) Valid() bool {
	for _, v := range PaymentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Invoice representa la cabecera de una factura.
// Invariante: TotalAmount = Subtotal + TaxAmount - DiscountAmount; TaxAmount = Subtotal * TaxRate / 100.
type Invoice struct {
	ID             int64
	InvoiceNumber  string
	CustomerID     *int64 // opcional (venta de mostrador)
	UserID         int64  // usuario que emitió la factura
	Subtotal       decimal.Decimal
	TaxRate        decimal.Decimal // porcentaje, ej: 18
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	PaymentMethod  PaymentMethod
	PaymentStatus  PaymentStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// InvoiceSummary fila ligera para listados (factura + nombre de cliente).
type InvoiceSummary struct {
	ID            int64
	InvoiceNumber string
	CustomerID    *int64
	CustomerName  string
	TotalAmount   decimal.Decimal
	PaymentMethod PaymentMethod
	PaymentStatus PaymentStatus
	CreatedAt     time.Time
}
