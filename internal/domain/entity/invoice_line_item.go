package entity

import "github.com/shopspring/decimal"

// UnknownProductName nombre congelado cuando el producto ya no existe al momento de la venta.
const UnknownProductName = "Unknown"

// InvoiceLineItem línea de una factura con la foto (nombre y precio) del producto al momento de la venta.
// ProductID es una referencia débil: queda en nil si el producto se elimina después.
type InvoiceLineItem struct {
	ID          int64
	InvoiceID   int64
	LineNo      int // orden de la línea dentro del carrito
	ProductID   *int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal // Quantity * UnitPrice
}
