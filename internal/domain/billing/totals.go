// Package billing contiene los servicios de dominio puros de facturación:
// cálculo de totales y formato del número de factura.
package billing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/billmaster-api/internal/domain"
)

// MoneyPlaces decimales de la unidad mínima de la moneda.
const MoneyPlaces = 2

// Límites de las columnas: tax_rate NUMERIC(5,2), montos NUMERIC(12,2), quantity INTEGER.
const (
	RatePlaces  = 2
	MaxQuantity = math.MaxInt32
)

var (
	hundred = decimal.NewFromInt(100)
	// MaxTaxRate mayor tasa representable (999.99 %).
	MaxTaxRate = decimal.RequireFromString("999.99")
	// MaxAmount mayor monto representable por línea o por factura.
	MaxAmount = decimal.RequireFromString("9999999999.99")
)

// Line entrada mínima para el cálculo: cantidad y precio unitario.
type Line struct {
	Quantity  int
	UnitPrice decimal.Decimal
}

// Totals resultado del cálculo, redondeado a MoneyPlaces.
type Totals struct {
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
	TotalAmount decimal.Decimal
}

// RoundMoney redondea a la unidad mínima (mitad lejos de cero).
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// RoundRate lleva la tasa a la precisión con que se guarda, para que lo persistido
// vuelva a dar el mismo impuesto al recalcularlo.
func RoundRate(rate decimal.Decimal) decimal.Decimal {
	return rate.Round(RatePlaces)
}

// LineTotal devuelve Quantity * UnitPrice redondeado.
func LineTotal(l Line) decimal.Decimal {
	return RoundMoney(decimal.NewFromInt(int64(l.Quantity)).Mul(l.UnitPrice))
}

// CalculateTotals aplica:
//
//	subtotal = Σ(quantity × unit_price)
//	tax      = subtotal × taxRate / 100
//	total    = subtotal + tax − discount
//
// taxRate se redondea a 2 decimales antes de usarse. Falla con *domain.ValidationError si
// no hay líneas, si algún valor es negativo o excede su columna, o si el descuento supera
// subtotal + impuesto.
func CalculateTotals(lines []Line, taxRate, discount decimal.Decimal) (Totals, error) {
	if len(lines) == 0 {
		return Totals{}, domain.NewValidationError("", "No items in cart")
	}
	taxRate = RoundRate(taxRate)
	if taxRate.IsNegative() {
		return Totals{}, domain.NewValidationError("tax_rate", "must not be negative")
	}
	if taxRate.GreaterThan(MaxTaxRate) {
		return Totals{}, domain.NewValidationError("tax_rate", "must be below 1000")
	}
	if discount.IsNegative() {
		return Totals{}, domain.NewValidationError("discount_amount", "must not be negative")
	}

	subtotal := decimal.Zero
	for i, l := range lines {
		if l.Quantity < 1 {
			return Totals{}, domain.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "must be a positive integer")
		}
		if l.Quantity > MaxQuantity {
			return Totals{}, domain.NewValidationError(fmt.Sprintf("items[%d].quantity", i), fmt.Sprintf("must not exceed %d", MaxQuantity))
		}
		if l.UnitPrice.IsNegative() {
			return Totals{}, domain.NewValidationError(fmt.Sprintf("items[%d].unit_price", i), "must not be negative")
		}
		lineTotal := LineTotal(l)
		if lineTotal.GreaterThan(MaxAmount) {
			return Totals{}, domain.NewValidationError(fmt.Sprintf("items[%d]", i), "line total too large")
		}
		subtotal = subtotal.Add(lineTotal)
	}
	subtotal = RoundMoney(subtotal)
	tax := RoundMoney(subtotal.Mul(taxRate).Div(hundred))
	discount = RoundMoney(discount)

	gross := subtotal.Add(tax)
	if gross.GreaterThan(MaxAmount) {
		return Totals{}, domain.NewValidationError("", "invoice total too large")
	}
	if discount.GreaterThan(gross) {
		return Totals{}, domain.NewValidationError("discount_amount", "exceeds invoice total")
	}
	return Totals{
		Subtotal:    subtotal,
		TaxAmount:   tax,
		TotalAmount: gross.Sub(discount),
	}, nil
}
