package billing_test

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billmaster-api/internal/domain"
	"github.com/jhoicas/billmaster-api/internal/domain/billing"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Carrito de referencia: 2 × 50.00 + 1 × 30.00 con IVA 18 % y sin descuento.
//
//	subtotal = 130.00, impuesto = 23.40, total = 153.40
//
// ──────────────────────────────────────────────────────────────────────────────
func TestCalculateTotals_CarritoReferencia(t *testing.T) {
	lines := []billing.Line{
		{Quantity: 2, UnitPrice: dec("50.00")},
		{Quantity: 1, UnitPrice: dec("30.00")},
	}

	got, err := billing.CalculateTotals(lines, dec("18"), decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, "130.00", got.Subtotal.StringFixed(2))
	assert.Equal(t, "23.40", got.TaxAmount.StringFixed(2))
	assert.Equal(t, "153.40", got.TotalAmount.StringFixed(2))
}

func TestCalculateTotals_Invariantes(t *testing.T) {
	cases := []struct {
		name     string
		lines    []billing.Line
		rate     string
		discount string
	}{
		{"sin impuesto", []billing.Line{{Quantity: 3, UnitPrice: dec("9.99")}}, "0", "0"},
		{"con descuento", []billing.Line{{Quantity: 1, UnitPrice: dec("100")}, {Quantity: 4, UnitPrice: dec("2.5")}}, "5", "10.00"},
		{"redondeo de impuesto", []billing.Line{{Quantity: 7, UnitPrice: dec("1.11")}}, "12.5", "0.01"},
		{"precio cero", []billing.Line{{Quantity: 2, UnitPrice: decimal.Zero}}, "18", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := billing.CalculateTotals(tc.lines, dec(tc.rate), dec(tc.discount))
			require.NoError(t, err)

			sum := decimal.Zero
			for _, l := range tc.lines {
				sum = sum.Add(billing.LineTotal(l))
			}
			assert.True(t, got.Subtotal.Equal(billing.RoundMoney(sum)), "subtotal = Σ líneas")
			assert.True(t, got.TaxAmount.Equal(billing.RoundMoney(got.Subtotal.Mul(dec(tc.rate)).Div(decimal.NewFromInt(100)))))
			assert.True(t, got.TotalAmount.Equal(got.Subtotal.Add(got.TaxAmount).Sub(dec(tc.discount))), "total = subtotal + impuesto − descuento")
			assert.False(t, got.TotalAmount.IsNegative())
		})
	}
}

func TestCalculateTotals_RedondeoMitadHaciaArriba(t *testing.T) {
	// 0.05 × 10 % = 0.005 → 0.01
	got, err := billing.CalculateTotals([]billing.Line{{Quantity: 1, UnitPrice: dec("0.05")}}, dec("10"), decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "0.01", got.TaxAmount.StringFixed(2))
	assert.Equal(t, "0.06", got.TotalAmount.StringFixed(2))
}

func TestCalculateTotals_Errores(t *testing.T) {
	one := []billing.Line{{Quantity: 1, UnitPrice: dec("10")}}
	cases := []struct {
		name     string
		lines    []billing.Line
		rate     string
		discount string
		msg      string
	}{
		{"carrito vacío", nil, "0", "0", "No items in cart"},
		{"cantidad cero", []billing.Line{{Quantity: 0, UnitPrice: dec("1")}}, "0", "0", "items[0].quantity: must be a positive integer"},
		{"precio negativo", []billing.Line{{Quantity: 1, UnitPrice: dec("-1")}}, "0", "0", "items[0].unit_price: must not be negative"},
		{"impuesto negativo", one, "-1", "0", "tax_rate: must not be negative"},
		{"descuento negativo", one, "0", "-1", "discount_amount: must not be negative"},
		{"descuento mayor al total", one, "10", "11.01", "discount_amount: exceeds invoice total"},
		{"tasa fuera de NUMERIC(5,2)", one, "1000", "0", "tax_rate: must be below 1000"},
		{"tasa que redondea a 1000", one, "999.995", "0", "tax_rate: must be below 1000"},
		{"cantidad fuera de INTEGER", []billing.Line{{Quantity: math.MaxInt32 + 1, UnitPrice: dec("1")}}, "0", "0", "items[0].quantity: must not exceed 2147483647"},
		{"línea fuera de NUMERIC(12,2)", []billing.Line{{Quantity: 2, UnitPrice: dec("5000000000")}}, "0", "0", "items[0]: line total too large"},
		{"factura fuera de NUMERIC(12,2)", []billing.Line{{Quantity: 1, UnitPrice: dec("9999999999.99")}}, "1", "0", "invoice total too large"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := billing.CalculateTotals(tc.lines, dec(tc.rate), dec(tc.discount))
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))

			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.msg, vErr.Error())
		})
	}
}

// La tasa se usa con la misma precisión con que se guarda: 12.345 % se trata como 12.35 %.
func TestCalculateTotals_TasaRedondeadaADosDecimales(t *testing.T) {
	lines := []billing.Line{{Quantity: 1, UnitPrice: dec("1000.00")}}

	got, err := billing.CalculateTotals(lines, dec("12.345"), decimal.Zero)
	require.NoError(t, err)

	stored := billing.RoundRate(dec("12.345"))
	assert.Equal(t, "12.35", stored.StringFixed(2))
	assert.Equal(t, "123.50", got.TaxAmount.StringFixed(2))
	assert.True(t, got.TaxAmount.Equal(billing.RoundMoney(got.Subtotal.Mul(stored).Div(decimal.NewFromInt(100)))))

	_, err = billing.CalculateTotals(lines, dec("999.99"), decimal.Zero)
	assert.NoError(t, err)
}

func TestCalculateTotals_DescuentoIgualAlTotal(t *testing.T) {
	got, err := billing.CalculateTotals([]billing.Line{{Quantity: 1, UnitPrice: dec("10")}}, dec("10"), dec("11"))
	require.NoError(t, err)
	assert.True(t, got.TotalAmount.IsZero())
}
