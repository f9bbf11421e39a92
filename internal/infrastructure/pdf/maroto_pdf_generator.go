// Package pdf genera el comprobante de venta (receipt) de una factura emitida.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre de la tienda  │  N° Factura + Fecha          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Nombre / Tel / Dirección (si la venta tiene)       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: # | Producto | Cant | P.Unit | Total                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Impuesto / Descuento / TOTAL            │
//	│  PAGO: medio + estado                                        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	appbilling "github.com/jhoicas/billmaster-api/internal/application/billing"
	"github.com/jhoicas/billmaster-api/internal/application/dto"
)

var _ appbilling.ReceiptGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// Símbolos que la fuente helvetica (Windows-1252) no puede dibujar.
var currencyFallbacks = map[string]string{
	"₹": "Rs.",
	"₱": "PHP ",
	"₩": "KRW ",
	"₦": "NGN ",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa billing.ReceiptGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	printer *message.Printer
}

// NewMarotoPDFGenerator construye el generador. Los montos se agrupan con las
// convenciones de lang (ej. language.English → 1,234.50).
func NewMarotoPDFGenerator(lang language.Tag) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{printer: message.NewPrinter(lang)}
}

// GenerateReceiptPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateReceiptPDF(_ context.Context, data appbilling.ReceiptData) ([]byte, error) {
	if data.Invoice == nil {
		return nil, fmt.Errorf("pdf: factura vacía")
	}
	inv := data.Invoice
	symbol := pdfCurrency(data.CurrencySymbol)
	money := func(d decimal.Decimal) string { return symbol + g.FormatMoney(d) }

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Receipt "+inv.InvoiceNumber, true).
		WithAuthor(pdfSafe(data.StoreName), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(inv, pdfSafe(data.StoreName)))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	if inv.CustomerName != "" {
		m.AddRows(customerRow(inv))
		m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	}

	m.AddRows(tableHeaderRow())
	for _, r := range itemRows(inv.Items, money) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(inv, money))
	m.AddRows(paymentRow(inv))

	m.AddRows(line.NewRow(3))
	m.AddRows(row.New(8).Add(col.New(12).Add(
		text.New("Thank you for your purchase!", props.Text{
			Style: fontstyle.Italic, Size: 9, Align: align.Center, Color: colorGray, Top: 2,
		}),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// FormatMoney agrupa miles según el idioma del generador y fija 2 decimales sin pasar por float.
func (g *MarotoPDFGenerator) FormatMoney(d decimal.Decimal) string {
	fixed := d.Round(2).StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	intPart, frac, _ := strings.Cut(fixed, ".")
	whole, err := decimal.NewFromString(intPart)
	if err != nil {
		return sign + fixed
	}
	return sign + g.printer.Sprintf("%d", whole.IntPart()) + "." + frac
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: tienda (izq) y N° factura + fecha (der).
func headerRow(inv *dto.InvoiceResponse, store string) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(store, props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1,
			}),
			text.New("SALES RECEIPT", props.Text{
				Size: 9, Top: 10, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("INVOICE", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(inv.InvoiceNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Date: "+inv.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// customerRow: datos del cliente.
func customerRow(inv *dto.InvoiceResponse) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("BILL TO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(pdfSafe(inv.CustomerName), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("Tel: %s   |   %s",
				nonEmpty(inv.CustomerPhone, "-"),
				pdfSafe(nonEmpty(inv.CustomerAddress, "-")),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("#", 1, align.Center),
		h("Item", 5, align.Left),
		h("Qty", 1, align.Center),
		h("Price", 2, align.Right),
		h("Total", 3, align.Right),
	)
}

// itemRows: una fila por línea, en el orden del carrito.
func itemRows(items []dto.InvoiceItemResponse, money func(decimal.Decimal) string) []core.Row {
	result := make([]core.Row, 0, len(items))
	for i, it := range items {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", i+1), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(pdfSafe(it.ProductName), props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(1).Add(text.New(fmt.Sprintf("%d", it.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(money(it.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(money(it.TotalPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(inv *dto.InvoiceResponse, money func(decimal.Decimal) string) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	grand := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: top})
	}

	return row.New(26).Add(
		col.New(6),
		col.New(3).Add(
			label("Subtotal:", 1),
			label(fmt.Sprintf("Tax (%s%%):", inv.TaxRate.String()), 7),
			label("Discount:", 13),
			grand("TOTAL:", 19),
		),
		col.New(3).Add(
			value(money(inv.Subtotal), 1),
			value(money(inv.TaxAmount), 7),
			value("-"+money(inv.DiscountAmount), 13),
			grand(money(inv.TotalAmount), 19),
		),
	)
}

// paymentRow: medio y estado de pago.
func paymentRow(inv *dto.InvoiceResponse) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Payment: %s   |   Status: %s",
			strings.ToUpper(strings.ReplaceAll(inv.PaymentMethod, "_", " ")),
			strings.ToUpper(inv.PaymentStatus),
		), props.Text{Size: 8, Color: colorGray, Top: 2}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// pdfCurrency traduce el símbolo de moneda a algo que helvetica pueda dibujar.
func pdfCurrency(symbol string) string {
	if alt, ok := currencyFallbacks[symbol]; ok {
		return alt
	}
	return pdfSafe(symbol)
}

// pdfSafe reemplaza por '?' los caracteres que no existen en Windows-1252,
// la codificación de las fuentes estándar del PDF.
func pdfSafe(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if _, ok := charmap.Windows1252.EncodeRune(r); ok {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('?')
	}
	return b.String()
}
