package billing

import (
	"context"

	"github.com/jhoicas/billmaster-api/internal/application/dto"
	"github.com/jhoicas/billmaster-api/internal/domain/entity"
	"github.com/jhoicas/billmaster-api/internal/domain/repository"
)

// BillingTxRunner ejecuta una función dentro de una transacción que incluye los repos
// de facturación e inventario. Si fn devuelve error se hace rollback de todo.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		productRepo repository.ProductRepository,
		stockRepo repository.StockRepository,
	) error) error
}

// StockDecrementer integra facturación con inventario.
// DecrementInTx usa el stockRepo del caller (misma transacción).
type StockDecrementer interface {
	DecrementInTx(ctx context.Context, stockRepo repository.StockRepository, productID int64, quantity int) error
}

// NumberGenerator reserva un número de factura único.
type NumberGenerator interface {
	Allocate(ctx context.Context) (string, error)
}

// TodayTotals agregados del día en curso (lo implementa el caso de uso de reportes).
type TodayTotals interface {
	Today(ctx context.Context, caller entity.Caller) (repository.SalesTotals, error)
}

// ReceiptData datos completos para renderizar el comprobante.
type ReceiptData struct {
	Invoice        *dto.InvoiceResponse
	StoreName      string
	CurrencySymbol string
}

// ReceiptGenerator genera el PDF del comprobante.
type ReceiptGenerator interface {
	GenerateReceiptPDF(ctx context.Context, data ReceiptData) ([]byte, error)
}
