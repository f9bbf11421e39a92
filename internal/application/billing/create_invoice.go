package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/billmaster-api/internal/application/dto"
	"github.com/jhoicas/billmaster-api/internal/domain"
	domainbilling "github.com/jhoicas/billmaster-api/internal/domain/billing"
	"github.com/jhoicas/billmaster-api/internal/domain/entity"
	"github.com/jhoicas/billmaster-api/internal/domain/repository"
)

// CreateInvoiceUseCase crea una factura, sus líneas y descuenta el inventario en una sola transacción.
type CreateInvoiceUseCase struct {
	txRunner     BillingTxRunner
	allocator    NumberGenerator
	stock        StockDecrementer
	customerRepo repository.CustomerRepository
	settingsRepo repository.SettingsRepository
	attempts     int
	now          func() time.Time
}

// NewCreateInvoiceUseCase construye el caso de uso. attempts acota los reintentos
// por colisión de invoice_number.
func NewCreateInvoiceUseCase(
	txRunner BillingTxRunner,
	allocator NumberGenerator,
	stock StockDecrementer,
	customerRepo repository.CustomerRepository,
	settingsRepo repository.SettingsRepository,
	attempts int,
) *CreateInvoiceUseCase {
	if attempts <= 0 {
		attempts = DefaultAllocationAttempts
	}
	return &CreateInvoiceUseCase{
		txRunner:     txRunner,
		allocator:    allocator,
		stock:        stock,
		customerRepo: customerRepo,
		settingsRepo: settingsRepo,
		attempts:     attempts,
		now:          time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *CreateInvoiceUseCase) WithClock(now func() time.Time) *CreateInvoiceUseCase {
	uc.now = now
	return uc
}

// draft factura validada y calculada, lista para persistir.
type draft struct {
	invoice entity.Invoice
	lines   []entity.InvoiceLineItem
}

// CreateInvoice valida el carrito, calcula totales, reserva el número y persiste
// factura + líneas + descuento de stock de forma atómica.
//
// Errores:
//   - *domain.ValidationError  carrito vacío, cantidades/precios inválidos, enum desconocido.
//   - *domain.NotFoundError    customer_id informado pero inexistente.
//   - *domain.AllocationError  no se pudo reservar un número único.
//   - *domain.PersistenceError fallo de almacenamiento; la transacción ya hizo rollback.
func (uc *CreateInvoiceUseCase) CreateInvoice(ctx context.Context, caller entity.Caller, in dto.CreateInvoiceRequest) (*dto.CreateInvoiceResult, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthorized
	}

	// ── 1. Validación y totales (sin escrituras) ─────────────────────────────
	d, err := uc.buildDraft(ctx, caller, in)
	if err != nil {
		return nil, err
	}

	// ── 2. Cliente referenciado ──────────────────────────────────────────────
	if d.invoice.CustomerID != nil {
		customer, err := uc.customerRepo.GetByID(ctx, *d.invoice.CustomerID)
		if err != nil {
			return nil, &domain.PersistenceError{Op: "lookup customer", Err: err}
		}
		if customer == nil {
			return nil, &domain.NotFoundError{Resource: "customer", ID: *d.invoice.CustomerID}
		}
	}

	// ── 3. Número + transacción, reintentando solo ante colisión de número ───
	var lastErr error
	for attempt := 1; attempt <= uc.attempts; attempt++ {
		number, err := uc.allocator.Allocate(ctx)
		if err != nil {
			return nil, err
		}

		invoiceID, err := uc.persist(ctx, d, number)
		if err == nil {
			log.Info().
				Int64("invoice_id", invoiceID).
				Str("invoice_number", number).
				Int64("user_id", caller.UserID).
				Str("total", d.invoice.TotalAmount.StringFixed(2)).
				Msg("billing: factura creada")
			return &dto.CreateInvoiceResult{InvoiceID: invoiceID, InvoiceNumber: number}, nil
		}
		if !errors.Is(err, domain.ErrDuplicate) {
			var pErr *domain.PersistenceError
			if !errors.As(err, &pErr) {
				pErr = &domain.PersistenceError{Op: "create invoice", Err: err}
			}
			log.Error().Err(pErr.Err).Str("op", pErr.Op).Str("invoice_number", number).Msg("billing: rollback de factura")
			return nil, pErr
		}
		lastErr = err
		log.Warn().Str("invoice_number", number).Int("attempt", attempt).Msg("billing: número de factura duplicado, reasignando")
	}
	return nil, &domain.AllocationError{Attempts: uc.attempts, Err: lastErr}
}

// persist ejecuta la unidad de trabajo: cabecera, líneas en orden y descuento de stock por línea.
func (uc *CreateInvoiceUseCase) persist(ctx context.Context, d *draft, number string) (int64, error) {
	now := uc.now()
	inv := d.invoice
	inv.InvoiceNumber = number
	inv.CreatedAt = now
	inv.UpdatedAt = now

	err := uc.txRunner.RunBilling(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		productRepo repository.ProductRepository,
		stockRepo repository.StockRepository,
	) error {
		if err := invoiceRepo.Create(ctx, &inv); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return err
			}
			return &domain.PersistenceError{Op: "insert invoice", Err: err}
		}

		for i := range d.lines {
			line := d.lines[i]
			line.InvoiceID = inv.ID

			// Foto del nombre al momento de la venta; si el producto ya no existe queda "Unknown".
			product, err := productRepo.GetByID(ctx, *line.ProductID)
			if err != nil {
				return &domain.PersistenceError{Op: "lookup product", Err: err}
			}
			if product == nil {
				// Carrito viejo: la línea queda sin referencia (igual que ON DELETE SET NULL) y no hay stock que tocar.
				line.ProductName = entity.UnknownProductName
				line.ProductID = nil
			} else {
				line.ProductName = product.Name
			}

			if err := invoiceRepo.CreateLineItem(ctx, &line); err != nil {
				return &domain.PersistenceError{Op: fmt.Sprintf("insert line item %d", line.LineNo), Err: err}
			}
			if line.ProductID == nil {
				continue
			}
			if err := uc.stock.DecrementInTx(ctx, stockRepo, *line.ProductID, line.Quantity); err != nil {
				return &domain.PersistenceError{Op: fmt.Sprintf("decrement stock product %d", *line.ProductID), Err: err}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inv.ID, nil
}

// buildDraft aplica valores por defecto, valida enums y calcula totales.
func (uc *CreateInvoiceUseCase) buildDraft(ctx context.Context, caller entity.Caller, in dto.CreateInvoiceRequest) (*draft, error) {
	if len(in.Items) == 0 {
		return nil, domain.NewValidationError("", "No items in cart")
	}

	method := entity.PaymentMethod(strings.TrimSpace(in.PaymentMethod))
	if method == "" {
		method = entity.PaymentCash
	}
	if !method.Valid() {
		return nil, domain.NewValidationError("payment_method", "unknown payment method "+string(method))
	}
	status := entity.PaymentStatus(strings.TrimSpace(in.PaymentStatus))
	if status == "" {
		status = entity.PaymentPaid
	}
	if !status.Valid() {
		return nil, domain.NewValidationError("payment_status", "unknown payment status "+string(status))
	}

	if in.CustomerID != nil && *in.CustomerID <= 0 {
		return nil, domain.NewValidationError("customer_id", "must be a positive id")
	}

	taxRate, err := uc.resolveTaxRate(ctx, in.TaxRate)
	if err != nil {
		return nil, err
	}
	taxRate = domainbilling.RoundRate(taxRate)

	amounts := make([]domainbilling.Line, len(in.Items))
	lines := make([]entity.InvoiceLineItem, len(in.Items))
	for i, item := range in.Items {
		if item.ProductID <= 0 {
			return nil, domain.NewValidationError(fmt.Sprintf("items[%d].product_id", i), "must be a positive id")
		}
		price := domainbilling.RoundMoney(item.UnitPrice)
		amounts[i] = domainbilling.Line{Quantity: item.Quantity, UnitPrice: price}
		productID := item.ProductID
		lines[i] = entity.InvoiceLineItem{
			LineNo:    i + 1,
			ProductID: &productID,
			Quantity:  item.Quantity,
			UnitPrice: price,
		}
	}

	totals, err := domainbilling.CalculateTotals(amounts, taxRate, in.DiscountAmount)
	if err != nil {
		return nil, err
	}
	for i := range lines {
		lines[i].TotalPrice = domainbilling.LineTotal(amounts[i])
	}

	return &draft{
		invoice: entity.Invoice{
			CustomerID:     in.CustomerID,
			UserID:         caller.UserID,
			Subtotal:       totals.Subtotal,
			TaxRate:        taxRate,
			TaxAmount:      totals.TaxAmount,
			DiscountAmount: domainbilling.RoundMoney(in.DiscountAmount),
			TotalAmount:    totals.TotalAmount,
			PaymentMethod:  method,
			PaymentStatus:  status,
		},
		lines: lines,
	}, nil
}

// resolveTaxRate usa el valor del request; si no viene, el setting "tax_rate"; si no existe, 0.
func (uc *CreateInvoiceUseCase) resolveTaxRate(ctx context.Context, requested *decimal.Decimal) (decimal.Decimal, error) {
	if requested != nil {
		return *requested, nil
	}
	if uc.settingsRepo == nil {
		return decimal.Zero, nil
	}
	raw, ok, err := uc.settingsRepo.Get(ctx, entity.SettingTaxRate)
	if err != nil {
		return decimal.Zero, &domain.PersistenceError{Op: "read tax_rate setting", Err: err}
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		log.Warn().Str("tax_rate", raw).Msg("billing: setting tax_rate no numérico, se usa 0")
		return decimal.Zero, nil
	}
	return rate, nil
}
