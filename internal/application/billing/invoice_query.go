package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jhoicas/billmaster-api/internal/application/dto"
	"github.com/jhoicas/billmaster-api/internal/domain"
	"github.com/jhoicas/billmaster-api/internal/domain/entity"
	"github.com/jhoicas/billmaster-api/internal/domain/repository"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// InvoiceQueryUseCase lectura de facturas y cambio de estado de pago.
type InvoiceQueryUseCase struct {
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	today        TodayTotals
	now          func() time.Time
}

// NewInvoiceQueryUseCase construye el caso de uso.
func NewInvoiceQueryUseCase(
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	today TodayTotals,
) *InvoiceQueryUseCase {
	return &InvoiceQueryUseCase{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		today:        today,
		now:          time.Now,
	}
}

// GetInvoice obtiene una factura con datos del cliente y sus líneas en orden de captura.
func (uc *InvoiceQueryUseCase) GetInvoice(ctx context.Context, caller entity.Caller, id int64) (*dto.InvoiceResponse, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if inv == nil {
		return nil, &domain.NotFoundError{Resource: "invoice", ID: id}
	}
	items, err := uc.invoiceRepo.GetLineItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get invoice items: %w", err)
	}

	resp := toInvoiceResponse(inv, items)
	if inv.CustomerID != nil {
		customer, err := uc.customerRepo.GetByID(ctx, *inv.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("get invoice customer: %w", err)
		}
		if customer != nil {
			resp.CustomerName = customer.Name
			resp.CustomerPhone = customer.Phone
			resp.CustomerAddress = customer.Address
		}
	}
	return resp, nil
}

// ListInvoices lista facturas más recientes primero, opcionalmente filtradas por estado.
func (uc *InvoiceQueryUseCase) ListInvoices(ctx context.Context, caller entity.Caller, in dto.ListInvoicesRequest) ([]dto.InvoiceSummaryResponse, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	filter := repository.InvoiceFilter{Status: entity.PaymentStatus(strings.TrimSpace(in.Status)), Limit: in.Limit}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.NewValidationError("status", "unknown payment status "+string(filter.Status))
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	rows, err := uc.invoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return toSummaryResponses(rows), nil
}

// UpdatePaymentStatus cambia el estado de pago; es la única mutación de una factura emitida.
func (uc *InvoiceQueryUseCase) UpdatePaymentStatus(ctx context.Context, caller entity.Caller, id int64, status string) error {
	if !caller.Authenticated() {
		return domain.ErrUnauthorized
	}
	st := entity.PaymentStatus(strings.TrimSpace(status))
	if !st.Valid() {
		return domain.NewValidationError("payment_status", "unknown payment status "+string(st))
	}
	found, err := uc.invoiceRepo.UpdatePaymentStatus(ctx, id, st, uc.now())
	if err != nil {
		return &domain.PersistenceError{Op: "update payment status", Err: err}
	}
	if !found {
		return &domain.NotFoundError{Resource: "invoice", ID: id}
	}
	log.Info().Int64("invoice_id", id).Str("payment_status", string(st)).Int64("user_id", caller.UserID).Msg("billing: estado de pago actualizado")
	return nil
}

// TodaySummary total facturado y cobrado hoy.
func (uc *InvoiceQueryUseCase) TodaySummary(ctx context.Context, caller entity.Caller) (*dto.TodaySummaryDTO, error) {
	totals, err := uc.today.Today(ctx, caller)
	if err != nil {
		return nil, err
	}
	return &dto.TodaySummaryDTO{
		TotalInvoices: totals.Invoices,
		PaidAmount:    totals.Paid,
		TotalAmount:   totals.Revenue,
	}, nil
}

// ── Mapeo ─────────────────────────────────────────────────────────────────────

func toInvoiceResponse(inv *entity.Invoice, items []*entity.InvoiceLineItem) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:             inv.ID,
		InvoiceNumber:  inv.InvoiceNumber,
		CustomerID:     inv.CustomerID,
		UserID:         inv.UserID,
		Subtotal:       inv.Subtotal,
		TaxRate:        inv.TaxRate,
		TaxAmount:      inv.TaxAmount,
		DiscountAmount: inv.DiscountAmount,
		TotalAmount:    inv.TotalAmount,
		PaymentMethod:  string(inv.PaymentMethod),
		PaymentStatus:  string(inv.PaymentStatus),
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
		Items:          make([]dto.InvoiceItemResponse, 0, len(items)),
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.InvoiceItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
		})
	}
	return resp
}

// toSummaryResponses convierte filas de listado en DTOs.
func toSummaryResponses(rows []*entity.InvoiceSummary) []dto.InvoiceSummaryResponse {
	out := make([]dto.InvoiceSummaryResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.InvoiceSummaryResponse{
			ID:            r.ID,
			InvoiceNumber: r.InvoiceNumber,
			CustomerID:    r.CustomerID,
			CustomerName:  r.CustomerName,
			TotalAmount:   r.TotalAmount,
			PaymentMethod: string(r.PaymentMethod),
			PaymentStatus: string(r.PaymentStatus),
			CreatedAt:     r.CreatedAt,
		})
	}
	return out
}
