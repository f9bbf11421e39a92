package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/billmaster-api/internal/domain/entity"
	"github.com/jhoicas/billmaster-api/internal/domain/repository"
)

// Valores por defecto del comprobante cuando la tienda no los configuró.
const (
	DefaultStoreName      = "BillMaster"
	DefaultCurrencySymbol = "₹"
)

// ReceiptUseCase genera el comprobante PDF de una factura emitida.
type ReceiptUseCase struct {
	query        *InvoiceQueryUseCase
	settingsRepo repository.SettingsRepository
	generator    ReceiptGenerator
}

// NewReceiptUseCase construye el caso de uso inyectando todas sus dependencias.
func NewReceiptUseCase(query *InvoiceQueryUseCase, settingsRepo repository.SettingsRepository, generator ReceiptGenerator) *ReceiptUseCase {
	return &ReceiptUseCase{query: query, settingsRepo: settingsRepo, generator: generator}
}

// DownloadReceipt devuelve (pdfBytes, filename, nil) o el error de GetInvoice
// (*domain.NotFoundError si la factura no existe).
func (uc *ReceiptUseCase) DownloadReceipt(ctx context.Context, caller entity.Caller, invoiceID int64) ([]byte, string, error) {
	// ── 1. Factura completa ───────────────────────────────────────────────────
	inv, err := uc.query.GetInvoice(ctx, caller, invoiceID)
	if err != nil {
		return nil, "", err
	}

	// ── 2. Datos de la tienda ─────────────────────────────────────────────────
	settings, err := uc.settingsRepo.GetAll(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("receipt: leer settings: %w", err)
	}
	data := ReceiptData{
		Invoice:        inv,
		StoreName:      nonEmpty(settings[entity.SettingStoreName], DefaultStoreName),
		CurrencySymbol: nonEmpty(settings[entity.SettingCurrencySymbol], DefaultCurrencySymbol),
	}

	// ── 3. PDF ────────────────────────────────────────────────────────────────
	pdfBytes, err := uc.generator.GenerateReceiptPDF(ctx, data)
	if err != nil {
		return nil, "", fmt.Errorf("receipt: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("receipt_%s.pdf", inv.InvoiceNumber), nil
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
