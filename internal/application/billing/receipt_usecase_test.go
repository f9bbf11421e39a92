package billing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billmaster-api/internal/application/billing"
	"github.com/jhoicas/billmaster-api/internal/domain"
	"github.com/jhoicas/billmaster-api/internal/domain/entity"
	"github.com/jhoicas/billmaster-api/internal/infrastructure/memory"
)

// recordingGenerator guarda el último ReceiptData recibido.
type recordingGenerator struct {
	got billing.ReceiptData
	err error
}

func (g *recordingGenerator) GenerateReceiptPDF(_ context.Context, data billing.ReceiptData) ([]byte, error) {
	g.got = data
	if g.err != nil {
		return nil, g.err
	}
	return []byte("%PDF-fake"), nil
}

func TestDownloadReceipt(t *testing.T) {
	s := memory.NewStore()
	id := seedInvoice(s, "INV-20250315-0009", nil, entity.PaymentPaid, fixedNow)
	gen := &recordingGenerator{}
	query := billing.NewInvoiceQueryUseCase(s.Invoices(), s.Customers(), todayStub{})
	uc := billing.NewReceiptUseCase(query, s.Settings(), gen)

	pdf, filename, err := uc.DownloadReceipt(context.Background(), cashier, id)
	require.NoError(t, err)

	assert.Equal(t, "%PDF-fake", string(pdf))
	assert.Equal(t, "receipt_INV-20250315-0009.pdf", filename)
	assert.Equal(t, billing.DefaultStoreName, gen.got.StoreName)
	assert.Equal(t, billing.DefaultCurrencySymbol, gen.got.CurrencySymbol)
	assert.Len(t, gen.got.Invoice.Items, 2)
}

func TestDownloadReceipt_StoreSettings(t *testing.T) {
	s := memory.NewStore()
	s.SetSetting(entity.SettingStoreName, "Annapurna Tiffins")
	s.SetSetting(entity.SettingCurrencySymbol, "$")
	id := seedInvoice(s, "INV-20250315-0001", nil, entity.PaymentPaid, fixedNow)
	gen := &recordingGenerator{}
	uc := billing.NewReceiptUseCase(billing.NewInvoiceQueryUseCase(s.Invoices(), s.Customers(), todayStub{}), s.Settings(), gen)

	_, _, err := uc.DownloadReceipt(context.Background(), cashier, id)
	require.NoError(t, err)
	assert.Equal(t, "Annapurna Tiffins", gen.got.StoreName)
	assert.Equal(t, "$", gen.got.CurrencySymbol)
}

func TestDownloadReceipt_Errors(t *testing.T) {
	s := memory.NewStore()
	id := seedInvoice(s, "INV-20250315-0001", nil, entity.PaymentPaid, fixedNow)
	query := billing.NewInvoiceQueryUseCase(s.Invoices(), s.Customers(), todayStub{})

	uc := billing.NewReceiptUseCase(query, s.Settings(), &recordingGenerator{})
	_, _, err := uc.DownloadReceipt(context.Background(), cashier, 77)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	boom := errors.New("font missing")
	uc = billing.NewReceiptUseCase(query, s.Settings(), &recordingGenerator{err: boom})
	_, _, err = uc.DownloadReceipt(context.Background(), cashier, id)
	assert.ErrorIs(t, err, boom)
}
