package billing_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billmaster-api/internal/application/billing"
	"github.com/jhoicas/billmaster-api/internal/application/dto"
	"github.com/jhoicas/billmaster-api/internal/application/inventory"
	"github.com/jhoicas/billmaster-api/internal/domain"
	"github.com/jhoicas/billmaster-api/internal/domain/entity"
	"github.com/jhoicas/billmaster-api/internal/domain/repository"
	"github.com/jhoicas/billmaster-api/internal/infrastructure/memory"
)

var (
	fixedNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	cashier  = entity.Caller{UserID: 1, Username: "cajero", Role: entity.RoleStaff}
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store   *memory.Store
	uc      *billing.CreateInvoiceUseCase
	dosa    int64
	coffee  int64
	client  int64
	runner  billing.BillingTxRunner
	seq     repository.InvoiceSequenceRepository
	attempt int
}

type option func(*fixture)

func withRunner(wrap func(*memory.Store) billing.BillingTxRunner) option {
	return func(f *fixture) { f.runner = wrap(f.store) }
}

func withSequence(seq repository.InvoiceSequenceRepository) option {
	return func(f *fixture) { f.seq = seq }
}

func newFixture(t *testing.T, opts ...option) *fixture {
	t.Helper()
	s := memory.NewStore()
	f := &fixture{store: s, runner: s, seq: s.Sequences(), attempt: 3}
	f.dosa = s.AddProduct(entity.Product{Name: "Masala Dosa", Price: dec("50.00"), StockQuantity: 20, IsActive: true})
	f.coffee = s.AddProduct(entity.Product{Name: "Filter Coffee", Price: dec("30.00"), StockQuantity: 3, IsActive: true})
	f.client = s.AddCustomer(entity.Customer{Name: "Ravi Kumar", Phone: "9876543210"})
	s.AddUser(entity.User{ID: cashier.UserID, Username: cashier.Username, Role: cashier.Role, Active: true})
	for _, o := range opts {
		o(f)
	}

	allocator := billing.NewNumberAllocator(f.seq, s.Settings(), "INV", f.attempt, time.UTC).
		WithClock(func() time.Time { return fixedNow })
	f.uc = billing.NewCreateInvoiceUseCase(f.runner, allocator, inventory.NewStockAdjuster(s.Stock()),
		s.Customers(), s.Settings(), f.attempt).
		WithClock(func() time.Time { return fixedNow })
	return f
}

func (f *fixture) stockOf(t *testing.T, id int64) int {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.StockQuantity
}

func (f *fixture) cart() dto.CreateInvoiceRequest {
	rate := dec("18")
	return dto.CreateInvoiceRequest{
		CustomerID: &f.client,
		Items: []dto.InvoiceItemRequest{
			{ProductID: f.dosa, Quantity: 2, UnitPrice: dec("50.00")},
			{ProductID: f.coffee, Quantity: 1, UnitPrice: dec("30.00")},
		},
		TaxRate:       &rate,
		PaymentMethod: "upi",
	}
}

func TestCreateInvoice_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.uc.CreateInvoice(ctx, cashier, f.cart())
	require.NoError(t, err)
	assert.Equal(t, "INV-20250315-0001", res.InvoiceNumber)

	inv, err := f.store.Invoices().GetByID(ctx, res.InvoiceID)
	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.True(t, inv.Subtotal.Equal(dec("130.00")))
	assert.True(t, inv.TaxAmount.Equal(dec("23.40")))
	assert.True(t, inv.TotalAmount.Equal(dec("153.40")))
	assert.Equal(t, entity.PaymentUPI, inv.PaymentMethod)
	assert.Equal(t, entity.PaymentPaid, inv.PaymentStatus)
	assert.Equal(t, cashier.UserID, inv.UserID)
	assert.True(t, inv.TotalAmount.Equal(inv.Subtotal.Add(inv.TaxAmount).Sub(inv.DiscountAmount)))

	items, err := f.store.Invoices().GetLineItems(ctx, res.InvoiceID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Masala Dosa", items[0].ProductName)
	assert.Equal(t, 1, items[0].LineNo)
	assert.True(t, items[0].TotalPrice.Equal(dec("100.00")))
	assert.Equal(t, "Filter Coffee", items[1].ProductName)
	assert.Equal(t, 2, items[1].LineNo)

	assert.Equal(t, 18, f.stockOf(t, f.dosa))
	assert.Equal(t, 2, f.stockOf(t, f.coffee))
}

func TestCreateInvoice_SecondInvoiceGetsNextNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.uc.CreateInvoice(ctx, cashier, f.cart())
	require.NoError(t, err)
	second, err := f.uc.CreateInvoice(ctx, cashier, f.cart())
	require.NoError(t, err)

	assert.Equal(t, "INV-20250315-0001", first.InvoiceNumber)
	assert.Equal(t, "INV-20250315-0002", second.InvoiceNumber)
}

func TestCreateInvoice_SnapshotSurvivesCatalogChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.uc.CreateInvoice(ctx, cashier, f.cart())
	require.NoError(t, err)

	// Cambio de precio y borrado posteriores no alteran la factura.
	f.store.AddProduct(entity.Product{ID: f.dosa, Name: "Masala Dosa XL", Price: dec("80.00"), StockQuantity: 5, IsActive: true})
	f.store.DeleteProduct(f.coffee)

	items, err := f.store.Invoices().GetLineItems(ctx, res.InvoiceID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Masala Dosa", items[0].ProductName)
	assert.True(t, items[0].UnitPrice.Equal(dec("50.00")))
	assert.Nil(t, items[1].ProductID)
	assert.Equal(t, "Filter Coffee", items[1].ProductName)
}

func TestCreateInvoice_EmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.CreateInvoice(context.Background(), cashier, dto.CreateInvoiceRequest{})

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "No items in cart", vErr.Message)
	list, _ := f.store.Invoices().List(context.Background(), repository.InvoiceFilter{})
	assert.Empty(t, list)
}

func TestCreateInvoice_RequiresCaller(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.CreateInvoice(context.Background(), entity.Caller{}, f.cart())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCreateInvoice_ValidationErrors(t *testing.T) {
	f := newFixture(t)
	neg := dec("-1")
	tests := []struct {
		name   string
		mutate func(*dto.CreateInvoiceRequest)
	}{
		{"zero quantity", func(r *dto.CreateInvoiceRequest) { r.Items[0].Quantity = 0 }},
		{"negative price", func(r *dto.CreateInvoiceRequest) { r.Items[1].UnitPrice = dec("-5") }},
		{"negative tax", func(r *dto.CreateInvoiceRequest) { r.TaxRate = &neg }},
		{"negative discount", func(r *dto.CreateInvoiceRequest) { r.DiscountAmount = neg }},
		{"discount above total", func(r *dto.CreateInvoiceRequest) { r.DiscountAmount = dec("1000") }},
		{"unknown payment method", func(r *dto.CreateInvoiceRequest) { r.PaymentMethod = "bitcoin" }},
		{"unknown payment status", func(r *dto.CreateInvoiceRequest) { r.PaymentStatus = "maybe" }},
		{"bad product id", func(r *dto.CreateInvoiceRequest) { r.Items[0].ProductID = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.cart()
			tt.mutate(&req)
			_, err := f.uc.CreateInvoice(context.Background(), cashier, req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	// Nada se escribió ni se reservó.
	assert.Equal(t, 20, f.stockOf(t, f.dosa))
	n, err := f.store.Sequences().Next(context.Background(), "20250315")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCreateInvoice_UnknownCustomer(t *testing.T) {
	f := newFixture(t)
	req := f.cart()
	missing := int64(404)
	req.CustomerID = &missing

	_, err := f.uc.CreateInvoice(context.Background(), cashier, req)

	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "customer", nf.Resource)
}

func TestCreateInvoice_TaxRateStoredAsComputed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rate := dec("12.345")
	req := dto.CreateInvoiceRequest{
		Items:   []dto.InvoiceItemRequest{{ProductID: f.dosa, Quantity: 20, UnitPrice: dec("50.00")}},
		TaxRate: &rate,
	}

	res, err := f.uc.CreateInvoice(ctx, cashier, req)
	require.NoError(t, err)

	inv, err := f.store.Invoices().GetByID(ctx, res.InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, "12.35", inv.TaxRate.StringFixed(2))
	assert.True(t, inv.TaxRate.Equal(dec("12.35")))
	assert.Equal(t, "123.50", inv.TaxAmount.StringFixed(2))
	// El impuesto guardado se reconstruye desde el subtotal y la tasa guardados.
	recomputed := inv.Subtotal.Mul(inv.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
	assert.True(t, inv.TaxAmount.Equal(recomputed))
}

func TestCreateInvoice_OutOfRangeValuesAreValidationErrors(t *testing.T) {
	f := newFixture(t)
	huge := dec("1000")

	req := f.cart()
	req.TaxRate = &huge
	_, err := f.uc.CreateInvoice(context.Background(), cashier, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	req = f.cart()
	req.Items[0].Quantity = math.MaxInt32 + 1
	_, err = f.uc.CreateInvoice(context.Background(), cashier, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Equal(t, 20, f.stockOf(t, f.dosa), "nada se escribe si la validación falla")
}

func TestCreateInvoice_WalkInWithoutCustomer(t *testing.T) {
	f := newFixture(t)
	req := f.cart()
	req.CustomerID = nil

	res, err := f.uc.CreateInvoice(context.Background(), cashier, req)
	require.NoError(t, err)

	inv, err := f.store.Invoices().GetByID(context.Background(), res.InvoiceID)
	require.NoError(t, err)
	assert.Nil(t, inv.CustomerID)
}

func TestCreateInvoice_UnknownProductKeepsSale(t *testing.T) {
	f := newFixture(t)
	req := dto.CreateInvoiceRequest{Items: []dto.InvoiceItemRequest{{ProductID: 999, Quantity: 1, UnitPrice: dec("10")}}}

	res, err := f.uc.CreateInvoice(context.Background(), cashier, req)
	require.NoError(t, err)

	items, err := f.store.Invoices().GetLineItems(context.Background(), res.InvoiceID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, entity.UnknownProductName, items[0].ProductName)
	assert.Nil(t, items[0].ProductID, "la línea no puede apuntar a un producto inexistente")
}

func TestCreateInvoice_MixedCartWithDeletedProduct(t *testing.T) {
	f := newFixture(t)
	f.store.DeleteProduct(f.coffee)

	res, err := f.uc.CreateInvoice(context.Background(), cashier, f.cart())
	require.NoError(t, err)

	items, err := f.store.Invoices().GetLineItems(context.Background(), res.InvoiceID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.NotNil(t, items[0].ProductID)
	assert.Equal(t, f.dosa, *items[0].ProductID)
	assert.Equal(t, entity.UnknownProductName, items[1].ProductName)
	assert.Nil(t, items[1].ProductID)
	assert.Equal(t, 18, f.stockOf(t, f.dosa))
}

func TestCreateInvoice_StockClampsAtZero(t *testing.T) {
	f := newFixture(t)
	req := dto.CreateInvoiceRequest{Items: []dto.InvoiceItemRequest{{ProductID: f.coffee, Quantity: 5, UnitPrice: dec("30")}}}

	_, err := f.uc.CreateInvoice(context.Background(), cashier, req)
	require.NoError(t, err)
	assert.Equal(t, 0, f.stockOf(t, f.coffee))
}

func TestCreateInvoice_TaxRateFromSettings(t *testing.T) {
	f := newFixture(t)
	f.store.SetSetting(entity.SettingTaxRate, "5")
	req := f.cart()
	req.TaxRate = nil

	res, err := f.uc.CreateInvoice(context.Background(), cashier, req)
	require.NoError(t, err)

	inv, err := f.store.Invoices().GetByID(context.Background(), res.InvoiceID)
	require.NoError(t, err)
	assert.True(t, inv.TaxRate.Equal(dec("5")))
	assert.True(t, inv.TaxAmount.Equal(dec("6.50")))
	assert.True(t, inv.TotalAmount.Equal(dec("136.50")))
}

func TestCreateInvoice_PrefixFromSettings(t *testing.T) {
	f := newFixture(t)
	f.store.SetSetting(entity.SettingInvoicePrefix, "POS")

	res, err := f.uc.CreateInvoice(context.Background(), cashier, f.cart())
	require.NoError(t, err)
	assert.Equal(t, "POS-20250315-0001", res.InvoiceNumber)
}

// ── Rollback ─────────────────────────────────────────────────────────────────

// failingRunner envuelve el Store y hace fallar la inserción de una línea concreta.
type failingRunner struct {
	store      *memory.Store
	failOnLine int
}

func (r failingRunner) RunBilling(ctx context.Context, fn func(repository.InvoiceRepository, repository.ProductRepository, repository.StockRepository) error) error {
	return r.store.RunBilling(ctx, func(inv repository.InvoiceRepository, prod repository.ProductRepository, stock repository.StockRepository) error {
		return fn(&failingInvoiceRepo{InvoiceRepository: inv, failOnLine: r.failOnLine}, prod, stock)
	})
}

type failingInvoiceRepo struct {
	repository.InvoiceRepository
	failOnLine int
}

func (f *failingInvoiceRepo) CreateLineItem(ctx context.Context, item *entity.InvoiceLineItem) error {
	if item.LineNo == f.failOnLine {
		return errors.New("disk full")
	}
	return f.InvoiceRepository.CreateLineItem(ctx, item)
}

func TestCreateInvoice_RollbackOnLineItemFailure(t *testing.T) {
	f := newFixture(t, withRunner(func(s *memory.Store) billing.BillingTxRunner {
		return failingRunner{store: s, failOnLine: 2}
	}))
	ctx := context.Background()

	_, err := f.uc.CreateInvoice(ctx, cashier, f.cart())

	var pErr *domain.PersistenceError
	require.ErrorAs(t, err, &pErr)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Contains(t, pErr.Op, "line item 2")

	// Ni cabecera, ni líneas, ni descuento de stock de la primera línea.
	list, err := f.store.Invoices().List(ctx, repository.InvoiceFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 20, f.stockOf(t, f.dosa))
	assert.Equal(t, 3, f.stockOf(t, f.coffee))
}

// ── Consecutivo ──────────────────────────────────────────────────────────────

func TestCreateInvoice_ConcurrentCreatesGetDistinctNumbers(t *testing.T) {
	f := newFixture(t)
	const n = 25

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = make(map[string]bool, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := dto.CreateInvoiceRequest{Items: []dto.InvoiceItemRequest{{ProductID: f.dosa, Quantity: 1, UnitPrice: dec("50")}}}
			res, err := f.uc.CreateInvoice(context.Background(), cashier, req)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			numbers[res.InvoiceNumber] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, numbers, n)
	assert.Equal(t, 0, f.stockOf(t, f.dosa))
}

func TestCreateInvoice_RetriesOnDuplicateNumber(t *testing.T) {
	f := newFixture(t)
	// Número ya usado (por ejemplo, contador reiniciado tras perder Redis).
	f.store.AddInvoice(entity.Invoice{
		InvoiceNumber: "INV-20250315-0001", UserID: cashier.UserID,
		Subtotal: dec("1"), TotalAmount: dec("1"),
		PaymentMethod: entity.PaymentCash, PaymentStatus: entity.PaymentPaid,
		CreatedAt: fixedNow, UpdatedAt: fixedNow,
	}, nil)

	res, err := f.uc.CreateInvoice(context.Background(), cashier, f.cart())
	require.NoError(t, err)
	assert.Equal(t, "INV-20250315-0002", res.InvoiceNumber)
}

// stuckSequence siempre devuelve el mismo valor.
type stuckSequence struct{ n int64 }

func (s stuckSequence) Next(context.Context, string) (int64, error) { return s.n, nil }

func TestCreateInvoice_AllocationErrorAfterRepeatedDuplicates(t *testing.T) {
	f := newFixture(t, withSequence(stuckSequence{n: 1}))
	ctx := context.Background()

	_, err := f.uc.CreateInvoice(ctx, cashier, f.cart())
	require.NoError(t, err)

	_, err = f.uc.CreateInvoice(ctx, cashier, f.cart())
	var aErr *domain.AllocationError
	require.ErrorAs(t, err, &aErr)
	assert.ErrorIs(t, err, domain.ErrAllocation)
	assert.Equal(t, 3, aErr.Attempts)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	// Solo la primera factura descontó stock.
	assert.Equal(t, 18, f.stockOf(t, f.dosa))
}

func TestCreateInvoice_CounterUnavailable(t *testing.T) {
	f := newFixture(t, withSequence(brokenSequence{}))

	_, err := f.uc.CreateInvoice(context.Background(), cashier, f.cart())
	assert.ErrorIs(t, err, domain.ErrAllocation)
}

type brokenSequence struct{}

func (brokenSequence) Next(context.Context, string) (int64, error) {
	return 0, fmt.Errorf("connection refused")
}
