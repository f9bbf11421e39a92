package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/jhoicas/billmaster-api/internal/application/analytics"
	"github.com/jhoicas/billmaster-api/internal/application/auth"
	"github.com/jhoicas/billmaster-api/internal/application/billing"
	"github.com/jhoicas/billmaster-api/internal/application/inventory"
	"github.com/jhoicas/billmaster-api/internal/domain/entity"
	"github.com/jhoicas/billmaster-api/internal/domain/repository"
	"github.com/jhoicas/billmaster-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/billmaster-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/billmaster-api/internal/interfaces/http"
)

// apiFixture API completa sobre el almacenamiento en memoria.
type apiFixture struct {
	app    *fiber.App
	store  *memory.Store
	dosa   int64
	admin  string
	staff  string
	client int64
}

func newAPI(t *testing.T, tweaks ...func(*apphttp.RouterDeps)) *apiFixture {
	t.Helper()
	s := memory.NewStore()
	s.SetSetting(entity.SettingTaxRate, "18")

	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)
	s.AddUser(entity.User{Username: "admin", PasswordHash: hash, Role: entity.RoleAdmin, Active: true})
	s.AddUser(entity.User{Username: "caja", PasswordHash: hash, Role: entity.RoleStaff, Active: true})
	s.AddUser(entity.User{Username: "old", PasswordHash: hash, Role: entity.RoleStaff, Active: false})

	f := &apiFixture{store: s}
	f.dosa = s.AddProduct(entity.Product{Name: "Masala Dosa", Price: decimal.NewFromInt(50), StockQuantity: 10, IsActive: true})
	f.client = s.AddCustomer(entity.Customer{Name: "Ravi", Phone: "98765"})

	reporting := analytics.NewReportingUseCase(s.Reporting(), analytics.NewClock(time.UTC, nil))
	stock := inventory.NewStockAdjuster(s.Stock())
	allocator := billing.NewNumberAllocator(s.Sequences(), s.Settings(), "INV", 3, time.UTC)
	query := billing.NewInvoiceQueryUseCase(s.Invoices(), s.Customers(), reporting)

	f.app = fiber.New()
	f.app.Use(apphttp.RequestLogger())
	deps := apphttp.RouterDeps{
		AuthUC:        auth.NewAuthUseCase(s.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}),
		CreateInvoice: billing.NewCreateInvoiceUseCase(s, allocator, stock, s.Customers(), s.Settings(), 3),
		InvoiceQuery:  query,
		Receipt:       billing.NewReceiptUseCase(query, s.Settings(), infrapdf.NewMarotoPDFGenerator(language.English)),
		Reporting:     reporting,
		StockAdjuster: stock,
		JWTSecret:     testJWTSecret,
	}
	for _, tweak := range tweaks {
		tweak(&deps)
	}
	apphttp.Router(f.app, deps)

	f.admin = f.login(t, "admin")
	f.staff = f.login(t, "caja")
	return f
}

func (f *apiFixture) login(t *testing.T, username string) string {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": username, "password": "secret123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Token string `json:"token"`
	}
	decode(t, resp, &body)
	require.NotEmpty(t, body.Token)
	return "Bearer " + body.Token
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, token)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

type errorBody struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (f *apiFixture) cart() map[string]any {
	return map[string]any{
		"customer_id": f.client,
		"items": []map[string]any{
			{"product_id": f.dosa, "quantity": 2, "unit_price": 50},
		},
		"payment_method": "card",
	}
}

// ── Auth ─────────────────────────────────────────────────────────────────────

func TestLogin(t *testing.T) {
	f := newAPI(t)

	resp := f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var e errorBody
	decode(t, resp, &e)
	assert.False(t, e.Success)

	resp = f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "old", "password": "secret123"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ── Facturas ─────────────────────────────────────────────────────────────────

func TestAuthMe(t *testing.T) {
	f := newAPI(t)

	var me struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	resp := f.do(t, http.MethodGet, "/api/auth/me", f.staff, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &me)
	assert.Equal(t, "caja", me.Username)
	assert.Equal(t, entity.RoleStaff, me.Role)

	resp = f.do(t, http.MethodGet, "/api/auth/me", "", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateInvoice_Endpoint(t *testing.T) {
	f := newAPI(t)

	resp := f.do(t, http.MethodPost, "/api/invoices", f.staff, f.cart())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		Success       bool   `json:"success"`
		InvoiceID     int64  `json:"invoice_id"`
		InvoiceNumber string `json:"invoice_number"`
	}
	decode(t, resp, &created)
	assert.True(t, created.Success)
	assert.Regexp(t, `^INV-\d{8}-0001$`, created.InvoiceNumber)

	resp = f.do(t, http.MethodGet, fmt.Sprintf("/api/invoices/%d", created.InvoiceID), f.staff, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got struct {
		Success bool `json:"success"`
		Data    struct {
			InvoiceNumber string          `json:"invoice_number"`
			CustomerName  string          `json:"customer_name"`
			Subtotal      decimal.Decimal `json:"subtotal"`
			TaxAmount     decimal.Decimal `json:"tax_amount"`
			TotalAmount   decimal.Decimal `json:"total_amount"`
			PaymentMethod string          `json:"payment_method"`
			PaymentStatus string          `json:"payment_status"`
			Items         []struct {
				ProductName string `json:"product_name"`
				Quantity    int    `json:"quantity"`
			} `json:"items"`
		} `json:"data"`
	}
	decode(t, resp, &got)
	assert.Equal(t, created.InvoiceNumber, got.Data.InvoiceNumber)
	assert.Equal(t, "Ravi", got.Data.CustomerName)
	assert.True(t, got.Data.Subtotal.Equal(decimal.NewFromInt(100)))
	assert.True(t, got.Data.TaxAmount.Equal(decimal.NewFromInt(18)))
	assert.True(t, got.Data.TotalAmount.Equal(decimal.NewFromInt(118)))
	assert.Equal(t, "card", got.Data.PaymentMethod)
	assert.Equal(t, "paid", got.Data.PaymentStatus)
	require.Len(t, got.Data.Items, 1)
	assert.Equal(t, "Masala Dosa", got.Data.Items[0].ProductName)
}

func TestCreateInvoice_RequestDeadlineSavesNothing(t *testing.T) {
	f := newAPI(t, func(d *apphttp.RouterDeps) { d.RequestTimeout = time.Nanosecond })

	resp := f.do(t, http.MethodPost, "/api/invoices", f.staff, f.cart())
	var body errorBody
	decode(t, resp, &body)

	assert.Equal(t, http.StatusRequestTimeout, resp.StatusCode)
	assert.False(t, body.Success)
	assert.Equal(t, "REQUEST_TIMEOUT", body.Code)

	rows, err := f.store.Invoices().List(context.Background(), repository.InvoiceFilter{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCreateInvoice_EmptyCart(t *testing.T) {
	f := newAPI(t)

	resp := f.do(t, http.MethodPost, "/api/invoices", f.staff, map[string]any{"items": []any{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var e errorBody
	decode(t, resp, &e)
	assert.False(t, e.Success)
	assert.Equal(t, "No items in cart", e.Message)
}

func TestCreateInvoice_Rejections(t *testing.T) {
	f := newAPI(t)

	resp := f.do(t, http.MethodPost, "/api/invoices", "", f.cart())
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/api/invoices", strings.NewReader("{not json"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(fiber.HeaderAuthorization, f.staff)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var e errorBody
	decode(t, resp, &e)
	assert.Equal(t, "INVALID_BODY", e.Code)

	cart := f.cart()
	cart["customer_id"] = 404
	resp = f.do(t, http.MethodPost, "/api/invoices", f.staff, cart)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	cart = f.cart()
	cart["payment_method"] = "barter"
	resp = f.do(t, http.MethodPost, "/api/invoices", f.staff, cart)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInvoiceLifecycle(t *testing.T) {
	f := newAPI(t)

	resp := f.do(t, http.MethodPost, "/api/invoices", f.staff, map[string]any{
		"items":          []map[string]any{{"product_id": f.dosa, "quantity": 1, "unit_price": "50.00"}},
		"payment_status": "pending",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		InvoiceID int64 `json:"invoice_id"`
	}
	decode(t, resp, &created)
	path := fmt.Sprintf("/api/invoices/%d", created.InvoiceID)

	resp = f.do(t, http.MethodGet, "/api/invoices?status=pending", f.staff, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Data []struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	decode(t, resp, &list)
	require.Len(t, list.Data, 1)
	assert.Equal(t, created.InvoiceID, list.Data[0].ID)

	resp = f.do(t, http.MethodPatch, path+"/status", f.staff, map[string]string{"payment_status": "paid"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = f.do(t, http.MethodPatch, path+"/status", f.staff, map[string]string{"payment_status": "lost"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/invoices/today-summary", f.staff, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var today struct {
		Data struct {
			TotalInvoices int64           `json:"total_invoices"`
			PaidAmount    decimal.Decimal `json:"paid_amount"`
		} `json:"data"`
	}
	decode(t, resp, &today)
	assert.Equal(t, int64(1), today.Data.TotalInvoices)
	assert.True(t, today.Data.PaidAmount.Equal(decimal.NewFromInt(59)))

	resp = f.do(t, http.MethodGet, path+"/receipt", f.staff, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "receipt_INV-")
	pdf, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	resp = f.do(t, http.MethodGet, "/api/invoices/999", f.staff, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = f.do(t, http.MethodGet, "/api/invoices/abc", f.staff, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ── Inventario ───────────────────────────────────────────────────────────────

func TestInventory_AdminOnly(t *testing.T) {
	f := newAPI(t)
	path := fmt.Sprintf("/api/inventory/%d/add", f.dosa)

	resp := f.do(t, http.MethodPost, path, f.staff, map[string]int{"quantity": 5})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.do(t, http.MethodPost, path, f.admin, map[string]int{"quantity": 5})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Data struct {
			StockQuantity int `json:"stock_quantity"`
		} `json:"data"`
	}
	decode(t, resp, &body)
	assert.Equal(t, 15, body.Data.StockQuantity)

	resp = f.do(t, http.MethodPost, fmt.Sprintf("/api/inventory/%d/explode", f.dosa), f.admin, map[string]int{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = f.do(t, http.MethodPost, "/api/inventory/999/set", f.admin, map[string]int{"quantity": 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ── Reportes ─────────────────────────────────────────────────────────────────

func TestAnalytics_Endpoints(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodPost, "/api/invoices", f.staff, f.cart())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	for _, path := range []string{
		"/api/analytics/dashboard",
		"/api/analytics/sales-chart?days=14",
		"/api/analytics/payment-methods",
		"/api/analytics/top-products?limit=3",
		"/api/analytics/low-stock",
		"/api/analytics/hourly-sales",
		"/api/analytics/recent-invoices",
		"/api/analytics/monthly?months=2",
		"/api/analytics/top-customers",
		"/api/analytics/summary?period=week",
	} {
		t.Run(path, func(t *testing.T) {
			resp := f.do(t, http.MethodGet, path, f.staff, nil)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			var body struct {
				Success bool            `json:"success"`
				Data    json.RawMessage `json:"data"`
			}
			decode(t, resp, &body)
			assert.True(t, body.Success)
			assert.NotEmpty(t, body.Data)
		})
	}

	resp = f.do(t, http.MethodGet, "/api/analytics/sales-chart?days=14", f.staff, nil)
	var chart struct {
		Data []json.RawMessage `json:"data"`
	}
	decode(t, resp, &chart)
	assert.Len(t, chart.Data, 14)

	resp = f.do(t, http.MethodGet, "/api/analytics/summary?period=decade", f.staff, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/analytics/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequestLogger_RequestID(t *testing.T) {
	f := newAPI(t)

	resp := f.do(t, http.MethodGet, "/api/analytics/dashboard", f.staff, nil)
	defer resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/dashboard", nil)
	req.Header.Set("X-Request-ID", "caja-42")
	req.Header.Set(fiber.HeaderAuthorization, f.staff)
	resp2, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, "caja-42", resp2.Header.Get("X-Request-ID"))
}
