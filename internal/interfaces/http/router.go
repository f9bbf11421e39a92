package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/timeout"

	"github.com/jhoicas/billmaster-api/internal/application/analytics"
	"github.com/jhoicas/billmaster-api/internal/application/auth"
	"github.com/jhoicas/billmaster-api/internal/application/billing"
	"github.com/jhoicas/billmaster-api/internal/application/inventory"
	"github.com/jhoicas/billmaster-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	CreateInvoice *billing.CreateInvoiceUseCase
	InvoiceQuery  *billing.InvoiceQueryUseCase
	Receipt       *billing.ReceiptUseCase
	Reporting     *analytics.ReportingUseCase
	StockAdjuster *inventory.StockAdjuster
	JWTSecret     string
	// RequestTimeout acota cada petición protegida; al vencer, el ctx cancela la transacción en curso.
	// Cero usa DefaultRequestTimeout.
	RequestTimeout time.Duration
}

// DefaultRequestTimeout tope por petición cuando RouterDeps no lo define.
const DefaultRequestTimeout = 15 * time.Second

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	// fasthttp no cancela c.Context() si el cliente se va; los handlers usan c.UserContext(),
	// que aquí lleva el deadline de la petición.
	reqTimeout := deps.RequestTimeout
	if reqTimeout <= 0 {
		reqTimeout = DefaultRequestTimeout
	}
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), timeout.NewWithContext(func(c *fiber.Ctx) error {
		return c.Next()
	}, reqTimeout))
	protected.Get("/auth/me", authHandler.Me)

	// Invoices
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.CreateInvoice, deps.InvoiceQuery, deps.Receipt)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/today-summary", invoiceHandler.TodaySummary)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Patch("/:id/status", invoiceHandler.UpdateStatus)
	invoices.Get("/:id/receipt", invoiceHandler.Receipt)

	// Analytics (solo lectura)
	an := protected.Group("/analytics")
	analyticsHandler := NewAnalyticsHandler(deps.Reporting)
	an.Get("/dashboard", analyticsHandler.Dashboard)
	an.Get("/sales-chart", analyticsHandler.SalesChart)
	an.Get("/payment-methods", analyticsHandler.PaymentMethods)
	an.Get("/top-products", analyticsHandler.TopProducts)
	an.Get("/low-stock", analyticsHandler.LowStock)
	an.Get("/hourly-sales", analyticsHandler.HourlySales)
	an.Get("/recent-invoices", analyticsHandler.RecentInvoices)
	an.Get("/monthly", analyticsHandler.Monthly)
	an.Get("/top-customers", analyticsHandler.TopCustomers)
	an.Get("/summary", analyticsHandler.Summary)

	// Inventory (admin)
	inv := protected.Group("/inventory", RequireRole(entity.RoleAdmin))
	inventoryHandler := NewInventoryHandler(deps.StockAdjuster)
	inv.Post("/:id/:op", inventoryHandler.Adjust) // op: add | remove | set
}
