package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/billmaster-api/internal/application/analytics"
	"github.com/jhoicas/billmaster-api/internal/application/dto"
)

const msgAnalyticsFailed = "Failed to load analytics"

// AnalyticsHandler maneja los endpoints de reportes (solo lectura).
type AnalyticsHandler struct {
	uc *analytics.ReportingUseCase
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(uc *analytics.ReportingUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

func ok(c *fiber.Ctx, data any, err error) error {
	if err != nil {
		return writeError(c, err, msgAnalyticsFailed)
	}
	return c.JSON(dto.DataResponse{Success: true, Data: data})
}

// Dashboard godoc
// @Summary      Resumen de hoy, ayer y mes en curso
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DataResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/analytics/dashboard [get]
func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	data, err := h.uc.Dashboard(c.UserContext(), GetCaller(c))
	return ok(c, data, err)
}

// SalesChart godoc
// @Summary      Ventas diarias de los últimos N días
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Param        days  query  int  false  "días (default 7, max 366)"
// @Success      200  {object}  dto.DataResponse
// @Router       /api/analytics/sales-chart [get]
func (h *AnalyticsHandler) SalesChart(c *fiber.Ctx) error {
	var req dto.SalesChartRequest
	if err := c.QueryParser(&req); err != nil {
		return badRequest(c, "INVALID_PARAMS", "parámetros de consulta inválidos")
	}
	data, err := h.uc.SalesSeries(c.UserContext(), GetCaller(c), req.Days)
	return ok(c, data, err)
}

// PaymentMethods GET /api/analytics/payment-methods
func (h *AnalyticsHandler) PaymentMethods(c *fiber.Ctx) error {
	data, err := h.uc.PaymentMethods(c.UserContext(), GetCaller(c))
	return ok(c, data, err)
}

// TopProducts GET /api/analytics/top-products?limit&days
func (h *AnalyticsHandler) TopProducts(c *fiber.Ctx) error {
	var req dto.TopProductsRequest
	if err := c.QueryParser(&req); err != nil {
		return badRequest(c, "INVALID_PARAMS", "parámetros de consulta inválidos")
	}
	data, err := h.uc.TopProducts(c.UserContext(), GetCaller(c), req)
	return ok(c, data, err)
}

// LowStock GET /api/analytics/low-stock?threshold
func (h *AnalyticsHandler) LowStock(c *fiber.Ctx) error {
	data, err := h.uc.LowStock(c.UserContext(), GetCaller(c), c.QueryInt("threshold", analytics.DefaultLowStockThreshold))
	return ok(c, data, err)
}

// HourlySales GET /api/analytics/hourly-sales
func (h *AnalyticsHandler) HourlySales(c *fiber.Ctx) error {
	data, err := h.uc.HourlySales(c.UserContext(), GetCaller(c))
	return ok(c, data, err)
}

// RecentInvoices GET /api/analytics/recent-invoices?limit
func (h *AnalyticsHandler) RecentInvoices(c *fiber.Ctx) error {
	data, err := h.uc.RecentInvoices(c.UserContext(), GetCaller(c), c.QueryInt("limit", 0))
	return ok(c, data, err)
}

// Monthly GET /api/analytics/monthly?months
func (h *AnalyticsHandler) Monthly(c *fiber.Ctx) error {
	data, err := h.uc.MonthlySeries(c.UserContext(), GetCaller(c), c.QueryInt("months", 0))
	return ok(c, data, err)
}

// TopCustomers GET /api/analytics/top-customers?limit
func (h *AnalyticsHandler) TopCustomers(c *fiber.Ctx) error {
	data, err := h.uc.TopCustomers(c.UserContext(), GetCaller(c), c.QueryInt("limit", 0))
	return ok(c, data, err)
}

// Summary GET /api/analytics/summary?period=today|week|month|year|all
func (h *AnalyticsHandler) Summary(c *fiber.Ctx) error {
	data, err := h.uc.Summary(c.UserContext(), GetCaller(c), c.Query("period", analytics.PeriodToday))
	return ok(c, data, err)
}
