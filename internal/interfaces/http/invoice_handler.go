package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/billmaster-api/internal/application/billing"
	"github.com/jhoicas/billmaster-api/internal/application/dto"
)

// Mensaje genérico de fallo de persistencia en la creación de facturas.
const msgCreateInvoiceFailed = "Failed to create invoice"

// InvoiceHandler maneja las peticiones HTTP de facturación (protegido).
type InvoiceHandler struct {
	create  *billing.CreateInvoiceUseCase
	query   *billing.InvoiceQueryUseCase
	receipt *billing.ReceiptUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(create *billing.CreateInvoiceUseCase, query *billing.InvoiceQueryUseCase, receipt *billing.ReceiptUseCase) *InvoiceHandler {
	return &InvoiceHandler{create: create, query: query, receipt: receipt}
}

// Create godoc
// @Summary      Crear factura
// @Description  Calcula totales, reserva el número y persiste factura, líneas y descuento de stock en una transacción.
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInvoiceRequest  true  "carrito"
// @Success      201   {object}  dto.CreateInvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "Invalid request body")
	}
	res, err := h.create.CreateInvoice(c.UserContext(), GetCaller(c), in)
	if err != nil {
		return writeError(c, err, msgCreateInvoiceFailed)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CreateInvoiceResponse{
		Success:       true,
		InvoiceID:     res.InvoiceID,
		InvoiceNumber: res.InvoiceNumber,
	})
}

// GetByID obtiene la factura con cliente y líneas.
// GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "VALIDATION", "id inválido")
	}
	inv, err := h.query.GetInvoice(c.UserContext(), GetCaller(c), id)
	if err != nil {
		return writeError(c, err, "Failed to load invoice")
	}
	return c.JSON(dto.DataResponse{Success: true, Data: inv})
}

// List lista facturas recientes.
// GET /api/invoices?status=&limit=
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	var in dto.ListInvoicesRequest
	if err := c.QueryParser(&in); err != nil {
		return badRequest(c, "INVALID_PARAMS", "parámetros de consulta inválidos")
	}
	rows, err := h.query.ListInvoices(c.UserContext(), GetCaller(c), in)
	if err != nil {
		return writeError(c, err, "Failed to list invoices")
	}
	return c.JSON(dto.DataResponse{Success: true, Data: rows})
}

// UpdateStatus cambia el estado de pago.
// PATCH /api/invoices/:id/status
func (h *InvoiceHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "VALIDATION", "id inválido")
	}
	var in dto.UpdatePaymentStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "Invalid request body")
	}
	if err := h.query.UpdatePaymentStatus(c.UserContext(), GetCaller(c), id, in.PaymentStatus); err != nil {
		return writeError(c, err, "Failed to update invoice")
	}
	return c.JSON(fiber.Map{"success": true, "message": "Status updated"})
}

// TodaySummary GET /api/invoices/today-summary
func (h *InvoiceHandler) TodaySummary(c *fiber.Ctx) error {
	sum, err := h.query.TodaySummary(c.UserContext(), GetCaller(c))
	if err != nil {
		return writeError(c, err, "Failed to load summary")
	}
	return c.JSON(dto.DataResponse{Success: true, Data: sum})
}

// Receipt descarga el comprobante PDF.
// GET /api/invoices/:id/receipt
func (h *InvoiceHandler) Receipt(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "VALIDATION", "id inválido")
	}
	pdfBytes, filename, err := h.receipt.DownloadReceipt(c.UserContext(), GetCaller(c), id)
	if err != nil {
		return writeError(c, err, "Failed to render receipt")
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}
