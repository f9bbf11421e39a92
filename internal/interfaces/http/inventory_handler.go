package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/billmaster-api/internal/application/dto"
	"github.com/jhoicas/billmaster-api/internal/application/inventory"
)

// InventoryHandler ajustes manuales de existencias (solo admin).
type InventoryHandler struct {
	uc *inventory.StockAdjuster
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.StockAdjuster) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// Adjust godoc
// @Summary      Ajustar existencia de un producto
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                         true  "product id"
// @Param        op    path  string                      true  "add | remove | set"
// @Param        body  body  dto.StockAdjustmentRequest  true  "cantidad"
// @Success      200   {object}  dto.DataResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/{id}/{op} [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "VALIDATION", "id inválido")
	}
	var in dto.StockAdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "Invalid request body")
	}
	res, err := h.uc.Adjust(c.UserContext(), GetCaller(c), id, c.Params("op"), in)
	if err != nil {
		return writeError(c, err, "Failed to adjust stock")
	}
	return c.JSON(dto.DataResponse{Success: true, Data: res})
}
