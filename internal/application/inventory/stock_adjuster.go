package inventory

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/jhoicas/billmaster-api/internal/application/dto"
	"github.com/jhoicas/billmaster-api/internal/domain"
	domainbilling "github.com/jhoicas/billmaster-api/internal/domain/billing"
	"github.com/jhoicas/billmaster-api/internal/domain/entity"
	"github.com/jhoicas/billmaster-api/internal/domain/repository"
)

// Operaciones de ajuste manual de existencias.
const (
	OpAdd    = "add"
	OpRemove = "remove"
	OpSet    = "set"
)

// StockAdjuster ajusta products.stock_quantity. Cada llamada es una única sentencia atómica;
// el decremento nunca deja la existencia por debajo de cero.
type StockAdjuster struct {
	stockRepo repository.StockRepository
}

// NewStockAdjuster construye el ajustador. stockRepo es el repo fuera de transacción
// usado por los ajustes manuales; la facturación pasa el suyo en DecrementInTx.
func NewStockAdjuster(stockRepo repository.StockRepository) *StockAdjuster {
	return &StockAdjuster{stockRepo: stockRepo}
}

// DecrementInTx descuenta quantity usando el repo de la transacción del caller.
// Si el producto ya no existe la venta continúa: la línea conserva su foto y no hay stock que mover.
func (a *StockAdjuster) DecrementInTx(ctx context.Context, stockRepo repository.StockRepository, productID int64, quantity int) error {
	if quantity <= 0 {
		return domain.NewValidationError("quantity", "must be a positive integer")
	}
	left, err := stockRepo.Decrement(ctx, productID, quantity)
	if errors.Is(err, domain.ErrNotFound) {
		log.Warn().Int64("product_id", productID).Msg("inventory: producto inexistente al descontar stock de la venta")
		return nil
	}
	if err != nil {
		return err
	}
	if left == 0 {
		log.Debug().Int64("product_id", productID).Msg("inventory: existencia agotada")
	}
	return nil
}

// Adjust aplica add|remove|set sobre un producto. Solo admin.
func (a *StockAdjuster) Adjust(ctx context.Context, caller entity.Caller, productID int64, op string, in dto.StockAdjustmentRequest) (*dto.StockLevelResponse, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	if !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if productID <= 0 {
		return nil, domain.NewValidationError("product_id", "must be a positive id")
	}
	if in.Quantity > domainbilling.MaxQuantity {
		return nil, domain.NewValidationError("quantity", "too large")
	}

	var (
		left int
		err  error
	)
	switch op {
	case OpAdd:
		if in.Quantity <= 0 {
			return nil, domain.NewValidationError("quantity", "must be a positive integer")
		}
		left, err = a.stockRepo.Add(ctx, productID, in.Quantity)
	case OpRemove:
		if in.Quantity <= 0 {
			return nil, domain.NewValidationError("quantity", "must be a positive integer")
		}
		left, err = a.stockRepo.Decrement(ctx, productID, in.Quantity)
	case OpSet:
		if in.Quantity < 0 {
			return nil, domain.NewValidationError("quantity", "must not be negative")
		}
		left, err = a.stockRepo.Set(ctx, productID, in.Quantity)
	default:
		return nil, domain.NewValidationError("operation", "unknown stock operation "+op)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.NotFoundError{Resource: "product", ID: productID}
	}
	if err != nil {
		return nil, &domain.PersistenceError{Op: "stock " + op, Err: err}
	}

	log.Info().Int64("product_id", productID).Str("op", op).Int("quantity", in.Quantity).Int("stock", left).
		Int64("user_id", caller.UserID).Msg("inventory: existencia ajustada")
	return &dto.StockLevelResponse{ProductID: productID, StockQuantity: left}, nil
}
