package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product producto del catálogo. El catálogo pertenece a otro módulo; aquí solo se lee
// el nombre/precio y se ajusta StockQuantity (nunca negativo).
type Product struct {
	ID            int64
	Name          string
	Price         decimal.Decimal
	StockQuantity int
	Unit          string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
