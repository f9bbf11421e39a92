package dto

// StockAdjustmentRequest body para POST /api/inventory/:id/{add,remove,set}.
type StockAdjustmentRequest struct {
	Quantity int `json:"quantity"`
}

// StockLevelResponse existencia resultante del ajuste.
type StockLevelResponse struct {
	ProductID     int64 `json:"product_id"`
	StockQuantity int   `json:"stock_quantity"`
}
