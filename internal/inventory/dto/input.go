package dto

// AdjustLotInput is a manual stock correction against one lot.
type AdjustLotInput struct {
	InventoryID   string  `json:"inventory_id" binding:"required"`
	QuantityDelta float64 `json:"quantity_delta"`
	WeightDelta   float64 `json:"weight_delta"`
	Reason        string  `json:"reason" binding:"required"`
}
