package dto

type CreateLineInput struct {
	MaterialID *string `json:"material_id"`
	Quantity   float64 `json:"quantity" binding:"required"`
	Weight     float64 `json:"weight"`
	IsInput    bool    `json:"is_input"`

	// LocationID gives a produced lot its location when the pallet holds no
	// sibling lot to borrow one from.
	LocationID *string `json:"location_id"`
}

type CreateTransactionInput struct {
	AccountID   string            `json:"account_id" binding:"required"`
	PalletID    *string           `json:"pallet_id"`
	ServiceType string            `json:"service_type" binding:"required"`
	Description string            `json:"description"`
	Lines       []CreateLineInput `json:"lines" binding:"required,min=1"`
}

type AmendLineInput struct {
	TransactionID string   `json:"-"`
	LineID        string   `json:"line_id" binding:"required"`
	NewQuantity   *float64 `json:"new_quantity"`
	NewWeight     *float64 `json:"new_weight"`
	Reason        string   `json:"reason" binding:"required"`
}

type VoidTransactionInput struct {
	TransactionID string `json:"-"`
	Reason        string `json:"reason" binding:"required"`
}
