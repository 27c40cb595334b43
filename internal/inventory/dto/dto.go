package dto

type LotFilters struct {
	PalletID   string
	MaterialID string
	AccountID  string
	Status     string
	Page       int
	PageSize   int
}

type AdjustmentFilters struct {
	InventoryID string
	AccountID   string
	Page        int
	PageSize    int
}
