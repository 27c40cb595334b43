package inventory

import (
	"context"

	"github.com/kurniadi/wms-vas-service/internal/inventory/dto"
	"github.com/kurniadi/wms-vas-service/internal/model"
)

type UseCase interface {
	GetLot(ctx context.Context, id string) (*model.Inventory, error)
	ListLots(ctx context.Context, f *dto.LotFilters) ([]model.Inventory, int, error)

	// AdjustLot applies a manual correction (count, damage, expiry,
	// correction) to one lot and writes the audit record atomically.
	AdjustLot(ctx context.Context, input *dto.AdjustLotInput) (*model.Inventory, error)

	ListAdjustments(ctx context.Context, f *dto.AdjustmentFilters) ([]model.InventoryAdjustment, int, error)
}
