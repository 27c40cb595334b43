package inventory

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/kurniadi/wms-vas-service/internal/inventory/dto"
	"github.com/kurniadi/wms-vas-service/internal/model"
)

type Repository interface {
	// WithTx returns a copy of the repository bound to tx, so a usecase can
	// run its whole pipeline inside one unit of work.
	WithTx(tx *sqlx.Tx) Repository

	// GetByID returns nil when no lot matches.
	GetByID(ctx context.Context, id string) (*model.Inventory, error)

	// FindByPalletAndMaterial returns the pallet's lots of one material
	// ordered by descending quantity: the reversal engines consume from the
	// largest lot first.
	FindByPalletAndMaterial(ctx context.Context, palletID, materialID string) ([]model.Inventory, error)

	// FindByPalletAndMaterialFIFO returns the same lots ordered earliest
	// expiry first (lots without expiry last), the allocation order used
	// when a transaction is created.
	FindByPalletAndMaterialFIFO(ctx context.Context, palletID, materialID string) ([]model.Inventory, error)

	FindByPallet(ctx context.Context, palletID string) ([]model.Inventory, error)
	FindAll(ctx context.Context, f *dto.LotFilters) ([]model.Inventory, int, error)

	Create(ctx context.Context, lot *model.Inventory) error

	// Save persists an in-place mutation, verifying the lot's version token
	// and failing with model.ErrVersionConflict when stale.
	Save(ctx context.Context, lot *model.Inventory) error

	// Movements / Audit
	LogAdjustment(ctx context.Context, adj *model.InventoryAdjustment) error
	ListAdjustments(ctx context.Context, f *dto.AdjustmentFilters) ([]model.InventoryAdjustment, int, error)
}
