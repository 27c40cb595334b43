package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/kurniadi/wms-vas-service/internal/auth"
	"github.com/kurniadi/wms-vas-service/internal/db"
	"github.com/kurniadi/wms-vas-service/internal/inventory"
	"github.com/kurniadi/wms-vas-service/internal/inventory/dto"
	"github.com/kurniadi/wms-vas-service/internal/model"
)

type inventoryUseCase struct {
	db     *sqlx.DB
	repo   inventory.Repository
	logger *zap.Logger
}

func NewInventoryUseCase(database *sqlx.DB, repo inventory.Repository, log *zap.Logger) inventory.UseCase {
	return &inventoryUseCase{
		db:     database,
		repo:   repo,
		logger: log,
	}
}

func (uc *inventoryUseCase) GetLot(ctx context.Context, id string) (*model.Inventory, error) {
	lot, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, model.ErrLotNotFound
	}
	return lot, nil
}

func (uc *inventoryUseCase) ListLots(ctx context.Context, f *dto.LotFilters) ([]model.Inventory, int, error) {
	return uc.repo.FindAll(ctx, f)
}

func (uc *inventoryUseCase) AdjustLot(ctx context.Context, input *dto.AdjustLotInput) (*model.Inventory, error) {
	userID, ok := auth.UserID(ctx)
	if !ok {
		return nil, model.ErrUnauthenticated
	}

	reason := model.AdjustmentReason(input.Reason)
	if !reason.Valid() {
		return nil, model.ErrInvalidReason
	}
	if input.QuantityDelta == 0 && input.WeightDelta == 0 {
		return nil, model.ErrZeroDelta
	}

	var adjusted *model.Inventory
	err := db.Transact(ctx, uc.db, func(tx *sqlx.Tx) error {
		repo := uc.repo.WithTx(tx)

		lot, err := repo.GetByID(ctx, input.InventoryID)
		if err != nil {
			return err
		}
		if lot == nil {
			return model.ErrLotNotFound
		}

		if err := lot.AdjustInventory(input.QuantityDelta, input.WeightDelta); err != nil {
			return err
		}
		if err := repo.Save(ctx, lot); err != nil {
			return err
		}

		if input.QuantityDelta != 0 {
			adj := &model.InventoryAdjustment{
				ID:            uuid.New().String(),
				InventoryID:   lot.ID,
				DeltaQuantity: input.QuantityDelta,
				Reason:        reason,
				AccountID:     lot.AccountID,
				UserID:        userID,
				CreatedAt:     time.Now(),
			}
			if err := repo.LogAdjustment(ctx, adj); err != nil {
				return err
			}
		}

		adjusted = lot
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("lot adjusted",
		zap.String("inventory_id", adjusted.ID),
		zap.Float64("quantity_delta", input.QuantityDelta),
		zap.String("reason", input.Reason),
	)
	return adjusted, nil
}

func (uc *inventoryUseCase) ListAdjustments(ctx context.Context, f *dto.AdjustmentFilters) ([]model.InventoryAdjustment, int, error) {
	return uc.repo.ListAdjustments(ctx, f)
}
