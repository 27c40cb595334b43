package usecase

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kurniadi/wms-vas-service/internal/inventory"
	"github.com/kurniadi/wms-vas-service/internal/model"
)

// quantityEpsilon absorbs float noise when checking whether a delta has been
// fully allocated across lots.
const quantityEpsilon = 1e-9

// drainLots removes quantity/weight from candidates in the order given,
// taking weight proportionally to the quantity taken from each lot, and
// writes one correction audit record per lot touched. Fails with
// ErrInsufficientInventory when the candidates cannot cover the quantity;
// the caller's transaction rolls back any lots already drained.
func (uc *vasUseCase) drainLots(ctx context.Context, lots inventory.Repository, candidates []model.Inventory, quantity, weight float64, accountID, userID string) error {
	remaining := quantity
	now := time.Now()

	for i := range candidates {
		if remaining <= quantityEpsilon {
			break
		}
		lot := &candidates[i]

		take := math.Min(lot.Quantity, remaining)
		if take <= quantityEpsilon {
			continue
		}
		weightShare := take / quantity * weight

		if err := lot.AdjustInventory(-take, -weightShare); err != nil {
			return err
		}
		if err := lots.Save(ctx, lot); err != nil {
			return err
		}

		adj := &model.InventoryAdjustment{
			ID:            uuid.New().String(),
			InventoryID:   lot.ID,
			DeltaQuantity: -take,
			Reason:        model.AdjustmentReasonCorrection,
			AccountID:     accountID,
			UserID:        userID,
			CreatedAt:     now,
		}
		if err := lots.LogAdjustment(ctx, adj); err != nil {
			return err
		}

		remaining -= take
	}

	if remaining > quantityEpsilon {
		return model.ErrInsufficientInventory
	}
	return nil
}

// returnToPallet adds quantity/weight of a material back onto a pallet: into
// the largest existing lot of that material, or a new lot tagged batchTag
// using locationHint or a sibling lot's location. When the pallet holds no
// inventory at all and no hint is given the return is dropped with a
// warning; the first return value reports whether stock was placed.
func (uc *vasUseCase) returnToPallet(ctx context.Context, lots inventory.Repository, palletID, materialID string, quantity, weight float64, batchTag string, locationHint *string, accountID, userID string) (bool, error) {
	now := time.Now()

	candidates, err := lots.FindByPalletAndMaterial(ctx, palletID, materialID)
	if err != nil {
		return false, err
	}

	if len(candidates) > 0 {
		lot := &candidates[0]
		if err := lot.AdjustInventory(quantity, weight); err != nil {
			return false, err
		}
		if err := lots.Save(ctx, lot); err != nil {
			return false, err
		}
		return true, uc.logReturn(ctx, lots, lot.ID, quantity, accountID, userID, now)
	}

	location := ""
	if locationHint != nil {
		location = *locationHint
	}
	if location == "" {
		siblings, err := lots.FindByPallet(ctx, palletID)
		if err != nil {
			return false, err
		}
		if len(siblings) == 0 {
			uc.logger.Warn("dropping stock return, pallet has no inventory to locate it by",
				zap.String("pallet_id", palletID),
				zap.String("material_id", materialID),
				zap.Float64("quantity", quantity),
			)
			return false, nil
		}
		location = siblings[0].LocationID
	}

	lot := &model.Inventory{
		ID:           uuid.New().String(),
		MaterialID:   materialID,
		LocationID:   location,
		PalletID:     palletID,
		Quantity:     quantity,
		WeightActual: weight,
		WeightUnit:   "kg",
		BatchNumber:  batchTag,
		AccountID:    accountID,
		Status:       model.LotStatusAvailable,
		Version:      1,
		UpdatedAt:    now,
	}
	if lot.WeightActual < 0 {
		lot.WeightActual = 0
	}
	if err := lots.Create(ctx, lot); err != nil {
		return false, err
	}
	return true, uc.logReturn(ctx, lots, lot.ID, quantity, accountID, userID, now)
}

func (uc *vasUseCase) logReturn(ctx context.Context, lots inventory.Repository, lotID string, quantity float64, accountID, userID string, now time.Time) error {
	return lots.LogAdjustment(ctx, &model.InventoryAdjustment{
		ID:            uuid.New().String(),
		InventoryID:   lotID,
		DeltaQuantity: quantity,
		Reason:        model.AdjustmentReasonCorrection,
		AccountID:     accountID,
		UserID:        userID,
		CreatedAt:     now,
	})
}

// applyLineDelta re-applies an amendment's quantity/weight delta to the
// pallet's lots. A positive delta on an input line means more was consumed;
// a positive delta on an output line means more was produced. Reversal picks
// lots largest first.
func (uc *vasUseCase) applyLineDelta(ctx context.Context, lots inventory.Repository, txn *model.VASTransaction, line *model.VASTransactionLine, quantityDelta, weightDelta float64, userID string) error {
	palletID := *txn.PalletID
	materialID := *line.MaterialID

	consume := func(quantity, weight float64) error {
		candidates, err := lots.FindByPalletAndMaterial(ctx, palletID, materialID)
		if err != nil {
			return err
		}
		return uc.drainLots(ctx, lots, candidates, quantity, weight, txn.AccountID, userID)
	}

	switch {
	case line.IsInput && quantityDelta > 0:
		// Consumed more than originally recorded: take the difference.
		return consume(quantityDelta, weightDelta)

	case line.IsInput && quantityDelta < 0:
		// Consumed less: give the difference back.
		_, err := uc.returnToPallet(ctx, lots, palletID, materialID,
			-quantityDelta, -weightDelta, "RESTORED", nil, txn.AccountID, userID)
		return err

	case !line.IsInput && quantityDelta > 0:
		// Produced more than originally recorded.
		_, err := uc.returnToPallet(ctx, lots, palletID, materialID,
			quantityDelta, weightDelta, "CORRECTION", nil, txn.AccountID, userID)
		return err

	default:
		// Produced less: remove previously-produced stock.
		return consume(-quantityDelta, -weightDelta)
	}
}
