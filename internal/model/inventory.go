package model

import "time"

type LotStatus string

const (
	LotStatusAvailable        LotStatus = "available"
	LotStatusQuarantined      LotStatus = "quarantined"
	LotStatusAwaitingLabeling LotStatus = "awaiting_labeling"
)

// WeightTolerance clamps rounding noise on lot weights: a post-adjustment
// weight within (-WeightTolerance, 0) becomes exactly 0 instead of failing.
const WeightTolerance = 0.05

// Inventory is a physical lot: a quantity of one material on one pallet at
// one location. Lots are never deleted; quantity may reach zero and the row
// stays behind as history.
type Inventory struct {
	ID           string     `db:"id" json:"id"`
	MaterialID   string     `db:"material_id" json:"material_id"`
	LocationID   string     `db:"location_id" json:"location_id"`
	PalletID     string     `db:"pallet_id" json:"pallet_id"`
	Quantity     float64    `db:"quantity" json:"quantity"`
	WeightActual float64    `db:"weight_actual" json:"weight_actual"`
	WeightUnit   string     `db:"weight_unit" json:"weight_unit"`
	BatchNumber  string     `db:"batch_number" json:"batch_number"`
	ExpiryDate   *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	AccountID    string     `db:"account_id" json:"account_id"`
	Status       LotStatus  `db:"status" json:"status"`
	Version      int64      `db:"version" json:"version"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// AdjustInventory applies signed quantity/weight deltas to the lot. Negative
// deltas reduce the lot. On any error the lot is left untouched. This is the
// only mutator of physical stock; every engine expresses its effect through
// calls to this method.
func (i *Inventory) AdjustInventory(quantityDelta, weightDelta float64) error {
	newQuantity := i.Quantity + quantityDelta
	if newQuantity < 0 {
		return ErrInsufficientQuantity
	}

	newWeight := i.WeightActual + weightDelta
	if newWeight < -WeightTolerance {
		return ErrInvalidWeight
	}
	if newWeight < 0 {
		newWeight = 0
	}

	i.Quantity = newQuantity
	i.WeightActual = newWeight
	return nil
}

type AdjustmentReason string

const (
	AdjustmentReasonCount      AdjustmentReason = "count"
	AdjustmentReasonDamage     AdjustmentReason = "damage"
	AdjustmentReasonExpiry     AdjustmentReason = "expiry"
	AdjustmentReasonCorrection AdjustmentReason = "correction"
)

func (r AdjustmentReason) Valid() bool {
	switch r {
	case AdjustmentReasonCount, AdjustmentReasonDamage, AdjustmentReasonExpiry, AdjustmentReasonCorrection:
		return true
	}
	return false
}

// InventoryAdjustment is the append-only audit record written alongside every
// lot mutation. Immutable once created.
type InventoryAdjustment struct {
	ID            string           `db:"id" json:"id"`
	InventoryID   string           `db:"inventory_id" json:"inventory_id"`
	DeltaQuantity float64          `db:"delta_quantity" json:"delta_quantity"`
	Reason        AdjustmentReason `db:"reason" json:"reason"`
	AccountID     string           `db:"account_id" json:"account_id"`
	UserID        string           `db:"user_id" json:"user_id"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
}
