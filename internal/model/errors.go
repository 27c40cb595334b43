package model

import "errors"

// Domain error taxonomy. All of these are terminal for a request: the
// surrounding unit of work is rolled back and nothing is retried.
var (
	ErrTransactionNotFound = errors.New("vas transaction not found")
	ErrLineNotFound        = errors.New("vas transaction line not found")
	ErrLotNotFound         = errors.New("inventory lot not found")
	ErrMaterialNotFound    = errors.New("material not found")

	ErrAlreadyVoided = errors.New("vas transaction already voided")
	ErrEmptyReason   = errors.New("reason is required")

	// ErrInsufficientInventory means a delta could not be satisfied by the
	// lots currently on the pallet (stock was shipped or moved elsewhere).
	ErrInsufficientInventory = errors.New("insufficient inventory on pallet")

	// Lot-level invariant violations.
	ErrInsufficientQuantity = errors.New("adjustment would make lot quantity negative")
	ErrInvalidWeight        = errors.New("adjustment would make lot weight negative")

	ErrUnauthenticated  = errors.New("no authenticated user")
	ErrNegativeValue    = errors.New("quantity and weight must not be negative")
	ErrVersionConflict  = errors.New("inventory lot was modified concurrently")
	ErrZeroDelta        = errors.New("delta must be non-zero")
	ErrInvalidReason    = errors.New("unknown adjustment reason")
	ErrInvalidService   = errors.New("unknown service type")
	ErrPalletRequired   = errors.New("service type requires a pallet")
	ErrLineNotPermitted = errors.New("line kind not permitted for service type")
)
