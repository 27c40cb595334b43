package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type TransactionStatus string

const (
	TransactionStatusPlanned   TransactionStatus = "planned"
	TransactionStatusCompleted TransactionStatus = "completed"
)

// VASTransaction records one value-added service performed against an
// account's goods, with the material movements it caused as input/output
// lines. Line order is preserved for the audit trail.
type VASTransaction struct {
	ID             string               `db:"id" json:"id"`
	AccountID      string               `db:"account_id" json:"account_id"`
	PalletID       *string              `db:"pallet_id" json:"pallet_id,omitempty"`
	ServiceType    ServiceType          `db:"service_type" json:"service_type"`
	UserID         string               `db:"user_id" json:"user_id"`
	OccurredAt     time.Time            `db:"occurred_at" json:"occurred_at"`
	Description    string               `db:"description" json:"description"`
	Status         TransactionStatus    `db:"status" json:"status"`
	IsVoided       bool                 `db:"is_voided" json:"is_voided"`
	VoidedAt       *time.Time           `db:"voided_at" json:"voided_at,omitempty"`
	VoidedByUserID *string              `db:"voided_by_user_id" json:"voided_by_user_id,omitempty"`
	VoidReason     *string              `db:"void_reason" json:"void_reason,omitempty"`
	Lines          []VASTransactionLine `db:"-" json:"lines"`
}

// Complete moves the transaction to completed. Idempotent.
func (t *VASTransaction) Complete() {
	t.Status = TransactionStatusCompleted
}

// MarkVoided flips the one-way voided flag. A second call fails with
// ErrAlreadyVoided; the reason must be non-empty.
func (t *VASTransaction) MarkVoided(userID, reason string, at time.Time) error {
	if t.IsVoided {
		return ErrAlreadyVoided
	}
	if strings.TrimSpace(reason) == "" {
		return ErrEmptyReason
	}
	t.IsVoided = true
	t.VoidedAt = &at
	t.VoidedByUserID = &userID
	t.VoidReason = &reason
	return nil
}

func (t *VASTransaction) Line(lineID string) *VASTransactionLine {
	for i := range t.Lines {
		if t.Lines[i].ID == lineID {
			return &t.Lines[i]
		}
	}
	return nil
}

type LineKind string

const (
	// LineKindMaterial is a physical material consumed or produced.
	LineKindMaterial LineKind = "material"
	// LineKindLabor is a non-material service line; quantity is hours or
	// units of service and never touches inventory.
	LineKindLabor LineKind = "labor"
)

// VASTransactionLine is one material movement (or labor charge) within a
// transaction. IsInput marks consumed material, otherwise produced.
type VASTransactionLine struct {
	ID            string  `db:"id" json:"id"`
	TransactionID string  `db:"transaction_id" json:"transaction_id"`
	LineNo        int     `db:"line_no" json:"line_no"`
	MaterialID    *string `db:"material_id" json:"material_id,omitempty"`
	Quantity      float64 `db:"quantity" json:"quantity"`
	Weight        float64 `db:"weight" json:"weight"`
	IsInput       bool    `db:"is_input" json:"is_input"`

	// OriginalQuantity/OriginalWeight capture the values present at the
	// first amendment and are never overwritten afterwards.
	OriginalQuantity *float64   `db:"original_quantity" json:"original_quantity,omitempty"`
	OriginalWeight   *float64   `db:"original_weight" json:"original_weight,omitempty"`
	IsAmended        bool       `db:"is_amended" json:"is_amended"`
	AmendedAt        *time.Time `db:"amended_at" json:"amended_at,omitempty"`
}

func (l *VASTransactionLine) Kind() LineKind {
	if l.MaterialID == nil || *l.MaterialID == "" {
		return LineKindLabor
	}
	return LineKindMaterial
}

func (l *VASTransactionLine) markAmended(at time.Time) {
	if l.OriginalQuantity == nil {
		oq := l.Quantity
		ow := l.Weight
		l.OriginalQuantity = &oq
		l.OriginalWeight = &ow
	}
	l.IsAmended = true
	l.AmendedAt = &at
}

func (l *VASTransactionLine) AmendQuantity(newQuantity float64, at time.Time) {
	l.markAmended(at)
	l.Quantity = newQuantity
}

func (l *VASTransactionLine) AmendWeight(newWeight float64, at time.Time) {
	l.markAmended(at)
	l.Weight = newWeight
}

func (l *VASTransactionLine) AmendQuantityAndWeight(newQuantity, newWeight float64, at time.Time) {
	l.markAmended(at)
	l.Quantity = newQuantity
	l.Weight = newWeight
}

type AmendmentType string

const (
	AmendmentTypeLine AmendmentType = "line_amendment"
	AmendmentTypeVoid AmendmentType = "transaction_void"
)

// LineAmendmentDetails records the before/after values of one amended line.
type LineAmendmentDetails struct {
	LineID         string  `json:"line_id"`
	MaterialID     *string `json:"material_id,omitempty"`
	BeforeQuantity float64 `json:"before_quantity"`
	BeforeWeight   float64 `json:"before_weight"`
	AfterQuantity  float64 `json:"after_quantity"`
	AfterWeight    float64 `json:"after_weight"`
}

// VoidLineDetail summarizes how one line was reversed by a void. Reversed is
// false for labor lines and for material lines whose transaction carried no
// pallet (their inventory effect cannot be located).
type VoidLineDetail struct {
	LineID     string  `json:"line_id"`
	MaterialID *string `json:"material_id,omitempty"`
	IsInput    bool    `json:"is_input"`
	Quantity   float64 `json:"quantity"`
	Weight     float64 `json:"weight"`
	Reversed   bool    `json:"reversed"`
}

type VoidDetails struct {
	Lines []VoidLineDetail `json:"lines"`
}

// AmendmentDetails is a closed sum over the amendment kinds: exactly one of
// Line or Void is set, matching the record's AmendmentType.
type AmendmentDetails struct {
	Line *LineAmendmentDetails `json:"line,omitempty"`
	Void *VoidDetails          `json:"void,omitempty"`
}

func (d AmendmentDetails) Value() (driver.Value, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (d *AmendmentDetails) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = AmendmentDetails{}
		return nil
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("unsupported amendment details type %T", src)
	}
}

// VASTransactionAmendment is the append-only audit record emitted by the
// amendment and void engines. Immutable once created.
type VASTransactionAmendment struct {
	ID                    string           `db:"id" json:"id"`
	OriginalTransactionID string           `db:"original_transaction_id" json:"original_transaction_id"`
	UserID                string           `db:"user_id" json:"user_id"`
	Reason                string           `db:"reason" json:"reason"`
	AmendmentType         AmendmentType    `db:"amendment_type" json:"amendment_type"`
	Details               AmendmentDetails `db:"details" json:"details"`
	CreatedAt             time.Time        `db:"created_at" json:"created_at"`
}
