package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/kurniadi/wms-vas-service/internal/auth"
	"github.com/kurniadi/wms-vas-service/internal/db"
	"github.com/kurniadi/wms-vas-service/internal/inventory"
	invrepo "github.com/kurniadi/wms-vas-service/internal/inventory/repository"
	matrepo "github.com/kurniadi/wms-vas-service/internal/material/repository"
	"github.com/kurniadi/wms-vas-service/internal/model"
	"github.com/kurniadi/wms-vas-service/internal/vas"
	"github.com/kurniadi/wms-vas-service/internal/vas/dto"
	vasrepo "github.com/kurniadi/wms-vas-service/internal/vas/repository"
)

type fixture struct {
	db   *sqlx.DB
	uc   vas.UseCase
	lots inventory.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	database := db.NewTestDB(t)
	lots := invrepo.NewSQLRepository(database)
	materials := matrepo.NewSQLRepository(database)
	transactions := vasrepo.NewSQLRepository(database)

	uc := NewVASUseCase(database, transactions, lots, materials, nil, zap.NewNop())
	return &fixture{db: database, uc: uc, lots: lots}
}

func (f *fixture) seedMaterial(t *testing.T, id string) {
	t.Helper()

	now := time.Now()
	materials := matrepo.NewSQLRepository(f.db)
	err := materials.Create(context.Background(), &model.Material{
		BaseModel:     model.BaseModel{ID: id, CreatedAt: now, UpdatedAt: now},
		SKU:           "SKU-" + id,
		Name:          "Material " + id,
		UnitOfMeasure: "kg",
		IsActive:      true,
	})
	if err != nil {
		t.Fatalf("seeding material %s: %v", id, err)
	}
}

func (f *fixture) seedLot(t *testing.T, palletID, materialID string, quantity, weight float64, expiry *time.Time) *model.Inventory {
	t.Helper()

	lot := &model.Inventory{
		ID:           uuid.NewString(),
		MaterialID:   materialID,
		LocationID:   "A-01-01",
		PalletID:     palletID,
		Quantity:     quantity,
		WeightActual: weight,
		WeightUnit:   "kg",
		BatchNumber:  "B-100",
		ExpiryDate:   expiry,
		AccountID:    "acct-1",
		Status:       model.LotStatusAvailable,
	}
	if err := f.lots.Create(context.Background(), lot); err != nil {
		t.Fatalf("seeding lot: %v", err)
	}
	return lot
}

func (f *fixture) lot(t *testing.T, id string) *model.Inventory {
	t.Helper()

	lot, err := f.lots.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("reading lot: %v", err)
	}
	if lot == nil {
		t.Fatalf("lot %s not found", id)
	}
	return lot
}

func authed(userID string) context.Context {
	return auth.WithUserID(context.Background(), userID)
}

func strptr(s string) *string   { return &s }
func f64ptr(v float64) *float64 { return &v }

func matLine(materialID string, quantity, weight float64, isInput bool) dto.CreateLineInput {
	return dto.CreateLineInput{MaterialID: &materialID, Quantity: quantity, Weight: weight, IsInput: isInput}
}

func TestCreateTransactionConsumesEarliestExpiryFirst(t *testing.T) {
	f := newFixture(t)
	f.seedMaterial(t, "mat-1")
	ctx := authed("user-1")

	soon := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	later := time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)
	expiresSoon := f.seedLot(t, "plt-1", "mat-1", 10, 10, &soon)
	expiresLater := f.seedLot(t, "plt-1", "mat-1", 50, 50, &later)

	txn, err := f.uc.CreateTransaction(ctx, &dto.CreateTransactionInput{
		AccountID:   "acct-1",
		PalletID:    strptr("plt-1"),
		ServiceType: "repack",
		Lines:       []dto.CreateLineInput{matLine("mat-1", 25, 25, true)},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if txn.Status != model.TransactionStatusPlanned {
		t.Errorf("expected planned status, got %q", txn.Status)
	}

	// The soonest-expiring lot is drained completely, the rest comes from
	// the later one.
	if got := f.lot(t, expiresSoon.ID); got.Quantity != 0 {
		t.Errorf("expected soonest lot drained, got %v", got.Quantity)
	}
	if got := f.lot(t, expiresLater.ID); got.Quantity != 35 {
		t.Errorf("expected 35 left in later lot, got %v", got.Quantity)
	}
}

func TestCreateTransactionOutputAddsToExistingLot(t *testing.T) {
	f := newFixture(t)
	f.seedMaterial(t, "mat-1")
	ctx := authed("user-1")

	lot := f.seedLot(t, "plt-1", "mat-1", 10, 10, nil)

	_, err := f.uc.CreateTransaction(ctx, &dto.CreateTransactionInput{
		AccountID:   "acct-1",
		PalletID:    strptr("plt-1"),
		ServiceType: "kitting",
		Lines:       []dto.CreateLineInput{matLine("mat-1", 5, 5, false)},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	if got := f.lot(t, lot.ID); got.Quantity != 15 || got.WeightActual != 15 {
		t.Errorf("expected 15/15 after output, got %v/%v", got.Quantity, got.WeightActual)
	}
}

func TestCreateTransactionOutputCreatesLotAtSiblingLocation(t *testing.T) {
	f := newFixture(t)
	f.seedMaterial(t, "mat-1")
	f.seedMaterial(t, "mat-2")
	ctx := authed("user-1")

	f.seedLot(t, "plt-1", "mat-1", 10, 10, nil)

	_, err := f.uc.CreateTransaction(ctx, &dto.CreateTransactionInput{
		AccountID:   "acct-1",
		PalletID:    strptr("plt-1"),
		ServiceType: "repack",
		Lines:       []dto.CreateLineInput{matLine("mat-2", 5, 5, false)},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	created, err := f.lots.FindByPalletAndMaterial(context.Background(), "plt-1", "mat-2")
	if err != nil {
		t.Fatalf("FindByPalletAndMaterial: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected 1 new lot, got %d", len(created))
	}
	if created[0].LocationID != "A-01-01" {
		t.Errorf("expected sibling's location, got %q", created[0].LocationID)
	}
	if created[0].Quantity != 5 {
		t.Errorf("expected quantity 5, got %v", created[0].Quantity)
	}
}

func TestCreateTransactionOutputDroppedOnEmptyPallet(t *testing.T) {
	f := newFixture(t)
	f.seedMaterial(t, "mat-1")
	ctx := authed("user-1")

	// No lots and no location hint: there is nowhere to place the output,
	// so the transaction records it but no stock appears.
	txn, err := f.uc.CreateTransaction(ctx, &dto.CreateTransactionInput{
		AccountID:   "acct-1",
		PalletID:    strptr("plt-empty"),
		ServiceType: "repack",
		Lines:       []dto.CreateLineInput{matLine("mat-1", 5, 5, false)},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if txn == nil {
		t.Fatal("expected transaction")
	}

	lots, _ := f.lots.FindByPallet(context.Background(), "plt-empty")
	if len(lots) != 0 {
		t.Errorf("expected no lots on empty pallet, got %d", len(lots))
	}
}

func TestCreateTransactionOutputWithLocationHint(t *testing.T) {
	f := newFixture(t)
	f.seedMaterial(t, "mat-1")
	ctx := authed("user-1")

	_, err := f.uc.CreateTransaction(ctx, &dto.CreateTransactionInput{
		AccountID:   "acct-1",
		PalletID:    strptr("plt-empty"),
		ServiceType: "repack",
		Lines: []dto.CreateLineInput{{
			MaterialID: strptr("mat-1"),
			Quantity:   5,
			Weight:     5,
			IsInput:    false,
			LocationID: strptr("B-02-03"),
		}},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	lots, _ := f.lots.FindByPallet(context.Background(), "plt-empty")
	if len(lots) != 1 {
		t.Fatalf("expected 1 lot, got %d", len(lots))
	}
	if lots[0].LocationID != "B-02-03" {
		t.Errorf("expected hinted location, got %q", lots[0].LocationID)
	}
}

func TestCreateTransactionInsufficientInventoryRollsBack(t *testing.T) {
	f := newFixture(t)
	f.seedMaterial(t, "mat-1")
	ctx := authed("user-1")

	a := f.seedLot(t, "plt-1", "mat-1", 10, 10, nil)
	b := f.seedLot(t, "plt-1", "mat-1", 5, 5, nil)

	_, err := f.uc.CreateTransaction(ctx, &dto.CreateTransactionInput{
		AccountID:   "acct-1",
		PalletID:    strptr("plt-1"),
		ServiceType: "repack",
		Lines:       []dto.CreateLineInput{matLine("mat-1", 20, 20, true)},
	})
	if err != model.ErrInsufficientInventory {
		t.Fatalf("expected ErrInsufficientInventory, got %v", err)
	}

	// Partially drained lots roll back with the transaction.
	if got := f.lot(t, a.ID); got.Quantity != 10 {
		t.Errorf("lot a changed after rollback: %v", got.Quantity)
	}
	if got := f.lot(t, b.ID); got.Quantity != 5 {
		t.Errorf("lot b changed after rollback: %v", got.Quantity)
	}

	txns, count, err := f.uc.ListTransactions(ctx, &dto.TransactionFilters{IncludeVoided: true})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if count != 0 || len(txns) != 0 {
		t.Errorf("expected no stored transactions, got %d", count)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	f := newFixture(t)
	f.seedMaterial(t, "mat-1")
	ctx := authed("user-1")
	f.seedLot(t, "plt-1", "mat-1", 100, 100, nil)

	cases := []struct {
		name  string
		input *dto.CreateTransactionInput
		want  error
	}{
		{
			name: "unknown service type",
			input: &dto.CreateTransactionInput{
				AccountID: "acct-1", PalletID: strptr("plt-1"), ServiceType: "teleport",
				Lines: []dto.CreateLineInput{matLine("mat-1", 1, 1, true)},
			},
			want: model.ErrInvalidService,
		},
		{
			name: "pallet required",
			input: &dto.CreateTransactionInput{
				AccountID: "acct-1", ServiceType: "repack",
				Lines: []dto.CreateLineInput{matLine("mat-1", 1, 1, true)},
			},
			want: model.ErrPalletRequired,
		},
		{
			name: "material line on surcharge",
			input: &dto.CreateTransactionInput{
				AccountID: "acct-1", ServiceType: "surcharge",
				Lines: []dto.CreateLineInput{matLine("mat-1", 1, 1, true)},
			},
			want: model.ErrLineNotPermitted,
		},
		{
			name: "labor line on cycle count",
			input: &dto.CreateTransactionInput{
				AccountID: "acct-1", PalletID: strptr("plt-1"), ServiceType: "cycle_count",
				Lines: []dto.CreateLineInput{{Quantity: 1}},
			},
			want: model.ErrLineNotPermitted,
		},
		{
			name: "zero quantity line",
			input: &dto.CreateTransactionInput{
				AccountID: "acct-1", PalletID: strptr("plt-1"), ServiceType: "repack",
				Lines: []dto.CreateLineInput{matLine("mat-1", 0, 0, true)},
			},
			want: model.ErrZeroDelta,
		},
		{
			name: "negative weight line",
			input: &dto.CreateTransactionInput{
				AccountID: "acct-1", PalletID: strptr("plt-1"), ServiceType: "repack",
				Lines: []dto.CreateLineInput{matLine("mat-1", 1, -1, true)},
			},
			want: model.ErrNegativeValue,
		},
		{
			name: "unknown material",
			input: &dto.CreateTransactionInput{
				AccountID: "acct-1", PalletID: strptr("plt-1"), ServiceType: "repack",
				Lines: []dto.CreateLineInput{matLine("mat-404", 1, 1, true)},
			},
			want: model.ErrMaterialNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.CreateTransaction(ctx, tc.input)
			if err != tc.want {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}

	_, err := f.uc.CreateTransaction(context.Background(), &dto.CreateTransactionInput{
		AccountID: "acct-1", PalletID: strptr("plt-1"), ServiceType: "repack",
		Lines: []dto.CreateLineInput{matLine("mat-1", 1, 1, true)},
	})
	if err != model.ErrUnauthenticated {
		t.Errorf("expected ErrUnauthenticated without user, got %v", err)
	}
}

func TestCompleteTransaction(t *testing.T) {
	f := newFixture(t)
	f.seedMaterial(t, "mat-1")
	ctx := authed("user-1")
	f.seedLot(t, "plt-1", "mat-1", 100, 100, nil)

	txn, err := f.uc.CreateTransaction(ctx, &dto.CreateTransactionInput{
		AccountID: "acct-1", PalletID: strptr("plt-1"), ServiceType: "repack",
		Lines: []dto.CreateLineInput{matLine("mat-1", 10, 10, true)},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	completed, err := f.uc.CompleteTransaction(ctx, txn.ID)
	if err != nil {
		t.Fatalf("CompleteTransaction: %v", err)
	}
	if completed.Status != model.TransactionStatusCompleted {
		t.Errorf("expected completed, got %q", completed.Status)
	}

	// Completing again is a no-op.
	again, err := f.uc.CompleteTransaction(ctx, txn.ID)
	if err != nil {
		t.Fatalf("second CompleteTransaction: %v", err)
	}
	if again.Status != model.TransactionStatusCompleted {
		t.Errorf("expected completed, got %q", again.Status)
	}

	if _, err := f.uc.CompleteTransaction(ctx, "no-such-txn"); err != model.ErrTransactionNotFound {
		t.Errorf("expected ErrTransactionNotFound, got %v", err)
	}
}

// The full correction cycle: a transaction consumes stock, the recorded
// consumption is corrected upward, then the whole transaction is voided and
// the pallet ends up exactly where it started.
func TestAmendThenVoidRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.seedMaterial(t, "mat-1")
	ctx := authed("user-1")

	lot := f.seedLot(t, "plt-1", "mat-1", 100, 100, nil)

	txn, err := f.uc.CreateTransaction(ctx, &dto.CreateTransactionInput{
		AccountID: "acct-1", PalletID: strptr("plt-1"), ServiceType: "repack",
		Lines: []dto.CreateLineInput{matLine("mat-1", 20, 20, true)},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if got := f.lot(t, lot.ID); got.Quantity != 80 || got.WeightActual != 80 {
		t.Fatalf("expected 80/80 after create, got %v/%v", got.Quantity, got.WeightActual)
	}

	lineID := txn.Lines[0].ID
	amended, err := f.uc.AmendLine(ctx, &dto.AmendLineInput{
		TransactionID: txn.ID,
		LineID:        lineID,
		NewQuantity:   f64ptr(30),
		NewWeight:     f64ptr(30),
		Reason:        "scale was misread",
	})
	if err != nil {
		t.Fatalf("AmendLine: %v", err)
	}

	line := amended.Line(lineID)
	if line.Quantity != 30 || line.Weight != 30 {
		t.Errorf("expected line 30/30, got %v/%v", line.Quantity, line.Weight)
	}
	if line.OriginalQuantity == nil || *line.OriginalQuantity != 20 {
		t.Errorf("expected original quantity 20, got %v", line.OriginalQuantity)
	}
	if !line.IsAmended {
		t.Error("expected line marked amended")
	}
	if got := f.lot(t, lot.ID); got.Quantity != 70 || got.WeightActual != 70 {
		t.Errorf("expected 70/70 after amendment, got %v/%v", got.Quantity, got.WeightActual)
	}

	voided, err := f.uc.VoidTransaction(ctx, &dto.VoidTransactionInput{
		TransactionID: txn.ID,
		Reason:        "service never performed",
	})
	if err != nil {
		t.Fatalf("VoidTransaction: %v", err)
	}
	if !voided.IsVoided {
		t.Error("expected IsVoided true")
	}
	if got := f.lot(t, lot.ID); got.Quantity != 100 || got.WeightActual != 100 {
		t.Errorf("expected pallet restored to 100/100, got %v/%v", got.Quantity, got.WeightActual)
	}

	amendments, err := f.uc.ListAmendments(ctx, txn.ID)
	if err != nil {
		t.Fatalf("ListAmendments: %v", err)
	}
	if len(amendments) != 2 {
		t.Fatalf("expected 2 amendment records, got %d", len(amendments))
	}
}

func TestAmendLineInsufficientInventoryLeavesLotsUntouched(t *testing.T) {
	f := newFixture(t)
	f.seedMaterial(t, "mat-1")
	ctx := authed("user-1")

	a := f.seedLot(t, "plt-1", "mat-1", 10, 10, nil)
	b := f.seedLot(t, "plt-1", "mat-1", 5, 5, nil)

	txn, err := f.uc.CreateTransaction(ctx, &dto.CreateTransactionInput{
		AccountID: "acct-1", PalletID: strptr("plt-1"), ServiceType: "repack",
		Lines: []dto.CreateLineInput{matLine("mat-1", 3, 3, true)},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	beforeA := f.lot(t, a.ID)
	beforeB := f.lot(t, b.ID)

	// 12 remain on the pallet; amending to 20 needs 17 more.
	_, err = f.uc.AmendLine(ctx, &dto.AmendLineInput{
		TransactionID: txn.ID,
		LineID:        txn.Lines[0].ID,
		NewQuantity:   f64ptr(20),
		Reason:        "recount",
	})
	if err != model.ErrInsufficientInventory {
		t.Fatalf("expected ErrInsufficientInventory, got %v", err)
	}

	// Every lot already drained inside the failed unit of work rolls back.
	if got := f.lot(t, a.ID); got.Quantity != beforeA.Quantity {
		t.Errorf("lot a changed: %v -> %v", beforeA.Quantity, got.Quantity)
	}
	if got := f.lot(t, b.ID); got.Quantity != beforeB.Quantity {
		t.Errorf("lot b changed: %v -> %v", beforeB.Quantity, got.Quantity)
	}

	// The line keeps its recorded values too.
	reread, err := f.uc.GetTransaction(ctx, txn.ID)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if line := reread.Line(txn.Lines[0].ID); line.Quantity != 3 || line.IsAmended {
		t.Errorf("line mutated by failed amendment: %v amended=%v", line.Quantity, line.IsAmended)
	}
}

func TestAmendLineWeightOnlyDoesNotMoveStock(t *testing.T) {
	f := newFixture(t)
	f.seedMaterial(t, "mat-1")
	ctx := authed("user-1")

	lot := f.seedLot(t, "plt-1", "mat-1", 100, 100, nil)

	txn, err := f.uc.CreateTransaction(ctx, &dto.CreateTransactionInput{
		AccountID: "acct-1", PalletID: strptr("plt-1"), ServiceType: "repack",
		Lines: []dto.CreateLineInput{matLine("mat-1", 20, 20, true)},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	amended, err := f.uc.AmendLine(ctx, &dto.AmendLineInput{
		TransactionID: txn.ID,
		LineID:        txn.Lines[0].ID,
		NewWeight:     f64ptr(19.4),
		Reason:        "tare weight corrected",
	})
	if err != nil {
		t.Fatalf("AmendLine: %v", err)
	}

	line := amended.Line(txn.Lines[0].ID)
	if line.Weight != 19.4 || line.Quantity != 20 {
		t.Errorf("expected 20/19.4, got %v/%v", line.Quantity, line.Weight)
	}
	if got := f.lot(t, lot.ID); got.Quantity != 80 || got.WeightActual != 80 {
		t.Errorf("weight-only amendment moved stock: %v/%v", got.Quantity, got.WeightActual)
	}
}

func TestAmendLaborLine(t *testing.T) {
	f := newFixture(t)
	ctx := authed("user-1")

	txn, err := f.uc.CreateTransaction(ctx, &dto.CreateTransactionInput{
		AccountID: "acct-1", ServiceType: "surcharge",
		Lines: []dto.CreateLineInput{{Quantity: 2, IsInput: true}},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	amended, err := f.uc.AmendLine(ctx, &dto.AmendLineInput{
		TransactionID: txn.ID,
		LineID:        txn.Lines[0].ID,
		NewQuantity:   f64ptr(3),
		Reason:        "extra hour logged",
	})
	if err != nil {
		t.Fatalf("AmendLine: %v", err)
	}
	if line := amended.Line(txn.Lines[0].ID); line.Quantity != 3 {
		t.Errorf("expected quantity 3, got %v", line.Quantity)
	}
}

func TestAmendLineDecreaseRestoresStock(t *testing.T) {
	f := newFixture(t)
	f.seedMaterial(t, "mat-1")
	ctx := authed("user-1")

	lot := f.seedLot(t, "plt-1", "mat-1", 100, 100, nil)

	txn, err := f.uc.CreateTransaction(ctx, &dto.CreateTransactionInput{
		AccountID: "acct-1", PalletID: strptr("plt-1"), ServiceType: "repack",
		Lines: []dto.CreateLineInput{matLine("mat-1", 20, 20, true)},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	// Less was consumed than recorded: the difference goes back on the
	// pallet.
	_, err = f.uc.AmendLine(ctx, &dto.AmendLineInput{
		TransactionID: txn.ID,
		LineID:        txn.Lines[0].ID,
		NewQuantity:   f64ptr(12),
		NewWeight:     f64ptr(12),
		Reason:        "recount",
	})
	if err != nil {
		t.Fatalf("AmendLine: %v", err)
	}

	if got := f.lot(t, lot.ID); got.Quantity != 88 || got.WeightActual != 88 {
		t.Errorf("expected 88/88 after downward amendment, got %v/%v", got.Quantity, got.WeightActual)
	}
}

func TestAmendLineValidation(t *testing.T) {
	f := newFixture(t)
	f.seedMaterial(t, "mat-1")
	ctx := authed("user-1")
	f.seedLot(t, "plt-1", "mat-1", 100, 100, nil)

	txn, err := f.uc.CreateTransaction(ctx, &dto.CreateTransactionInput{
		AccountID: "acct-1", PalletID: strptr("plt-1"), ServiceType: "repack",
		Lines: []dto.CreateLineInput{matLine("mat-1", 20, 20, true)},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	amend := func(ctx context.Context, in *dto.AmendLineInput) error {
		_, err := f.uc.AmendLine(ctx, in)
		return err
	}

	if err := amend(ctx, &dto.AmendLineInput{TransactionID: txn.ID, LineID: txn.Lines[0].ID, NewQuantity: f64ptr(5), Reason: "  "}); err != model.ErrEmptyReason {
		t.Errorf("expected ErrEmptyReason, got %v", err)
	}
	if err := amend(ctx, &dto.AmendLineInput{TransactionID: txn.ID, LineID: txn.Lines[0].ID, Reason: "r"}); err != model.ErrZeroDelta {
		t.Errorf("expected ErrZeroDelta with no new values, got %v", err)
	}
	if err := amend(ctx, &dto.AmendLineInput{TransactionID: txn.ID, LineID: txn.Lines[0].ID, NewQuantity: f64ptr(-1), Reason: "r"}); err != model.ErrNegativeValue {
		t.Errorf("expected ErrNegativeValue, got %v", err)
	}
	if err := amend(ctx, &dto.AmendLineInput{TransactionID: "no-such", LineID: "x", NewQuantity: f64ptr(5), Reason: "r"}); err != model.ErrTransactionNotFound {
		t.Errorf("expected ErrTransactionNotFound, got %v", err)
	}
	if err := amend(ctx, &dto.AmendLineInput{TransactionID: txn.ID, LineID: "no-such-line", NewQuantity: f64ptr(5), Reason: "r"}); err != model.ErrLineNotFound {
		t.Errorf("expected ErrLineNotFound, got %v", err)
	}
	if err := amend(context.Background(), &dto.AmendLineInput{TransactionID: txn.ID, LineID: txn.Lines[0].ID, NewQuantity: f64ptr(5), Reason: "r"}); err != model.ErrUnauthenticated {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}

	if _, err := f.uc.VoidTransaction(ctx, &dto.VoidTransactionInput{TransactionID: txn.ID, Reason: "bad entry"}); err != nil {
		t.Fatalf("VoidTransaction: %v", err)
	}
	if err := amend(ctx, &dto.AmendLineInput{TransactionID: txn.ID, LineID: txn.Lines[0].ID, NewQuantity: f64ptr(5), Reason: "r"}); err != model.ErrAlreadyVoided {
		t.Errorf("expected ErrAlreadyVoided, got %v", err)
	}
}

func TestAmendmentAuditRecord(t *testing.T) {
	f := newFixture(t)
	f.seedMaterial(t, "mat-1")
	ctx := authed("user-7")
	f.seedLot(t, "plt-1", "mat-1", 100, 100, nil)

	txn, err := f.uc.CreateTransaction(ctx, &dto.CreateTransactionInput{
		AccountID: "acct-1", PalletID: strptr("plt-1"), ServiceType: "repack",
		Lines: []dto.CreateLineInput{matLine("mat-1", 20, 20, true)},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	_, err = f.uc.AmendLine(ctx, &dto.AmendLineInput{
		TransactionID: txn.ID,
		LineID:        txn.Lines[0].ID,
		NewQuantity:   f64ptr(30),
		NewWeight:     f64ptr(29.5),
		Reason:        "recount after shift",
	})
	if err != nil {
		t.Fatalf("AmendLine: %v", err)
	}

	amendments, err := f.uc.ListAmendments(ctx, txn.ID)
	if err != nil {
		t.Fatalf("ListAmendments: %v", err)
	}
	if len(amendments) != 1 {
		t.Fatalf("expected 1 amendment, got %d", len(amendments))
	}

	am := amendments[0]
	if am.AmendmentType != model.AmendmentTypeLine {
		t.Errorf("expected line_amendment, got %q", am.AmendmentType)
	}
	if am.UserID != "user-7" {
		t.Errorf("expected user-7, got %q", am.UserID)
	}
	if am.Reason != "recount after shift" {
		t.Errorf("unexpected reason %q", am.Reason)
	}
	if am.Details.Line == nil {
		t.Fatal("expected line details")
	}
	d := am.Details.Line
	if d.BeforeQuantity != 20 || d.BeforeWeight != 20 {
		t.Errorf("expected before 20/20, got %v/%v", d.BeforeQuantity, d.BeforeWeight)
	}
	if d.AfterQuantity != 30 || d.AfterWeight != 29.5 {
		t.Errorf("expected after 30/29.5, got %v/%v", d.AfterQuantity, d.AfterWeight)
	}
}

func TestVoidFailsWhenProducedStockIsGone(t *testing.T) {
	f := newFixture(t)
	f.seedMaterial(t, "mat-1")
	ctx := authed("user-1")

	lot := f.seedLot(t, "plt-1", "mat-1", 10, 10, nil)

	txn, err := f.uc.CreateTransaction(ctx, &dto.CreateTransactionInput{
		AccountID: "acct-1", PalletID: strptr("plt-1"), ServiceType: "kitting",
		Lines: []dto.CreateLineInput{matLine("mat-1", 50, 50, false)},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	// Most of the produced stock leaves the pallet before the void.
	shipped := f.lot(t, lot.ID)
	if err := shipped.AdjustInventory(-45, -45); err != nil {
		t.Fatalf("AdjustInventory: %v", err)
	}
	if err := f.lots.Save(context.Background(), shipped); err != nil {
		t.Fatalf("Save: %v", err)
	}

	_, err = f.uc.VoidTransaction(ctx, &dto.VoidTransactionInput{
		TransactionID: txn.ID,
		Reason:        "kitting reversed",
	})
	if err != model.ErrInsufficientInventory {
		t.Fatalf("expected ErrInsufficientInventory, got %v", err)
	}

	// Nothing is reversed and the transaction stays live.
	reread, err := f.uc.GetTransaction(ctx, txn.ID)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if reread.IsVoided {
		t.Error("expected IsVoided to remain false after failed void")
	}
	if got := f.lot(t, lot.ID); got.Quantity != 15 {
		t.Errorf("expected lot unchanged at 15, got %v", got.Quantity)
	}
}

func TestVoidWithoutPalletSkipsInventory(t *testing.T) {
	f := newFixture(t)
	f.seedMaterial(t, "mat-1")
	ctx := authed("user-1")

	// Fumigation does not require a pallet; its material line has no
	// locatable inventory effect.
	txn, err := f.uc.CreateTransaction(ctx, &dto.CreateTransactionInput{
		AccountID: "acct-1", ServiceType: "fumigation",
		Lines: []dto.CreateLineInput{
			matLine("mat-1", 2, 2, true),
			{Quantity: 1, IsInput: true},
		},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	voided, err := f.uc.VoidTransaction(ctx, &dto.VoidTransactionInput{
		TransactionID: txn.ID,
		Reason:        "wrong account",
	})
	if err != nil {
		t.Fatalf("VoidTransaction: %v", err)
	}
	if !voided.IsVoided {
		t.Error("expected IsVoided true")
	}

	amendments, err := f.uc.ListAmendments(ctx, txn.ID)
	if err != nil {
		t.Fatalf("ListAmendments: %v", err)
	}
	if len(amendments) != 1 {
		t.Fatalf("expected 1 amendment, got %d", len(amendments))
	}
	void := amendments[0].Details.Void
	if void == nil {
		t.Fatal("expected void details")
	}
	if len(void.Lines) != 2 {
		t.Fatalf("expected 2 line details, got %d", len(void.Lines))
	}
	for _, d := range void.Lines {
		if d.Reversed {
			t.Errorf("line %s should not be marked reversed", d.LineID)
		}
	}
}

func TestVoidValidation(t *testing.T) {
	f := newFixture(t)
	f.seedMaterial(t, "mat-1")
	ctx := authed("user-1")
	f.seedLot(t, "plt-1", "mat-1", 100, 100, nil)

	txn, err := f.uc.CreateTransaction(ctx, &dto.CreateTransactionInput{
		AccountID: "acct-1", PalletID: strptr("plt-1"), ServiceType: "repack",
		Lines: []dto.CreateLineInput{matLine("mat-1", 20, 20, true)},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	if _, err := f.uc.VoidTransaction(ctx, &dto.VoidTransactionInput{TransactionID: txn.ID, Reason: ""}); err != model.ErrEmptyReason {
		t.Errorf("expected ErrEmptyReason, got %v", err)
	}
	if _, err := f.uc.VoidTransaction(ctx, &dto.VoidTransactionInput{TransactionID: "no-such", Reason: "r"}); err != model.ErrTransactionNotFound {
		t.Errorf("expected ErrTransactionNotFound, got %v", err)
	}
	if _, err := f.uc.VoidTransaction(context.Background(), &dto.VoidTransactionInput{TransactionID: txn.ID, Reason: "r"}); err != model.ErrUnauthenticated {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}

	if _, err := f.uc.VoidTransaction(ctx, &dto.VoidTransactionInput{TransactionID: txn.ID, Reason: "duplicate entry"}); err != nil {
		t.Fatalf("VoidTransaction: %v", err)
	}
	if _, err := f.uc.VoidTransaction(ctx, &dto.VoidTransactionInput{TransactionID: txn.ID, Reason: "again"}); err != model.ErrAlreadyVoided {
		t.Errorf("expected ErrAlreadyVoided on second void, got %v", err)
	}
}

func TestListTransactionsExcludesVoidedByDefault(t *testing.T) {
	f := newFixture(t)
	f.seedMaterial(t, "mat-1")
	ctx := authed("user-1")
	f.seedLot(t, "plt-1", "mat-1", 100, 100, nil)

	keep, err := f.uc.CreateTransaction(ctx, &dto.CreateTransactionInput{
		AccountID: "acct-1", PalletID: strptr("plt-1"), ServiceType: "repack",
		Lines: []dto.CreateLineInput{matLine("mat-1", 5, 5, true)},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	gone, err := f.uc.CreateTransaction(ctx, &dto.CreateTransactionInput{
		AccountID: "acct-1", PalletID: strptr("plt-1"), ServiceType: "repack",
		Lines: []dto.CreateLineInput{matLine("mat-1", 5, 5, true)},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if _, err := f.uc.VoidTransaction(ctx, &dto.VoidTransactionInput{TransactionID: gone.ID, Reason: "entered twice"}); err != nil {
		t.Fatalf("VoidTransaction: %v", err)
	}

	txns, count, err := f.uc.ListTransactions(ctx, &dto.TransactionFilters{})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if count != 1 || len(txns) != 1 || txns[0].ID != keep.ID {
		t.Errorf("expected only the live transaction, got count=%d", count)
	}

	_, count, err = f.uc.ListTransactions(ctx, &dto.TransactionFilters{IncludeVoided: true})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 with voided included, got %d", count)
	}
}

func TestReturnToPalletCreatesTaggedLot(t *testing.T) {
	f := newFixture(t)
	f.seedMaterial(t, "mat-1")
	f.seedMaterial(t, "mat-2")
	ctx := context.Background()

	// A sibling lot of another material supplies the location.
	f.seedLot(t, "plt-1", "mat-2", 10, 10, nil)

	uc := f.uc.(*vasUseCase)
	placed, err := uc.returnToPallet(ctx, f.lots, "plt-1", "mat-1", 8, 8, "RESTORED", nil, "acct-1", "user-1")
	if err != nil {
		t.Fatalf("returnToPallet: %v", err)
	}
	if !placed {
		t.Fatal("expected stock to be placed")
	}

	lots, err := f.lots.FindByPalletAndMaterial(ctx, "plt-1", "mat-1")
	if err != nil {
		t.Fatalf("FindByPalletAndMaterial: %v", err)
	}
	if len(lots) != 1 {
		t.Fatalf("expected 1 lot, got %d", len(lots))
	}
	if lots[0].BatchNumber != "RESTORED" {
		t.Errorf("expected RESTORED batch tag, got %q", lots[0].BatchNumber)
	}
	if lots[0].LocationID != "A-01-01" {
		t.Errorf("expected sibling location, got %q", lots[0].LocationID)
	}
}

func TestDrainLotsProportionalWeight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.seedLot(t, "plt-1", "mat-1", 30, 60, nil)
	b := f.seedLot(t, "plt-1", "mat-1", 10, 20, nil)

	candidates, err := f.lots.FindByPalletAndMaterial(ctx, "plt-1", "mat-1")
	if err != nil {
		t.Fatalf("FindByPalletAndMaterial: %v", err)
	}

	// Draining 32 of 40 with weight 64: 30 from the larger lot carries
	// 30/32 of the weight, 2 from the smaller carries the rest.
	uc := f.uc.(*vasUseCase)
	if err := uc.drainLots(ctx, f.lots, candidates, 32, 64, "acct-1", "user-1"); err != nil {
		t.Fatalf("drainLots: %v", err)
	}

	if got := f.lot(t, a.ID); got.Quantity != 0 || got.WeightActual != 0 {
		t.Errorf("expected larger lot empty, got %v/%v", got.Quantity, got.WeightActual)
	}
	if got := f.lot(t, b.ID); got.Quantity != 8 || got.WeightActual != 16 {
		t.Errorf("expected 8/16 left in smaller lot, got %v/%v", got.Quantity, got.WeightActual)
	}
}
