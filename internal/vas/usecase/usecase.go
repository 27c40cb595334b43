package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/kurniadi/wms-vas-service/internal/auth"
	"github.com/kurniadi/wms-vas-service/internal/cache"
	"github.com/kurniadi/wms-vas-service/internal/db"
	"github.com/kurniadi/wms-vas-service/internal/inventory"
	"github.com/kurniadi/wms-vas-service/internal/material"
	"github.com/kurniadi/wms-vas-service/internal/model"
	"github.com/kurniadi/wms-vas-service/internal/vas"
	"github.com/kurniadi/wms-vas-service/internal/vas/dto"
)

type vasUseCase struct {
	db      *sqlx.DB
	repo    vas.Repository
	lots    inventory.Repository
	matRepo material.Repository
	cache   *cache.RedisClient
	logger  *zap.Logger
}

func NewVASUseCase(database *sqlx.DB, repo vas.Repository, lots inventory.Repository, matRepo material.Repository, redis *cache.RedisClient, log *zap.Logger) vas.UseCase {
	return &vasUseCase{
		db:      database,
		repo:    repo,
		lots:    lots,
		matRepo: matRepo,
		cache:   redis,
		logger:  log,
	}
}

func (uc *vasUseCase) CreateTransaction(ctx context.Context, input *dto.CreateTransactionInput) (*model.VASTransaction, error) {
	userID, ok := auth.UserID(ctx)
	if !ok {
		return nil, model.ErrUnauthenticated
	}

	serviceType := model.ServiceType(input.ServiceType)
	traits, ok := serviceType.Traits()
	if !ok {
		return nil, model.ErrInvalidService
	}
	if traits.RequiresPallet && (input.PalletID == nil || *input.PalletID == "") {
		return nil, model.ErrPalletRequired
	}

	now := time.Now()
	txn := &model.VASTransaction{
		ID:          uuid.New().String(),
		AccountID:   input.AccountID,
		PalletID:    input.PalletID,
		ServiceType: serviceType,
		UserID:      userID,
		OccurredAt:  now,
		Description: input.Description,
		Status:      model.TransactionStatusPlanned,
	}
	if txn.Description == "" {
		txn.Description = traits.DisplayName
	}

	for i, l := range input.Lines {
		if l.Quantity <= 0 {
			return nil, model.ErrZeroDelta
		}
		if l.Weight < 0 {
			return nil, model.ErrNegativeValue
		}
		line := model.VASTransactionLine{
			ID:            uuid.New().String(),
			TransactionID: txn.ID,
			LineNo:        i + 1,
			MaterialID:    l.MaterialID,
			Quantity:      l.Quantity,
			Weight:        l.Weight,
			IsInput:       l.IsInput,
		}
		switch line.Kind() {
		case model.LineKindMaterial:
			if !traits.AllowsMaterialLines {
				return nil, model.ErrLineNotPermitted
			}
		case model.LineKindLabor:
			if !traits.AllowsLaborLines {
				return nil, model.ErrLineNotPermitted
			}
		}
		txn.Lines = append(txn.Lines, line)
	}

	err := db.Transact(ctx, uc.db, func(tx *sqlx.Tx) error {
		repo := uc.repo.WithTx(tx)
		lots := uc.lots.WithTx(tx)
		materials := uc.matRepo.WithTx(tx)

		for i := range txn.Lines {
			line := &txn.Lines[i]
			if line.Kind() != model.LineKindMaterial {
				continue
			}
			mat, err := materials.FindByID(ctx, *line.MaterialID)
			if err != nil {
				return err
			}
			if mat == nil {
				return model.ErrMaterialNotFound
			}
		}

		// Apply line effects to physical stock. Inputs consume earliest
		// expiry first; outputs land on the pallet.
		if txn.PalletID != nil && *txn.PalletID != "" {
			for i := range txn.Lines {
				line := &txn.Lines[i]
				if line.Kind() != model.LineKindMaterial {
					continue
				}
				if line.IsInput {
					candidates, err := lots.FindByPalletAndMaterialFIFO(ctx, *txn.PalletID, *line.MaterialID)
					if err != nil {
						return err
					}
					if err := uc.drainLots(ctx, lots, candidates, line.Quantity, line.Weight, txn.AccountID, userID); err != nil {
						return err
					}
				} else {
					locationHint := input.Lines[i].LocationID
					if _, err := uc.returnToPallet(ctx, lots, *txn.PalletID, *line.MaterialID,
						line.Quantity, line.Weight, "", locationHint, txn.AccountID, userID); err != nil {
						return err
					}
				}
			}
		}

		return repo.Create(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("vas transaction created",
		zap.String("transaction_id", txn.ID),
		zap.String("service_type", string(txn.ServiceType)),
		zap.Int("lines", len(txn.Lines)),
	)
	return txn, nil
}

func (uc *vasUseCase) CompleteTransaction(ctx context.Context, id string) (*model.VASTransaction, error) {
	if _, ok := auth.UserID(ctx); !ok {
		return nil, model.ErrUnauthenticated
	}

	var txn *model.VASTransaction
	err := db.Transact(ctx, uc.db, func(tx *sqlx.Tx) error {
		repo := uc.repo.WithTx(tx)

		var err error
		txn, err = repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if txn == nil {
			return model.ErrTransactionNotFound
		}
		if txn.IsVoided {
			return model.ErrAlreadyVoided
		}
		if txn.Status == model.TransactionStatusCompleted {
			return nil
		}
		txn.Complete()
		return repo.SetCompleted(ctx, txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// AmendLine corrects a line's recorded quantity/weight after the fact and
// re-applies the difference to the pallet's lots. The whole pipeline runs in
// one unit of work: a delta that cannot be satisfied leaves every lot and
// the line untouched.
func (uc *vasUseCase) AmendLine(ctx context.Context, input *dto.AmendLineInput) (*model.VASTransaction, error) {
	userID, ok := auth.UserID(ctx)
	if !ok {
		return nil, model.ErrUnauthenticated
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, model.ErrEmptyReason
	}
	if input.NewQuantity == nil && input.NewWeight == nil {
		return nil, model.ErrZeroDelta
	}
	if (input.NewQuantity != nil && *input.NewQuantity < 0) || (input.NewWeight != nil && *input.NewWeight < 0) {
		return nil, model.ErrNegativeValue
	}

	unlock, err := uc.lockTransaction(ctx, input.TransactionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var amended *model.VASTransaction
	err = db.Transact(ctx, uc.db, func(tx *sqlx.Tx) error {
		repo := uc.repo.WithTx(tx)
		lots := uc.lots.WithTx(tx)

		txn, err := repo.GetByID(ctx, input.TransactionID)
		if err != nil {
			return err
		}
		if txn == nil {
			return model.ErrTransactionNotFound
		}
		if txn.IsVoided {
			return model.ErrAlreadyVoided
		}
		line := txn.Line(input.LineID)
		if line == nil {
			return model.ErrLineNotFound
		}

		quantityDelta := 0.0
		if input.NewQuantity != nil {
			quantityDelta = *input.NewQuantity - line.Quantity
		}
		weightDelta := 0.0
		if input.NewWeight != nil {
			weightDelta = *input.NewWeight - line.Weight
		}

		before := model.LineAmendmentDetails{
			LineID:         line.ID,
			MaterialID:     line.MaterialID,
			BeforeQuantity: line.Quantity,
			BeforeWeight:   line.Weight,
		}

		// Inventory moves only for material lines on a pallet, and only
		// when the quantity changed: a weight-only correction updates the
		// line but does not move stock.
		if line.Kind() == model.LineKindMaterial && txn.PalletID != nil && *txn.PalletID != "" && quantityDelta != 0 {
			if err := uc.applyLineDelta(ctx, lots, txn, line, quantityDelta, weightDelta, userID); err != nil {
				return err
			}
		}

		now := time.Now()
		switch {
		case input.NewQuantity != nil && input.NewWeight != nil:
			line.AmendQuantityAndWeight(*input.NewQuantity, *input.NewWeight, now)
		case input.NewQuantity != nil:
			line.AmendQuantity(*input.NewQuantity, now)
		default:
			line.AmendWeight(*input.NewWeight, now)
		}
		if err := repo.UpdateLine(ctx, line); err != nil {
			return err
		}

		details := before
		details.AfterQuantity = line.Quantity
		details.AfterWeight = line.Weight
		amendment := &model.VASTransactionAmendment{
			ID:                    uuid.New().String(),
			OriginalTransactionID: txn.ID,
			UserID:                userID,
			Reason:                input.Reason,
			AmendmentType:         model.AmendmentTypeLine,
			Details:               model.AmendmentDetails{Line: &details},
			CreatedAt:             now,
		}
		if err := repo.LogAmendment(ctx, amendment); err != nil {
			return err
		}

		amended = txn
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("vas line amended",
		zap.String("transaction_id", amended.ID),
		zap.String("line_id", input.LineID),
		zap.String("reason", input.Reason),
	)
	return amended, nil
}

// VoidTransaction reverses the transaction's entire net inventory effect and
// flips the one-way voided flag. If any output line's produced stock is no
// longer on the pallet the whole void fails; it never under-reverses.
func (uc *vasUseCase) VoidTransaction(ctx context.Context, input *dto.VoidTransactionInput) (*model.VASTransaction, error) {
	userID, ok := auth.UserID(ctx)
	if !ok {
		return nil, model.ErrUnauthenticated
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, model.ErrEmptyReason
	}

	unlock, err := uc.lockTransaction(ctx, input.TransactionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var voided *model.VASTransaction
	err = db.Transact(ctx, uc.db, func(tx *sqlx.Tx) error {
		repo := uc.repo.WithTx(tx)
		lots := uc.lots.WithTx(tx)

		txn, err := repo.GetByID(ctx, input.TransactionID)
		if err != nil {
			return err
		}
		if txn == nil {
			return model.ErrTransactionNotFound
		}
		if txn.IsVoided {
			return model.ErrAlreadyVoided
		}

		details := model.VoidDetails{Lines: make([]model.VoidLineDetail, 0, len(txn.Lines))}
		for i := range txn.Lines {
			line := &txn.Lines[i]
			detail := model.VoidLineDetail{
				LineID:     line.ID,
				MaterialID: line.MaterialID,
				IsInput:    line.IsInput,
				Quantity:   line.Quantity,
				Weight:     line.Weight,
			}

			if line.Kind() != model.LineKindMaterial {
				details.Lines = append(details.Lines, detail)
				continue
			}
			if txn.PalletID == nil || *txn.PalletID == "" {
				uc.logger.Warn("voiding line without pallet, inventory effect cannot be located",
					zap.String("transaction_id", txn.ID),
					zap.String("line_id", line.ID),
				)
				details.Lines = append(details.Lines, detail)
				continue
			}

			if line.IsInput {
				placed, err := uc.returnToPallet(ctx, lots, *txn.PalletID, *line.MaterialID,
					line.Quantity, line.Weight, "RESTORED", nil, txn.AccountID, userID)
				if err != nil {
					return err
				}
				detail.Reversed = placed
			} else {
				if line.Quantity > 0 {
					candidates, err := lots.FindByPalletAndMaterial(ctx, *txn.PalletID, *line.MaterialID)
					if err != nil {
						return err
					}
					if err := uc.drainLots(ctx, lots, candidates, line.Quantity, line.Weight, txn.AccountID, userID); err != nil {
						return err
					}
				}
				detail.Reversed = true
			}
			details.Lines = append(details.Lines, detail)
		}

		now := time.Now()
		if err := txn.MarkVoided(userID, input.Reason, now); err != nil {
			return err
		}
		if err := repo.SetVoided(ctx, txn); err != nil {
			return err
		}

		amendment := &model.VASTransactionAmendment{
			ID:                    uuid.New().String(),
			OriginalTransactionID: txn.ID,
			UserID:                userID,
			Reason:                input.Reason,
			AmendmentType:         model.AmendmentTypeVoid,
			Details:               model.AmendmentDetails{Void: &details},
			CreatedAt:             now,
		}
		if err := repo.LogAmendment(ctx, amendment); err != nil {
			return err
		}

		voided = txn
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("vas transaction voided",
		zap.String("transaction_id", voided.ID),
		zap.String("reason", input.Reason),
	)
	return voided, nil
}

func (uc *vasUseCase) GetTransaction(ctx context.Context, id string) (*model.VASTransaction, error) {
	txn, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, model.ErrTransactionNotFound
	}
	return txn, nil
}

func (uc *vasUseCase) ListTransactions(ctx context.Context, f *dto.TransactionFilters) ([]model.VASTransaction, int, error) {
	return uc.repo.FindAll(ctx, f)
}

func (uc *vasUseCase) ListAmendments(ctx context.Context, transactionID string) ([]model.VASTransactionAmendment, error) {
	return uc.repo.ListAmendments(ctx, transactionID)
}

// lockTransaction serializes writers on one transaction id via redis. The
// lock is best effort (a nil client skips it); the lot version check is the
// correctness backstop for lost updates.
func (uc *vasUseCase) lockTransaction(ctx context.Context, transactionID string) (func(), error) {
	if uc.cache == nil {
		return func() {}, nil
	}

	lockKey := fmt.Sprintf("lock:vas:%s", transactionID)
	lockValue := uuid.New().String()

	acquired := false
	for i := 0; i < 3; i++ {
		ok, err := uc.cache.AcquireLock(ctx, lockKey, lockValue, 5*time.Second)
		if err != nil {
			uc.logger.Error("failed to acquire lock", zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !acquired {
		return nil, errors.New("transaction is locked by another request, please retry")
	}

	return func() {
		if err := uc.cache.ReleaseLock(context.Background(), lockKey, lockValue); err != nil {
			uc.logger.Error("failed to release lock", zap.String("key", lockKey), zap.Error(err))
		}
	}, nil
}
