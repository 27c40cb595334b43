package vas

import (
	"context"

	"github.com/kurniadi/wms-vas-service/internal/model"
	"github.com/kurniadi/wms-vas-service/internal/vas/dto"
)

type UseCase interface {
	// CreateTransaction records a performed service and applies its line
	// effects to inventory: input lines consume lots earliest expiry first,
	// output lines add to or create lots. One atomic unit of work.
	CreateTransaction(ctx context.Context, input *dto.CreateTransactionInput) (*model.VASTransaction, error)

	// CompleteTransaction moves planned to completed. Idempotent.
	CompleteTransaction(ctx context.Context, id string) (*model.VASTransaction, error)

	// AmendLine corrects one line's quantity/weight after the fact and
	// re-applies the delta across the pallet's lots.
	AmendLine(ctx context.Context, input *dto.AmendLineInput) (*model.VASTransaction, error)

	// VoidTransaction reverses the transaction's entire net inventory
	// effect, then marks it voided.
	VoidTransaction(ctx context.Context, input *dto.VoidTransactionInput) (*model.VASTransaction, error)

	GetTransaction(ctx context.Context, id string) (*model.VASTransaction, error)
	ListTransactions(ctx context.Context, f *dto.TransactionFilters) ([]model.VASTransaction, int, error)
	ListAmendments(ctx context.Context, transactionID string) ([]model.VASTransactionAmendment, error)
}
