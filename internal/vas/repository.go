package vas

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/kurniadi/wms-vas-service/internal/model"
	"github.com/kurniadi/wms-vas-service/internal/vas/dto"
)

type Repository interface {
	WithTx(tx *sqlx.Tx) Repository

	// Create persists the transaction together with its lines.
	Create(ctx context.Context, txn *model.VASTransaction) error

	// GetByID returns the transaction with its lines in insertion order,
	// or nil when no transaction matches.
	GetByID(ctx context.Context, id string) (*model.VASTransaction, error)

	FindAll(ctx context.Context, f *dto.TransactionFilters) ([]model.VASTransaction, int, error)

	UpdateLine(ctx context.Context, line *model.VASTransactionLine) error
	SetCompleted(ctx context.Context, txn *model.VASTransaction) error
	SetVoided(ctx context.Context, txn *model.VASTransaction) error

	LogAmendment(ctx context.Context, am *model.VASTransactionAmendment) error
	ListAmendments(ctx context.Context, transactionID string) ([]model.VASTransactionAmendment, error)
}
