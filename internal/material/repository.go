package material

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/kurniadi/wms-vas-service/internal/model"
)

type Repository interface {
	WithTx(tx *sqlx.Tx) Repository

	// FindByID returns nil when no material matches.
	FindByID(ctx context.Context, id string) (*model.Material, error)
	FindAll(ctx context.Context, activeOnly bool) ([]model.Material, error)
	Create(ctx context.Context, m *model.Material) error
}
