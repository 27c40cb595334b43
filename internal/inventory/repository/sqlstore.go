package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kurniadi/wms-vas-service/internal/inventory"
	"github.com/kurniadi/wms-vas-service/internal/inventory/dto"
	"github.com/kurniadi/wms-vas-service/internal/model"
)

type SQLRepository struct {
	ext sqlx.ExtContext
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{ext: db}
}

func (r *SQLRepository) WithTx(tx *sqlx.Tx) inventory.Repository {
	return &SQLRepository{ext: tx}
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*model.Inventory, error) {
	var lot model.Inventory
	query := r.ext.Rebind(`SELECT * FROM inventory WHERE id = ?`)
	err := sqlx.GetContext(ctx, r.ext, &lot, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &lot, nil
}

func (r *SQLRepository) FindByPalletAndMaterial(ctx context.Context, palletID, materialID string) ([]model.Inventory, error) {
	var lots []model.Inventory
	query := r.ext.Rebind(`
        SELECT * FROM inventory
        WHERE pallet_id = ? AND material_id = ?
        ORDER BY quantity DESC, id
    `)
	err := sqlx.SelectContext(ctx, r.ext, &lots, query, palletID, materialID)
	return lots, err
}

func (r *SQLRepository) FindByPalletAndMaterialFIFO(ctx context.Context, palletID, materialID string) ([]model.Inventory, error) {
	var lots []model.Inventory
	query := r.ext.Rebind(`
        SELECT * FROM inventory
        WHERE pallet_id = ? AND material_id = ?
        ORDER BY CASE WHEN expiry_date IS NULL THEN 1 ELSE 0 END, expiry_date, id
    `)
	err := sqlx.SelectContext(ctx, r.ext, &lots, query, palletID, materialID)
	return lots, err
}

func (r *SQLRepository) FindByPallet(ctx context.Context, palletID string) ([]model.Inventory, error) {
	var lots []model.Inventory
	query := r.ext.Rebind(`SELECT * FROM inventory WHERE pallet_id = ? ORDER BY quantity DESC, id`)
	err := sqlx.SelectContext(ctx, r.ext, &lots, query, palletID)
	return lots, err
}

func (r *SQLRepository) FindAll(ctx context.Context, f *dto.LotFilters) ([]model.Inventory, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.PalletID != "" {
		conditions = append(conditions, "pallet_id = :pallet_id")
		args["pallet_id"] = f.PalletID
	}
	if f.MaterialID != "" {
		conditions = append(conditions, "material_id = :material_id")
		args["material_id"] = f.MaterialID
	}
	if f.AccountID != "" {
		conditions = append(conditions, "account_id = :account_id")
		args["account_id"] = f.AccountID
	}
	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	count, err := r.count(ctx, "SELECT count(*) FROM inventory"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM inventory" + whereClause + " ORDER BY updated_at DESC, id"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		if offset < 0 {
			offset = 0
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	var lots []model.Inventory
	bound, boundArgs, err := sqlx.Named(query, args)
	if err != nil {
		return nil, 0, err
	}
	err = sqlx.SelectContext(ctx, r.ext, &lots, r.ext.Rebind(bound), boundArgs...)
	return lots, count, err
}

func (r *SQLRepository) Create(ctx context.Context, lot *model.Inventory) error {
	if lot.Version == 0 {
		lot.Version = 1
	}
	if lot.UpdatedAt.IsZero() {
		lot.UpdatedAt = time.Now()
	}
	query := `
        INSERT INTO inventory (
            id, material_id, location_id, pallet_id, quantity, weight_actual,
            weight_unit, batch_number, expiry_date, account_id, status, version, updated_at
        )
        VALUES (
            :id, :material_id, :location_id, :pallet_id, :quantity, :weight_actual,
            :weight_unit, :batch_number, :expiry_date, :account_id, :status, :version, :updated_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, r.ext, query, lot)
	return err
}

// Save writes the lot's mutable fields, guarded by the version token read
// with the row. A concurrent writer bumps the version and this update
// matches zero rows.
func (r *SQLRepository) Save(ctx context.Context, lot *model.Inventory) error {
	lot.UpdatedAt = time.Now()
	query := r.ext.Rebind(`
        UPDATE inventory
        SET quantity = ?, weight_actual = ?, batch_number = ?, location_id = ?,
            status = ?, version = version + 1, updated_at = ?
        WHERE id = ? AND version = ?
    `)
	res, err := r.ext.ExecContext(ctx, query,
		lot.Quantity, lot.WeightActual, lot.BatchNumber, lot.LocationID,
		lot.Status, lot.UpdatedAt, lot.ID, lot.Version,
	)
	if err != nil {
		return fmt.Errorf("saving lot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrVersionConflict
	}
	lot.Version++
	return nil
}

func (r *SQLRepository) LogAdjustment(ctx context.Context, adj *model.InventoryAdjustment) error {
	query := `
        INSERT INTO inventory_adjustments (
            id, inventory_id, delta_quantity, reason, account_id, user_id, created_at
        )
        VALUES (:id, :inventory_id, :delta_quantity, :reason, :account_id, :user_id, :created_at)
    `
	_, err := sqlx.NamedExecContext(ctx, r.ext, query, adj)
	return err
}

func (r *SQLRepository) ListAdjustments(ctx context.Context, f *dto.AdjustmentFilters) ([]model.InventoryAdjustment, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.InventoryID != "" {
		conditions = append(conditions, "inventory_id = :inventory_id")
		args["inventory_id"] = f.InventoryID
	}
	if f.AccountID != "" {
		conditions = append(conditions, "account_id = :account_id")
		args["account_id"] = f.AccountID
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	count, err := r.count(ctx, "SELECT count(*) FROM inventory_adjustments"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM inventory_adjustments" + whereClause + " ORDER BY created_at DESC, id"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		if offset < 0 {
			offset = 0
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	var items []model.InventoryAdjustment
	bound, boundArgs, err := sqlx.Named(query, args)
	if err != nil {
		return nil, 0, err
	}
	err = sqlx.SelectContext(ctx, r.ext, &items, r.ext.Rebind(bound), boundArgs...)
	return items, count, err
}

func (r *SQLRepository) count(ctx context.Context, query string, args map[string]interface{}) (int, error) {
	bound, boundArgs, err := sqlx.Named(query, args)
	if err != nil {
		return 0, err
	}
	var count int
	err = sqlx.GetContext(ctx, r.ext, &count, r.ext.Rebind(bound), boundArgs...)
	return count, err
}
