package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/kurniadi/wms-vas-service/internal/material"
	"github.com/kurniadi/wms-vas-service/internal/model"
)

type SQLRepository struct {
	ext sqlx.ExtContext
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{ext: db}
}

func (r *SQLRepository) WithTx(tx *sqlx.Tx) material.Repository {
	return &SQLRepository{ext: tx}
}

func (r *SQLRepository) FindByID(ctx context.Context, id string) (*model.Material, error) {
	var m model.Material
	query := r.ext.Rebind(`SELECT * FROM materials WHERE id = ?`)
	err := sqlx.GetContext(ctx, r.ext, &m, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *SQLRepository) FindAll(ctx context.Context, activeOnly bool) ([]model.Material, error) {
	query := `SELECT * FROM materials`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY sku`

	var items []model.Material
	err := sqlx.SelectContext(ctx, r.ext, &items, r.ext.Rebind(query))
	return items, err
}

func (r *SQLRepository) Create(ctx context.Context, m *model.Material) error {
	query := `
        INSERT INTO materials (id, sku, name, unit_of_measure, is_active, created_at, updated_at)
        VALUES (:id, :sku, :name, :unit_of_measure, :is_active, :created_at, :updated_at)
    `
	_, err := sqlx.NamedExecContext(ctx, r.ext, query, m)
	return err
}
