package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/kurniadi/wms-vas-service/internal/model"
	"github.com/kurniadi/wms-vas-service/internal/vas"
	"github.com/kurniadi/wms-vas-service/internal/vas/dto"
)

type SQLRepository struct {
	ext sqlx.ExtContext
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{ext: db}
}

func (r *SQLRepository) WithTx(tx *sqlx.Tx) vas.Repository {
	return &SQLRepository{ext: tx}
}

func (r *SQLRepository) Create(ctx context.Context, txn *model.VASTransaction) error {
	query := `
        INSERT INTO vas_transactions (
            id, account_id, pallet_id, service_type, user_id, occurred_at,
            description, status, is_voided, voided_at, voided_by_user_id, void_reason
        )
        VALUES (
            :id, :account_id, :pallet_id, :service_type, :user_id, :occurred_at,
            :description, :status, :is_voided, :voided_at, :voided_by_user_id, :void_reason
        )
    `
	if _, err := sqlx.NamedExecContext(ctx, r.ext, query, txn); err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}

	lineQuery := `
        INSERT INTO vas_transaction_lines (
            id, transaction_id, line_no, material_id, quantity, weight, is_input,
            original_quantity, original_weight, is_amended, amended_at
        )
        VALUES (
            :id, :transaction_id, :line_no, :material_id, :quantity, :weight, :is_input,
            :original_quantity, :original_weight, :is_amended, :amended_at
        )
    `
	for i := range txn.Lines {
		if _, err := sqlx.NamedExecContext(ctx, r.ext, lineQuery, &txn.Lines[i]); err != nil {
			return fmt.Errorf("inserting transaction line: %w", err)
		}
	}
	return nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*model.VASTransaction, error) {
	var txn model.VASTransaction
	query := r.ext.Rebind(`SELECT * FROM vas_transactions WHERE id = ?`)
	err := sqlx.GetContext(ctx, r.ext, &txn, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	linesQuery := r.ext.Rebind(`SELECT * FROM vas_transaction_lines WHERE transaction_id = ? ORDER BY line_no`)
	if err := sqlx.SelectContext(ctx, r.ext, &txn.Lines, linesQuery, id); err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *SQLRepository) FindAll(ctx context.Context, f *dto.TransactionFilters) ([]model.VASTransaction, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.AccountID != "" {
		conditions = append(conditions, "account_id = :account_id")
		args["account_id"] = f.AccountID
	}
	if f.ServiceType != "" {
		conditions = append(conditions, "service_type = :service_type")
		args["service_type"] = f.ServiceType
	}
	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}
	if !f.IncludeVoided {
		conditions = append(conditions, "NOT is_voided")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM vas_transactions" + whereClause
	bound, boundArgs, err := sqlx.Named(countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	var count int
	if err := sqlx.GetContext(ctx, r.ext, &count, r.ext.Rebind(bound), boundArgs...); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM vas_transactions" + whereClause + " ORDER BY occurred_at DESC, id"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		if offset < 0 {
			offset = 0
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	var txns []model.VASTransaction
	bound, boundArgs, err = sqlx.Named(query, args)
	if err != nil {
		return nil, 0, err
	}
	err = sqlx.SelectContext(ctx, r.ext, &txns, r.ext.Rebind(bound), boundArgs...)
	return txns, count, err
}

func (r *SQLRepository) UpdateLine(ctx context.Context, line *model.VASTransactionLine) error {
	query := `
        UPDATE vas_transaction_lines
        SET quantity = :quantity, weight = :weight,
            original_quantity = :original_quantity, original_weight = :original_weight,
            is_amended = :is_amended, amended_at = :amended_at
        WHERE id = :id
    `
	_, err := sqlx.NamedExecContext(ctx, r.ext, query, line)
	return err
}

func (r *SQLRepository) SetCompleted(ctx context.Context, txn *model.VASTransaction) error {
	query := r.ext.Rebind(`UPDATE vas_transactions SET status = ? WHERE id = ?`)
	_, err := r.ext.ExecContext(ctx, query, txn.Status, txn.ID)
	return err
}

func (r *SQLRepository) SetVoided(ctx context.Context, txn *model.VASTransaction) error {
	query := `
        UPDATE vas_transactions
        SET is_voided = :is_voided, voided_at = :voided_at,
            voided_by_user_id = :voided_by_user_id, void_reason = :void_reason
        WHERE id = :id
    `
	_, err := sqlx.NamedExecContext(ctx, r.ext, query, txn)
	return err
}

func (r *SQLRepository) LogAmendment(ctx context.Context, am *model.VASTransactionAmendment) error {
	query := `
        INSERT INTO vas_transaction_amendments (
            id, original_transaction_id, user_id, reason, amendment_type, details, created_at
        )
        VALUES (:id, :original_transaction_id, :user_id, :reason, :amendment_type, :details, :created_at)
    `
	_, err := sqlx.NamedExecContext(ctx, r.ext, query, am)
	return err
}

func (r *SQLRepository) ListAmendments(ctx context.Context, transactionID string) ([]model.VASTransactionAmendment, error) {
	var items []model.VASTransactionAmendment
	query := r.ext.Rebind(`
        SELECT * FROM vas_transaction_amendments
        WHERE original_transaction_id = ?
        ORDER BY created_at, id
    `)
	err := sqlx.SelectContext(ctx, r.ext, &items, query, transactionID)
	return items, err
}
