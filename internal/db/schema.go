package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is the full database schema. Statements are portable between
// PostgreSQL (production) and SQLite (tests).
const schema = `
CREATE TABLE IF NOT EXISTS materials (
    id              TEXT PRIMARY KEY,
    sku             TEXT NOT NULL,
    name            TEXT NOT NULL,
    unit_of_measure TEXT NOT NULL DEFAULT 'EA',
    is_active       BOOLEAN NOT NULL DEFAULT TRUE,
    created_at      TIMESTAMP NOT NULL,
    updated_at      TIMESTAMP NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_materials_sku ON materials(sku);

CREATE TABLE IF NOT EXISTS inventory (
    id            TEXT PRIMARY KEY,
    material_id   TEXT NOT NULL,
    location_id   TEXT NOT NULL,
    pallet_id     TEXT NOT NULL,
    quantity      REAL NOT NULL,
    weight_actual REAL NOT NULL,
    weight_unit   TEXT NOT NULL DEFAULT 'kg',
    batch_number  TEXT NOT NULL DEFAULT '',
    expiry_date   TIMESTAMP,
    account_id    TEXT NOT NULL,
    status        TEXT NOT NULL DEFAULT 'available',
    version       INTEGER NOT NULL DEFAULT 1,
    updated_at    TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_inventory_pallet_material ON inventory(pallet_id, material_id);

CREATE TABLE IF NOT EXISTS inventory_adjustments (
    id             TEXT PRIMARY KEY,
    inventory_id   TEXT NOT NULL REFERENCES inventory(id),
    delta_quantity REAL NOT NULL,
    reason         TEXT NOT NULL,
    account_id     TEXT NOT NULL,
    user_id        TEXT NOT NULL,
    created_at     TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_adjustments_inventory ON inventory_adjustments(inventory_id);

CREATE TABLE IF NOT EXISTS vas_transactions (
    id                TEXT PRIMARY KEY,
    account_id        TEXT NOT NULL,
    pallet_id         TEXT,
    service_type      TEXT NOT NULL,
    user_id           TEXT NOT NULL,
    occurred_at       TIMESTAMP NOT NULL,
    description       TEXT NOT NULL DEFAULT '',
    status            TEXT NOT NULL DEFAULT 'planned',
    is_voided         BOOLEAN NOT NULL DEFAULT FALSE,
    voided_at         TIMESTAMP,
    voided_by_user_id TEXT,
    void_reason       TEXT
);

CREATE INDEX IF NOT EXISTS idx_vas_transactions_account ON vas_transactions(account_id);

CREATE TABLE IF NOT EXISTS vas_transaction_lines (
    id                TEXT PRIMARY KEY,
    transaction_id    TEXT NOT NULL REFERENCES vas_transactions(id),
    line_no           INTEGER NOT NULL,
    material_id       TEXT,
    quantity          REAL NOT NULL,
    weight            REAL NOT NULL,
    is_input          BOOLEAN NOT NULL,
    original_quantity REAL,
    original_weight   REAL,
    is_amended        BOOLEAN NOT NULL DEFAULT FALSE,
    amended_at        TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_vas_lines_transaction ON vas_transaction_lines(transaction_id);

CREATE TABLE IF NOT EXISTS vas_transaction_amendments (
    id                      TEXT PRIMARY KEY,
    original_transaction_id TEXT NOT NULL REFERENCES vas_transactions(id),
    user_id                 TEXT NOT NULL,
    reason                  TEXT NOT NULL,
    amendment_type          TEXT NOT NULL,
    details                 TEXT NOT NULL DEFAULT '{}',
    created_at              TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_vas_amendments_transaction ON vas_transaction_amendments(original_transaction_id);
`

// EnsureSchema creates all tables and indexes if they do not exist.
func EnsureSchema(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}
