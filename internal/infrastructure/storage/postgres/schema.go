package postgres

import (
	"context"
	"fmt"
)

// schemaStatements creates all tables and indexes if they do not exist yet.
// Statements are ordered so foreign keys always reference existing tables.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS cat_products (
		id UUID PRIMARY KEY,
		code VARCHAR(20) NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL,
		type VARCHAR(20) NOT NULL,
		barcode VARCHAR(64),
		unit VARCHAR(20) NOT NULL DEFAULT 'pcs',
		stock INTEGER NOT NULL DEFAULT 0,
		min_quantity INTEGER,
		purchase_price NUMERIC(12,2),
		sale_price NUMERIC(12,2),
		track_stock BOOLEAN NOT NULL DEFAULT true,
		is_active BOOLEAN NOT NULL DEFAULT true,
		description TEXT,
		deletion_mark BOOLEAN NOT NULL DEFAULT false,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		created_by VARCHAR(64) NOT NULL DEFAULT '',
		updated_by VARCHAR(64) NOT NULL DEFAULT ''
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_cat_products_barcode
		ON cat_products (barcode) WHERE barcode IS NOT NULL AND deletion_mark = false`,
	`CREATE INDEX IF NOT EXISTS idx_cat_products_low_stock
		ON cat_products (name)
		WHERE deletion_mark = false AND is_active = true
			AND min_quantity IS NOT NULL AND stock < min_quantity`,

	`CREATE TABLE IF NOT EXISTS cat_suppliers (
		id UUID PRIMARY KEY,
		code VARCHAR(20) NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL,
		contact_name VARCHAR(255),
		phone VARCHAR(32),
		email VARCHAR(255),
		notes TEXT,
		is_active BOOLEAN NOT NULL DEFAULT true,
		deletion_mark BOOLEAN NOT NULL DEFAULT false,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		created_by VARCHAR(64) NOT NULL DEFAULT '',
		updated_by VARCHAR(64) NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS doc_deliveries (
		id UUID PRIMARY KEY,
		number VARCHAR(20) NOT NULL UNIQUE,
		date TIMESTAMPTZ NOT NULL,
		comment TEXT NOT NULL DEFAULT '',
		supplier_id UUID REFERENCES cat_suppliers(id),
		status VARCHAR(20) NOT NULL,
		invoice_number VARCHAR(64),
		delivery_date TIMESTAMPTZ NOT NULL,
		received_date TIMESTAMPTZ,
		received_by VARCHAR(64),
		total_cost NUMERIC(14,2) NOT NULL DEFAULT 0,
		notes TEXT,
		deletion_mark BOOLEAN NOT NULL DEFAULT false,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		created_by VARCHAR(64) NOT NULL DEFAULT '',
		updated_by VARCHAR(64) NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_doc_deliveries_supplier ON doc_deliveries (supplier_id)`,
	`CREATE INDEX IF NOT EXISTS idx_doc_deliveries_date ON doc_deliveries (date DESC)`,

	`CREATE TABLE IF NOT EXISTS doc_delivery_items (
		id UUID PRIMARY KEY,
		delivery_id UUID NOT NULL REFERENCES doc_deliveries(id) ON DELETE CASCADE,
		line_no INTEGER NOT NULL,
		product_id UUID NOT NULL REFERENCES cat_products(id),
		quantity INTEGER NOT NULL,
		unit_cost NUMERIC(12,2) NOT NULL DEFAULT 0,
		total_cost NUMERIC(14,2) NOT NULL DEFAULT 0,
		batch_number VARCHAR(64),
		expiry_date DATE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_doc_delivery_items_delivery ON doc_delivery_items (delivery_id)`,

	`CREATE TABLE IF NOT EXISTS doc_stocktakings (
		id UUID PRIMARY KEY,
		number VARCHAR(20) NOT NULL UNIQUE,
		date TIMESTAMPTZ NOT NULL,
		comment TEXT NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL,
		stocktaking_date TIMESTAMPTZ NOT NULL,
		started_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ,
		completed_by VARCHAR(64),
		notes TEXT,
		deletion_mark BOOLEAN NOT NULL DEFAULT false,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		created_by VARCHAR(64) NOT NULL DEFAULT '',
		updated_by VARCHAR(64) NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS doc_stocktaking_items (
		id UUID PRIMARY KEY,
		stocktaking_id UUID NOT NULL REFERENCES doc_stocktakings(id) ON DELETE CASCADE,
		product_id UUID NOT NULL REFERENCES cat_products(id),
		system_quantity INTEGER NOT NULL,
		counted_quantity INTEGER,
		difference INTEGER NOT NULL DEFAULT 0,
		UNIQUE (stocktaking_id, product_id)
	)`,

	`CREATE TABLE IF NOT EXISTS doc_warehouse_orders (
		id UUID PRIMARY KEY,
		number VARCHAR(20) NOT NULL UNIQUE,
		date TIMESTAMPTZ NOT NULL,
		comment TEXT NOT NULL DEFAULT '',
		supplier_id UUID REFERENCES cat_suppliers(id),
		status VARCHAR(20) NOT NULL,
		sent_at TIMESTAMPTZ,
		received_at TIMESTAMPTZ,
		notes TEXT,
		deletion_mark BOOLEAN NOT NULL DEFAULT false,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		created_by VARCHAR(64) NOT NULL DEFAULT '',
		updated_by VARCHAR(64) NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_doc_warehouse_orders_supplier ON doc_warehouse_orders (supplier_id)`,

	`CREATE TABLE IF NOT EXISTS doc_warehouse_order_items (
		id UUID PRIMARY KEY,
		order_id UUID NOT NULL REFERENCES doc_warehouse_orders(id) ON DELETE CASCADE,
		line_no INTEGER NOT NULL,
		product_id UUID REFERENCES cat_products(id),
		product_name VARCHAR(255) NOT NULL,
		quantity INTEGER NOT NULL,
		received_quantity INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_doc_warehouse_order_items_order ON doc_warehouse_order_items (order_id)`,

	`CREATE TABLE IF NOT EXISTS product_movements (
		id UUID PRIMARY KEY,
		product_id UUID NOT NULL REFERENCES cat_products(id),
		movement_type VARCHAR(20) NOT NULL,
		quantity INTEGER NOT NULL,
		quantity_before INTEGER NOT NULL,
		quantity_after INTEGER NOT NULL,
		source_type VARCHAR(20) NOT NULL,
		source_id UUID,
		reason TEXT,
		created_by VARCHAR(64) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_product_movements_history
		ON product_movements (product_id, created_at DESC, id DESC)`,

	`CREATE TABLE IF NOT EXISTS sys_sequences (
		key VARCHAR(32) PRIMARY KEY,
		current_val BIGINT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS sys_audit (
		id UUID PRIMARY KEY,
		entity_type VARCHAR(50) NOT NULL,
		entity_id UUID NOT NULL,
		action VARCHAR(20) NOT NULL,
		user_id VARCHAR(64) NOT NULL DEFAULT '',
		changes JSONB,
		changes_compressed BYTEA,
		compression_algo VARCHAR(10) NOT NULL DEFAULT 'none',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sys_audit_entity
		ON sys_audit (entity_type, entity_id, created_at DESC)`,
}

// EnsureSchema creates any missing tables and indexes. Every statement is
// idempotent, so running it on every startup is safe.
func (p *Pool) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := p.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	return nil
}
