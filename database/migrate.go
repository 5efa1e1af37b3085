package database

import (
	"fmt"

	"mediverse-backend/models"

	"gorm.io/gorm"
)

// Migrate applies (idempotent) schema migrations:
// - AutoMigrate (tables/columns/index tags)
// - Money column types (NUMERIC(12,2))
// - Unique index invoices.session_key (the at-most-one-invoice-per-session guard)
// - Basic CHECK constraints (stock quantity, line item quantity, payment amount)
func Migrate() error {
	return DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(
			&models.Admin{},
			&models.Customer{},
			&models.CustomerAddress{},
			&models.Supplier{},
			&models.Medicine{},
			&models.Stock{},
			&models.LineItem{},
			&models.PurchaseSession{},
			&models.Invoice{},
			&models.Payment{},
			&models.Feedback{},
			&models.IdempotencyKey{},
		); err != nil {
			return fmt.Errorf("automigrate failed: %w", err)
		}

		// --- Enforce money columns as NUMERIC(12,2) (idempotent ALTERs) ---
		alters := []string{
			`ALTER TABLE medicines         ALTER COLUMN unit_price        TYPE numeric(12,2)`,
			`ALTER TABLE line_items        ALTER COLUMN amount            TYPE numeric(12,2)`,
			`ALTER TABLE purchase_sessions ALTER COLUMN actual_amt_to_pay TYPE numeric(12,2)`,
			`ALTER TABLE invoices          ALTER COLUMN total_to_pay      TYPE numeric(12,2)`,
			`ALTER TABLE invoices          ALTER COLUMN prev_balance      TYPE numeric(12,2)`,
			`ALTER TABLE invoices          ALTER COLUMN discount          TYPE numeric(12,2)`,
			`ALTER TABLE invoices          ALTER COLUMN net_total         TYPE numeric(12,2)`,
			`ALTER TABLE invoices          ALTER COLUMN paid_total        TYPE numeric(12,2)`,
			`ALTER TABLE invoices          ALTER COLUMN curr_balance      TYPE numeric(12,2)`,
			`ALTER TABLE payments          ALTER COLUMN amount            TYPE numeric(12,2)`,
			`ALTER TABLE customers         ALTER COLUMN balance_amt       TYPE numeric(12,2)`,
		}
		for _, stmt := range alters {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("money type migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Indexes (idempotent) ---
		indexes := []string{
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_invoices_session_key ON invoices (session_key)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_stocks_medicine_supplier ON stocks (medicine_id, supplier_id)`,
			`CREATE INDEX IF NOT EXISTS idx_line_items_session_key ON line_items (session_key)`,
			`CREATE INDEX IF NOT EXISTS idx_payments_invoice_paid_at ON payments (invoice_no, paid_at)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_idempotency_keys_key ON idempotency_keys (key)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Basic CHECK constraints (idempotent) ---
		checks := []string{
			// Stock can never be negative.
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'stocks'::regclass
					  AND conname  = 'chk_stocks_quantity_nonneg'
				) THEN
					ALTER TABLE stocks
					ADD CONSTRAINT chk_stocks_quantity_nonneg
					CHECK (quantity >= 0);
				END IF;
			END $$;`,
			// Line items carry a positive quantity.
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'line_items'::regclass
					  AND conname  = 'chk_line_items_quantity_pos'
				) THEN
					ALTER TABLE line_items
					ADD CONSTRAINT chk_line_items_quantity_pos
					CHECK (quantity > 0);
				END IF;
			END $$;`,
			// Payments.amount > 0
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'payments'::regclass
					  AND conname  = 'chk_payments_amount_pos'
				) THEN
					ALTER TABLE payments
					ADD CONSTRAINT chk_payments_amount_pos
					CHECK (amount > 0);
				END IF;
			END $$;`,
			// Non-negative medicine price.
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'medicines'::regclass
					  AND conname  = 'chk_medicines_unit_price_nonneg'
				) THEN
					ALTER TABLE medicines
					ADD CONSTRAINT chk_medicines_unit_price_nonneg
					CHECK (unit_price >= 0);
				END IF;
			END $$;`,
		}
		for _, stmt := range checks {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed: %w", err)
			}
		}

		return nil
	})
}
