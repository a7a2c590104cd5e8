package infra

import (
	"fmt"

	"makepri/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create/update all tables, then applies the idempotent SQL patches that GORM
// cannot express (partial unique indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true, // duplicate-key violations surface as gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates/updates the schema. Also used by integration tests
// against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Product{},
		&model.BundleComponent{},
		&model.PriceHistory{},
		&model.StockMovement{},
		&model.Customer{},
		&model.CashSession{},
		&model.CashMovement{},
		&model.Sale{},
		&model.SaleItem{},
		&model.FinancialRecord{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot produce.
// The partial unique index below is the server-side guarantee that two
// concurrent "open register" requests for the same drawer cannot both
// succeed — the loser gets a duplicate-key error, not a second open session.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_cash_sessions_open_drawer') THEN
		    CREATE UNIQUE INDEX uni_cash_sessions_open_drawer
		        ON cash_sessions (drawer)
		        WHERE status = 'open';
		  END IF;
		END $$`,
		// Ticket numbers come from a dedicated sequence, not a table scan
		`CREATE SEQUENCE IF NOT EXISTS sale_ticket_seq START 1`,
		// Partial index for the receipt retry cron query
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_sales_receipt_pending') THEN
		    CREATE INDEX idx_sales_receipt_pending
		        ON sales (next_retry_at)
		        WHERE receipt_status = 'pending' AND next_retry_at IS NOT NULL;
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("schema patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
