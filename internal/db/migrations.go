package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS tender_snapshot (
		id VARCHAR(64) PRIMARY KEY,
		region_code VARCHAR(8) NOT NULL DEFAULT 'CL-XX',
		status VARCHAR(16) NOT NULL DEFAULT '',
		payload JSONB NOT NULL,
		fetched_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_tender_snapshot_region ON tender_snapshot (region_code);`,
	`CREATE INDEX IF NOT EXISTS idx_tender_snapshot_fetched_at ON tender_snapshot (fetched_at);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
