package migration

import (
	"context"
	"fmt"

	"datalens/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createDatasetsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create datasets table")
	}

	if err := r.createQueryHistoryTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create query_history table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createDatasetsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS datasets (
			id UUID PRIMARY KEY,

			-- File information
			original_filename VARCHAR(255) NOT NULL,
			file_path TEXT,
			file_size BIGINT,
			mime_type VARCHAR(100),

			-- Dataset shape
			record_count INTEGER,
			field_count INTEGER,
			missing_rate DECIMAL(5,4) DEFAULT 0.0,
			source VARCHAR(50) DEFAULT 'csv',

			-- Processing status: processing, ready, failed
			status VARCHAR(50) DEFAULT 'processing',
			error_message TEXT,

			-- Rich metadata stored as JSONB (fields, sample rows, file info)
			metadata JSONB,

			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createQueryHistoryTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS query_history (
			id UUID PRIMARY KEY,
			dataset_id UUID NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
			question TEXT NOT NULL,
			tier VARCHAR(20) NOT NULL,
			spec JSONB,
			success BOOLEAN NOT NULL,
			error_message TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_datasets_status ON datasets(status)",
		"CREATE INDEX IF NOT EXISTS idx_datasets_created_at ON datasets(created_at DESC)",

		"CREATE INDEX IF NOT EXISTS idx_history_dataset_id ON query_history(dataset_id)",
		"CREATE INDEX IF NOT EXISTS idx_history_dataset_created ON query_history(dataset_id, created_at DESC)",
	}

	for _, idxSQL := range indexes {
		if _, err := db.ExecContext(ctx, idxSQL); err != nil {
			// Log but don't fail on index creation errors
			fmt.Printf("Warning: failed to create index: %v\n", err)
		}
	}

	return nil
}
