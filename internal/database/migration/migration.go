package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

// schema holds the ordered steps and the sentinel check for one SQL dialect.
type schema struct {
	Sentinel string
	Steps    []migrationStep
}

var schemas = map[string]schema{
	"postgres": {
		Sentinel: "SELECT to_regclass('public.tags') IS NOT NULL",
		Steps: []migrationStep{
			{
				Name: "create_table_documents",
				SQL: `CREATE TABLE IF NOT EXISTS documents (
  id            UUID        PRIMARY KEY,
  user_name     TEXT        NOT NULL,
  document_name TEXT        NOT NULL,
  storage_path  TEXT        NOT NULL,
  file_size     BIGINT      NOT NULL CHECK (file_size >= 0),
  file_type     TEXT        NOT NULL,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
			},
			{
				Name: "create_table_tags",
				SQL: `CREATE TABLE IF NOT EXISTS tags (
  id          BIGSERIAL PRIMARY KEY,
  document_id UUID      NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  tag_name    TEXT      NOT NULL,
  UNIQUE (document_id, tag_name)
);`,
			},
			{
				Name: "create_index_documents_user_name",
				SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_user_name ON documents (user_name);`,
			},
			{
				Name: "create_index_documents_created_at",
				SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents (created_at DESC, id DESC);`,
			},
			{
				Name: "create_index_documents_storage_path",
				SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_storage_path ON documents (storage_path);`,
			},
			{
				Name: "create_index_tags_tag_name",
				SQL:  `CREATE INDEX IF NOT EXISTS idx_tags_tag_name ON tags (tag_name, document_id);`,
			},
		},
	},
	"sqlite": {
		Sentinel: "SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = 'tags')",
		Steps: []migrationStep{
			{
				Name: "create_table_documents",
				SQL: `CREATE TABLE IF NOT EXISTS documents (
  id            TEXT    PRIMARY KEY,
  user_name     TEXT    NOT NULL,
  document_name TEXT    NOT NULL,
  storage_path  TEXT    NOT NULL,
  file_size     INTEGER NOT NULL CHECK (file_size >= 0),
  file_type     TEXT    NOT NULL,
  created_at    TEXT    NOT NULL,
  updated_at    TEXT    NOT NULL
);`,
			},
			{
				Name: "create_table_tags",
				SQL: `CREATE TABLE IF NOT EXISTS tags (
  id          INTEGER PRIMARY KEY AUTOINCREMENT,
  document_id TEXT    NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  tag_name    TEXT    NOT NULL,
  UNIQUE (document_id, tag_name)
);`,
			},
			{
				Name: "create_index_documents_user_name",
				SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_user_name ON documents (user_name);`,
			},
			{
				Name: "create_index_documents_created_at",
				SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents (created_at DESC, id DESC);`,
			},
			{
				Name: "create_index_documents_storage_path",
				SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_storage_path ON documents (storage_path);`,
			},
			{
				Name: "create_index_tags_tag_name",
				SQL:  `CREATE INDEX IF NOT EXISTS idx_tags_tag_name ON tags (tag_name, document_id);`,
			},
		},
	},
}

// EnsureMigrated checks if the 'tags' table exists and runs migrations if it doesn't.
// driver selects the schema dialect ("postgres" or "sqlite").
func EnsureMigrated(ctx context.Context, db *sql.DB, driver string, logger *zap.Logger) error {
	start := time.Now()
	sc, ok := schemas[driver]
	if !ok {
		return fmt.Errorf("no schema for driver %q", driver)
	}
	log := logger.With(zap.String("component", "database"), zap.String("db_driver", driver))

	log.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	if err := db.QueryRowContext(ctx, sc.Sentinel).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.String("reason", "schema already exists, skipping migration"),
			zap.Duration("duration", time.Since(start)),
		)
		return nil
	}

	log.Info("db_migration_start", zap.String("status", "in_progress"), zap.Int("steps", len(sc.Steps)))

	for _, step := range sc.Steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Duration("duration", time.Since(start)),
				zap.Duration("step_duration", time.Since(stepStart)),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Duration("step_duration", time.Since(stepStart)),
		)
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}
