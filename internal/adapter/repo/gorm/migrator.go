package gormrepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"skirmish/internal/adapter/repo/gorm/model"

	"gorm.io/gorm"
)

const createSchemaMigrationsSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

type migration struct {
	version string
	path    string
}

// ApplyMigrations runs every *.sql file in dir not yet recorded in schema_migrations,
// in file name order, each in its own transaction. It returns the versions it applied.
func ApplyMigrations(ctx context.Context, db *gorm.DB, dir string) ([]string, error) {
	if err := db.WithContext(ctx).Exec(createSchemaMigrationsSQL).Error; err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}
	pending, err := migrationFiles(dir)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, m := range pending {
		done, err := migrationApplied(ctx, db, m.version)
		if err != nil {
			return applied, err
		}
		if done {
			continue
		}
		if err := applyMigration(ctx, db, m); err != nil {
			return applied, err
		}
		applied = append(applied, m.version)
	}
	return applied, nil
}

func migrationFiles(dir string) ([]migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migration dir: %w", err)
	}
	var out []migration
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		out = append(out, migration{version: strings.TrimSuffix(name, ".sql"), path: filepath.Join(dir, name)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

func migrationApplied(ctx context.Context, db *gorm.DB, version string) (bool, error) {
	var rows []model.SchemaMigration
	if err := db.WithContext(ctx).Where(&model.SchemaMigration{Version: version}).Limit(1).Find(&rows).Error; err != nil {
		return false, fmt.Errorf("check migration %s: %w", version, err)
	}
	return len(rows) > 0, nil
}

func applyMigration(ctx context.Context, db *gorm.DB, m migration) error {
	content, err := os.ReadFile(m.path)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", m.version, err)
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(string(content)).Error; err != nil {
			return fmt.Errorf("apply migration %s: %w", m.version, err)
		}
		if err := tx.Create(&model.SchemaMigration{Version: m.version, AppliedAt: time.Now().UTC()}).Error; err != nil {
			return fmt.Errorf("record migration %s: %w", m.version, err)
		}
		return nil
	})
}
