package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ai-teacher/internal/logger"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// oraObjectExists is raised when a CREATE targets an existing table or index.
const oraObjectExists = "ORA-00955"

// RunMigrations executes every *.up.sql file in dir in name order.
// Files whose objects already exist are skipped, so reruns are safe.
func RunMigrations(ctx context.Context, db *sqlx.DB, dir string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("could not read migrations directory: %w", err)
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		if !f.IsDir() && strings.HasSuffix(f.Name(), ".up.sql") {
			names = append(names, f.Name())
		}
	}
	sort.Strings(names)

	l := logger.Get()
	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("could not read migration file %s: %w", name, err)
		}
		stmt := strings.TrimSuffix(strings.TrimSpace(string(content)), ";")
		if stmt == "" {
			continue
		}

		if _, err := db.ExecContext(ctx, stmt); err != nil {
			if strings.Contains(err.Error(), oraObjectExists) {
				l.Info("Migration already applied", zap.String("file", name))
				continue
			}
			return fmt.Errorf("could not execute migration %s: %w", name, err)
		}
		l.Info("Executed migration", zap.String("file", name))
	}

	l.Info("Migrations completed successfully", zap.Int("files", len(names)))
	return nil
}
