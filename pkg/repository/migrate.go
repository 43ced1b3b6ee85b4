package repository

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"sort"

	"github.com/pkg/errors"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies every embedded migration in file name order. Statements are idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		body, err := migrationFiles.ReadFile(name)
		if err != nil {
			return errors.Wrapf(err, "read %s", name)
		}
		if _, err := db.ExecContext(ctx, string(body)); err != nil {
			return errors.Wrapf(err, "apply %s", name)
		}
	}
	return nil
}
