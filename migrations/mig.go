package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed files/*.sql
var migrationFS embed.FS

var setupOnce sync.Once
var setupErr error

// goose keeps its FS and dialect in package state; set them once.
func setup() error {
	setupOnce.Do(func() {
		goose.SetBaseFS(migrationFS)
		if err := goose.SetDialect("sqlite3"); err != nil {
			setupErr = fmt.Errorf("set goose dialect: %w", err)
		}
	})
	return setupErr
}

func Up(ctx context.Context, db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "files"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Version reports the applied schema version.
func Version(ctx context.Context, db *sql.DB) (int64, error) {
	if err := setup(); err != nil {
		return 0, err
	}
	v, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}
