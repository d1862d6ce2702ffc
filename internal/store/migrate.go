package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"

	// pgx stdlib driver for goose, which runs on database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"nutrition-scheduler/internal/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// goose keeps its base FS, dialect and logger in package state.
var gooseMu sync.Mutex

// Migrate applies the embedded schema migrations to the database at dsn.
func Migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open db for migrations: %w", err)
	}
	defer db.Close()

	if err := MigrateUp(ctx, db, migrationsFS, "postgres"); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// MigrateUp runs goose over the migrations directory of fsys, logging
// through the context logger.
func MigrateUp(ctx context.Context, db *sql.DB, fsys fs.FS, dialect string) error {
	gooseMu.Lock()
	defer func() {
		goose.SetBaseFS(nil)
		gooseMu.Unlock()
	}()
	goose.SetLogger(NewGooseLogger(logger.FromContext(ctx)))
	goose.SetBaseFS(fsys)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, "migrations")
}

type gooseLogger struct {
	log logger.Logger
}

// NewGooseLogger adapts l to goose's printf-style logger.
func NewGooseLogger(l logger.Logger) goose.Logger {
	return gooseLogger{log: l.With("component", "migrate")}
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.log.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
	os.Exit(1)
}
