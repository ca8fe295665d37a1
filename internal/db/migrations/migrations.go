package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/neboloop/runbook/internal/logging"
)

//go:embed sql/*.sql
var embedded embed.FS

const dir = "sql"

// goose keeps its dialect and filesystem in package state.
var mu sync.Mutex

type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) { logging.Debugf(format, v...) }

func (gooseLogger) Fatalf(format string, v ...any) {
	logging.Errorf(format, v...)
	os.Exit(1)
}

func setup() error {
	goose.SetBaseFS(embedded)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return nil
}

// Run applies every pending migration.
func Run(db *sql.DB) error {
	mu.Lock()
	defer mu.Unlock()
	if err := setup(); err != nil {
		return err
	}
	return goose.Up(db, dir)
}

// Down rolls back the most recent migration.
func Down(db *sql.DB) error {
	mu.Lock()
	defer mu.Unlock()
	if err := setup(); err != nil {
		return err
	}
	return goose.Down(db, dir)
}

// Version returns the currently applied schema version.
func Version(db *sql.DB) (int64, error) {
	mu.Lock()
	defer mu.Unlock()
	if err := setup(); err != nil {
		return 0, err
	}
	return goose.GetDBVersion(db)
}
