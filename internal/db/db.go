// Package db opens the SQLite capture files used for bus replay and keeps
// their schema current.
package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const driverName = "sqlite3"

type Options struct {
	// Path is a file path or a "file:" URI.
	Path string
	// ReadOnly opens the file with mode=ro and skips directory creation.
	ReadOnly bool
	// TraceSQL logs every statement at debug level through Logger.
	TraceSQL bool
	Logger   *slog.Logger
}

func Open(opts Options) (*sql.DB, error) {
	dsn, err := buildDSN(opts)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	if opts.TraceSQL {
		db = sql.OpenDB(NewTracingConnector(dsn, opts.Logger))
	} else {
		db, err = sql.Open(driverName, dsn)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
	}

	// One writer at a time; capture files are small.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping %s: %w", opts.Path, err)
	}
	return db, nil
}

func buildDSN(opts Options) (string, error) {
	path := opts.Path
	if path == "" {
		return "", fmt.Errorf("db: empty path")
	}

	params := []string{"_busy_timeout=5000"}
	if opts.ReadOnly {
		params = append(params, "mode=ro")
	} else {
		params = append(params, "_journal_mode=WAL")
		if dir := filepath.Dir(strings.TrimPrefix(path, "file:")); dir != "." && !strings.HasPrefix(path, ":memory:") {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
	}

	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}
	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}
