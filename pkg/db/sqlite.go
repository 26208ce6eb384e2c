// Package db opens SQLite databases with split read/write pools. Writes go
// through a single connection to avoid SQLITE_BUSY under WAL; reads get a
// small concurrent pool.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"

	_ "modernc.org/sqlite"
)

type DB struct {
	read  *sql.DB
	write *sql.DB
}

func connString(file string, readonly bool) string {
	params := make(url.Values)
	params.Add("_journal_mode", "WAL")
	params.Add("_busy_timeout", "5000")
	params.Add("_synchronous", "NORMAL")
	params.Add("_cache_size", "-20000")
	params.Add("_foreign_keys", "true")

	if readonly {
		params.Add("mode", "ro")
	} else {
		params.Add("_txlock", "immediate")
		params.Add("mode", "rwc")
	}

	return "file:" + file + "?" + params.Encode()
}

func openPool(file string, readonly bool) (*sql.DB, error) {
	pool, err := sql.Open("sqlite", connString(file, readonly))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	for _, pragma := range []string{"temp_store=memory", "busy_timeout=10000"} {
		if _, err := pool.Exec("PRAGMA " + pragma + ";"); err != nil {
			pool.Close()
			return nil, fmt.Errorf("set PRAGMA %s: %w", pragma, err)
		}
	}

	if readonly {
		conns := max(4, runtime.NumCPU())
		pool.SetMaxOpenConns(conns)
		pool.SetMaxIdleConns(conns)
	} else {
		pool.SetMaxOpenConns(1)
		pool.SetMaxIdleConns(1)
	}

	return pool, nil
}

// Open creates the parent directory if needed and opens both pools.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	write, err := openPool(dbPath, false)
	if err != nil {
		return nil, fmt.Errorf("open write pool: %w", err)
	}

	read, err := openPool(dbPath, true)
	if err != nil {
		write.Close()
		return nil, fmt.Errorf("open read pool: %w", err)
	}

	return &DB{read: read, write: write}, nil
}

func (d *DB) Read() *sql.DB { return d.read }

func (d *DB) Write() *sql.DB { return d.write }

// WithTx runs fn inside an immediate write transaction; the lock is taken
// up front so deferred upgrades cannot hit SQLITE_BUSY.
func (d *DB) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := d.write.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func (d *DB) Close() error {
	var errs []error
	if err := d.read.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close read pool: %w", err))
	}
	if err := d.write.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close write pool: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close database: %v", errs)
	}
	return nil
}
