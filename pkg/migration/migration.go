// Package migration applies versioned SQL migrations from an embedded
// filesystem. Files are named NNN_description.up.sql / NNN_description.down.sql
// under a "migrations" directory; applied versions are tracked in a
// schema_migrations table with a dirty flag.
package migration

import (
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
)

type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

type Runner struct {
	db   *sql.DB
	fsys fs.FS
}

// NewRunner prepares a runner over the caller's migration filesystem; the
// schema itself lives with the package that owns the data.
func NewRunner(db *sql.DB, fsys fs.FS) *Runner {
	return &Runner{db: db, fsys: fsys}
}

func (r *Runner) Run() error {
	if err := r.ensureSchemaTable(); err != nil {
		return fmt.Errorf("create schema table: %w", err)
	}

	migrations, err := r.loadMigrations()
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	currentVersion, dirty, err := r.currentVersion()
	if err != nil {
		return fmt.Errorf("get current version: %w", err)
	}

	if dirty {
		return fmt.Errorf("database is in dirty state, manual intervention required")
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}
		if err := r.apply(migration); err != nil {
			return fmt.Errorf("apply migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

func (r *Runner) ensureSchemaTable() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			dirty BOOLEAN NOT NULL DEFAULT FALSE,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func (r *Runner) loadMigrations() ([]Migration, error) {
	entries, err := fs.ReadDir(r.fsys, "migrations")
	if err != nil {
		return nil, err
	}

	byVersion := make(map[int]*Migration)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, name, direction, err := parseFilename(entry.Name())
		if err != nil {
			continue
		}

		content, err := fs.ReadFile(r.fsys, "migrations/"+entry.Name())
		if err != nil {
			return nil, err
		}

		if byVersion[version] == nil {
			byVersion[version] = &Migration{Version: version, Name: name}
		}

		switch direction {
		case "up":
			byVersion[version].UpSQL = string(content)
		case "down":
			byVersion[version].DownSQL = string(content)
		}
	}

	var migrations []Migration
	for _, migration := range byVersion {
		if migration.UpSQL != "" {
			migrations = append(migrations, *migration)
		}
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

func parseFilename(filename string) (version int, name, direction string, err error) {
	base := strings.TrimSuffix(filename, ".sql")
	parts := strings.Split(base, ".")
	if len(parts) != 2 {
		return 0, "", "", fmt.Errorf("invalid migration filename format")
	}

	direction = parts[1]
	if direction != "up" && direction != "down" {
		return 0, "", "", fmt.Errorf("invalid direction: %s", direction)
	}

	nameParts := strings.Split(parts[0], "_")
	if len(nameParts) < 2 {
		return 0, "", "", fmt.Errorf("invalid migration name format")
	}

	version, err = strconv.Atoi(nameParts[0])
	if err != nil {
		return 0, "", "", fmt.Errorf("invalid version number: %w", err)
	}

	return version, strings.Join(nameParts[1:], "_"), direction, nil
}

func (r *Runner) currentVersion() (version int, dirty bool, err error) {
	row := r.db.QueryRow(`
		SELECT version, dirty
		FROM schema_migrations
		ORDER BY version DESC
		LIMIT 1
	`)

	err = row.Scan(&version, &dirty)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	return version, dirty, nil
}

func (r *Runner) apply(migration Migration) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO schema_migrations (version, dirty) VALUES (?, TRUE)`, migration.Version); err != nil {
		return err
	}

	if _, err := tx.Exec(migration.UpSQL); err != nil {
		return err
	}

	if _, err := tx.Exec(`UPDATE schema_migrations SET dirty = FALSE WHERE version = ?`, migration.Version); err != nil {
		return err
	}

	return tx.Commit()
}

// Force clears the dirty flag for a version after manual repair.
func (r *Runner) Force(version int) error {
	_, err := r.db.Exec(`UPDATE schema_migrations SET dirty = FALSE WHERE version = ?`, version)
	return err
}
