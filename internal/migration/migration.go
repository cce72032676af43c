// Package migration applies the embedded SQL schema migrations in version
// order, tracking progress in a schema_migrations table.
package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// ErrDirty means a previous migration run died halfway through.
var ErrDirty = errors.New("migration: database is dirty, manual intervention required")

type migrationFile struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// Run brings db up to the newest embedded schema version.
func Run(db *sql.DB) error {
	if err := ensureSchemaTable(db); err != nil {
		return fmt.Errorf("create schema table: %w", err)
	}

	migrations, err := loadMigrations()
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	current, dirty, err := currentVersion(db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return ErrDirty
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := apply(db, m); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

func ensureSchemaTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			dirty BOOLEAN NOT NULL DEFAULT FALSE,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func loadMigrations() ([]migrationFile, error) {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return nil, err
	}

	byVersion := make(map[int]*migrationFile)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		version, base, direction, err := parseFilename(name)
		if err != nil {
			continue
		}
		content, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return nil, err
		}
		m := byVersion[version]
		if m == nil {
			m = &migrationFile{Version: version, Name: base}
			byVersion[version] = m
		}
		switch direction {
		case "up":
			m.UpSQL = string(content)
		case "down":
			m.DownSQL = string(content)
		}
	}

	var out []migrationFile
	for _, m := range byVersion {
		if m.UpSQL != "" {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// parseFilename splits "0001_initial.up.sql" into its pieces.
func parseFilename(filename string) (version int, name, direction string, err error) {
	stem := strings.TrimSuffix(filename, ".sql")
	parts := strings.Split(stem, ".")
	if len(parts) != 2 || (parts[1] != "up" && parts[1] != "down") {
		return 0, "", "", fmt.Errorf("unexpected migration filename %q", filename)
	}
	direction = parts[1]

	versionStr, base, ok := strings.Cut(parts[0], "_")
	if !ok {
		return 0, "", "", fmt.Errorf("unexpected migration filename %q", filename)
	}
	version, err = strconv.Atoi(versionStr)
	if err != nil {
		return 0, "", "", fmt.Errorf("bad version in %q: %w", filename, err)
	}
	return version, base, direction, nil
}

func currentVersion(db *sql.DB) (version int, dirty bool, err error) {
	row := db.QueryRow(`SELECT version, dirty FROM schema_migrations ORDER BY version DESC LIMIT 1`)
	err = row.Scan(&version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	return version, dirty, err
}

func apply(db *sql.DB, m migrationFile) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO schema_migrations (version, dirty) VALUES (?, TRUE)`, m.Version); err != nil {
		return err
	}
	if _, err := tx.Exec(m.UpSQL); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE schema_migrations SET dirty = FALSE WHERE version = ?`, m.Version); err != nil {
		return err
	}
	return tx.Commit()
}
