package export

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"dataset-builder/internal/dataset"
)

// OpenDB opens a SQLite database at the given path with foreign keys
// enabled.
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Foreign keys are disabled by default in SQLite.
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate creates the export tables. It is idempotent and can be run
// multiple times safely.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			image_path TEXT,
			notes TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS attributes (
			name TEXT PRIMARY KEY,
			description TEXT,
			readonly INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS attribute_values (
			item_id TEXT NOT NULL,
			attribute_name TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (item_id, attribute_name),
			FOREIGN KEY (item_id) REFERENCES items(id) ON DELETE CASCADE,
			FOREIGN KEY (attribute_name) REFERENCES attributes(name)
		);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}

// ToSQLite writes the dataset into a SQLite database at dbPath,
// creating the schema if needed. Existing rows with matching keys are
// replaced, so repeated exports of an evolving dataset converge on the
// latest state.
func ToSQLite(dbPath string, d *dataset.Dataset) error {
	db, err := OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("open export database: %w", err)
	}
	defer db.Close()

	if err := Migrate(db); err != nil {
		return fmt.Errorf("migrate export database: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, attr := range d.Attributes {
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO attributes (name, description, readonly) VALUES (?, ?, ?)`,
			attr.Name, attr.Description, attr.Readonly,
		); err != nil {
			return fmt.Errorf("insert attribute %q: %w", attr.Name, err)
		}
	}

	for _, item := range d.Items {
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO items (id, image_path, notes) VALUES (?, ?, ?)`,
			item.ID, item.Image, item.Notes,
		); err != nil {
			return fmt.Errorf("insert item %q: %w", item.ID, err)
		}
		for _, attr := range d.Attributes {
			value := item.AttributeValues[attr.Name]
			if _, err := tx.Exec(
				`INSERT OR REPLACE INTO attribute_values (item_id, attribute_name, value) VALUES (?, ?, ?)`,
				item.ID, attr.Name, value,
			); err != nil {
				return fmt.Errorf("insert value %q/%q: %w", item.ID, attr.Name, err)
			}
		}
	}

	return tx.Commit()
}
