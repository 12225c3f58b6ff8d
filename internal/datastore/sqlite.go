package datastore

import (
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tphakala/projtrack/internal/conf"
	"github.com/tphakala/projtrack/internal/errors"
)

// SQLiteStore implements the storage contract on an embedded SQLite file.
type SQLiteStore struct {
	DataStore
	Settings *conf.Settings
}

// isMemoryPath reports whether the path selects an in-memory database.
func isMemoryPath(path string) bool {
	return path == ":memory:" || strings.HasPrefix(path, "file::memory:")
}

// Open sets up the SQLite database connection, creating the parent
// directory when needed, and migrates the schema.
func (store *SQLiteStore) Open() error {
	path := store.Settings.Storage.SQLite.Path
	if path == "" {
		return errors.Newf("sqlite storage requires a database path").
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if !isMemoryPath(path) {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return errors.New(err).
					Component("datastore").
					Category(errors.CategoryFileIO).
					Context("operation", "create_database_directory").
					Context("directory", dir).
					Build()
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: newGormLogger(store.metrics)})
	if err != nil {
		return dbError(err, "open_sqlite", errors.PriorityHigh, "path", path)
	}

	// SQLite ships with foreign key enforcement off
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return dbError(err, "enable_foreign_keys", "", "path", path)
	}

	if isMemoryPath(path) {
		// Each pooled connection would otherwise get its own empty
		// in-memory database.
		sqlDB, err := db.DB()
		if err != nil {
			return dbError(err, "open_sqlite", "", "path", path)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	store.DB = db
	return performAutoMigration(db, store.Settings.Debug, "SQLite", path)
}

// Close releases the database connection.
func (store *SQLiteStore) Close() error {
	if store.DB == nil {
		return nil
	}
	sqlDB, err := store.DB.DB()
	if err != nil {
		return dbError(err, "close_sqlite", "")
	}
	if err := sqlDB.Close(); err != nil {
		return dbError(err, "close_sqlite", "")
	}
	return nil
}
