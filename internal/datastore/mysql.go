package datastore

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/tphakala/projtrack/internal/conf"
	"github.com/tphakala/projtrack/internal/errors"
)

// MySQLStore implements the storage contract on a MySQL server. Every
// contract method comes from the embedded DataStore, so behavior is
// identical to the SQLite backend by construction.
type MySQLStore struct {
	DataStore
	Settings *conf.Settings
}

// mysqlDSN builds the connection string. parseTime and a fixed UTC location
// keep timestamps consistent with the SQLite backend.
func mysqlDSN(s *conf.MySQLSettings) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		s.Username, s.Password, s.Host, s.Port, s.Database)
}

// Open sets up the MySQL database connection and migrates the schema.
func (store *MySQLStore) Open() error {
	cfg := &store.Settings.Storage.MySQL
	if cfg.Username == "" || cfg.Password == "" {
		return errors.Newf("mysql storage requires username and password").
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Build()
	}

	dsn := mysqlDSN(cfg)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: newGormLogger(store.metrics)})
	if err != nil {
		getLogger().Error("Failed to open MySQL database",
			"host", cfg.Host,
			"port", cfg.Port,
			"database", cfg.Database,
			"error", err)
		return dbError(err, "open_mysql", errors.PriorityHigh,
			"host", cfg.Host, "database", cfg.Database)
	}

	store.DB = db
	return performAutoMigration(db, store.Settings.Debug, "MySQL",
		fmt.Sprintf("%s:%s/%s", cfg.Host, cfg.Port, cfg.Database))
}

// Close releases the database connections.
func (store *MySQLStore) Close() error {
	if store.DB == nil {
		return nil
	}
	sqlDB, err := store.DB.DB()
	if err != nil {
		return dbError(err, "close_mysql", "")
	}
	if err := sqlDB.Close(); err != nil {
		return dbError(err, "close_mysql", "")
	}
	return nil
}
