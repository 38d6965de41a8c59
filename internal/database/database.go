package database

import (
	"fmt"
	"time"

	"moneta/internal/logger"
	"moneta/internal/models"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Manager handles database operations. The driver is chosen at startup:
// postgres for production, sqlite for local or demo runs. Demo mode with
// DB_PATH=":memory:" gives a throwaway store with the same schema.
type Manager struct {
	db     *gorm.DB
	driver string
	url    string
}

// NewManager opens a connection for the configured driver.
func NewManager(config *Config) (*Manager, error) {
	switch config.Driver {
	case "postgres":
		return newPostgresManager(config)
	case "sqlite":
		return newSQLiteManager(config)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", config.Driver)
	}
}

func newPostgresManager(config *Config) (*Manager, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  config.DSN(),
		PreferSimpleProtocol: true, // Required for pooled connection proxies; harmless for direct connections
	}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &Manager{db: db, driver: "postgres", url: config.URL()}, nil
}

func newSQLiteManager(config *Config) (*Manager, error) {
	dsn := config.Path
	if dsn == ":memory:" {
		dsn = "file::memory:?cache=shared"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return &Manager{db: db, driver: "sqlite"}, nil
}

// Migrate brings the schema up to date. Postgres uses versioned SQL
// migrations from the migrations/ directory; sqlite auto-migrates the
// models directly.
func (m *Manager) Migrate() error {
	if m.driver == "sqlite" {
		return m.db.AutoMigrate(
			&models.User{},
			&models.Category{},
			&models.Transaction{},
			&models.AuditLog{},
		)
	}

	logger.Get().Info("Running database migrations...")

	mig, err := migrate.New("file://migrations", m.url)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := mig.Close()
		if srcErr != nil {
			logger.Get().Warnf("migrate source close error: %v", srcErr)
		}
		if dbErr != nil {
			logger.Get().Warnf("migrate database close error: %v", dbErr)
		}
	}()

	if err := mig.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Get().Info("Database migrations completed successfully")
	return nil
}

// DB returns the underlying GORM database instance
func (m *Manager) DB() *gorm.DB {
	return m.db
}
