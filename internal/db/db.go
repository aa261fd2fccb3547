package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/agent-crm/internal/config"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// NewDB opens the configured database and applies pending migrations.
func NewDB(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := Open(cfg.Database.Driver, cfg.Database.URL, log)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db, Migrations()); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return db, nil
}

func Open(driver, url string, log zerolog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch driver {
	case DriverPostgres:
		pgxCfg, err := pgx.ParseConfig(url)
		if err != nil {
			return nil, fmt.Errorf("invalid postgres url: %w", err)
		}
		dialector = postgres.New(postgres.Config{Conn: stdlib.OpenDB(*pgxCfg)})
	case DriverSQLite:
		dialector = sqlite.Open(url)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		PrepareStmt: true,
		Logger:      newGormLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	configurePool(sqlDB, driver)

	return db, nil
}

func configurePool(sqlDB *sql.DB, driver string) {
	if driver == DriverSQLite {
		// sqlite allows a single writer; one connection keeps transactions serialized.
		sqlDB.SetMaxOpenConns(1)
		return
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)
}
