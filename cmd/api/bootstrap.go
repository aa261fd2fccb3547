package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/agent-crm/internal/config"
	dbpkg "github.com/BruksfildServices01/agent-crm/internal/db"
	"github.com/BruksfildServices01/agent-crm/internal/logger"
)

// bootstrap loads configuration, starts the logger and opens the migrated
// database. Every subcommand starts here.
func bootstrap() (*config.Config, zerolog.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty || !cfg.IsProduction(),
	})

	db, err := dbpkg.NewDB(cfg, log)
	if err != nil {
		return nil, log, nil, fmt.Errorf("database: %w", err)
	}

	return cfg, log, db, nil
}

func closeDB(db *gorm.DB, log zerolog.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn().Err(err).Msg("database close failed")
	}
}
