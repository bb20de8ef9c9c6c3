package cmd

import (
	"fmt"

	"github.com/boardadmin/boardadmin/internal/app"
	"github.com/boardadmin/boardadmin/internal/config"
	"github.com/boardadmin/boardadmin/internal/db"
	"github.com/boardadmin/boardadmin/internal/logger"
	"github.com/jmoiron/sqlx"
)

func openDB() (*config.Config, *sqlx.DB, error) {
	cfg := config.Load()

	logger.Init(logger.Options{
		AppName:   cfg.AppName,
		Env:       cfg.AppEnv,
		SentryDSN: cfg.SentryDSN,
	})

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return cfg, database, nil
}

// openApp wires the services without running migrations
func openApp() (*app.App, error) {
	cfg, database, err := openDB()
	if err != nil {
		return nil, err
	}

	a, err := app.Wire(cfg, database)
	if err != nil {
		_ = db.Close(database)
		return nil, err
	}
	return a, nil
}
