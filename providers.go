package main

import (
	"fmt"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// serverSet builds a Hub and everything it depends on
var serverSet = wire.NewSet(
	provideDB,
	provideAnalytics,
	NewAuth,
	NewSessionManager,
	NewHub,
)

func provideDB(cfg Config, logger *zap.Logger) (*DB, func(), error) {
	db, err := OpenDB(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database %s: %w", cfg.DBPath, err)
	}
	logger.Info("database opened", zap.String("path", cfg.DBPath))
	return db, func() {
		if err := db.Close(); err != nil {
			logger.Error("close database", zap.Error(err))
		}
	}, nil
}

func provideAnalytics(db *DB, logger *zap.Logger) (*Analytics, func()) {
	a := NewAnalytics(db, logger)
	return a, a.Stop
}
