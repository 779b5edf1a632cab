package commands

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/beesaferoot/rental-engine/internal/auth"
	"github.com/beesaferoot/rental-engine/internal/config"
	"github.com/beesaferoot/rental-engine/internal/database"
	"github.com/beesaferoot/rental-engine/internal/logging"
	"github.com/beesaferoot/rental-engine/internal/repository"
	"github.com/beesaferoot/rental-engine/internal/token"
)

// env is what every command needs: configuration, a logger and a database.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *gorm.DB
}

func setup(debug bool) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.LogLevel = slog.LevelDebug
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, db: db}, nil
}

func (e *env) close() {
	if sqlDB, err := e.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (e *env) authenticator(store *repository.Store) (*auth.Authenticator, error) {
	tokens, err := token.NewService(e.cfg.JWTSecret,
		token.WithTTL(e.cfg.TokenTTL),
		token.WithLogger(e.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to configure token service: %w", err)
	}
	return auth.New(store.Users(), tokens,
		auth.WithAdminSignup(e.cfg.AllowAdminSignup),
		auth.WithLogger(e.logger),
	)
}
