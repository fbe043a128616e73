// Package app assembles the process-wide components shared by the API server and docctl.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"docvault/internal/config"
	"docvault/internal/database"
	"docvault/internal/database/migration"
	"docvault/internal/metrics"
	"docvault/internal/repository/sqlstore"
	"docvault/internal/service"
	"docvault/internal/storage"
	"docvault/internal/validation"
)

// App holds the wired components. Close releases the database handle.
type App struct {
	Config    *config.AppConfig
	Logger    *zap.Logger
	DB        *sql.DB
	Registry  *prometheus.Registry
	Validator *validation.Validator
	Service   service.DocumentService
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// OpenDatabase connects to the configured database and brings its schema up to date.
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*sql.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := migration.EnsureMigrated(ctx, db, cfg.Driver, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

// Build connects every backend and returns the assembled application.
func Build(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*App, error) {
	db, err := OpenDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	dialect, err := sqlstore.DialectFor(cfg.Database.Driver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize object storage: %w", err)
	}

	reg := NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	v := validation.New(cfg.Upload.MaxFileSizeMB, cfg.Pagination.MaxSize)
	svc := service.NewDocumentService(service.Deps{
		Gateway:   storage.NewGateway(objStore, time.Duration(cfg.MinIO.PresignedURLExpirySeconds)*time.Second),
		Repo:      sqlstore.New(db, dialect),
		Validator: v,
		Logger:    logger,
		Metrics:   m,
	})

	return &App{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		Registry:  reg,
		Validator: v,
		Service:   svc,
	}, nil
}

// Close releases the database handle.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
