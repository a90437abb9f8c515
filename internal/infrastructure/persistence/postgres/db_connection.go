// Package postgres provides the PostgreSQL connection and the analytics
// repository implementation.
package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pulsemetrics/analytics-api/internal/config"
	"github.com/pulsemetrics/analytics-api/pkg/logger"
)

// NewDBConnection opens a pooled PostgreSQL connection and verifies it with a
// ping. The analytics workload is read-only, so the pool stays small.
func NewDBConnection(cfg *config.DatabaseConfig, log logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	log.Info(ctx, "database connection established",
		logger.String("host", cfg.Host),
		logger.Int("port", cfg.Port),
		logger.String("database", cfg.Database),
		logger.Int("max_open_conns", cfg.MaxOpenConns),
	)

	return db, nil
}

// CloseDB closes the underlying connection pool.
func CloseDB(db *gorm.DB, log logger.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error(context.Background(), "failed to close database connection", err)
		return
	}
	log.Info(context.Background(), "database connection closed")
}
