package postgres

import (
	"context"

	"gorm.io/gorm"
)

// Pinger adapts a gorm connection to the health check interface.
type Pinger struct {
	db *gorm.DB
}

// NewPinger creates a database pinger.
func NewPinger(db *gorm.DB) *Pinger {
	return &Pinger{db: db}
}

// Ping verifies database connectivity.
func (p *Pinger) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
