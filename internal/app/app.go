// Package app wires the school services onto one database.
package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/schooladmin/schooladmin/internal/attendance"
	"github.com/schooladmin/schooladmin/internal/config"
	"github.com/schooladmin/schooladmin/internal/dashboard"
	"github.com/schooladmin/schooladmin/internal/fees"
	"github.com/schooladmin/schooladmin/internal/store"
	"github.com/schooladmin/schooladmin/internal/students"
	"github.com/schooladmin/schooladmin/internal/validate"
)

// Services are the components built on top of the store.
type Services struct {
	Students  *students.Service
	Recorder  *attendance.Recorder
	Viewer    *attendance.Viewer
	Collector *fees.Collector
	Ledger    *fees.Ledger
	Dashboard *dashboard.Service
}

// NewServices builds every component over db. reg may be nil.
func NewServices(db *store.DB, log *zap.Logger, reg prometheus.Registerer) Services {
	roster := students.NewRepository(db)
	attRepo := attendance.NewRepository(db)
	feeRepo := fees.NewRepository(db)
	return Services{
		Students:  students.NewService(roster, validate.New(), log),
		Recorder:  attendance.NewRecorder(roster, attRepo, log),
		Viewer:    attendance.NewViewer(attRepo),
		Collector: fees.NewCollector(roster, feeRepo, log),
		Ledger:    fees.NewLedger(feeRepo),
		Dashboard: dashboard.NewService(db, log, reg),
	}
}

// OpenDB connects to the configured database and migrates it when AutoMigrate is set.
func OpenDB(ctx context.Context, cfg config.App, log *zap.Logger) (*store.DB, error) {
	db, err := store.NewDB(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info("database migrated", zap.String("driver", cfg.DatabaseDriver))
	}
	return db, nil
}
