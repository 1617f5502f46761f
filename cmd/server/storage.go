package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/forgo/backoffice/api/internal/config"
	"github.com/forgo/backoffice/api/internal/database"
	"github.com/forgo/backoffice/api/internal/model"
	"github.com/forgo/backoffice/api/internal/repository"
	"github.com/forgo/backoffice/api/internal/service"
)

// storage bundles the repositories for the configured backend
type storage struct {
	customers service.CustomerRepository
	users     service.UserRepository
	ping      func(ctx context.Context) error
	close     func() error
}

func openStorage(ctx context.Context, cfg config.DatabaseConfig) (*storage, error) {
	dbCfg := database.Config{
		Driver:          cfg.Driver,
		DSN:             cfg.DSN,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		SlowQuery:       cfg.SlowQuery,
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Namespace:       cfg.Namespace,
		Database:        cfg.Database,
	}

	if dbCfg.IsRelational() {
		return openSQLStorage(ctx, dbCfg)
	}
	return openSurrealStorage(ctx, dbCfg)
}

func openSQLStorage(ctx context.Context, cfg database.Config) (*storage, error) {
	db, err := database.OpenSQL(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db, &model.Customer{}, &model.User{}); err != nil {
		_ = database.CloseSQL(db)
		return nil, err
	}

	return &storage{
		customers: repository.NewCustomerRepository(db),
		users:     repository.NewUserRepository(db),
		ping:      func(ctx context.Context) error { return database.PingSQL(ctx, db) },
		close:     func() error { return database.CloseSQL(db) },
	}, nil
}

func openSurrealStorage(ctx context.Context, cfg database.Config) (*storage, error) {
	db := database.NewSurrealDB(cfg)
	if err := db.Connect(ctx); err != nil {
		return nil, err
	}
	if err := database.DefineSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("define schema: %w", err)
	}

	return &storage{
		customers: repository.NewSurrealCustomerRepository(db),
		users:     repository.NewSurrealUserRepository(db),
		ping:      db.Ping,
		close:     db.Close,
	}, nil
}

// registerRecordGauges exposes row counts per resource on the metrics registry
func registerRecordGauges(reg prometheus.Registerer, s *storage) {
	counters := map[string]func(ctx context.Context) (int64, error){
		"customers": s.customers.Count,
		"users":     s.users.Count,
	}
	for resource, count := range counters {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   "backoffice",
			Name:        "records",
			Help:        "Number of stored records per resource",
			ConstLabels: prometheus.Labels{"resource": resource},
		}, func() float64 {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			n, err := count(ctx)
			if err != nil {
				slog.Warn("record gauge failed",
					slog.String("resource", resource),
					slog.String("error", err.Error()),
				)
				return 0
			}
			return float64(n)
		}))
	}
}
