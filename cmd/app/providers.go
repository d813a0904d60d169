package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/valkey-io/valkey-go"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/yanqian/projectshelf/internal/domain/auth"
	"github.com/yanqian/projectshelf/internal/domain/portfolio"
	"github.com/yanqian/projectshelf/internal/domain/user"
	"github.com/yanqian/projectshelf/internal/infra/attemptstore"
	"github.com/yanqian/projectshelf/internal/infra/config"
	"github.com/yanqian/projectshelf/internal/infra/portfoliorepo"
	"github.com/yanqian/projectshelf/internal/infra/userrepo"
	"github.com/yanqian/projectshelf/pkg/metrics"
)

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		AccessSecret:       cfg.Auth.AccessSecret,
		RefreshSecret:      cfg.Auth.RefreshSecret,
		AccessTokenTTL:     cfg.Auth.AccessTokenTTL,
		RefreshTokenTTL:    cfg.Auth.RefreshTokenTTL,
		MaxLoginAttempts:   cfg.Auth.MaxLoginAttempts,
		LoginAttemptWindow: cfg.Auth.LoginAttemptWindow,
	}
}

// storageBackend pairs the user and portfolio repositories of one driver so
// both always live in the same database.
type storageBackend struct {
	users      user.Repository
	portfolios portfolio.Repository
}

func memoryBackend() *storageBackend {
	return &storageBackend{
		users:      userrepo.NewMemoryRepository(),
		portfolios: portfoliorepo.NewMemoryRepository(),
	}
}

// provideStorage opens the configured database. Outside production a broken
// database falls back to memory so the API still boots for local work.
func provideStorage(cfg *config.Config, logger *slog.Logger) (*storageBackend, func(), error) {
	var (
		backend *storageBackend
		cleanup func()
		err     error
	)
	switch driver := cfg.StorageDriver(); driver {
	case config.DriverMongo:
		backend, cleanup, err = openMongo(cfg, logger)
	case config.DriverPostgres:
		backend, cleanup, err = openPostgres(cfg, logger)
	default:
		logger.Info("using memory storage")
		return memoryBackend(), func() {}, nil
	}
	if err == nil {
		return backend, cleanup, nil
	}
	if cfg.App.IsProduction() {
		return nil, nil, err
	}
	logger.Error("storage unavailable, using memory storage", "driver", cfg.StorageDriver(), "error", err)
	return memoryBackend(), func() {}, nil
}

func openMongo(cfg *config.Config, logger *slog.Logger) (*storageBackend, func(), error) {
	timeout := cfg.Mongo.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI).SetConnectTimeout(timeout))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	disconnect := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			logger.Warn("mongo disconnect failed", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		disconnect()
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(cfg.Mongo.Database)
	users := userrepo.NewMongoRepository(db)
	portfolios := portfoliorepo.NewMongoRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		disconnect()
		return nil, nil, err
	}
	if err := portfolios.EnsureIndexes(ctx); err != nil {
		disconnect()
		return nil, nil, err
	}
	logger.Info("mongo storage enabled", "database", cfg.Mongo.Database)
	return &storageBackend{users: users, portfolios: portfolios}, disconnect, nil
}

func openPostgres(cfg *config.Config, logger *slog.Logger) (*storageBackend, func(), error) {
	poolConfig, err := pgxpool.ParseConfig(strings.TrimSpace(cfg.Postgres.DSN))
	if err != nil {
		return nil, nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("create postgres pool: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	logger.Info("postgres storage enabled")
	return &storageBackend{
		users:      userrepo.NewPostgresRepository(pool),
		portfolios: portfoliorepo.NewPostgresRepository(pool),
	}, pool.Close, nil
}

func provideUserRepository(backend *storageBackend) user.Repository {
	return backend.users
}

func providePortfolioRepository(backend *storageBackend) portfolio.Repository {
	return backend.portfolios
}

func provideCredentialStore(repo user.Repository) auth.CredentialStore {
	return repo
}

func providePortfolioLifecycle(svc portfolio.Service) user.PortfolioLifecycle {
	return svc
}

func provideAttemptStore(cfg *config.Config, logger *slog.Logger) (auth.AttemptStore, func()) {
	if cfg.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory attempt store", "error", err)
			return attemptstore.NewMemoryStore(), func() {}
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory attempt store", "error", err)
			return attemptstore.NewMemoryStore(), func() {}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory attempt store", "error", err)
			client.Close()
		} else {
			logger.Info("valkey attempt store enabled", "addr", cfg.Valkey.Addr)
			return attemptstore.NewValkeyStore(client, cfg.Valkey.Prefix), client.Close
		}
	}
	return attemptstore.NewMemoryStore(), func() {}
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideMetrics(reg *prometheus.Registry) metrics.Recorder {
	return metrics.NewCollector(reg)
}
