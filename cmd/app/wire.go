//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yanqian/projectshelf/internal/bootstrap"
	"github.com/yanqian/projectshelf/internal/domain/auth"
	"github.com/yanqian/projectshelf/internal/domain/portfolio"
	"github.com/yanqian/projectshelf/internal/domain/user"
	"github.com/yanqian/projectshelf/internal/infra/config"
	httpiface "github.com/yanqian/projectshelf/internal/interface/http"
	"github.com/yanqian/projectshelf/pkg/logger"
)

func initializeApp(cfg *config.Config) (*bootstrap.App, func(), error) {
	wire.Build(
		logger.New,
		provideAuthConfig,
		provideStorage,
		provideUserRepository,
		providePortfolioRepository,
		provideCredentialStore,
		providePortfolioLifecycle,
		provideAttemptStore,
		provideRegistry,
		provideMetrics,
		wire.Bind(new(prometheus.Gatherer), new(*prometheus.Registry)),
		portfolio.NewSanitizer,
		portfolio.NewService,
		user.NewService,
		auth.NewTokenService,
		auth.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
