package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yanqian/projectshelf/internal/infra/config"
	"github.com/yanqian/projectshelf/pkg/logger"
	"github.com/yanqian/projectshelf/pkg/metrics"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, gatherer prometheus.Gatherer, log *slog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		logger.Middleware(log),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		metricsMiddleware(handler.metrics),
		errorHandlingMiddleware(log),
		rateLimitMiddleware(cfg.HTTP.RateLimit, log),
	)

	router.GET("/healthz", handler.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler(gatherer)))

	router.POST("/auth/login", handler.Login)
	router.POST("/auth/refresh", handler.Refresh)
	router.POST("/auth/logout", handler.Logout)
	router.POST("/users", handler.CreateUser)

	protected := router.Group("/")
	protected.Use(sessionMiddleware(handler.authSvc, handler.metrics))
	{
		protected.GET("/auth/me", handler.Me)

		protected.GET("/users", handler.ListUsers)
		protected.GET("/users/:id", handler.GetUser)
		protected.PATCH("/users/:id", handler.UpdateUser)
		protected.DELETE("/users/:id", handler.DeleteUser)

		protected.GET("/portfolios", handler.ListPortfolios)
		protected.POST("/portfolios", handler.CreatePortfolio)
		protected.GET("/portfolios/:id", handler.GetPortfolio)
		protected.PATCH("/portfolios/:id", handler.UpdatePortfolio)
		protected.DELETE("/portfolios/:id", handler.DeletePortfolio)

		protected.GET("/portfolios/:id/case-studies", handler.ListCaseStudies)
		protected.POST("/portfolios/:id/case-studies", handler.AddCaseStudy)
		protected.GET("/portfolios/:id/case-studies/:caseStudyId", handler.GetCaseStudy)
		protected.PUT("/portfolios/:id/case-studies/:caseStudyId", handler.ReplaceCaseStudy)
		protected.DELETE("/portfolios/:id/case-studies/:caseStudyId", handler.RemoveCaseStudy)
	}

	router.NoRoute(func(c *gin.Context) {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "not_found", "route not found", nil))
	})

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
