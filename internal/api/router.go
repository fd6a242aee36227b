package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agencyuptime/dashboard-api/internal/alerts"
	"github.com/agencyuptime/dashboard-api/internal/api/handlers"
	"github.com/agencyuptime/dashboard-api/internal/api/middleware"
	"github.com/agencyuptime/dashboard-api/internal/billing"
	"github.com/agencyuptime/dashboard-api/internal/config"
	"github.com/agencyuptime/dashboard-api/internal/db"
	"github.com/agencyuptime/dashboard-api/internal/metrics"
)

type Server struct {
	Config  *config.Config
	Router  *gin.Engine
	Store   db.Store
	Metrics *metrics.Collector
	Logger  *zap.Logger

	handler *handlers.Handler
}

func NewServer(cfg *config.Config, store db.Store, collector *metrics.Collector, logger *zap.Logger) *Server {
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics(collector))
	router.Use(middleware.CORS())
	router.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))

	thresholds := alerts.Thresholds{
		SlowResponseMs: cfg.Checks.SlowThresholdMs,
		SSLExpiryDays:  cfg.Checks.SSLExpiryDays,
	}
	alertSvc := alerts.NewService(store, thresholds, cfg.Checks.HistoryWindow, logger, collector)
	billingSvc := billing.NewService(billing.NewLocalProvider(store, logger), logger)

	server := &Server{
		Config:  cfg,
		Router:  router,
		Store:   store,
		Metrics: collector,
		Logger:  logger,
		handler: handlers.NewHandler(store, alertSvc, billingSvc, cfg, collector, logger),
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	h := s.handler

	// Health and metrics
	s.Router.GET("/health", h.Health)
	s.Router.GET("/ready", h.Ready)
	s.Router.GET("/metrics", gin.WrapH(s.Metrics.Handler()))

	// Auth routes
	auth := s.Router.Group("/api/v1/auth")
	{
		auth.POST("/signup", h.SignUp)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.RefreshToken)
	}

	// API routes (protected)
	api := s.Router.Group("/api/v1")
	api.Use(middleware.AuthRequired(s.Config.Auth.JWTSecret))

	// Site routes
	{
		api.GET("/sites", h.ListSites)
		api.POST("/sites", h.CreateSite)
		api.GET("/sites/:id", h.GetSite)
		api.DELETE("/sites/:id", h.DeleteSite)
		api.GET("/sites/:id/history", h.GetSiteHistory)
		api.POST("/sites/:id/checks", h.IngestCheck)
	}

	// Alert routes
	{
		api.GET("/alerts", h.ListAlerts)
		api.POST("/alerts", h.CreateAlert)
	}

	// Billing routes
	{
		api.GET("/billing", h.GetBilling)
		api.POST("/billing", h.BillingAction)
	}
}
