package handlers

import (
	"go.uber.org/zap"

	"github.com/agencyuptime/dashboard-api/internal/alerts"
	"github.com/agencyuptime/dashboard-api/internal/billing"
	"github.com/agencyuptime/dashboard-api/internal/config"
	"github.com/agencyuptime/dashboard-api/internal/db"
	"github.com/agencyuptime/dashboard-api/internal/metrics"
)

type Handler struct {
	store   db.Store
	alerts  *alerts.Service
	billing *billing.Service
	config  *config.Config
	metrics *metrics.Collector
	logger  *zap.Logger
}

func NewHandler(store db.Store, alertSvc *alerts.Service, billingSvc *billing.Service, cfg *config.Config, collector *metrics.Collector, logger *zap.Logger) *Handler {
	return &Handler{
		store:   store,
		alerts:  alertSvc,
		billing: billingSvc,
		config:  cfg,
		metrics: collector,
		logger:  logger,
	}
}
