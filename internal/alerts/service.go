package alerts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agencyuptime/dashboard-api/internal/db"
	"github.com/agencyuptime/dashboard-api/internal/metrics"
	"github.com/agencyuptime/dashboard-api/internal/stats"
)

// Service owns the alert lifecycle around check ingestion: classify the
// outcome, open new alerts, resolve cleared ones, and refresh the site's
// derived rollup.
type Service struct {
	store         db.Store
	thresholds    Thresholds
	historyWindow int
	logger        *zap.Logger
	metrics       *metrics.Collector
}

func NewService(store db.Store, thresholds Thresholds, historyWindow int, logger *zap.Logger, metrics *metrics.Collector) *Service {
	if historyWindow <= 0 {
		historyWindow = 100
	}
	return &Service{
		store:         store,
		thresholds:    thresholds,
		historyWindow: historyWindow,
		logger:        logger,
		metrics:       metrics,
	}
}

// HandleCheck ingests one check result for a site. It returns the alert
// the check raised, if any.
func (s *Service) HandleCheck(ctx context.Context, site *db.Site, check *db.CheckResult) (*db.Alert, error) {
	if err := s.store.InsertCheck(ctx, check); err != nil {
		return nil, fmt.Errorf("failed to save check result: %w", err)
	}
	s.metrics.RecordCheck(check.Success)

	alert := Classify(site, *check, s.thresholds)
	if alert != nil {
		if err := s.store.InsertAlert(ctx, alert); err != nil {
			return nil, fmt.Errorf("failed to create alert: %w", err)
		}
		s.metrics.RecordAlertCreated(alert)
		s.logger.Info("Alert created",
			zap.Int64("alert_id", alert.ID),
			zap.String("site_id", site.ID),
			zap.String("type", string(alert.Type)),
			zap.String("severity", string(alert.Severity)),
		)
	}

	for _, typ := range clearedTypes(*check, s.thresholds) {
		if err := s.resolveLatest(ctx, site.ID, typ, check.CheckedAt); err != nil {
			return nil, err
		}
	}

	if err := s.RefreshSite(ctx, site.ID); err != nil {
		return nil, err
	}

	return alert, nil
}

// resolveLatest resolves the most recent unresolved alert of the given
// type, if one exists. It does not create a new record.
func (s *Service) resolveLatest(ctx context.Context, siteID string, typ db.AlertType, at time.Time) error {
	alert, err := s.store.LatestUnresolvedAlert(ctx, siteID, typ)
	if errors.Is(err, db.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find unresolved alert: %w", err)
	}

	// Resolution can never predate the alert itself.
	if at.Before(alert.Timestamp) {
		at = alert.Timestamp
	}
	if err := s.store.ResolveAlert(ctx, alert.ID, at); err != nil {
		return fmt.Errorf("failed to resolve alert: %w", err)
	}
	s.metrics.RecordAlertResolved()
	s.logger.Info("Alert resolved",
		zap.Int64("alert_id", alert.ID),
		zap.String("site_id", siteID),
		zap.String("type", string(typ)),
	)
	return nil
}

// RefreshSite recomputes a site's derived fields from its check history
// and unresolved alert count. Running it twice over unchanged history
// yields identical output.
func (s *Service) RefreshSite(ctx context.Context, siteID string) error {
	site, err := s.store.GetSite(ctx, siteID)
	if err != nil {
		return err
	}

	history, err := s.store.ListChecks(ctx, siteID, s.historyWindow)
	if err != nil {
		return fmt.Errorf("failed to load check history: %w", err)
	}

	rollup := stats.AggregateSite(history)
	if rollup.Status != db.StatusPending {
		site.Status = rollup.Status
	}
	site.Uptime = rollup.Uptime
	if rollup.ResponseTimeMs > 0 {
		site.ResponseTimeMs = rollup.ResponseTimeMs
	}
	if rollup.LastCheck != nil {
		site.LastCheck = rollup.LastCheck
	}

	site.AlertCount, err = s.store.CountUnresolvedAlerts(ctx, siteID)
	if err != nil {
		return fmt.Errorf("failed to count alerts: %w", err)
	}

	site.UpdatedAt = time.Now().UTC()
	return s.store.UpdateSite(ctx, site)
}

// CreateAlert records a manually injected alert. The caller validates the
// required fields; server-assigned fields are set here.
func (s *Service) CreateAlert(ctx context.Context, alert *db.Alert) error {
	alert.Timestamp = time.Now().UTC()
	alert.Resolved = false
	alert.ResolvedAt = nil

	if err := s.store.InsertAlert(ctx, alert); err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	s.metrics.RecordAlertCreated(alert)

	// Keep the denormalized unresolved count on the site in step. An
	// alert may reference a site this store no longer has; that is not
	// an error for manual injection.
	if err := s.RefreshSiteAlertCount(ctx, alert.SiteID); err != nil && !errors.Is(err, db.ErrNotFound) {
		return err
	}
	return nil
}

func (s *Service) RefreshSiteAlertCount(ctx context.Context, siteID string) error {
	site, err := s.store.GetSite(ctx, siteID)
	if err != nil {
		return err
	}
	site.AlertCount, err = s.store.CountUnresolvedAlerts(ctx, siteID)
	if err != nil {
		return err
	}
	site.UpdatedAt = time.Now().UTC()
	return s.store.UpdateSite(ctx, site)
}
