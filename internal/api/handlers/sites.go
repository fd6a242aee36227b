package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agencyuptime/dashboard-api/internal/db"
	"github.com/agencyuptime/dashboard-api/internal/stats"
)

type CreateSiteRequest struct {
	Name          string `json:"name" binding:"required,min=1,max=255"`
	URL           string `json:"url" binding:"required"`
	CheckInterval int    `json:"checkInterval" binding:"omitempty,min=1,max=1440"`
}

func (h *Handler) ListSites(c *gin.Context) {
	sites, err := h.store.ListSites(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list sites", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	summary := stats.Summarize(sites)
	h.metrics.RecordFleetSummary(summary.TotalSites, summary.UpSites, summary.DownSites, summary.AvgUptime, summary.AvgResponseTimeMs)

	c.JSON(http.StatusOK, gin.H{
		"sites":           sites,
		"totalSites":      summary.TotalSites,
		"upSites":         summary.UpSites,
		"downSites":       summary.DownSites,
		"avgUptime":       summary.AvgUptime,
		"avgResponseTime": summary.AvgResponseTimeMs,
	})
}

func (h *Handler) CreateSite(c *gin.Context) {
	var req CreateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !isValidSiteURL(req.URL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL"})
		return
	}

	interval := req.CheckInterval
	if interval == 0 {
		interval = h.config.Checks.DefaultIntervalMin
	}

	now := time.Now().UTC()
	site := &db.Site{
		ID:            uuid.New().String(),
		Name:          req.Name,
		URL:           req.URL,
		Status:        db.StatusPending,
		CheckInterval: interval,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.store.InsertSite(c.Request.Context(), site); err != nil {
		h.logger.Error("Failed to create site", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create site"})
		return
	}

	h.logger.Info("Site created",
		zap.String("site_id", site.ID),
		zap.String("url", site.URL),
	)

	c.JSON(http.StatusCreated, site)
}

func (h *Handler) GetSite(c *gin.Context) {
	site, err := h.store.GetSite(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
			return
		}
		h.logger.Error("Failed to get site", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, site)
}

func (h *Handler) DeleteSite(c *gin.Context) {
	err := h.store.DeleteSite(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
			return
		}
		h.logger.Error("Failed to delete site", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete site"})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

func (h *Handler) GetSiteHistory(c *gin.Context) {
	siteID := c.Param("id")

	if _, err := h.store.GetSite(c.Request.Context(), siteID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
			return
		}
		h.logger.Error("Failed to get site", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	history, err := h.store.ListChecks(c.Request.Context(), siteID, limit)
	if err != nil {
		h.logger.Error("Failed to get check history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

type IngestCheckRequest struct {
	Success       *bool  `json:"success" binding:"required"`
	ResponseTime  int    `json:"responseTime" binding:"omitempty,min=0"`
	StatusCode    int    `json:"statusCode" binding:"omitempty,min=0,max=599"`
	SSLExpiryDays *int   `json:"sslExpiryDays"`
	CheckedAt     string `json:"checkedAt"`
}

// IngestCheck is the probing backend's write path: one check result in,
// classification, alert resolution and the site rollup out.
func (h *Handler) IngestCheck(c *gin.Context) {
	site, err := h.store.GetSite(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
			return
		}
		h.logger.Error("Failed to get site", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var req IngestCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	checkedAt := time.Now().UTC()
	if req.CheckedAt != "" {
		checkedAt, err = time.Parse(time.RFC3339, req.CheckedAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid checkedAt, must be RFC 3339"})
			return
		}
	}

	check := &db.CheckResult{
		SiteID:         site.ID,
		Success:        *req.Success,
		ResponseTimeMs: req.ResponseTime,
		StatusCode:     req.StatusCode,
		SSLExpiryDays:  req.SSLExpiryDays,
		CheckedAt:      checkedAt,
	}

	alert, err := h.alerts.HandleCheck(c.Request.Context(), site, check)
	if err != nil {
		h.logger.Error("Failed to ingest check", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to ingest check"})
		return
	}

	updated, err := h.store.GetSite(c.Request.Context(), site.ID)
	if err != nil {
		h.logger.Error("Failed to reload site", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	response := gin.H{"check": check, "site": updated}
	if alert != nil {
		response["alert"] = alert
	}
	c.JSON(http.StatusCreated, response)
}

func isValidSiteURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
