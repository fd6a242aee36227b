package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agencyuptime/dashboard-api/internal/alerts"
	"github.com/agencyuptime/dashboard-api/internal/db"
)

func (h *Handler) ListAlerts(c *gin.Context) {
	query, err := alerts.ParseQuery(
		c.Query("resolved"),
		c.Query("severity"),
		c.Query("limit"),
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := h.store.ListAlerts(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list alerts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	result := alerts.Run(snapshot, query)
	c.JSON(http.StatusOK, gin.H{
		"alerts":           result.Alerts,
		"totalAlerts":      result.TotalAlerts,
		"unresolvedAlerts": result.UnresolvedAlerts,
		"criticalAlerts":   result.CriticalAlerts,
		"warningAlerts":    result.WarningAlerts,
	})
}

type CreateAlertRequest struct {
	SiteID       string `json:"siteId" binding:"required"`
	SiteName     string `json:"siteName" binding:"required"`
	Type         string `json:"type" binding:"required"`
	Severity     string `json:"severity" binding:"required,oneof=critical warning info"`
	Message      string `json:"message" binding:"required"`
	ResponseTime int    `json:"responseTime" binding:"omitempty,min=0"`
	StatusCode   int    `json:"statusCode" binding:"omitempty,min=0,max=599"`
}

// CreateAlert is the manual injection path: operators (or the probing
// backend's dead-letter replay) push an alert directly.
func (h *Handler) CreateAlert(c *gin.Context) {
	var req CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alert := &db.Alert{
		SiteID:         req.SiteID,
		SiteName:       req.SiteName,
		Type:           db.AlertType(req.Type),
		Severity:       db.Severity(req.Severity),
		Message:        req.Message,
		ResponseTimeMs: req.ResponseTime,
		StatusCode:     req.StatusCode,
	}

	if err := h.alerts.CreateAlert(c.Request.Context(), alert); err != nil {
		h.logger.Error("Failed to create alert", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create alert"})
		return
	}

	c.JSON(http.StatusCreated, alert)
}
