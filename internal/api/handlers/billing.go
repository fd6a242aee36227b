package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agencyuptime/dashboard-api/internal/billing"
	"github.com/agencyuptime/dashboard-api/internal/db"
)

func (h *Handler) GetBilling(c *gin.Context) {
	info, err := h.store.GetBilling(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to load billing info", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	sites, err := h.store.ListSites(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list sites for usage", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	usage := gin.H{
		"sitesMonitored": len(sites),
		"siteLimit":      info.Subscription.Plan.SiteLimit,
		"addOns":         info.AddOns,
	}

	invoice := billing.ComposeInvoice(info.Subscription, info.AddOns)

	c.JSON(http.StatusOK, gin.H{
		"subscription":    info.Subscription,
		"usage":           usage,
		"upcomingInvoice": invoice,
		"paymentMethod":   info.PaymentMethod,
	})
}

func (h *Handler) BillingAction(c *gin.Context) {
	var req billing.CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cmd, err := billing.ParseCommand(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.billing.Execute(c.Request.Context(), cmd)
	if err != nil {
		if errors.Is(err, billing.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Billing profile not found"})
			return
		}
		h.logger.Error("Billing action failed",
			zap.String("action", req.Action),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Billing action failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}
