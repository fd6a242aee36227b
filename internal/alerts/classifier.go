package alerts

import (
	"fmt"

	"github.com/agencyuptime/dashboard-api/internal/db"
)

// Thresholds are the classification cutoffs, loaded from config.
type Thresholds struct {
	// SlowResponseMs is the response time above which a successful check
	// still raises a SLOW alert.
	SlowResponseMs int
	// SSLExpiryDays is the horizon within which an expiring certificate
	// raises an SSL alert.
	SSLExpiryDays int
}

// Classify derives zero or one alert from a check outcome. Precedence is
// fixed, first match wins: DOWN, then SLOW, then SSL.
func Classify(site *db.Site, check db.CheckResult, t Thresholds) *db.Alert {
	alert := &db.Alert{
		SiteID:         site.ID,
		SiteName:       site.Name,
		Timestamp:      check.CheckedAt,
		ResponseTimeMs: check.ResponseTimeMs,
		StatusCode:     check.StatusCode,
	}

	switch {
	case !check.Success || check.StatusCode == 0 || check.StatusCode >= 500:
		alert.Type = db.AlertTypeDown
		alert.Severity = db.SeverityCritical
		alert.Message = "Site is not responding"
		if check.StatusCode >= 500 {
			alert.Message = fmt.Sprintf("Site returned HTTP %d", check.StatusCode)
		}
	case t.SlowResponseMs > 0 && check.ResponseTimeMs > t.SlowResponseMs:
		alert.Type = db.AlertTypeSlow
		alert.Severity = db.SeverityWarning
		alert.Message = fmt.Sprintf("Response time exceeded %dms", t.SlowResponseMs)
	case check.SSLExpiryDays != nil && t.SSLExpiryDays > 0 && *check.SSLExpiryDays <= t.SSLExpiryDays:
		alert.Type = db.AlertTypeSSL
		alert.Severity = db.SeverityInfo
		alert.Message = fmt.Sprintf("SSL certificate expires in %d days", *check.SSLExpiryDays)
	default:
		return nil
	}

	return alert
}

// clearedTypes lists the alert types a check outcome clears: a type is
// cleared when the check observed the relevant signal and it came back
// healthy. A cleared type resolves the most recent matching unresolved
// alert; it never creates a new record.
func clearedTypes(check db.CheckResult, t Thresholds) []db.AlertType {
	var cleared []db.AlertType
	healthy := check.Success && check.StatusCode > 0 && check.StatusCode < 500
	if healthy {
		cleared = append(cleared, db.AlertTypeDown)
		if t.SlowResponseMs <= 0 || check.ResponseTimeMs <= t.SlowResponseMs {
			cleared = append(cleared, db.AlertTypeSlow)
		}
	}
	if check.SSLExpiryDays != nil && *check.SSLExpiryDays > t.SSLExpiryDays {
		cleared = append(cleared, db.AlertTypeSSL)
	}
	return cleared
}
