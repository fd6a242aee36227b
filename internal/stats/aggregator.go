// Package stats reduces check history and site records into the derived
// metrics the dashboard displays. Every function here is a pure
// transformation over a snapshot slice; callers own the reads and writes.
package stats

import (
	"math"
	"time"

	"github.com/agencyuptime/dashboard-api/internal/db"
)

// SiteRollup is the derived view of one site's check history.
type SiteRollup struct {
	Status         db.SiteStatus
	Uptime         float64
	ResponseTimeMs int
	LastCheck      *time.Time
}

// AggregateSite reduces a site's check history (ordered oldest first) into
// its current status, rolling uptime percentage and last known successful
// response time. An empty history leaves the site pending with zero
// uptime; no division by zero, no error.
func AggregateSite(history []db.CheckResult) SiteRollup {
	rollup := SiteRollup{Status: db.StatusPending}
	if len(history) == 0 {
		return rollup
	}

	successful := 0
	for _, check := range history {
		if check.Success {
			successful++
			// A failed check does not overwrite the last known
			// successful response time.
			rollup.ResponseTimeMs = check.ResponseTimeMs
		}
	}

	last := history[len(history)-1]
	lastCheck := last.CheckedAt
	rollup.LastCheck = &lastCheck
	if last.Success {
		rollup.Status = db.StatusUp
	} else {
		rollup.Status = db.StatusDown
	}

	rollup.Uptime = roundTo(float64(successful)/float64(len(history))*100, 1)
	return rollup
}

// FleetSummary holds the portfolio-level counters shown above the site
// list. Means are unweighted across all sites regardless of check
// interval.
type FleetSummary struct {
	TotalSites        int     `json:"totalSites"`
	UpSites           int     `json:"upSites"`
	DownSites         int     `json:"downSites"`
	AvgUptime         float64 `json:"avgUptime"`
	AvgResponseTimeMs int     `json:"avgResponseTime"`
}

// Summarize computes fleet-wide counters over the full site set. An empty
// fleet yields zero means, never NaN.
func Summarize(sites []db.Site) FleetSummary {
	summary := FleetSummary{TotalSites: len(sites)}
	if len(sites) == 0 {
		return summary
	}

	totalUptime := 0.0
	totalResponseTime := 0
	for _, site := range sites {
		switch site.Status {
		case db.StatusUp:
			summary.UpSites++
		case db.StatusDown:
			summary.DownSites++
		}
		totalUptime += site.Uptime
		totalResponseTime += site.ResponseTimeMs
	}

	summary.AvgUptime = roundTo(totalUptime/float64(len(sites)), 2)
	summary.AvgResponseTimeMs = totalResponseTime / len(sites)
	return summary
}

func roundTo(v float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}
