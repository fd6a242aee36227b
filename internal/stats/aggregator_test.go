package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencyuptime/dashboard-api/internal/db"
)

func check(success bool, rtMs int, age time.Duration) db.CheckResult {
	return db.CheckResult{
		Success:        success,
		ResponseTimeMs: rtMs,
		StatusCode:     200,
		CheckedAt:      time.Now().UTC().Add(-age),
	}
}

func TestAggregateSiteEmptyHistory(t *testing.T) {
	rollup := AggregateSite(nil)

	assert.Equal(t, db.StatusPending, rollup.Status)
	assert.Equal(t, 0.0, rollup.Uptime)
	assert.Equal(t, 0, rollup.ResponseTimeMs)
	assert.Nil(t, rollup.LastCheck)
}

func TestAggregateSiteAllUp(t *testing.T) {
	history := []db.CheckResult{
		check(true, 200, 30*time.Minute),
		check(true, 250, 20*time.Minute),
		check(true, 180, 10*time.Minute),
	}

	rollup := AggregateSite(history)

	assert.Equal(t, db.StatusUp, rollup.Status)
	assert.Equal(t, 100.0, rollup.Uptime)
	assert.Equal(t, 180, rollup.ResponseTimeMs)
	require.NotNil(t, rollup.LastCheck)
	assert.Equal(t, history[2].CheckedAt, *rollup.LastCheck)
}

func TestAggregateSiteLatestCheckDrivesStatus(t *testing.T) {
	history := []db.CheckResult{
		check(true, 200, 30*time.Minute),
		check(true, 220, 20*time.Minute),
		check(false, 0, 10*time.Minute),
	}

	rollup := AggregateSite(history)

	assert.Equal(t, db.StatusDown, rollup.Status)
	// 2 of 3 successful, rounded to one decimal.
	assert.Equal(t, 66.7, rollup.Uptime)
}

func TestAggregateSiteFailedCheckKeepsLastResponseTime(t *testing.T) {
	history := []db.CheckResult{
		check(true, 240, 20*time.Minute),
		check(false, 0, 10*time.Minute),
	}

	rollup := AggregateSite(history)

	assert.Equal(t, db.StatusDown, rollup.Status)
	assert.Equal(t, 240, rollup.ResponseTimeMs)
}

func TestAggregateSiteIdempotent(t *testing.T) {
	history := []db.CheckResult{
		check(true, 200, 30*time.Minute),
		check(false, 0, 20*time.Minute),
		check(true, 300, 10*time.Minute),
	}

	first := AggregateSite(history)
	second := AggregateSite(history)

	assert.Equal(t, first, second)
}

func TestSummarizeEmptyFleet(t *testing.T) {
	summary := Summarize(nil)

	assert.Equal(t, 0, summary.TotalSites)
	assert.Equal(t, 0.0, summary.AvgUptime)
	assert.Equal(t, 0, summary.AvgResponseTimeMs)
}

func TestSummarizeCountsAndMeans(t *testing.T) {
	sites := []db.Site{
		{Status: db.StatusUp, Uptime: 100, ResponseTimeMs: 200},
		{Status: db.StatusUp, Uptime: 99.5, ResponseTimeMs: 400},
		{Status: db.StatusDown, Uptime: 40, ResponseTimeMs: 300},
		{Status: db.StatusPending},
	}

	summary := Summarize(sites)

	assert.Equal(t, 4, summary.TotalSites)
	assert.Equal(t, 2, summary.UpSites)
	assert.Equal(t, 1, summary.DownSites)
	// Means are unweighted over all sites, pending included.
	assert.Equal(t, 59.88, summary.AvgUptime)
	assert.Equal(t, 225, summary.AvgResponseTimeMs)
}
