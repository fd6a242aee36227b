package alerts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencyuptime/dashboard-api/internal/db"
)

var testThresholds = Thresholds{SlowResponseMs: 3000, SSLExpiryDays: 7}

func testSite() *db.Site {
	return &db.Site{ID: "site-1", Name: "Acme Corp"}
}

func TestClassifyConnectionFailure(t *testing.T) {
	check := db.CheckResult{Success: false, StatusCode: 0, CheckedAt: time.Now()}

	alert := Classify(testSite(), check, testThresholds)

	require.NotNil(t, alert)
	assert.Equal(t, db.AlertTypeDown, alert.Type)
	assert.Equal(t, db.SeverityCritical, alert.Severity)
	assert.Equal(t, "site-1", alert.SiteID)
	assert.Equal(t, "Acme Corp", alert.SiteName)
	assert.False(t, alert.Resolved)
	assert.Nil(t, alert.ResolvedAt)
}

func TestClassifyServerError(t *testing.T) {
	check := db.CheckResult{Success: true, StatusCode: 503, ResponseTimeMs: 120, CheckedAt: time.Now()}

	alert := Classify(testSite(), check, testThresholds)

	require.NotNil(t, alert)
	assert.Equal(t, db.AlertTypeDown, alert.Type)
	assert.Equal(t, db.SeverityCritical, alert.Severity)
	assert.Equal(t, 503, alert.StatusCode)
}

func TestClassifySlowResponse(t *testing.T) {
	check := db.CheckResult{Success: true, StatusCode: 200, ResponseTimeMs: 3500, CheckedAt: time.Now()}

	alert := Classify(testSite(), check, testThresholds)

	require.NotNil(t, alert)
	assert.Equal(t, db.AlertTypeSlow, alert.Type)
	assert.Equal(t, db.SeverityWarning, alert.Severity)
	assert.Equal(t, 3500, alert.ResponseTimeMs)
}

func TestClassifyDownWinsOverSlow(t *testing.T) {
	// First match wins: a 500 with a huge response time is DOWN, not SLOW.
	check := db.CheckResult{Success: true, StatusCode: 500, ResponseTimeMs: 9000, CheckedAt: time.Now()}

	alert := Classify(testSite(), check, testThresholds)

	require.NotNil(t, alert)
	assert.Equal(t, db.AlertTypeDown, alert.Type)
}

func TestClassifySSLExpiring(t *testing.T) {
	days := 5
	check := db.CheckResult{Success: true, StatusCode: 200, ResponseTimeMs: 150, SSLExpiryDays: &days, CheckedAt: time.Now()}

	alert := Classify(testSite(), check, testThresholds)

	require.NotNil(t, alert)
	assert.Equal(t, db.AlertTypeSSL, alert.Type)
	assert.Equal(t, db.SeverityInfo, alert.Severity)
	assert.Contains(t, alert.Message, "5 days")
}

func TestClassifySlowWinsOverSSL(t *testing.T) {
	days := 5
	check := db.CheckResult{Success: true, StatusCode: 200, ResponseTimeMs: 3500, SSLExpiryDays: &days, CheckedAt: time.Now()}

	alert := Classify(testSite(), check, testThresholds)

	require.NotNil(t, alert)
	assert.Equal(t, db.AlertTypeSlow, alert.Type)
}

func TestClassifyHealthyCheck(t *testing.T) {
	days := 90
	check := db.CheckResult{Success: true, StatusCode: 200, ResponseTimeMs: 150, SSLExpiryDays: &days, CheckedAt: time.Now()}

	assert.Nil(t, Classify(testSite(), check, testThresholds))
}

func TestClearedTypes(t *testing.T) {
	days := 90
	healthy := db.CheckResult{Success: true, StatusCode: 200, ResponseTimeMs: 150, SSLExpiryDays: &days}
	assert.ElementsMatch(t,
		[]db.AlertType{db.AlertTypeDown, db.AlertTypeSlow, db.AlertTypeSSL},
		clearedTypes(healthy, testThresholds),
	)

	// A slow-but-reachable check clears DOWN only.
	slow := db.CheckResult{Success: true, StatusCode: 200, ResponseTimeMs: 4000}
	assert.ElementsMatch(t, []db.AlertType{db.AlertTypeDown}, clearedTypes(slow, testThresholds))

	// A failed check clears nothing.
	failed := db.CheckResult{Success: false, StatusCode: 0}
	assert.Empty(t, clearedTypes(failed, testThresholds))

	// A certificate still inside the horizon does not clear SSL.
	soon := 3
	expiring := db.CheckResult{Success: true, StatusCode: 200, ResponseTimeMs: 150, SSLExpiryDays: &soon}
	assert.ElementsMatch(t, []db.AlertType{db.AlertTypeDown, db.AlertTypeSlow}, clearedTypes(expiring, testThresholds))
}
