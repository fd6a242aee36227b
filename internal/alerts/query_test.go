package alerts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencyuptime/dashboard-api/internal/db"
)

func alertAt(id int64, severity db.Severity, resolved bool, age time.Duration) db.Alert {
	a := db.Alert{
		ID:        id,
		SiteID:    "site-1",
		SiteName:  "Acme Corp",
		Type:      db.AlertTypeDown,
		Severity:  severity,
		Message:   "test",
		Timestamp: time.Now().UTC().Add(-age),
		Resolved:  resolved,
	}
	if resolved {
		resolvedAt := a.Timestamp.Add(time.Minute)
		a.ResolvedAt = &resolvedAt
	}
	return a
}

func TestParseQueryDefaults(t *testing.T) {
	q, err := ParseQuery("", "", "")

	require.NoError(t, err)
	assert.Nil(t, q.Resolved)
	assert.Nil(t, q.Severity)
	assert.Equal(t, DefaultLimit, q.Limit)
}

func TestParseQueryRejectsMalformedInput(t *testing.T) {
	_, err := ParseQuery("maybe", "", "")
	assert.Error(t, err)

	_, err = ParseQuery("", "fatal", "")
	assert.Error(t, err)

	_, err = ParseQuery("", "", "ten")
	assert.Error(t, err)

	_, err = ParseQuery("", "", "0")
	assert.Error(t, err)

	_, err = ParseQuery("", "", "-5")
	assert.Error(t, err)
}

func TestParseQueryAcceptsValidInput(t *testing.T) {
	q, err := ParseQuery("false", "critical", "25")

	require.NoError(t, err)
	require.NotNil(t, q.Resolved)
	assert.False(t, *q.Resolved)
	require.NotNil(t, q.Severity)
	assert.Equal(t, db.SeverityCritical, *q.Severity)
	assert.Equal(t, 25, q.Limit)
}

func TestRunFiltersAndCounts(t *testing.T) {
	// critical unresolved, warning resolved, info unresolved.
	snapshot := []db.Alert{
		alertAt(1, db.SeverityCritical, false, 10*time.Minute),
		alertAt(2, db.SeverityWarning, true, 20*time.Minute),
		alertAt(3, db.SeverityInfo, false, 30*time.Minute),
	}

	unresolved := false
	result := Run(snapshot, Query{Resolved: &unresolved, Limit: DefaultLimit})

	require.Len(t, result.Alerts, 2)
	assert.Equal(t, int64(1), result.Alerts[0].ID)
	assert.Equal(t, int64(3), result.Alerts[1].ID)
	assert.Equal(t, 2, result.TotalAlerts)
	assert.Equal(t, 2, result.UnresolvedAlerts)
	assert.Equal(t, 1, result.CriticalAlerts)
	assert.Equal(t, 0, result.WarningAlerts)
}

func TestRunResolvedFilterPartitionsInput(t *testing.T) {
	snapshot := []db.Alert{
		alertAt(1, db.SeverityCritical, false, 10*time.Minute),
		alertAt(2, db.SeverityWarning, true, 20*time.Minute),
		alertAt(3, db.SeverityInfo, false, 30*time.Minute),
		alertAt(4, db.SeverityCritical, true, 40*time.Minute),
	}

	yes, no := true, false
	resolved := Run(snapshot, Query{Resolved: &yes, Limit: 100})
	open := Run(snapshot, Query{Resolved: &no, Limit: 100})

	assert.Equal(t, len(snapshot), resolved.TotalAlerts+open.TotalAlerts)

	seen := make(map[int64]int)
	for _, a := range resolved.Alerts {
		seen[a.ID]++
	}
	for _, a := range open.Alerts {
		seen[a.ID]++
	}
	assert.Len(t, seen, len(snapshot))
	for id, n := range seen {
		assert.Equal(t, 1, n, "alert %d appeared in both partitions", id)
	}
}

func TestRunSortsNewestFirst(t *testing.T) {
	snapshot := []db.Alert{
		alertAt(1, db.SeverityInfo, false, 30*time.Minute),
		alertAt(2, db.SeverityInfo, false, 10*time.Minute),
		alertAt(3, db.SeverityInfo, false, 20*time.Minute),
	}

	result := Run(snapshot, Query{Limit: DefaultLimit})

	require.Len(t, result.Alerts, 3)
	assert.Equal(t, int64(2), result.Alerts[0].ID)
	assert.Equal(t, int64(3), result.Alerts[1].ID)
	assert.Equal(t, int64(1), result.Alerts[2].ID)
}

func TestRunSortIsStableForEqualTimestamps(t *testing.T) {
	ts := time.Now().UTC()
	snapshot := []db.Alert{
		{ID: 1, Severity: db.SeverityInfo, Timestamp: ts},
		{ID: 2, Severity: db.SeverityInfo, Timestamp: ts},
		{ID: 3, Severity: db.SeverityInfo, Timestamp: ts},
	}

	first := Run(snapshot, Query{Limit: DefaultLimit})
	second := Run(snapshot, Query{Limit: DefaultLimit})

	require.Len(t, first.Alerts, 3)
	for i := range first.Alerts {
		assert.Equal(t, first.Alerts[i].ID, second.Alerts[i].ID)
	}
	// Stable sort keeps input order on ties.
	assert.Equal(t, int64(1), first.Alerts[0].ID)
}

func TestRunTruncatesAfterCounting(t *testing.T) {
	snapshot := make([]db.Alert, 0, 15)
	for i := 1; i <= 15; i++ {
		snapshot = append(snapshot, alertAt(int64(i), db.SeverityCritical, false, time.Duration(i)*time.Minute))
	}

	result := Run(snapshot, Query{Limit: 5})

	assert.Len(t, result.Alerts, 5)
	// Counters cover the filtered set before truncation.
	assert.Equal(t, 15, result.TotalAlerts)
	assert.Equal(t, 15, result.UnresolvedAlerts)
	assert.Equal(t, 15, result.CriticalAlerts)
}
