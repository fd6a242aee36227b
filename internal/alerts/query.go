package alerts

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/agencyuptime/dashboard-api/internal/db"
)

// DefaultLimit caps the alert list when the client does not ask for a
// specific page size.
const DefaultLimit = 10

// Query filters the alert set. Nil fields mean "no filtering on this
// axis". Sorting is always newest first and is not configurable.
type Query struct {
	Resolved *bool
	Severity *db.Severity
	Limit    int
}

// ParseQuery builds a Query from raw query-string values, rejecting
// malformed input instead of silently coercing it.
func ParseQuery(resolved, severity, limit string) (Query, error) {
	q := Query{Limit: DefaultLimit}

	if resolved != "" {
		v, err := strconv.ParseBool(resolved)
		if err != nil {
			return Query{}, fmt.Errorf("invalid resolved value %q, must be a boolean", resolved)
		}
		q.Resolved = &v
	}

	if severity != "" {
		s := db.Severity(severity)
		switch s {
		case db.SeverityCritical, db.SeverityWarning, db.SeverityInfo:
			q.Severity = &s
		default:
			return Query{}, fmt.Errorf("invalid severity %q, must be critical, warning or info", severity)
		}
	}

	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return Query{}, fmt.Errorf("invalid limit %q, must be an integer", limit)
		}
		if n < 1 {
			return Query{}, fmt.Errorf("invalid limit %d, must be positive", n)
		}
		q.Limit = n
	}

	return q, nil
}

// Result carries the truncated alert page plus summary counters computed
// over the filtered set before truncation.
type Result struct {
	Alerts           []db.Alert `json:"alerts"`
	TotalAlerts      int        `json:"totalAlerts"`
	UnresolvedAlerts int        `json:"unresolvedAlerts"`
	CriticalAlerts   int        `json:"criticalAlerts"`
	WarningAlerts    int        `json:"warningAlerts"`
}

// Run filters, counts, sorts and truncates the given alert snapshot.
func Run(alerts []db.Alert, q Query) Result {
	filtered := make([]db.Alert, 0, len(alerts))
	for _, a := range alerts {
		if q.Resolved != nil && a.Resolved != *q.Resolved {
			continue
		}
		if q.Severity != nil && a.Severity != *q.Severity {
			continue
		}
		filtered = append(filtered, a)
	}

	result := Result{TotalAlerts: len(filtered)}
	for _, a := range filtered {
		if a.Resolved {
			continue
		}
		result.UnresolvedAlerts++
		switch a.Severity {
		case db.SeverityCritical:
			result.CriticalAlerts++
		case db.SeverityWarning:
			result.WarningAlerts++
		}
	}

	// Stable sort keeps a deterministic relative order for alerts with
	// identical timestamps.
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Timestamp.After(filtered[j].Timestamp)
	})

	if q.Limit > 0 && len(filtered) > q.Limit {
		filtered = filtered[:q.Limit]
	}
	result.Alerts = filtered

	return result
}
