package db

import (
	"context"
	"time"
)

// Seed loads the demo dataset into a memory store: a small fleet of sites
// in mixed states, their recent check history, a few alerts, and the
// billing snapshot the external billing backend would normally supply.
func Seed(store *MemoryStore) error {
	ctx := context.Background()
	now := time.Now().UTC()

	for _, plan := range []Plan{
		{ID: "starter", Name: "Starter", Price: 2500, Currency: "usd", Interval: "month", SiteLimit: 10},
		{ID: "professional", Name: "Professional", Price: 5000, Currency: "usd", Interval: "month", SiteLimit: 50},
		{ID: "agency", Name: "Agency", Price: 9900, Currency: "usd", Interval: "month", SiteLimit: 200},
	} {
		store.RegisterPlan(plan)
	}

	// Rollup fields are stated literally and kept consistent with the
	// seeded check history and alerts below.
	lastCheck1 := now.Add(-10 * time.Minute)
	lastCheck2 := now.Add(-10 * time.Minute)
	lastCheck3 := now.Add(-10 * time.Minute)
	sites := []Site{
		{
			ID:             "site-001",
			Name:           "Acme Corp",
			URL:            "https://acmecorp.com",
			Status:         StatusUp,
			Uptime:         100,
			ResponseTimeMs: 184,
			LastCheck:      &lastCheck1,
			AlertCount:     1,
			CheckInterval:  5,
			CreatedAt:      now.Add(-45 * 24 * time.Hour),
		},
		{
			ID:             "site-002",
			Name:           "Blue Harbor Dental",
			URL:            "https://blueharbordental.com",
			Status:         StatusDown,
			Uptime:         40,
			ResponseTimeMs: 298,
			LastCheck:      &lastCheck2,
			AlertCount:     1,
			CheckInterval:  5,
			CreatedAt:      now.Add(-30 * 24 * time.Hour),
		},
		{
			ID:             "site-003",
			Name:           "Summit Realty",
			URL:            "https://summitrealty.io",
			Status:         StatusUp,
			Uptime:         100,
			ResponseTimeMs: 3120,
			LastCheck:      &lastCheck3,
			AlertCount:     1,
			CheckInterval:  10,
			CreatedAt:      now.Add(-12 * 24 * time.Hour),
		},
		{
			ID:            "site-004",
			Name:          "Northside Bakery",
			URL:           "https://northsidebakery.com",
			Status:        StatusPending,
			CheckInterval: 15,
			CreatedAt:     now.Add(-2 * time.Hour),
		},
	}
	for i := range sites {
		sites[i].UpdatedAt = sites[i].CreatedAt
		if err := store.InsertSite(ctx, &sites[i]); err != nil {
			return err
		}
	}

	// Check history: site-001 healthy, site-002 currently down, site-003
	// slow but reachable, site-004 never checked.
	type obs struct {
		siteID  string
		success bool
		rtMs    int
		code    int
		age     time.Duration
	}
	observations := []obs{
		{"site-001", true, 180, 200, 50 * time.Minute},
		{"site-001", true, 210, 200, 40 * time.Minute},
		{"site-001", true, 175, 200, 30 * time.Minute},
		{"site-001", true, 190, 200, 20 * time.Minute},
		{"site-001", true, 184, 200, 10 * time.Minute},

		{"site-002", true, 320, 200, 50 * time.Minute},
		{"site-002", true, 298, 200, 40 * time.Minute},
		{"site-002", false, 0, 0, 30 * time.Minute},
		{"site-002", false, 0, 503, 20 * time.Minute},
		{"site-002", false, 0, 503, 10 * time.Minute},

		{"site-003", true, 2400, 200, 40 * time.Minute},
		{"site-003", true, 3650, 200, 25 * time.Minute},
		{"site-003", true, 3120, 200, 10 * time.Minute},
	}
	for _, o := range observations {
		check := CheckResult{
			SiteID:         o.siteID,
			Success:        o.success,
			ResponseTimeMs: o.rtMs,
			StatusCode:     o.code,
			CheckedAt:      now.Add(-o.age),
		}
		if err := store.InsertCheck(ctx, &check); err != nil {
			return err
		}
	}

	resolvedAt := now.Add(-38 * time.Minute)
	alerts := []Alert{
		{
			SiteID:         "site-002",
			SiteName:       "Blue Harbor Dental",
			Type:           AlertTypeDown,
			Severity:       SeverityCritical,
			Message:        "Site is not responding",
			Timestamp:      now.Add(-30 * time.Minute),
			ResponseTimeMs: 0,
			StatusCode:     0,
		},
		{
			SiteID:         "site-003",
			SiteName:       "Summit Realty",
			Type:           AlertTypeSlow,
			Severity:       SeverityWarning,
			Message:        "Response time exceeded 3000ms",
			Timestamp:      now.Add(-25 * time.Minute),
			ResponseTimeMs: 3650,
			StatusCode:     200,
		},
		{
			SiteID:         "site-001",
			SiteName:       "Acme Corp",
			Type:           AlertTypeSSL,
			Severity:       SeverityInfo,
			Message:        "SSL certificate expires in 6 days",
			Timestamp:      now.Add(-4 * time.Hour),
			ResponseTimeMs: 190,
			StatusCode:     200,
		},
		{
			SiteID:         "site-001",
			SiteName:       "Acme Corp",
			Type:           AlertTypeDown,
			Severity:       SeverityCritical,
			Message:        "Site is not responding",
			Timestamp:      now.Add(-48 * time.Hour),
			Resolved:       true,
			ResolvedAt:     &resolvedAt,
			ResponseTimeMs: 0,
			StatusCode:     0,
		},
	}
	for i := range alerts {
		if err := store.InsertAlert(ctx, &alerts[i]); err != nil {
			return err
		}
	}

	professional, _ := store.GetPlan(ctx, "professional")
	trialEnd := now.Add(9 * 24 * time.Hour)
	billing := &BillingInfo{
		Subscription: Subscription{
			Plan:               *professional,
			Status:             SubscriptionActive,
			CurrentPeriodStart: now.Add(-14 * 24 * time.Hour),
			CurrentPeriodEnd:   now.Add(16 * 24 * time.Hour),
			TrialEnd:           &trialEnd,
		},
		AddOns: []AddOn{
			{Name: "pdf_reports", Enabled: true, Price: 2900},
			{Name: "status_pages", Enabled: true, Price: 4900},
			{Name: "white_label", Enabled: false, Price: 9900},
		},
		PaymentMethod: &PaymentMethod{
			Brand:    "visa",
			Last4:    "4242",
			ExpMonth: 8,
			ExpYear:  2027,
		},
	}
	return store.UpdateBilling(ctx, billing)
}
