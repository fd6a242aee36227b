package db

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint would be violated.
	ErrDuplicate = errors.New("duplicate")
)

// Store is the persistence boundary for the dashboard. The aggregation
// logic never reaches into a store directly; handlers read a snapshot
// through these methods and hand slices to the pure aggregators.
type Store interface {
	ListSites(ctx context.Context) ([]Site, error)
	GetSite(ctx context.Context, id string) (*Site, error)
	InsertSite(ctx context.Context, site *Site) error
	UpdateSite(ctx context.Context, site *Site) error
	DeleteSite(ctx context.Context, id string) error

	// ListAlerts returns every alert, unordered. Sorting and filtering are
	// the query engine's job.
	ListAlerts(ctx context.Context) ([]Alert, error)
	// InsertAlert assigns a monotonically increasing ID to the alert.
	InsertAlert(ctx context.Context, alert *Alert) error
	// LatestUnresolvedAlert returns the most recent unresolved alert for a
	// site and alert type, or ErrNotFound.
	LatestUnresolvedAlert(ctx context.Context, siteID string, typ AlertType) (*Alert, error)
	// ResolveAlert marks an alert resolved at the given time.
	ResolveAlert(ctx context.Context, id int64, at time.Time) error
	CountUnresolvedAlerts(ctx context.Context, siteID string) (int, error)

	InsertCheck(ctx context.Context, check *CheckResult) error
	// ListChecks returns up to limit check results for a site, oldest
	// first, bounded to the retained history window.
	ListChecks(ctx context.Context, siteID string, limit int) ([]CheckResult, error)

	CreateAccount(ctx context.Context, account *Account, passwordHash string) error
	GetAccountByEmail(ctx context.Context, email string) (*Account, string, error)

	GetBilling(ctx context.Context) (*BillingInfo, error)
	UpdateBilling(ctx context.Context, info *BillingInfo) error
	GetPlan(ctx context.Context, id string) (*Plan, error)

	Ping() error
}
