package db

import (
	"time"
)

type SiteStatus string

const (
	StatusUp      SiteStatus = "up"
	StatusDown    SiteStatus = "down"
	StatusPending SiteStatus = "pending"
)

type AlertType string

const (
	AlertTypeDown AlertType = "DOWN"
	AlertTypeSlow AlertType = "SLOW"
	AlertTypeSSL  AlertType = "SSL"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Site is a monitored website as shown on the dashboard. Status, Uptime,
// ResponseTimeMs and AlertCount are derived from the check history and the
// alert set, never written directly by API clients. Status stays "pending"
// until the first check completes, and LastCheck is nil exactly then.
type Site struct {
	ID             string     `json:"id" db:"id"`
	Name           string     `json:"name" db:"name"`
	URL            string     `json:"url" db:"url"`
	Status         SiteStatus `json:"status" db:"status"`
	Uptime         float64    `json:"uptime" db:"uptime"`
	ResponseTimeMs int        `json:"responseTime" db:"response_time_ms"`
	LastCheck      *time.Time `json:"lastCheck" db:"last_check"`
	AlertCount     int        `json:"alerts" db:"alert_count"`
	CheckInterval  int        `json:"checkInterval" db:"check_interval"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`
}

// Alert is a derived event flagging an anomalous check outcome.
// ResolvedAt is non-nil iff Resolved is true.
type Alert struct {
	ID             int64      `json:"id" db:"id"`
	SiteID         string     `json:"siteId" db:"site_id"`
	SiteName       string     `json:"siteName" db:"site_name"`
	Type           AlertType  `json:"type" db:"type"`
	Severity       Severity   `json:"severity" db:"severity"`
	Message        string     `json:"message" db:"message"`
	Timestamp      time.Time  `json:"timestamp" db:"created_at"`
	Resolved       bool       `json:"resolved" db:"resolved"`
	ResolvedAt     *time.Time `json:"resolvedAt" db:"resolved_at"`
	ResponseTimeMs int        `json:"responseTime" db:"response_time_ms"`
	StatusCode     int        `json:"statusCode" db:"status_code"`
}

// CheckResult is one observation of one site at one point in time.
// StatusCode 0 means no response at all (connection failure or timeout).
// SSLExpiryDays is nil when the check did not inspect the certificate.
type CheckResult struct {
	ID             int64     `json:"id" db:"id"`
	SiteID         string    `json:"siteId" db:"site_id"`
	Success        bool      `json:"success" db:"success"`
	ResponseTimeMs int       `json:"responseTime" db:"response_time_ms"`
	StatusCode     int       `json:"statusCode" db:"status_code"`
	SSLExpiryDays  *int      `json:"sslExpiryDays,omitempty" db:"ssl_expiry_days"`
	CheckedAt      time.Time `json:"checkedAt" db:"checked_at"`
}

// Account is an agency login. Only the auth endpoints touch it; the
// monitoring data itself is agency-wide.
type Account struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type SubscriptionStatus string

const (
	SubscriptionTrialing SubscriptionStatus = "trialing"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// Plan prices are integers in minor currency units (cents). No monetary
// value is ever represented as a fractional major-unit float.
type Plan struct {
	ID        string `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	Price     int64  `json:"price" db:"price"`
	Currency  string `json:"currency" db:"currency"`
	Interval  string `json:"interval" db:"billing_interval"`
	SiteLimit int    `json:"siteLimit" db:"site_limit"`
}

type Subscription struct {
	Plan               Plan               `json:"plan"`
	Status             SubscriptionStatus `json:"status"`
	CurrentPeriodStart time.Time          `json:"currentPeriodStart"`
	CurrentPeriodEnd   time.Time          `json:"currentPeriodEnd"`
	CancelAtPeriodEnd  bool               `json:"cancelAtPeriodEnd"`
	TrialEnd           *time.Time         `json:"trialEnd,omitempty"`
}

// AddOn is an optionally enabled priced feature bundled into the invoice.
// Slice position is the declaration order and drives line-item order.
type AddOn struct {
	Name    string `json:"name" db:"name"`
	Enabled bool   `json:"enabled" db:"enabled"`
	Price   int64  `json:"price" db:"price"`
}

type PaymentMethod struct {
	Brand    string `json:"brand" db:"brand"`
	Last4    string `json:"last4" db:"last4"`
	ExpMonth int    `json:"expMonth" db:"exp_month"`
	ExpYear  int    `json:"expYear" db:"exp_year"`
}

// BillingInfo is the snapshot the billing endpoints read. Subscription and
// add-ons are owned by the external billing backend; this service only
// projects them into dashboard views.
type BillingInfo struct {
	Subscription  Subscription   `json:"subscription"`
	AddOns        []AddOn        `json:"addOns"`
	PaymentMethod *PaymentMethod `json:"paymentMethod"`
}
