package db

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps the full dataset in memory. It backs the development
// and demo deployments where the probing backend is stubbed out, and is
// the store used by the test suites. All reads copy, so a snapshot handed
// to an aggregator never changes underneath it.
type MemoryStore struct {
	mu sync.RWMutex

	sites  map[string]*Site
	alerts []*Alert
	checks map[string][]*CheckResult

	accounts  map[string]*Account // keyed by email
	passwords map[string]string   // email -> bcrypt hash

	billing *BillingInfo
	plans   map[string]*Plan

	nextAlertID int64
	nextCheckID int64

	historyLimit int
}

func NewMemoryStore(historyLimit int) *MemoryStore {
	if historyLimit <= 0 {
		historyLimit = 100
	}
	return &MemoryStore{
		sites:        make(map[string]*Site),
		checks:       make(map[string][]*CheckResult),
		accounts:     make(map[string]*Account),
		passwords:    make(map[string]string),
		plans:        make(map[string]*Plan),
		nextAlertID:  1,
		nextCheckID:  1,
		historyLimit: historyLimit,
	}
}

func (s *MemoryStore) ListSites(ctx context.Context) ([]Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sites := make([]Site, 0, len(s.sites))
	for _, site := range s.sites {
		sites = append(sites, *site)
	}
	sort.Slice(sites, func(i, j int) bool {
		if sites[i].CreatedAt.Equal(sites[j].CreatedAt) {
			return sites[i].ID < sites[j].ID
		}
		return sites[i].CreatedAt.Before(sites[j].CreatedAt)
	})
	return sites, nil
}

func (s *MemoryStore) GetSite(ctx context.Context, id string) (*Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	site, ok := s.sites[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *site
	return &copied, nil
}

func (s *MemoryStore) InsertSite(ctx context.Context, site *Site) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sites[site.ID]; ok {
		return ErrDuplicate
	}
	copied := *site
	s.sites[site.ID] = &copied
	return nil
}

func (s *MemoryStore) UpdateSite(ctx context.Context, site *Site) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sites[site.ID]; !ok {
		return ErrNotFound
	}
	copied := *site
	s.sites[site.ID] = &copied
	return nil
}

func (s *MemoryStore) DeleteSite(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sites[id]; !ok {
		return ErrNotFound
	}
	delete(s.sites, id)
	delete(s.checks, id)

	kept := s.alerts[:0]
	for _, a := range s.alerts {
		if a.SiteID != id {
			kept = append(kept, a)
		}
	}
	s.alerts = kept
	return nil
}

func (s *MemoryStore) ListAlerts(ctx context.Context) ([]Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alerts := make([]Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		alerts = append(alerts, *a)
	}
	return alerts, nil
}

func (s *MemoryStore) InsertAlert(ctx context.Context, alert *Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert.ID = s.nextAlertID
	s.nextAlertID++

	copied := *alert
	s.alerts = append(s.alerts, &copied)
	return nil
}

func (s *MemoryStore) LatestUnresolvedAlert(ctx context.Context, siteID string, typ AlertType) (*Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *Alert
	for _, a := range s.alerts {
		if a.SiteID != siteID || a.Type != typ || a.Resolved {
			continue
		}
		if latest == nil || a.Timestamp.After(latest.Timestamp) {
			latest = a
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	copied := *latest
	return &copied, nil
}

func (s *MemoryStore) ResolveAlert(ctx context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.alerts {
		if a.ID == id {
			a.Resolved = true
			resolvedAt := at
			a.ResolvedAt = &resolvedAt
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) CountUnresolvedAlerts(ctx context.Context, siteID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, a := range s.alerts {
		if a.SiteID == siteID && !a.Resolved {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) InsertCheck(ctx context.Context, check *CheckResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	check.ID = s.nextCheckID
	s.nextCheckID++

	copied := *check
	history := s.checks[check.SiteID]
	// History stays ordered by observation time even when results arrive
	// late; equal timestamps keep arrival order.
	i := sort.Search(len(history), func(i int) bool {
		return history[i].CheckedAt.After(copied.CheckedAt)
	})
	history = append(history, nil)
	copy(history[i+1:], history[i:])
	history[i] = &copied
	if len(history) > s.historyLimit {
		history = history[len(history)-s.historyLimit:]
	}
	s.checks[check.SiteID] = history
	return nil
}

func (s *MemoryStore) ListChecks(ctx context.Context, siteID string, limit int) ([]CheckResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.checks[siteID]
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	checks := make([]CheckResult, 0, len(history))
	for _, c := range history {
		checks = append(checks, *c)
	}
	return checks, nil
}

func (s *MemoryStore) CreateAccount(ctx context.Context, account *Account, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.Email]; ok {
		return ErrDuplicate
	}
	copied := *account
	s.accounts[account.Email] = &copied
	s.passwords[account.Email] = passwordHash
	return nil
}

func (s *MemoryStore) GetAccountByEmail(ctx context.Context, email string) (*Account, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[email]
	if !ok {
		return nil, "", ErrNotFound
	}
	copied := *account
	return &copied, s.passwords[email], nil
}

func (s *MemoryStore) GetBilling(ctx context.Context) (*BillingInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.billing == nil {
		return nil, ErrNotFound
	}
	copied := *s.billing
	copied.AddOns = append([]AddOn(nil), s.billing.AddOns...)
	if s.billing.PaymentMethod != nil {
		pm := *s.billing.PaymentMethod
		copied.PaymentMethod = &pm
	}
	return &copied, nil
}

func (s *MemoryStore) UpdateBilling(ctx context.Context, info *BillingInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *info
	copied.AddOns = append([]AddOn(nil), info.AddOns...)
	if info.PaymentMethod != nil {
		pm := *info.PaymentMethod
		copied.PaymentMethod = &pm
	}
	s.billing = &copied
	return nil
}

func (s *MemoryStore) GetPlan(ctx context.Context, id string) (*Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plan, ok := s.plans[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *plan
	return &copied, nil
}

// RegisterPlan adds a plan to the catalog. Used by the fixture loader and
// by tests.
func (s *MemoryStore) RegisterPlan(plan Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[plan.ID] = &plan
}

func (s *MemoryStore) Ping() error {
	return nil
}
