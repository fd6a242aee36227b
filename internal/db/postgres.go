package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresStore is the production Store implementation.
type PostgresStore struct {
	db *sqlx.DB
}

func NewConnection(databaseURL string, maxConns, maxIdle int) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate applies pending schema migrations from the given directory.
func Migrate(db *sqlx.DB, migrationsPath string) error {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to init migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListSites(ctx context.Context) ([]Site, error) {
	sites := []Site{}
	query := `SELECT * FROM sites ORDER BY created_at, id`
	err := s.db.SelectContext(ctx, &sites, query)
	return sites, err
}

func (s *PostgresStore) GetSite(ctx context.Context, id string) (*Site, error) {
	var site Site
	query := `SELECT * FROM sites WHERE id = $1`
	err := s.db.GetContext(ctx, &site, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &site, err
}

func (s *PostgresStore) InsertSite(ctx context.Context, site *Site) error {
	query := `
		INSERT INTO sites (
			id, name, url, status, uptime, response_time_ms, last_check,
			alert_count, check_interval, created_at, updated_at
		) VALUES (
			:id, :name, :url, :status, :uptime, :response_time_ms, :last_check,
			:alert_count, :check_interval, :created_at, :updated_at
		)`

	_, err := s.db.NamedExecContext(ctx, query, site)
	return err
}

func (s *PostgresStore) UpdateSite(ctx context.Context, site *Site) error {
	query := `
		UPDATE sites SET
			name = :name,
			url = :url,
			status = :status,
			uptime = :uptime,
			response_time_ms = :response_time_ms,
			last_check = :last_check,
			alert_count = :alert_count,
			check_interval = :check_interval,
			updated_at = :updated_at
		WHERE id = :id`

	res, err := s.db.NamedExecContext(ctx, query, site)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteSite(ctx context.Context, id string) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM alerts WHERE site_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM check_results WHERE site_id = $1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sites WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

func (s *PostgresStore) ListAlerts(ctx context.Context) ([]Alert, error) {
	alerts := []Alert{}
	query := `SELECT * FROM alerts ORDER BY id`
	err := s.db.SelectContext(ctx, &alerts, query)
	return alerts, err
}

func (s *PostgresStore) InsertAlert(ctx context.Context, alert *Alert) error {
	query := `
		INSERT INTO alerts (
			site_id, site_name, type, severity, message,
			created_at, resolved, resolved_at, response_time_ms, status_code
		) VALUES (
			:site_id, :site_name, :type, :severity, :message,
			:created_at, :resolved, :resolved_at, :response_time_ms, :status_code
		) RETURNING id`

	rows, err := s.db.NamedQueryContext(ctx, query, alert)
	if err != nil {
		return err
	}
	defer rows.Close()

	if rows.Next() {
		return rows.Scan(&alert.ID)
	}
	return rows.Err()
}

func (s *PostgresStore) LatestUnresolvedAlert(ctx context.Context, siteID string, typ AlertType) (*Alert, error) {
	var alert Alert
	query := `
		SELECT * FROM alerts
		WHERE site_id = $1 AND type = $2 AND resolved = false
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	err := s.db.GetContext(ctx, &alert, query, siteID, typ)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &alert, err
}

func (s *PostgresStore) ResolveAlert(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE alerts SET resolved = true, resolved_at = $2 WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountUnresolvedAlerts(ctx context.Context, siteID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM alerts WHERE site_id = $1 AND resolved = false`
	err := s.db.GetContext(ctx, &count, query, siteID)
	return count, err
}

func (s *PostgresStore) InsertCheck(ctx context.Context, check *CheckResult) error {
	query := `
		INSERT INTO check_results (
			site_id, success, response_time_ms, status_code, ssl_expiry_days, checked_at
		) VALUES (
			:site_id, :success, :response_time_ms, :status_code, :ssl_expiry_days, :checked_at
		) RETURNING id`

	rows, err := s.db.NamedQueryContext(ctx, query, check)
	if err != nil {
		return err
	}
	defer rows.Close()

	if rows.Next() {
		return rows.Scan(&check.ID)
	}
	return rows.Err()
}

func (s *PostgresStore) ListChecks(ctx context.Context, siteID string, limit int) ([]CheckResult, error) {
	if limit <= 0 {
		limit = 1000
	}
	checks := []CheckResult{}
	query := `
		SELECT * FROM (
			SELECT * FROM check_results
			WHERE site_id = $1
			ORDER BY checked_at DESC, id DESC
			LIMIT $2
		) recent ORDER BY checked_at, id`

	err := s.db.SelectContext(ctx, &checks, query, siteID, limit)
	return checks, err
}

func (s *PostgresStore) CreateAccount(ctx context.Context, account *Account, passwordHash string) error {
	query := `
		INSERT INTO accounts (id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.db.ExecContext(ctx, query,
		account.ID, account.Name, account.Email, passwordHash,
		account.CreatedAt, account.UpdatedAt,
	)
	return err
}

func (s *PostgresStore) GetAccountByEmail(ctx context.Context, email string) (*Account, string, error) {
	var row struct {
		Account
		PasswordHash string `db:"password_hash"`
	}
	query := `SELECT * FROM accounts WHERE email = $1`
	err := s.db.GetContext(ctx, &row, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	return &row.Account, row.PasswordHash, nil
}

func (s *PostgresStore) GetBilling(ctx context.Context) (*BillingInfo, error) {
	var info BillingInfo

	var sub struct {
		PlanID             string             `db:"plan_id"`
		Status             SubscriptionStatus `db:"status"`
		CurrentPeriodStart time.Time          `db:"current_period_start"`
		CurrentPeriodEnd   time.Time          `db:"current_period_end"`
		CancelAtPeriodEnd  bool               `db:"cancel_at_period_end"`
		TrialEnd           *time.Time         `db:"trial_end"`
	}
	err := s.db.GetContext(ctx, &sub, `SELECT plan_id, status, current_period_start, current_period_end, cancel_at_period_end, trial_end FROM subscription WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	plan, err := s.GetPlan(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}
	info.Subscription = Subscription{
		Plan:               *plan,
		Status:             sub.Status,
		CurrentPeriodStart: sub.CurrentPeriodStart,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd,
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		TrialEnd:           sub.TrialEnd,
	}

	addOns := []AddOn{}
	if err := s.db.SelectContext(ctx, &addOns, `SELECT name, enabled, price FROM add_ons ORDER BY position`); err != nil {
		return nil, err
	}
	info.AddOns = addOns

	var pm PaymentMethod
	err = s.db.GetContext(ctx, &pm, `SELECT brand, last4, exp_month, exp_year FROM payment_method WHERE id = 1`)
	if err == nil {
		info.PaymentMethod = &pm
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	return &info, nil
}

func (s *PostgresStore) UpdateBilling(ctx context.Context, info *BillingInfo) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO subscription (id, plan_id, status, current_period_start, current_period_end, cancel_at_period_end, trial_end)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			plan_id = $1, status = $2, current_period_start = $3,
			current_period_end = $4, cancel_at_period_end = $5, trial_end = $6`,
		info.Subscription.Plan.ID,
		info.Subscription.Status,
		info.Subscription.CurrentPeriodStart,
		info.Subscription.CurrentPeriodEnd,
		info.Subscription.CancelAtPeriodEnd,
		info.Subscription.TrialEnd,
	)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM add_ons`); err != nil {
		return err
	}
	for i, addOn := range info.AddOns {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO add_ons (name, enabled, price, position) VALUES ($1, $2, $3, $4)`,
			addOn.Name, addOn.Enabled, addOn.Price, i,
		)
		if err != nil {
			return err
		}
	}

	if info.PaymentMethod != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO payment_method (id, brand, last4, exp_month, exp_year)
			VALUES (1, $1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET
				brand = $1, last4 = $2, exp_month = $3, exp_year = $4`,
			info.PaymentMethod.Brand,
			info.PaymentMethod.Last4,
			info.PaymentMethod.ExpMonth,
			info.PaymentMethod.ExpYear,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) GetPlan(ctx context.Context, id string) (*Plan, error) {
	var plan Plan
	query := `SELECT * FROM plans WHERE id = $1`
	err := s.db.GetContext(ctx, &plan, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &plan, err
}

func (s *PostgresStore) Ping() error {
	return s.db.Ping()
}
