package billing

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/agencyuptime/dashboard-api/internal/db"
)

// ErrInvalidInput marks a billing command the caller got wrong: unknown
// action, unknown plan or add-on, missing fields. Handlers map it to 400.
var ErrInvalidInput = errors.New("invalid billing request")

// Provider is the boundary to the external payment processor. Every
// operation must be safe to retry; the processor deduplicates on its
// side and the local implementation converges to the same state.
type Provider interface {
	UpdatePlan(ctx context.Context, planID string) (string, error)
	ToggleAddon(ctx context.Context, name string) (string, error)
	UpdatePaymentMethod(ctx context.Context, paymentMethodID string) (string, error)
	CancelSubscription(ctx context.Context) (string, error)
}

// Service dispatches typed commands to the provider.
type Service struct {
	provider Provider
	logger   *zap.Logger
}

func NewService(provider Provider, logger *zap.Logger) *Service {
	return &Service{provider: provider, logger: logger}
}

// Execute runs one billing command and returns its user-facing result
// message. The type switch is exhaustive over the Command variants.
func (s *Service) Execute(ctx context.Context, cmd Command) (string, error) {
	switch c := cmd.(type) {
	case UpdatePlan:
		return s.provider.UpdatePlan(ctx, c.PlanID)
	case ToggleAddon:
		return s.provider.ToggleAddon(ctx, c.AddOn)
	case UpdatePaymentMethod:
		return s.provider.UpdatePaymentMethod(ctx, c.PaymentMethodID)
	case CancelSubscription:
		return s.provider.CancelSubscription(ctx)
	default:
		// Unreachable as long as ParseCommand is the only constructor.
		return "", fmt.Errorf("%w: unsupported command %T", ErrInvalidInput, cmd)
	}
}

// LocalProvider applies billing commands against the local store. It
// stands in for the payment processor in development and demo
// deployments and keeps every operation idempotent.
type LocalProvider struct {
	store  db.Store
	logger *zap.Logger
}

func NewLocalProvider(store db.Store, logger *zap.Logger) *LocalProvider {
	return &LocalProvider{store: store, logger: logger}
}

func (p *LocalProvider) UpdatePlan(ctx context.Context, planID string) (string, error) {
	plan, err := p.store.GetPlan(ctx, planID)
	if errors.Is(err, db.ErrNotFound) {
		return "", fmt.Errorf("%w: unknown plan %q", ErrInvalidInput, planID)
	}
	if err != nil {
		return "", err
	}

	info, err := p.store.GetBilling(ctx)
	if err != nil {
		return "", err
	}

	info.Subscription.Plan = *plan
	info.Subscription.Status = db.SubscriptionActive
	info.Subscription.CancelAtPeriodEnd = false
	if err := p.store.UpdateBilling(ctx, info); err != nil {
		return "", err
	}

	p.logger.Info("Plan updated", zap.String("plan_id", planID))
	return fmt.Sprintf("Plan updated to %s", plan.Name), nil
}

func (p *LocalProvider) ToggleAddon(ctx context.Context, name string) (string, error) {
	info, err := p.store.GetBilling(ctx)
	if err != nil {
		return "", err
	}

	for i := range info.AddOns {
		if info.AddOns[i].Name != name {
			continue
		}
		info.AddOns[i].Enabled = !info.AddOns[i].Enabled
		if err := p.store.UpdateBilling(ctx, info); err != nil {
			return "", err
		}

		state := "disabled"
		if info.AddOns[i].Enabled {
			state = "enabled"
		}
		p.logger.Info("Add-on toggled", zap.String("addon", name), zap.String("state", state))
		return fmt.Sprintf("Add-on %s %s", name, state), nil
	}

	return "", fmt.Errorf("%w: unknown add-on %q", ErrInvalidInput, name)
}

func (p *LocalProvider) UpdatePaymentMethod(ctx context.Context, paymentMethodID string) (string, error) {
	info, err := p.store.GetBilling(ctx)
	if err != nil {
		return "", err
	}

	// The processor owns card details; locally we only note that a new
	// method was attached.
	if info.PaymentMethod == nil {
		info.PaymentMethod = &db.PaymentMethod{}
	}
	if err := p.store.UpdateBilling(ctx, info); err != nil {
		return "", err
	}

	p.logger.Info("Payment method updated", zap.String("payment_method_id", paymentMethodID))
	return "Payment method updated", nil
}

func (p *LocalProvider) CancelSubscription(ctx context.Context) (string, error) {
	info, err := p.store.GetBilling(ctx)
	if err != nil {
		return "", err
	}

	// Already-cancelled subscriptions stay cancelled; retries converge.
	info.Subscription.CancelAtPeriodEnd = true
	if err := p.store.UpdateBilling(ctx, info); err != nil {
		return "", err
	}

	p.logger.Info("Subscription set to cancel at period end")
	return "Subscription will be canceled at the end of the current billing period", nil
}
