package billing

import (
	"fmt"
)

// Command is a billing action dispatched to the payment provider. The
// closed set of variants replaces the open string tag the wire format
// uses, so handling is exhaustive at compile time.
type Command interface {
	isCommand()
}

type UpdatePlan struct {
	PlanID string
}

type ToggleAddon struct {
	AddOn string
}

type UpdatePaymentMethod struct {
	PaymentMethodID string
}

type CancelSubscription struct{}

func (UpdatePlan) isCommand()          {}
func (ToggleAddon) isCommand()         {}
func (UpdatePaymentMethod) isCommand() {}
func (CancelSubscription) isCommand()  {}

// CommandRequest is the wire shape of POST /billing.
type CommandRequest struct {
	Action          string `json:"action" binding:"required"`
	PlanID          string `json:"planId"`
	AddOn           string `json:"addon"`
	PaymentMethodID string `json:"paymentMethodId"`
}

// ParseCommand maps a wire request onto a typed command. An unrecognized
// action tag or a missing per-action field is a validation error, never a
// crash.
func ParseCommand(req CommandRequest) (Command, error) {
	switch req.Action {
	case "update_plan":
		if req.PlanID == "" {
			return nil, fmt.Errorf("%w: planId is required for update_plan", ErrInvalidInput)
		}
		return UpdatePlan{PlanID: req.PlanID}, nil
	case "toggle_addon":
		if req.AddOn == "" {
			return nil, fmt.Errorf("%w: addon is required for toggle_addon", ErrInvalidInput)
		}
		return ToggleAddon{AddOn: req.AddOn}, nil
	case "update_payment_method":
		if req.PaymentMethodID == "" {
			return nil, fmt.Errorf("%w: paymentMethodId is required for update_payment_method", ErrInvalidInput)
		}
		return UpdatePaymentMethod{PaymentMethodID: req.PaymentMethodID}, nil
	case "cancel_subscription":
		return CancelSubscription{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, req.Action)
	}
}
