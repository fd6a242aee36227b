// Package billing projects the subscription state the external billing
// backend owns into the invoice preview the dashboard shows, and models
// the billing actions proxied back to it.
package billing

import (
	"time"

	"github.com/agencyuptime/dashboard-api/internal/db"
)

// LineItem is one priced component of an invoice projection. Amounts are
// integers in minor currency units; they are summed exactly, never
// rounded.
type LineItem struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
}

// InvoiceProjection is the upcoming-invoice preview for the current
// billing period.
type InvoiceProjection struct {
	AmountDue   int64      `json:"amountDue"`
	Currency    string     `json:"currency"`
	PeriodStart time.Time  `json:"periodStart"`
	PeriodEnd   time.Time  `json:"periodEnd"`
	LineItems   []LineItem `json:"lineItems"`
}

// ComposeInvoice builds the invoice projection for a subscription: the
// plan line first, then one line per enabled add-on in declaration order.
// AmountDue is the exact sum of the included line amounts.
func ComposeInvoice(sub db.Subscription, addOns []db.AddOn) InvoiceProjection {
	invoice := InvoiceProjection{
		Currency:    sub.Plan.Currency,
		PeriodStart: sub.CurrentPeriodStart,
		PeriodEnd:   sub.CurrentPeriodEnd,
		LineItems: []LineItem{
			{Description: sub.Plan.Name, Amount: sub.Plan.Price, Currency: sub.Plan.Currency},
		},
	}

	for _, addOn := range addOns {
		if !addOn.Enabled {
			continue
		}
		invoice.LineItems = append(invoice.LineItems, LineItem{
			Description: addOn.Name,
			Amount:      addOn.Price,
			Currency:    sub.Plan.Currency,
		})
	}

	for _, item := range invoice.LineItems {
		invoice.AmountDue += item.Amount
	}
	return invoice
}
