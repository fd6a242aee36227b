package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencyuptime/dashboard-api/internal/db"
)

func testSubscription() db.Subscription {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return db.Subscription{
		Plan: db.Plan{
			ID:       "professional",
			Name:     "Professional",
			Price:    5000,
			Currency: "usd",
			Interval: "month",
		},
		Status:             db.SubscriptionActive,
		CurrentPeriodStart: start,
		CurrentPeriodEnd:   start.AddDate(0, 1, 0),
	}
}

func TestComposeInvoiceSumsEnabledAddOnsInOrder(t *testing.T) {
	addOns := []db.AddOn{
		{Name: "pdf_reports", Enabled: true, Price: 2900},
		{Name: "status_pages", Enabled: true, Price: 4900},
		{Name: "white_label", Enabled: false, Price: 9900},
	}

	invoice := ComposeInvoice(testSubscription(), addOns)

	require.Len(t, invoice.LineItems, 3)
	assert.Equal(t, "Professional", invoice.LineItems[0].Description)
	assert.Equal(t, "pdf_reports", invoice.LineItems[1].Description)
	assert.Equal(t, "status_pages", invoice.LineItems[2].Description)
	assert.Equal(t, int64(12800), invoice.AmountDue)
	assert.Equal(t, "usd", invoice.Currency)
}

func TestComposeInvoicePlanOnly(t *testing.T) {
	sub := testSubscription()

	invoice := ComposeInvoice(sub, nil)

	require.Len(t, invoice.LineItems, 1)
	assert.Equal(t, sub.Plan.Price, invoice.AmountDue)
	assert.Equal(t, sub.CurrentPeriodStart, invoice.PeriodStart)
	assert.Equal(t, sub.CurrentPeriodEnd, invoice.PeriodEnd)
}

func TestComposeInvoiceAllAddOnsDisabled(t *testing.T) {
	addOns := []db.AddOn{
		{Name: "pdf_reports", Enabled: false, Price: 2900},
		{Name: "white_label", Enabled: false, Price: 9900},
	}

	invoice := ComposeInvoice(testSubscription(), addOns)

	require.Len(t, invoice.LineItems, 1)
	assert.Equal(t, int64(5000), invoice.AmountDue)
}

func TestComposeInvoiceAmountIsExactSum(t *testing.T) {
	addOns := []db.AddOn{
		{Name: "a", Enabled: true, Price: 1},
		{Name: "b", Enabled: true, Price: 3},
	}

	invoice := ComposeInvoice(testSubscription(), addOns)

	var sum int64
	for _, item := range invoice.LineItems {
		sum += item.Amount
	}
	assert.Equal(t, sum, invoice.AmountDue)
}
