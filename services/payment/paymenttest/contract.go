// Package paymenttest holds the behaviour every payment widget must show, whatever provider is behind it
package paymenttest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MarcGrol/storefront/services/checkoutevents"
	"github.com/MarcGrol/storefront/services/payment"
)

var ExampleConfig = payment.Config{
	Reference:   "ref_1677542339000_0123456789ab",
	Email:       "ada@example.com",
	AmountMinor: 1234567,
	Currency:    "NGN",
	Metadata: payment.Metadata{
		FirstName: "Ada",
		LastName:  "Obi",
		Phone:     "+2348012345678",
		Street:    "1 Marina Road",
		City:      "Lagos",
		Country:   "NG",
		CartItems: `[{"productUid":"p1","quantity":1}]`,
	},
	Channel:    payment.ChannelCard,
	SuccessURL: "http://localhost:8080/checkout/payment/ref_1677542339000_0123456789ab/status/success",
	CloseURL:   "http://localhost:8080/checkout/payment/ref_1677542339000_0123456789ab/status/closed",
	WebhookURL: "http://localhost:8080/api/order/webhook/ref_1677542339000_0123456789ab",
}

// WidgetContract is run against every implementation; the widget must behave as if the buyer pays right away
type WidgetContract struct {
	Provider string
	Widget   func(t *testing.T) payment.Widget
}

func (wc WidgetContract) Test(t *testing.T) {
	t.Run("reports its provider and is ready", func(t *testing.T) {
		sut := wc.Widget(t)

		assert.Equal(t, wc.Provider, sut.Provider())
		assert.True(t, sut.Ready())
	})

	t.Run("opens a session with a hosted page to redirect to", func(t *testing.T) {
		var (
			sut = wc.Widget(t)
			ctx = context.Background()
		)

		session, err := sut.Open(ctx, ExampleConfig)
		assert.NoError(t, err)
		assert.NotEmpty(t, session.ID)
		assert.NotEmpty(t, session.RedirectURL)
	})

	t.Run("verifies a completed session as success", func(t *testing.T) {
		var (
			sut = wc.Widget(t)
			ctx = context.Background()
		)

		session, err := sut.Open(ctx, ExampleConfig)
		assert.NoError(t, err)

		verification, err := sut.Verify(ctx, session.ID)
		assert.NoError(t, err)
		assert.Equal(t, checkoutevents.CheckoutStatusSuccess, verification.Status)
	})
}
