package payment_test

import (
	"testing"

	"github.com/MarcGrol/storefront/services/payment"
	"github.com/MarcGrol/storefront/services/payment/paymenttest"
)

func TestFakeWidget(t *testing.T) {
	paymenttest.WidgetContract{
		Provider: payment.FakeProviderName,
		Widget: func(t *testing.T) payment.Widget {
			return payment.NewFakeWidget()
		},
	}.Test(t)
}
