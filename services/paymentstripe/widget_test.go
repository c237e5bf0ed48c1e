package paymentstripe

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v74"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/storefront/services/checkoutevents"
	"github.com/MarcGrol/storefront/services/payment"
	"github.com/MarcGrol/storefront/services/payment/paymenttest"
)

func TestStripeWidgetContract(t *testing.T) {
	paymenttest.WidgetContract{
		Provider: ProviderName,
		Widget: func(t *testing.T) payment.Widget {
			ctrl := gomock.NewController(t)
			payer := NewMockPayer(ctrl)
			payer.EXPECT().UseAPIKey("sk_test_123")
			payer.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).Return(stripe.CheckoutSession{ID: "cs_123", URL: "https://checkout.stripe.com/c/pay/cs_123"}, nil).AnyTimes()
			payer.EXPECT().GetCheckoutSession(gomock.Any(), "cs_123").Return(stripe.CheckoutSession{ID: "cs_123", Status: stripe.CheckoutSessionStatusComplete, PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid}, nil).AnyTimes()
			return NewWidget("sk_test_123", payer)
		},
	}.Test(t)
}

func TestStripeWidget(t *testing.T) {
	c := context.TODO()

	t.Run("Open maps config onto checkout session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		payer := NewMockPayer(ctrl)
		payer.EXPECT().UseAPIKey("sk_test_123")
		var got stripe.CheckoutSessionParams
		payer.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).DoAndReturn(func(c context.Context, params stripe.CheckoutSessionParams) (stripe.CheckoutSession, error) {
			got = params
			return stripe.CheckoutSession{ID: "cs_123", URL: "https://checkout.stripe.com/c/pay/cs_123"}, nil
		})
		sut := NewWidget("sk_test_123", payer)

		// when
		session, err := sut.Open(c, paymenttest.ExampleConfig)

		// then
		assert.NoError(t, err)
		assert.Equal(t, payment.Session{ID: "cs_123", RedirectURL: "https://checkout.stripe.com/c/pay/cs_123"}, session)
		assert.Equal(t, paymenttest.ExampleConfig.SuccessURL, *got.SuccessURL)
		assert.Equal(t, paymenttest.ExampleConfig.CloseURL, *got.CancelURL)
		assert.Equal(t, paymenttest.ExampleConfig.Reference, *got.ClientReferenceID)
		assert.Equal(t, "ngn", *got.Currency)
		assert.Equal(t, int64(1234567), *got.LineItems[0].PriceData.UnitAmount)
		assert.Equal(t, int64(1), *got.LineItems[0].Quantity)
		assert.Equal(t, []*string{stripe.String("card")}, got.PaymentMethodTypes)
		assert.Equal(t, "Ada", got.PaymentIntentData.Metadata["firstName"])
		assert.Equal(t, paymenttest.ExampleConfig.Reference, got.PaymentIntentData.Metadata["reference"])
	})

	t.Run("Channel without mapping is not restricted", func(t *testing.T) {
		// given
		cfg := paymenttest.ExampleConfig
		cfg.Channel = payment.ChannelUSSD

		// when
		params := checkoutSessionParams(cfg)

		// then
		assert.Nil(t, params.PaymentMethodTypes)
	})

	t.Run("Bank maps to sepa debit", func(t *testing.T) {
		// given
		cfg := paymenttest.ExampleConfig
		cfg.Channel = payment.ChannelBank

		// when
		params := checkoutSessionParams(cfg)

		// then
		assert.Equal(t, []*string{stripe.String("sepa_debit")}, params.PaymentMethodTypes)
	})

	t.Run("Oversized metadata is dropped", func(t *testing.T) {
		// given
		cfg := paymenttest.ExampleConfig
		cfg.Metadata.CartItems = fmt.Sprintf("%0600d", 0)

		// when
		md := metadata(cfg)

		// then
		_, found := md["cartItems"]
		assert.False(t, found)
		assert.Equal(t, "Lagos", md["city"])
		assert.Equal(t, []string{"cartItems"}, oversizedMetadata(cfg))
	})

	t.Run("Nothing oversized", func(t *testing.T) {
		assert.Empty(t, oversizedMetadata(paymenttest.ExampleConfig))
	})

	t.Run("Open fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		payer := NewMockPayer(ctrl)
		payer.EXPECT().UseAPIKey("sk_test_123")
		payer.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).Return(stripe.CheckoutSession{}, fmt.Errorf("invalid currency"))
		sut := NewWidget("sk_test_123", payer)

		// when
		_, err := sut.Open(c, paymenttest.ExampleConfig)

		// then
		assert.Error(t, err)
	})

	t.Run("Load requires credential", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		_, err := Load(NewMockPayer(ctrl))(c, "")
		assert.Error(t, err)
	})
}

func TestClassifyStatus(t *testing.T) {
	testCases := []struct {
		name    string
		session stripe.CheckoutSession
		status  checkoutevents.CheckoutStatus
	}{
		{name: "Paid", session: stripe.CheckoutSession{Status: stripe.CheckoutSessionStatusComplete, PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid}, status: checkoutevents.CheckoutStatusSuccess},
		{name: "Free", session: stripe.CheckoutSession{Status: stripe.CheckoutSessionStatusComplete, PaymentStatus: stripe.CheckoutSessionPaymentStatusNoPaymentRequired}, status: checkoutevents.CheckoutStatusSuccess},
		{name: "Unpaid", session: stripe.CheckoutSession{Status: stripe.CheckoutSessionStatusOpen, PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid}, status: checkoutevents.CheckoutStatusPending},
		{name: "Expired", session: stripe.CheckoutSession{Status: stripe.CheckoutSessionStatusExpired, PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid}, status: checkoutevents.CheckoutStatusExpired},
		{name: "Unknown", session: stripe.CheckoutSession{}, status: checkoutevents.CheckoutStatusOther},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, classifyStatus(tc.session))
		})
	}
}
