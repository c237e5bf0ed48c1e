package paymentstripe

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/stripe/stripe-go/v74"

	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/services/checkoutevents"
	"github.com/MarcGrol/storefront/services/payment"
)

const (
	ProviderName           = "stripe"
	maxMetadataValueLength = 500
)

var paymentMethodTypes = map[payment.Channel][]string{
	payment.ChannelCard: {"card"},
	payment.ChannelBank: {"sepa_debit"},
}

type widget struct {
	payer  Payer
	logger mylog.Logger
}

func NewWidget(apiKey string, payer Payer) *widget {
	payer.UseAPIKey(apiKey)
	return &widget{
		payer:  payer,
		logger: mylog.New(ProviderName),
	}
}

// Load constructs the widget once the credential is known
func Load(payer Payer) payment.LoadFunc {
	return func(c context.Context, credential string) (payment.Widget, error) {
		if credential == "" {
			return nil, fmt.Errorf("missing %s api key", ProviderName)
		}
		return NewWidget(credential, payer), nil
	}
}

func (w *widget) Provider() string {
	return ProviderName
}

func (w *widget) Ready() bool {
	return true
}

func (w *widget) Open(c context.Context, cfg payment.Config) (payment.Session, error) {
	params := checkoutSessionParams(cfg)
	for _, key := range oversizedMetadata(cfg) {
		w.logger.Log(c, cfg.Reference, mylog.SeverityWarn, "Metadata %s of %s exceeds %d characters and is not sent to stripe; the payment attempt keeps it",
			key, cfg.Reference, maxMetadataValueLength)
	}

	s, err := w.payer.CreateCheckoutSession(c, params)
	if err != nil {
		return payment.Session{}, err
	}

	w.logger.Log(c, cfg.Reference, mylog.SeverityInfo, "Created stripe session %s for %s", s.ID, cfg.Reference)

	return payment.Session{
		ID:          s.ID,
		RedirectURL: s.URL,
	}, nil
}

func (w *widget) Verify(c context.Context, sessionID string) (payment.Verification, error) {
	s, err := w.payer.GetCheckoutSession(c, sessionID)
	if err != nil {
		return payment.Verification{}, err
	}

	return payment.Verification{
		Status:        classifyStatus(s),
		Details:       fmt.Sprintf("status:%s, payment-status:%s", s.Status, s.PaymentStatus),
		PaymentMethod: strings.Join(s.PaymentMethodTypes, ","),
	}, nil
}

func classifyStatus(s stripe.CheckoutSession) checkoutevents.CheckoutStatus {
	if s.Status == stripe.CheckoutSessionStatusExpired {
		return checkoutevents.CheckoutStatusExpired
	}

	switch s.PaymentStatus {
	case stripe.CheckoutSessionPaymentStatusPaid, stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		return checkoutevents.CheckoutStatusSuccess
	case stripe.CheckoutSessionPaymentStatusUnpaid:
		return checkoutevents.CheckoutStatusPending
	default:
		return checkoutevents.CheckoutStatusOther
	}
}

func checkoutSessionParams(cfg payment.Config) stripe.CheckoutSessionParams {
	currency := strings.ToLower(cfg.Currency)

	params := stripe.CheckoutSessionParams{
		SuccessURL:        stripe.String(cfg.SuccessURL),
		CancelURL:         stripe.String(cfg.CloseURL),
		ClientReferenceID: stripe.String(cfg.Reference),
		CustomerEmail:     stripe.String(cfg.Email),
		Currency:          stripe.String(currency),
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Order %s", cfg.Reference)),
					},
					UnitAmount: stripe.Int64(cfg.AmountMinor),
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: metadata(cfg),
		},
	}

	types, found := paymentMethodTypes[cfg.Channel]
	if found {
		params.PaymentMethodTypes = stripe.StringSlice(types)
	}

	return params
}

// stripe refuses metadata values above 500 characters
func metadata(cfg payment.Config) map[string]string {
	md := map[string]string{
		"reference": cfg.Reference,
	}
	for k, v := range cfg.Metadata.AsMap() {
		if len(v) <= maxMetadataValueLength {
			md[k] = v
		}
	}
	return md
}

func oversizedMetadata(cfg payment.Config) []string {
	keys := []string{}
	for k, v := range cfg.Metadata.AsMap() {
		if len(v) > maxMetadataValueLength {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
