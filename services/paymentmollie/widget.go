package paymentmollie

import (
	"context"
	"fmt"

	"github.com/VictorAvelar/mollie-api-go/v3/mollie"

	"github.com/MarcGrol/storefront/lib/myerrors"
	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/services/checkoutevents"
	"github.com/MarcGrol/storefront/services/payment"
)

const ProviderName = "mollie"

var paymentMethods = map[payment.Channel]mollie.PaymentMethod{
	payment.ChannelCard:         "creditcard",
	payment.ChannelBankTransfer: "banktransfer",
	payment.ChannelBank:         "directdebit",
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
	resp, err := w.payer.CreatePayment(c, paymentRequest(cfg))
	if err != nil {
		return payment.Session{}, err
	}

	if resp.Links.Checkout == nil {
		return payment.Session{}, myerrors.NewInternalError(fmt.Errorf("mollie payment %s has no checkout link", resp.ID))
	}

	w.logger.Log(c, cfg.Reference, mylog.SeverityInfo, "Created mollie payment %s for %s", resp.ID, cfg.Reference)

	return payment.Session{
		ID:          resp.ID,
		RedirectURL: resp.Links.Checkout.Href,
	}, nil
}

func (w *widget) Verify(c context.Context, sessionID string) (payment.Verification, error) {
	resp, err := w.payer.GetPaymentOnID(c, sessionID)
	if err != nil {
		return payment.Verification{}, err
	}

	return payment.Verification{
		Status:        classifyEventStatus(resp.Status),
		Details:       resp.Status,
		PaymentMethod: string(resp.Method),
	}, nil
}

func classifyEventStatus(mollieStatus string) checkoutevents.CheckoutStatus {
	switch mollieStatus {
	case "paid", "authorized":
		return checkoutevents.CheckoutStatusSuccess
	case "canceled":
		return checkoutevents.CheckoutStatusCancelled
	case "failed":
		return checkoutevents.CheckoutStatusFailed
	case "expired":
		return checkoutevents.CheckoutStatusExpired
	case "open", "pending":
		return checkoutevents.CheckoutStatusPending
	default:
		return checkoutevents.CheckoutStatusOther
	}
}

func paymentRequest(cfg payment.Config) mollie.Payment {
	request := mollie.Payment{
		BillingEmail: cfg.Email,
		Description:  fmt.Sprintf("Order %s", cfg.Reference),
		RedirectURL:  cfg.SuccessURL,
		CancelURL:    cfg.CloseURL,
		WebhookURL:   cfg.WebhookURL,
		Metadata:     cfg.Metadata.AsMap(),
		Amount: &mollie.Amount{
			Currency: cfg.Currency,
			Value:    formatAmount(cfg.AmountMinor),
		},
		BillingAddress: &mollie.Address{
			StreetAndNumber: cfg.Metadata.Street,
			City:            cfg.Metadata.City,
			Country:         cfg.Metadata.Country,
		},
	}

	method, found := paymentMethods[cfg.Channel]
	if found {
		request.Method = method
	}

	return request
}

// mollie wants the amount as a string with exactly two decimals
func formatAmount(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}
