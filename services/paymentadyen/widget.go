package paymentadyen

import (
	"context"
	"fmt"

	"github.com/adyen/adyen-go-api-library/v6/src/checkout"

	"github.com/MarcGrol/storefront/lib/myerrors"
	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/lib/mystore"
	"github.com/MarcGrol/storefront/lib/mytime"
	"github.com/MarcGrol/storefront/services/checkoutevents"
	"github.com/MarcGrol/storefront/services/payment"
)

const ProviderName = "adyen"

var allowedPaymentMethods = map[payment.Channel][]string{
	payment.ChannelCard:         {"scheme"},
	payment.ChannelBankTransfer: {"bankTransfer_IBAN"},
	payment.ChannelBank:         {"sepadirectdebit"},
}

type widget struct {
	merchantAccount string
	payer           Payer
	dropInStore     mystore.Store[DropIn]
	nower           mytime.Nower
	logger          mylog.Logger
}

func NewWidget(cfg Config, apiKey string, payer Payer, dropInStore mystore.Store[DropIn], nower mytime.Nower) *widget {
	payer.UseAPIKey(apiKey)
	return &widget{
		merchantAccount: cfg.MerchantAccount,
		payer:           payer,
		dropInStore:     dropInStore,
		nower:           nower,
		logger:          mylog.New(ProviderName),
	}
}

func Load(cfg Config, payer Payer, dropInStore mystore.Store[DropIn], nower mytime.Nower) payment.LoadFunc {
	return func(c context.Context, credential string) (payment.Widget, error) {
		if credential == "" {
			return nil, fmt.Errorf("missing %s api key", ProviderName)
		}
		if cfg.MerchantAccount == "" {
			return nil, fmt.Errorf("missing %s merchant account", ProviderName)
		}
		return NewWidget(cfg, credential, payer, dropInStore, nower), nil
	}
}

func (w *widget) Provider() string {
	return ProviderName
}

func (w *widget) Ready() bool {
	return true
}

// Open creates an adyen session; the buyer pays on our own drop-in page
func (w *widget) Open(c context.Context, cfg payment.Config) (payment.Session, error) {
	resp, err := w.payer.Sessions(c, w.sessionRequest(cfg))
	if err != nil {
		return payment.Session{}, err
	}

	err = w.dropInStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent
		return w.dropInStore.Put(c, resp.Id, DropIn{
			SessionID:   resp.Id,
			Reference:   cfg.Reference,
			SessionData: resp.SessionData,
			AmountMinor: cfg.AmountMinor,
			Currency:    cfg.Currency,
			SuccessURL:  cfg.SuccessURL,
			CloseURL:    cfg.CloseURL,
			CreatedAt:   w.nower.Now(),
			Status:      checkoutevents.CheckoutStatusPending,
		})
	})
	if err != nil {
		return payment.Session{}, myerrors.NewInternalError(fmt.Errorf("error storing adyen session %s: %s", resp.Id, err))
	}

	w.logger.Log(c, cfg.Reference, mylog.SeverityInfo, "Created adyen session %s for %s", resp.Id, cfg.Reference)

	return payment.Session{
		ID:          resp.Id,
		Data:        resp.SessionData,
		RedirectURL: "/payment/adyen/" + cfg.Reference,
	}, nil
}

// Verify relies on the webhook: adyen offers no status query for sessions
func (w *widget) Verify(c context.Context, sessionID string) (payment.Verification, error) {
	dropIn, found, err := w.dropInStore.Get(c, sessionID)
	if err != nil {
		return payment.Verification{}, myerrors.NewInternalError(err)
	}
	if !found {
		return payment.Verification{}, myerrors.NewNotFoundError(fmt.Errorf("adyen session %s not found", sessionID))
	}

	status := dropIn.Status
	if status == checkoutevents.CheckoutStatusUndefined {
		status = checkoutevents.CheckoutStatusPending
	}

	return payment.Verification{
		Status:        status,
		Details:       dropIn.StatusDetails,
		PaymentMethod: dropIn.PaymentMethod,
	}, nil
}

func (w *widget) sessionRequest(cfg payment.Config) checkout.CreateCheckoutSessionRequest {
	req := checkout.CreateCheckoutSessionRequest{
		MerchantAccount: w.merchantAccount,
		Amount: checkout.Amount{
			Currency: cfg.Currency,
			Value:    cfg.AmountMinor,
		},
		Channel:                "Web",
		MerchantOrderReference: cfg.Reference,
		Reference:              cfg.Reference,
		ReturnUrl:              cfg.SuccessURL,
		ShopperEmail:           cfg.Email,
		ShopperLocale:          "en-US",
		ShopperName: &checkout.Name{
			FirstName: cfg.Metadata.FirstName,
			LastName:  cfg.Metadata.LastName,
		},
		TelephoneNumber: cfg.Metadata.Phone,
	}

	if len(cfg.Metadata.Country) == 2 {
		req.CountryCode = cfg.Metadata.Country
		req.BillingAddress = &checkout.Address{
			City:    cfg.Metadata.City,
			Country: cfg.Metadata.Country,
			Street:  cfg.Metadata.Street,
		}
	}

	methods, found := allowedPaymentMethods[cfg.Channel]
	if found {
		req.AllowedPaymentMethods = methods
	}

	return req
}

// https://docs.adyen.com/development-resources/webhooks/webhook-types#standard-webhook
func classifyEventStatus(eventName string, success bool) checkoutevents.CheckoutStatus {
	switch eventName {
	case "AUTHORISATION", "AUTHORISATION_ADJUSTMENT":
		if success {
			return checkoutevents.CheckoutStatusSuccess
		}
		return checkoutevents.CheckoutStatusFailed
	case "PENDING":
		return checkoutevents.CheckoutStatusPending
	case "OFFER_CLOSED":
		return checkoutevents.CheckoutStatusExpired
	case "CANCELLATION":
		return checkoutevents.CheckoutStatusCancelled
	case "NOTIFICATION_OF_FRAUD":
		return checkoutevents.CheckoutStatusFraud
	default:
		return checkoutevents.CheckoutStatusUndefined
	}
}
