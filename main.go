package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/MarcGrol/storefront/lib/myconfig"
	"github.com/MarcGrol/storefront/lib/myhttpclient"
	"github.com/MarcGrol/storefront/lib/mykv"
	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/lib/mypublisher"
	"github.com/MarcGrol/storefront/lib/mypubsub"
	"github.com/MarcGrol/storefront/lib/myqueue"
	"github.com/MarcGrol/storefront/lib/mystore"
	"github.com/MarcGrol/storefront/lib/mytime"
	"github.com/MarcGrol/storefront/lib/myuuid"
	"github.com/MarcGrol/storefront/lib/myvault"
	"github.com/MarcGrol/storefront/services/cart"
	"github.com/MarcGrol/storefront/services/catalog"
	"github.com/MarcGrol/storefront/services/checkout"
	"github.com/MarcGrol/storefront/services/checkoutapi"
	"github.com/MarcGrol/storefront/services/order"
	"github.com/MarcGrol/storefront/services/payment"
	"github.com/MarcGrol/storefront/services/paymentadyen"
	"github.com/MarcGrol/storefront/services/paymentmollie"
	"github.com/MarcGrol/storefront/services/paymentstripe"
	"github.com/MarcGrol/storefront/services/warmup"
)

var logger = mylog.New("main")

type registrar interface {
	RegisterEndpoints(c context.Context, router *mux.Router) error
}

func main() {
	c := context.Background()

	cfg, err := myconfig.Load(".env")
	if err != nil {
		exitf(c, "Error loading configuration: %s", err)
	}

	router := mux.NewRouter()
	nower := mytime.RealNower{}
	uuider := myuuid.RealUUIDer{}

	pubsub, pubsubCleanup, err := mypubsub.New(c)
	if err != nil {
		exitf(c, "Error creating pubsub: %s", err)
	}
	defer pubsubCleanup()

	queue, queueCleanup, err := myqueue.New(c)
	if err != nil {
		exitf(c, "Error creating queue: %s", err)
	}
	defer queueCleanup()

	publisher, publisherCleanup, err := mypublisher.New(c, pubsub, queue, nower)
	if err != nil {
		exitf(c, "Error creating publisher: %s", err)
	}
	defer publisherCleanup()

	vault, vaultCleanup, err := myvault.New(c)
	if err != nil {
		exitf(c, "Error creating vault: %s", err)
	}
	defer vaultCleanup()

	cartStorage, cartStorageCleanup, err := mykv.New(c, cfg.RedisAddr, cfg.CartTTL)
	if err != nil {
		exitf(c, "Error creating cart storage: %s", err)
	}
	defer cartStorageCleanup()

	attemptStore, attemptStoreCleanup, err := mystore.New[checkoutapi.PaymentAttempt](c)
	if err != nil {
		exitf(c, "Error creating payment attempt store: %s", err)
	}
	defer attemptStoreCleanup()

	orderStore, orderStoreCleanup, err := mystore.New[order.Order](c)
	if err != nil {
		exitf(c, "Error creating order store: %s", err)
	}
	defer orderStoreCleanup()

	dropInStore, dropInStoreCleanup, err := mystore.New[paymentadyen.DropIn](c)
	if err != nil {
		exitf(c, "Error creating drop-in store: %s", err)
	}
	defer dropInStoreCleanup()

	loader, err := newPaymentLoader(cfg, vault, dropInStore, nower)
	if err != nil {
		exitf(c, "Error creating payment widget: %s", err)
	}
	go func() {
		err := loader.Load(context.Background())
		if err != nil {
			logger.Log(c, "", mylog.SeverityWarn, "Payment widget not loaded yet: %s", err)
		}
	}()

	cartStore := cart.NewStore(cartStorage)
	cartStore.Subscribe(func(c context.Context, sessionUID string, current cart.Cart) {
		logger.Log(c, sessionUID, mylog.SeverityDebug, "Cart of session %s now holds %d item(s)", sessionUID, current.Count())
	})

	orderService := order.NewWebService(cfg.SelfURL(), loader, attemptStore, orderStore, nower, pubsub, publisher)

	services := []registrar{
		publisher,
		cart.NewWebService(cartStore, catalog.New(), uuider, cfg.Currency),
		checkout.NewWebService(checkout.Config{BaseURL: cfg.BaseURL, Currency: cfg.Currency}, cartStore, loader, attemptStore, publisher,
			checkout.NewNotifier(cfg.SelfURL(), myhttpclient.New(cfg.ReconcileTimeout)), nower, uuider),
		orderService,
		paymentstripe.NewWebService(orderService.Reconcile),
		paymentadyen.NewWebService(adyenConfig(cfg), dropInStore, nower, orderService.Reconcile),
		warmup.NewWebService(loader),
	}
	for _, s := range services {
		err = s.RegisterEndpoints(c, router)
		if err != nil {
			exitf(c, "Error registering endpoints: %s", err)
		}
	}

	startWebServerBlocking(c, cfg.Port, router)
}

func newPaymentLoader(cfg myconfig.Config, vault myvault.VaultReader, dropInStore mystore.Store[paymentadyen.DropIn], nower mytime.Nower) (*payment.Loader, error) {
	switch cfg.PaymentProvider {
	case myconfig.ProviderStripe:
		return payment.NewLoader(paymentstripe.ProviderName, cfg.StripeAPIKey, vault, paymentstripe.Load(paymentstripe.NewPayer())), nil
	case myconfig.ProviderMollie:
		payer, err := paymentmollie.NewPayer()
		if err != nil {
			return nil, err
		}
		return payment.NewLoader(paymentmollie.ProviderName, cfg.MollieAPIKey, vault, paymentmollie.Load(payer)), nil
	case myconfig.ProviderAdyen:
		return payment.NewLoader(paymentadyen.ProviderName, cfg.AdyenAPIKey, vault,
			paymentadyen.Load(adyenConfig(cfg), paymentadyen.NewPayer(cfg.AdyenEnvironment), dropInStore, nower)), nil
	default:
		return payment.NewLoader(payment.FakeProviderName, "", nil, func(c context.Context, credential string) (payment.Widget, error) {
			return payment.NewFakeWidget(), nil
		}), nil
	}
}

func adyenConfig(cfg myconfig.Config) paymentadyen.Config {
	return paymentadyen.Config{
		Environment:     cfg.AdyenEnvironment,
		MerchantAccount: cfg.AdyenMerchantAccount,
		ClientKey:       cfg.AdyenClientKey,
		APIKey:          cfg.AdyenAPIKey,
	}
}

func startWebServerBlocking(c context.Context, port string, router *mux.Router) {
	logger.Log(c, "", mylog.SeverityInfo, "Starting webserver on port %s (try http://localhost:%s)", port, port)

	err := http.ListenAndServe(fmt.Sprintf(":%s", port), otelhttp.NewHandler(router, "storefront"))
	if err != nil {
		exitf(c, "Error starting webserver on port %s: %s", port, err)
	}
}

func exitf(c context.Context, format string, args ...any) {
	logger.Log(c, "", mylog.SeverityError, format, args...)
	os.Exit(1)
}
