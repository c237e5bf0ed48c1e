package paymentstripe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/stripe/stripe-go/v74"

	"github.com/MarcGrol/storefront/lib/mycontext"
	"github.com/MarcGrol/storefront/lib/myerrors"
	"github.com/MarcGrol/storefront/lib/myhttp"
	"github.com/MarcGrol/storefront/lib/mylog"
)

type Reconciler func(c context.Context, reference string) error

type webService struct {
	logger    mylog.Logger
	reconcile Reconciler
}

// NewWebService receives the stripe webhook; the outcome itself is always fetched again during reconciliation
func NewWebService(reconcile Reconciler) *webService {
	return &webService{
		logger:    mylog.New(ProviderName),
		reconcile: reconcile,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/payment/stripe/webhook", s.webhookNotification()).Methods("POST")

	return nil
}

func (s *webService) webhookNotification() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		event := stripe.Event{}
		err := json.NewDecoder(r.Body).Decode(&event)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}

		reference, err := referenceOf(event)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		if reference == "" {
			s.logger.Log(c, "", mylog.SeverityInfo, "Ignoring stripe event %s", event.Type)
			errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{Message: "Event ignored"})
			return
		}

		err = s.reconcile(c, reference)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{Message: "Event processed"})
	}
}

func referenceOf(event stripe.Event) (string, error) {
	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded", "checkout.session.async_payment_failed", "checkout.session.expired":
		if event.Data == nil {
			return "", myerrors.NewInvalidInputErrorf("stripe event %s without data", event.Type)
		}
		s := stripe.CheckoutSession{}
		err := json.Unmarshal(event.Data.Raw, &s)
		if err != nil {
			return "", myerrors.NewInvalidInputError(fmt.Errorf("error parsing checkout session: %s", err))
		}
		return s.ClientReferenceID, nil
	default:
		return "", nil
	}
}
