package order

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/storefront/lib/mycontext"
	"github.com/MarcGrol/storefront/lib/myerrors"
	"github.com/MarcGrol/storefront/lib/myhttp"
	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/lib/mypublisher"
	"github.com/MarcGrol/storefront/lib/mypubsub"
	"github.com/MarcGrol/storefront/lib/mystore"
	"github.com/MarcGrol/storefront/lib/mytime"
	"github.com/MarcGrol/storefront/services/checkoutapi"
	"github.com/MarcGrol/storefront/services/checkoutevents"
	"github.com/MarcGrol/storefront/services/payment"
)

type webService struct {
	logger  mylog.Logger
	service *service
}

// Use dependency injection to isolate the infrastructure and easy testing
// selfURL is where pub/sub pushes checkout events to
func NewWebService(selfURL string, widget payment.Widget, attemptStore mystore.Store[checkoutapi.PaymentAttempt], orderStore mystore.Store[Order],
	nower mytime.Nower, subscriber mypubsub.PubSub, publisher mypublisher.Publisher) *webService {
	logger := mylog.New("order")
	return &webService{
		logger:  logger,
		service: newService(selfURL, logger, nower, widget, attemptStore, orderStore, subscriber, publisher),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	// Called by the checkout after the widget reported success
	router.HandleFunc("/api/order/callback", s.callback()).Methods("GET")

	router.HandleFunc("/api/order/{reference}", s.getOrder()).Methods("GET")

	// Server to server notification by the payment provider
	router.HandleFunc("/api/order/webhook/{reference}", s.webhook()).Methods("POST")

	err := s.service.CreateTopics(c)
	if err != nil {
		return err
	}

	// Listen for checkout stage transitions
	router.HandleFunc("/api/order/event", s.handleEventEnvelope()).Methods("POST")

	err = s.service.Subscribe(c)
	if err != nil {
		return err
	}

	return nil
}

// Reconcile is the hook for provider webhooks that are not addressed per reference
func (s *webService) Reconcile(c context.Context, reference string) error {
	return s.service.reconcile(c, reference)
}

func (s *webService) callback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		reference := r.URL.Query().Get("reference")
		if reference == "" {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("missing reference")))
			return
		}

		err := s.service.reconcile(c, reference)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		order, err := s.service.getOrder(c, reference)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, order)
	}
}

func (s *webService) getOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		reference := mux.Vars(r)["reference"]

		order, err := s.service.getOrder(c, reference)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, order)
	}
}

// webhook ignores the body: the provider is asked for the status itself
func (s *webService) webhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		reference := mux.Vars(r)["reference"]

		err := s.service.reconcile(c, reference)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: "Successfully processed webhook",
		})
	}
}

func (s *webService) handleEventEnvelope() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := checkoutevents.DispatchEvent(c, r.Body, s.service)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: "Successfully processed event",
		})
	}
}
