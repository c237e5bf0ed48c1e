package paymentadyen

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/storefront/lib/mycontext"
	"github.com/MarcGrol/storefront/lib/myerrors"
	"github.com/MarcGrol/storefront/lib/myhttp"
	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/lib/mystore"
	"github.com/MarcGrol/storefront/lib/mytime"
	"github.com/MarcGrol/storefront/services/checkoutevents"
)

//go:embed templates
var templateFolder embed.FS
var (
	dropInPageTemplate *template.Template
)

func init() {
	dropInPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/dropin.html"))
}

type Reconciler func(c context.Context, reference string) error

type webService struct {
	environment string
	clientKey   string
	dropInStore mystore.Store[DropIn]
	nower       mytime.Nower
	reconcile   Reconciler
	logger      mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(cfg Config, dropInStore mystore.Store[DropIn], nower mytime.Nower, reconcile Reconciler) *webService {
	return &webService{
		environment: cfg.Environment,
		clientKey:   cfg.ClientKey,
		dropInStore: dropInStore,
		nower:       nower,
		reconcile:   reconcile,
		logger:      mylog.New(ProviderName),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	// The buyer pays on this page
	router.HandleFunc("/payment/adyen/{reference}", s.dropInPage()).Methods("GET")

	// Final notification called by Adyen at a later time
	router.HandleFunc("/payment/adyen/webhook", s.webhookNotification()).Methods("POST")

	return nil
}

func (s *webService) dropInPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		reference := mux.Vars(r)["reference"]

		dropIn, err := s.findOnReference(c, reference)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err = dropInPageTemplate.Execute(w, DropInPageInfo{
			Environment: s.environment,
			ClientKey:   s.clientKey,
			DropIn:      dropIn,
		})
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInternalError(err))
			return
		}
	}
}

func (s *webService) webhookNotification() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		event := WebhookNotification{}
		err := json.NewDecoder(r.Body).Decode(&event)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}

		for _, item := range event.NotificationItems {
			err = s.processNotificationItem(c, item.NotificationRequestItem)
			if err != nil {
				errorWriter.WriteError(c, w, 2, err)
				return
			}
		}

		errorWriter.Write(c, w, http.StatusOK, WebhookNotificationResponse{
			Status: "[accepted]",
		})
	}
}

func (s *webService) processNotificationItem(c context.Context, item NotificationRequestItem) error {
	reference := item.MerchantReference

	s.logger.Log(c, reference, mylog.SeverityInfo, "Webhook: %s=%s received for %s", item.EventCode, item.Success, reference)

	status := classifyEventStatus(item.EventCode, item.Success == "true")
	if status == checkoutevents.CheckoutStatusUndefined {
		return nil
	}

	now := s.nower.Now()

	err := s.dropInStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent

		dropIn, err := s.findOnNotification(c, item)
		if err != nil {
			return err
		}

		dropIn.Status = status
		dropIn.StatusDetails = fmt.Sprintf("%s=%s", item.EventCode, item.Success)
		dropIn.PaymentMethod = item.PaymentMethod
		dropIn.LastModified = &now

		return s.dropInStore.Put(c, dropIn.SessionID, dropIn)
	})
	if err != nil {
		return err
	}

	return s.reconcile(c, reference)
}

func (s *webService) findOnNotification(c context.Context, item NotificationRequestItem) (DropIn, error) {
	sessionID := item.AdditionalData.CheckoutSessionId
	if sessionID == "" {
		return s.findOnReference(c, item.MerchantReference)
	}

	dropIn, found, err := s.dropInStore.Get(c, sessionID)
	if err != nil {
		return DropIn{}, myerrors.NewInternalError(err)
	}
	if !found {
		return DropIn{}, myerrors.NewNotFoundError(fmt.Errorf("adyen session %s not found", sessionID))
	}
	return dropIn, nil
}

// findOnReference returns the most recent session of a payment attempt
func (s *webService) findOnReference(c context.Context, reference string) (DropIn, error) {
	dropIns, err := s.dropInStore.Query(c, []mystore.Filter{{Field: "Reference", Compare: "=", Value: reference}}, "CreatedAt")
	if err != nil {
		return DropIn{}, myerrors.NewInternalError(err)
	}
	if len(dropIns) == 0 {
		return DropIn{}, myerrors.NewNotFoundError(fmt.Errorf("adyen session for %s not found", reference))
	}
	return dropIns[len(dropIns)-1], nil
}
