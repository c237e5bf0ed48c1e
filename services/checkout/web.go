package checkout

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/storefront/lib/mycontext"
	"github.com/MarcGrol/storefront/lib/myerrors"
	"github.com/MarcGrol/storefront/lib/myhttp"
	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/lib/mymoney"
	"github.com/MarcGrol/storefront/lib/mypublisher"
	"github.com/MarcGrol/storefront/lib/mystore"
	"github.com/MarcGrol/storefront/lib/mytime"
	"github.com/MarcGrol/storefront/lib/myuuid"
	"github.com/MarcGrol/storefront/services/cart"
	"github.com/MarcGrol/storefront/services/checkoutapi"
	"github.com/MarcGrol/storefront/services/payment"
)

const genericErrorMessage = "an error occurred, please try again"

//go:embed templates
var templateFolder embed.FS
var (
	infoPageTemplate    *template.Template
	paymentPageTemplate *template.Template
	successPageTemplate *template.Template
)

func init() {
	funcs := template.FuncMap{
		"formatAmount":      mymoney.Format,
		"formatMinorAmount": mymoney.FormatMinorUnits,
	}
	infoPageTemplate = template.Must(template.New("info.html").Funcs(funcs).ParseFS(templateFolder, "templates/info.html"))
	paymentPageTemplate = template.Must(template.New("payment.html").Funcs(funcs).ParseFS(templateFolder, "templates/payment.html"))
	successPageTemplate = template.Must(template.New("success.html").Funcs(funcs).ParseFS(templateFolder, "templates/success.html"))
}

type Config struct {
	BaseURL  string
	Currency string
}

type webService struct {
	logger  mylog.Logger
	uuider  myuuid.UUIDer
	baseURL string
	service *service
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(cfg Config, cartStore *cart.Store, widget payment.Widget, attemptStore mystore.Store[checkoutapi.PaymentAttempt],
	publisher mypublisher.Publisher, notifier Notifier, nower mytime.Nower, uuider myuuid.UUIDer) *webService {
	logger := mylog.New("checkout")
	return &webService{
		logger:  logger,
		uuider:  uuider,
		baseURL: cfg.BaseURL,
		service: newService(logger, nower, uuider, cartStore, widget, attemptStore, publisher, notifier, cfg.Currency),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	// Endpoints that compose the user-interface
	router.HandleFunc("/checkout", s.infoPage()).Methods("GET")
	router.HandleFunc("/checkout/info", s.submitInfoPage()).Methods("POST")
	router.HandleFunc("/checkout/payment", s.startPaymentPage()).Methods("POST")
	router.HandleFunc("/checkout/payment/{reference}", s.resumePaymentPage()).Methods("GET")

	// The widget will redirect to this endpoint after the buyer paid or gave up
	router.HandleFunc("/checkout/payment/{reference}/status/{status}", s.finalizePaymentPage()).Methods("GET")

	router.HandleFunc("/checkout/success/{reference}", s.successPage()).Methods("GET")

	return s.service.CreateTopics(c)
}

type infoPageInfo struct {
	Cart     cart.Cart
	Currency string
	Contact  checkoutapi.ContactInfo
	Error    string
}

type paymentPageInfo struct {
	Cart       cart.Cart
	Currency   string
	Contact    checkoutapi.ContactInfo
	HiddenForm template.HTML
	Channels   []payment.Channel
	Provider   string
	Reference  string
	Error      string
}

type successPageInfo struct {
	Attempt checkoutapi.PaymentAttempt
}

func (s *webService) infoPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		sessionUID := cart.SessionUID(w, r, s.uuider)

		current, err := s.service.cartStore.Get(c, sessionUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInternalError(err))
			return
		}

		s.renderPage(c, w, http.StatusOK, infoPageTemplate, infoPageInfo{
			Cart:     current,
			Currency: s.service.currency,
		})
	}
}

// submitInfoPage moves to the payment stage; the contact info travels along as hidden fields
func (s *webService) submitInfoPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		sessionUID := cart.SessionUID(w, r, s.uuider)

		current, err := s.service.cartStore.Get(c, sessionUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInternalError(err))
			return
		}

		info, err := checkoutapi.NewFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		_, err = s.service.submitInfo(c, sessionUID, info)
		if err != nil {
			s.renderPage(c, w, myerrors.GetHTTPStatus(err), infoPageTemplate, infoPageInfo{
				Cart:     current,
				Currency: s.service.currency,
				Contact:  info,
				Error:    err.Error(),
			})
			return
		}

		pageInfo, err := s.newPaymentPageInfo(current, info)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		s.renderPage(c, w, http.StatusOK, paymentPageTemplate, pageInfo)
	}
}

func (s *webService) startPaymentPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		sessionUID := cart.SessionUID(w, r, s.uuider)

		info, err := checkoutapi.NewFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		channel, err := payment.ParseChannel(r.Form.Get("channel"))
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(err))
			return
		}

		redirectURL, err := s.service.initiatePayment(c, sessionUID, info, channel, s.hostname(r))
		if err != nil {
			s.logger.Log(c, sessionUID, mylog.SeverityWarn, "Error starting payment for session %s: %s", sessionUID, err)

			current, getErr := s.service.cartStore.Get(c, sessionUID)
			if getErr != nil {
				errorWriter.WriteError(c, w, 3, myerrors.NewInternalError(getErr))
				return
			}

			pageInfo, pageErr := s.newPaymentPageInfo(current, info)
			if pageErr != nil {
				errorWriter.WriteError(c, w, 4, pageErr)
				return
			}
			pageInfo.Error = userMessage(err)

			s.renderPage(c, w, myerrors.GetHTTPStatus(err), paymentPageTemplate, pageInfo)
			return
		}

		http.Redirect(w, r, redirectURL, http.StatusSeeOther)
	}
}

func (s *webService) resumePaymentPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		sessionUID := cart.SessionUID(w, r, s.uuider)
		reference := mux.Vars(r)["reference"]

		attempt, current, err := s.service.resumePayment(c, sessionUID, reference)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		pageInfo, err := s.newPaymentPageInfo(current, attempt.Contact)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}
		pageInfo.Reference = reference

		s.renderPage(c, w, http.StatusOK, paymentPageTemplate, pageInfo)
	}
}

// finalizePaymentPage is where the widget sends the buyer back to
func (s *webService) finalizePaymentPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		reference := mux.Vars(r)["reference"]
		status := mux.Vars(r)["status"]

		var redirectURL string
		var err error
		switch payment.ParseOutcome(status) {
		case payment.OutcomeSuccess:
			redirectURL, err = s.service.onSuccess(c, reference)
		default:
			redirectURL, err = s.service.onClose(c, reference)
		}
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		http.Redirect(w, r, redirectURL, http.StatusSeeOther)
	}
}

func (s *webService) successPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		sessionUID := cart.SessionUID(w, r, s.uuider)
		reference := mux.Vars(r)["reference"]

		attempt, err := s.service.getOwnAttempt(c, sessionUID, reference)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		s.renderPage(c, w, http.StatusOK, successPageTemplate, successPageInfo{
			Attempt: attempt,
		})
	}
}

func (s *webService) newPaymentPageInfo(current cart.Cart, info checkoutapi.ContactInfo) (paymentPageInfo, error) {
	values, err := info.ToForm()
	if err != nil {
		return paymentPageInfo{}, myerrors.NewInternalError(err)
	}

	return paymentPageInfo{
		Cart:       current,
		Currency:   s.service.currency,
		Contact:    info,
		HiddenForm: checkoutapi.FormValuesToHtml(values),
		Channels:   payment.Channels,
		Provider:   s.service.widget.Provider(),
	}, nil
}

func (s *webService) renderPage(c context.Context, w http.ResponseWriter, httpStatus int, tmpl *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(httpStatus)
	err := tmpl.Execute(w, data)
	if err != nil {
		s.logger.Log(c, "", mylog.SeverityError, "Error executing template %s: %s", tmpl.Name(), err)
	}
}

func (s *webService) hostname(r *http.Request) string {
	if s.baseURL != "" {
		return s.baseURL
	}
	return myhttp.HostnameWithScheme(r)
}

func userMessage(err error) string {
	if errors.Is(err, payment.ErrNotReady) {
		return payment.ErrNotReady.Error()
	}
	return genericErrorMessage
}
