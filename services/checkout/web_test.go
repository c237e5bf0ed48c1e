package checkout

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/storefront/lib/mykv"
	"github.com/MarcGrol/storefront/lib/mypublisher"
	"github.com/MarcGrol/storefront/lib/mystore"
	"github.com/MarcGrol/storefront/lib/mytime"
	"github.com/MarcGrol/storefront/lib/myuuid"
	"github.com/MarcGrol/storefront/services/cart"
	"github.com/MarcGrol/storefront/services/checkoutapi"
	"github.com/MarcGrol/storefront/services/checkoutevents"
	"github.com/MarcGrol/storefront/services/payment"
)

const (
	sessionUID = "s1"
	reference  = "ref_1677542339000_0123456789ab"
)

var (
	shirt = cart.Product{UID: "p1", Name: "Shirt", Price: decimal.NewFromInt(5000)}
	pants = cart.Product{UID: "p2", Name: "Pants", Price: decimal.RequireFromString("2500.50")}

	contact = checkoutapi.ContactInfo{
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Obi",
		Street:    "1 Marina Road",
		City:      "Lagos",
		Country:   "NG",
		Phone:     "+2348012345678",
	}

	pendingAttempt = checkoutapi.PaymentAttempt{
		Reference:   reference,
		SessionUID:  sessionUID,
		CreatedAt:   mytime.ExampleTime,
		Provider:    "fake",
		SessionID:   "fake_" + reference,
		Channel:     "card",
		AmountMinor: 1250050,
		Currency:    "NGN",
		Contact:     contact,
		Status:      checkoutevents.CheckoutStatusPending,
	}
)

func TestCheckoutInfoStage(t *testing.T) {

	t.Run("Info form shows cart summary", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, router, cartStore, _, _, _, _, _, _ := setup(t, ctrl)

		// given
		fillCart(t, c, cartStore)

		// when
		response := doRequest(router, http.MethodGet, "/checkout", nil)

		// then
		assert.Equal(t, 200, response.Code)
		body := readBody(response)
		assert.Contains(t, body, "NGN 12500.50")
		assert.Contains(t, body, `name="email"`)
		assert.Contains(t, body, "required")
	})

	t.Run("Valid info moves to payment stage", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, router, cartStore, _, widget, publisher, _, _, _ := setup(t, ctrl)

		// given
		fillCart(t, c, cartStore)
		widget.EXPECT().Provider().Return("fake").AnyTimes()
		publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, checkoutevents.InfoSubmitted{
			SessionUID: sessionUID,
			Email:      "ada@example.com",
		}).Return(nil)

		// when
		response := doRequest(router, http.MethodPost, "/checkout/info", contactForm(contact))

		// then
		assert.Equal(t, 200, response.Code)
		body := readBody(response)
		assert.Contains(t, body, `<input type="hidden" name="email" value="ada@example.com"/>`)
		assert.Contains(t, body, `<input type="hidden" name="street" value="1 Marina Road"/>`)
		assert.Contains(t, body, `action="/checkout/payment"`)
		assert.Contains(t, body, "Pay with fake")
	})

	t.Run("Missing field stays on info stage", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, router, cartStore, _, _, _, _, _, _ := setup(t, ctrl)

		// given
		fillCart(t, c, cartStore)
		incomplete := contact
		incomplete.Phone = ""

		// when
		response := doRequest(router, http.MethodPost, "/checkout/info", contactForm(incomplete))

		// then
		assert.Equal(t, 400, response.Code)
		body := readBody(response)
		assert.Contains(t, body, "missing fields: phone")
		assert.Contains(t, body, `value="ada@example.com"`)
		assert.Contains(t, body, `action="/checkout/info"`)
	})
}

func TestCheckoutPaymentStage(t *testing.T) {

	t.Run("Start payment", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, router, cartStore, attemptStore, widget, publisher, _, nower, uuider := setup(t, ctrl)

		// given
		fillCart(t, c, cartStore)
		current, _ := cartStore.Get(c, sessionUID)
		cartItems, _ := cart.Serialize(current)

		nower.EXPECT().Now().Return(mytime.ExampleTime)
		uuider.EXPECT().Create().Return("01234567-89ab-cdef-0123-456789abcdef")
		widget.EXPECT().Ready().Return(true)
		widget.EXPECT().Provider().Return("fake").AnyTimes()
		widget.EXPECT().Open(gomock.Any(), payment.Config{
			Reference:   reference,
			Email:       "ada@example.com",
			AmountMinor: 1250050,
			Currency:    "NGN",
			Metadata: payment.Metadata{
				FirstName: "Ada",
				LastName:  "Obi",
				Phone:     "+2348012345678",
				Street:    "1 Marina Road",
				City:      "Lagos",
				Country:   "NG",
				CartItems: cartItems,
			},
			Channel:    payment.ChannelCard,
			SuccessURL: "http://localhost:8080/checkout/payment/" + reference + "/status/success",
			CloseURL:   "http://localhost:8080/checkout/payment/" + reference + "/status/closed",
			WebhookURL: "http://localhost:8080/api/order/webhook/" + reference,
		}).Return(payment.Session{ID: "fake_" + reference, RedirectURL: "https://pay.example.com/" + reference}, nil)
		publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, checkoutevents.PaymentStarted{
			Reference:          reference,
			SessionUID:         sessionUID,
			ProviderName:       "fake",
			Channel:            "card",
			AmountInMinorUnits: 1250050,
			Currency:           "NGN",
		}).Return(nil)

		// when
		response := doRequest(router, http.MethodPost, "/checkout/payment", paymentForm(contact, "card"))

		// then
		assert.Equal(t, 303, response.Code)
		assert.Equal(t, "https://pay.example.com/"+reference, response.Header().Get("Location"))

		attempt, found, _ := attemptStore.Get(c, reference)
		assert.True(t, found)
		assert.Equal(t, sessionUID, attempt.SessionUID)
		assert.Equal(t, "fake_"+reference, attempt.SessionID)
		assert.Equal(t, int64(1250050), attempt.AmountMinor)
		assert.Equal(t, contact, attempt.Contact)
		assert.Equal(t, cartItems, attempt.CartItems)
		assert.Equal(t, checkoutevents.CheckoutStatusPending, attempt.Status)
	})

	t.Run("Widget still loading", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, router, cartStore, attemptStore, widget, _, _, _, _ := setup(t, ctrl)

		// given
		fillCart(t, c, cartStore)
		widget.EXPECT().Ready().Return(false)
		widget.EXPECT().Provider().Return("fake").AnyTimes()

		// when
		response := doRequest(router, http.MethodPost, "/checkout/payment", paymentForm(contact, "card"))

		// then
		assert.Equal(t, 503, response.Code)
		assert.Contains(t, readBody(response), "payment system loading")
		all, _ := attemptStore.List(c)
		assert.Empty(t, all)
	})

	t.Run("Empty cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, widget, _, _, _, _ := setup(t, ctrl)

		// given
		widget.EXPECT().Ready().Return(true)
		widget.EXPECT().Provider().Return("fake").AnyTimes()

		// when
		response := doRequest(router, http.MethodPost, "/checkout/payment", paymentForm(contact, "card"))

		// then
		assert.Equal(t, 400, response.Code)
		assert.Contains(t, readBody(response), "an error occurred, please try again")
	})

	t.Run("Provider fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, router, cartStore, attemptStore, widget, _, _, nower, uuider := setup(t, ctrl)

		// given
		fillCart(t, c, cartStore)
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		uuider.EXPECT().Create().Return("01234567-89ab-cdef-0123-456789abcdef")
		widget.EXPECT().Ready().Return(true)
		widget.EXPECT().Provider().Return("fake").AnyTimes()
		widget.EXPECT().Open(gomock.Any(), gomock.Any()).Return(payment.Session{}, fmt.Errorf("invalid api key"))

		// when
		response := doRequest(router, http.MethodPost, "/checkout/payment", paymentForm(contact, ""))

		// then
		assert.Equal(t, 500, response.Code)
		body := readBody(response)
		assert.Contains(t, body, "an error occurred, please try again")
		assert.NotContains(t, body, "invalid api key")
		all, _ := attemptStore.List(c)
		assert.Empty(t, all)
	})

	t.Run("Unsupported channel", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _, _, _, _, _ := setup(t, ctrl)

		// when
		response := doRequest(router, http.MethodPost, "/checkout/payment", paymentForm(contact, "cheque"))

		// then
		assert.Equal(t, 400, response.Code)
	})

	t.Run("Resume payment stage after closing the widget", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, router, cartStore, attemptStore, widget, _, _, _, _ := setup(t, ctrl)

		// given
		fillCart(t, c, cartStore)
		_ = attemptStore.Put(c, reference, pendingAttempt)
		widget.EXPECT().Provider().Return("fake").AnyTimes()

		// when
		response := doRequest(router, http.MethodGet, "/checkout/payment/"+reference, nil)

		// then
		assert.Equal(t, 200, response.Code)
		body := readBody(response)
		assert.Contains(t, body, "was not completed")
		assert.Contains(t, body, `<input type="hidden" name="city" value="Lagos"/>`)
		assert.Contains(t, body, "NGN 12500.50")
	})

	t.Run("Return urls from request host without base url", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, router, cartStore, _, widget, publisher, _, nower, uuider := setupWithBaseURL(t, ctrl, "")

		// given
		fillCart(t, c, cartStore)
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		uuider.EXPECT().Create().Return("01234567-89ab-cdef-0123-456789abcdef")
		widget.EXPECT().Ready().Return(true)
		widget.EXPECT().Provider().Return("fake").AnyTimes()
		var opened payment.Config
		widget.EXPECT().Open(gomock.Any(), gomock.Any()).DoAndReturn(func(c context.Context, cfg payment.Config) (payment.Session, error) {
			opened = cfg
			return payment.Session{ID: "fake_" + reference, RedirectURL: cfg.SuccessURL}, nil
		})
		publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, gomock.Any()).Return(nil)

		// when
		response := doRequest(router, http.MethodPost, "/checkout/payment", paymentForm(contact, "card"))

		// then
		assert.Equal(t, 303, response.Code)
		assert.Equal(t, "http://localhost:8888/checkout/payment/"+reference+"/status/success", opened.SuccessURL)
		assert.Equal(t, "http://localhost:8888/checkout/payment/"+reference+"/status/closed", opened.CloseURL)
		assert.Equal(t, "http://localhost:8888/api/order/webhook/"+reference, opened.WebhookURL)
	})

	t.Run("Resume payment of another session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, router, cartStore, attemptStore, widget, _, _, _, _ := setup(t, ctrl)

		// given
		fillCart(t, c, cartStore)
		_ = attemptStore.Put(c, reference, pendingAttempt)
		widget.EXPECT().Provider().Return("fake").AnyTimes()

		// when
		response := doRequestAs(router, "s2", http.MethodGet, "/checkout/payment/"+reference, nil)

		// then
		assert.Equal(t, 404, response.Code)
		body := readBody(response)
		assert.NotContains(t, body, "Lagos")
		assert.NotContains(t, body, "ada@example.com")
	})

	t.Run("Resume unknown payment", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _, _, _, _, _ := setup(t, ctrl)

		// when
		response := doRequest(router, http.MethodGet, "/checkout/payment/ref_0_000000000000", nil)

		// then
		assert.Equal(t, 404, response.Code)
	})
}

func TestCheckoutOutcome(t *testing.T) {

	t.Run("Success marks attempt, notifies server and clears cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, router, cartStore, attemptStore, _, publisher, notifier, nower, _ := setup(t, ctrl)

		// given
		fillCart(t, c, cartStore)
		_ = attemptStore.Put(c, reference, pendingAttempt)
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, checkoutevents.PaymentCompleted{
			Reference:      reference,
			SessionUID:     sessionUID,
			ProviderName:   "fake",
			CheckoutStatus: checkoutevents.CheckoutStatusSuccess,
		}).Return(nil)
		notifier.EXPECT().NotifyServer(gomock.Any(), reference).Return(BestEffort{Reference: reference})

		// when
		response := doRequest(router, http.MethodGet, "/checkout/payment/"+reference+"/status/success", nil)

		// then
		assert.Equal(t, 303, response.Code)
		assert.Equal(t, "/checkout/success/"+reference, response.Header().Get("Location"))

		attempt, _, _ := attemptStore.Get(c, reference)
		assert.Equal(t, checkoutevents.CheckoutStatusSuccess, attempt.Status)
		assert.Equal(t, mytime.ExampleTime, *attempt.LastModified)

		current, _ := cartStore.Get(c, sessionUID)
		assert.True(t, current.IsEmpty())
	})

	t.Run("Failing notification does not block the buyer", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, router, cartStore, attemptStore, _, publisher, notifier, nower, _ := setup(t, ctrl)

		// given
		fillCart(t, c, cartStore)
		_ = attemptStore.Put(c, reference, pendingAttempt)
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, gomock.Any()).Return(nil)
		notifier.EXPECT().NotifyServer(gomock.Any(), reference).Return(BestEffort{Reference: reference, Err: fmt.Errorf("timeout")})

		// when
		response := doRequest(router, http.MethodGet, "/checkout/payment/"+reference+"/status/success", nil)

		// then
		assert.Equal(t, 303, response.Code)
		assert.Equal(t, "/checkout/success/"+reference, response.Header().Get("Location"))
		current, _ := cartStore.Get(c, sessionUID)
		assert.True(t, current.IsEmpty())
	})

	t.Run("Repeated success is not published twice", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, router, _, attemptStore, _, _, notifier, nower, _ := setup(t, ctrl)

		// given
		paid := pendingAttempt
		paid.Status = checkoutevents.CheckoutStatusSuccess
		_ = attemptStore.Put(c, reference, paid)
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		notifier.EXPECT().NotifyServer(gomock.Any(), reference).Return(BestEffort{Reference: reference})

		// when
		response := doRequest(router, http.MethodGet, "/checkout/payment/"+reference+"/status/success", nil)

		// then
		assert.Equal(t, 303, response.Code)
	})

	t.Run("Closed widget returns to payment stage", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, router, cartStore, attemptStore, _, publisher, _, nower, _ := setup(t, ctrl)

		// given
		fillCart(t, c, cartStore)
		_ = attemptStore.Put(c, reference, pendingAttempt)
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, checkoutevents.PaymentClosed{
			Reference:    reference,
			SessionUID:   sessionUID,
			ProviderName: "fake",
		}).Return(nil)

		// when
		response := doRequest(router, http.MethodGet, "/checkout/payment/"+reference+"/status/cancelled", nil)

		// then
		assert.Equal(t, 303, response.Code)
		assert.Equal(t, "/checkout/payment/"+reference, response.Header().Get("Location"))

		attempt, _, _ := attemptStore.Get(c, reference)
		assert.Equal(t, checkoutevents.CheckoutStatusClosed, attempt.Status)

		current, _ := cartStore.Get(c, sessionUID)
		assert.Equal(t, 3, current.Count())
	})

	t.Run("Unknown reference", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _, _, _, nower, _ := setup(t, ctrl)

		// given
		nower.EXPECT().Now().Return(mytime.ExampleTime)

		// when
		response := doRequest(router, http.MethodGet, "/checkout/payment/ref_0_000000000000/status/success", nil)

		// then
		assert.Equal(t, 404, response.Code)
	})

	t.Run("Success page", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, router, _, attemptStore, _, _, _, _, _ := setup(t, ctrl)

		// given
		_ = attemptStore.Put(c, reference, pendingAttempt)

		// when
		response := doRequest(router, http.MethodGet, "/checkout/success/"+reference, nil)

		// then
		assert.Equal(t, 200, response.Code)
		body := readBody(response)
		assert.Contains(t, body, reference)
		assert.Contains(t, body, "NGN 12500.50")
	})

	t.Run("Success page of another session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, router, _, attemptStore, _, _, _, _, _ := setup(t, ctrl)

		// given
		_ = attemptStore.Put(c, reference, pendingAttempt)

		// when
		response := doRequestAs(router, "s2", http.MethodGet, "/checkout/success/"+reference, nil)

		// then
		assert.Equal(t, 404, response.Code)
		assert.NotContains(t, readBody(response), "ada@example.com")
	})
}

func fillCart(t *testing.T, c context.Context, cartStore *cart.Store) {
	_, err := cartStore.AddItem(c, sessionUID, shirt, "M", "Black", 2)
	assert.NoError(t, err)
	_, err = cartStore.AddItem(c, sessionUID, pants, "", "", 1)
	assert.NoError(t, err)
}

func contactForm(info checkoutapi.ContactInfo) url.Values {
	values, _ := info.ToForm()
	return values
}

func paymentForm(info checkoutapi.ContactInfo, channel string) url.Values {
	values := contactForm(info)
	values.Set("channel", channel)
	return values
}

func readBody(response *httptest.ResponseRecorder) string {
	body, _ := io.ReadAll(response.Body)
	return string(body)
}

func doRequest(router *mux.Router, method string, path string, form url.Values) *httptest.ResponseRecorder {
	return doRequestAs(router, sessionUID, method, path, form)
}

func doRequestAs(router *mux.Router, session string, method string, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	request, _ := http.NewRequest(method, path, body)
	if form != nil {
		request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	request.AddCookie(&http.Cookie{Name: cart.SessionCookieName, Value: session})
	request.Host = "localhost:8888"
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}

func setup(t *testing.T, ctrl *gomock.Controller) (context.Context, *mux.Router, *cart.Store, *mystore.InMemoryStore[checkoutapi.PaymentAttempt],
	*payment.MockWidget, *mypublisher.MockPublisher, *MockNotifier, *mytime.MockNower, *myuuid.MockUUIDer) {
	return setupWithBaseURL(t, ctrl, "http://localhost:8080")
}

func setupWithBaseURL(t *testing.T, ctrl *gomock.Controller, baseURL string) (context.Context, *mux.Router, *cart.Store, *mystore.InMemoryStore[checkoutapi.PaymentAttempt],
	*payment.MockWidget, *mypublisher.MockPublisher, *MockNotifier, *mytime.MockNower, *myuuid.MockUUIDer) {
	c := context.TODO()
	cartStore := cart.NewStore(mykv.NewInMemoryStorage())
	attemptStore, _, err := mystore.NewInMemoryStore[checkoutapi.PaymentAttempt](c)
	assert.NoError(t, err)
	widget := payment.NewMockWidget(ctrl)
	publisher := mypublisher.NewMockPublisher(ctrl)
	notifier := NewMockNotifier(ctrl)
	nower := mytime.NewMockNower(ctrl)
	uuider := myuuid.NewMockUUIDer(ctrl)

	publisher.EXPECT().CreateTopic(gomock.Any(), checkoutevents.TopicName).Return(nil)

	sut := NewWebService(Config{BaseURL: baseURL, Currency: "NGN"}, cartStore, widget, attemptStore, publisher, notifier, nower, uuider)
	router := mux.NewRouter()
	err = sut.RegisterEndpoints(c, router)
	assert.NoError(t, err)

	return c, router, cartStore, attemptStore, widget, publisher, notifier, nower, uuider
}
