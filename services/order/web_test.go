package order

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/storefront/lib/myevents"
	"github.com/MarcGrol/storefront/lib/mypublisher"
	"github.com/MarcGrol/storefront/lib/mypubsub"
	"github.com/MarcGrol/storefront/lib/mystore"
	"github.com/MarcGrol/storefront/lib/mytime"
	"github.com/MarcGrol/storefront/services/checkoutapi"
	"github.com/MarcGrol/storefront/services/checkoutevents"
	"github.com/MarcGrol/storefront/services/order/orderevents"
	"github.com/MarcGrol/storefront/services/payment"
)

const reference = "ref_1677542339000_0123456789ab"

var attempt = checkoutapi.PaymentAttempt{
	Reference:   reference,
	SessionUID:  "s1",
	CreatedAt:   mytime.ExampleTime,
	Provider:    "stripe",
	SessionID:   "cs_123",
	Channel:     "card",
	AmountMinor: 1250050,
	Currency:    "NGN",
	Contact: checkoutapi.ContactInfo{
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Obi",
	},
	CartItems: `[{"productUid":"p1","quantity":1}]`,
	Status:    checkoutevents.CheckoutStatusSuccess,
}

var paid = payment.Verification{
	Status:        checkoutevents.CheckoutStatusSuccess,
	Details:       "complete/paid",
	PaymentMethod: "card",
}

func TestOrderCallback(t *testing.T) {

	t.Run("Paid attempt becomes paid order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, router, attemptStore, orderStore, widget, nower, publisher := setup(t, ctrl)

		// given
		_ = attemptStore.Put(c, reference, attempt)
		widget.EXPECT().Verify(gomock.Any(), "cs_123").Return(paid, nil)
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		publisher.EXPECT().Publish(gomock.Any(), orderevents.TopicName, orderevents.Reconciled{
			OrderUID:           reference,
			SessionUID:         "s1",
			ProviderName:       "stripe",
			PaymentMethod:      "card",
			AmountInMinorUnits: 1250050,
			Currency:           "NGN",
		}).Return(nil)

		// when
		response := doRequest(router, http.MethodGet, "/api/order/callback?reference="+reference, "")

		// then
		assert.Equal(t, 200, response.Code)
		resp := Order{}
		err := json.Unmarshal(response.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.Equal(t, checkoutevents.CheckoutStatusSuccess, resp.Status)
		assert.Equal(t, "Ada Obi", resp.Name)

		order, found, _ := orderStore.Get(c, reference)
		assert.True(t, found)
		assert.Equal(t, Order{
			UID:           reference,
			SessionUID:    "s1",
			Provider:      "stripe",
			SessionID:     "cs_123",
			AmountMinor:   1250050,
			Currency:      "NGN",
			Email:         "ada@example.com",
			Name:          "Ada Obi",
			CartItems:     `[{"productUid":"p1","quantity":1}]`,
			Status:        checkoutevents.CheckoutStatusSuccess,
			StatusDetails: "complete/paid",
			PaymentMethod: "card",
			CreatedAt:     mytime.ExampleTime,
			PaidAt:        &mytime.ExampleTime,
		}, order)
	})

	t.Run("Repeated callback publishes once", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, router, attemptStore, _, widget, nower, publisher := setup(t, ctrl)

		// given
		_ = attemptStore.Put(c, reference, attempt)
		widget.EXPECT().Verify(gomock.Any(), "cs_123").Return(paid, nil).Times(2)
		nower.EXPECT().Now().Return(mytime.ExampleTime).Times(2)
		publisher.EXPECT().Publish(gomock.Any(), orderevents.TopicName, gomock.Any()).Return(nil).Times(1)

		// when
		first := doRequest(router, http.MethodGet, "/api/order/callback?reference="+reference, "")
		second := doRequest(router, http.MethodGet, "/api/order/callback?reference="+reference, "")

		// then
		assert.Equal(t, 200, first.Code)
		assert.Equal(t, 200, second.Code)
	})

	t.Run("Pending payment is recorded without event", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, router, attemptStore, orderStore, widget, nower, _ := setup(t, ctrl)

		// given
		_ = attemptStore.Put(c, reference, attempt)
		widget.EXPECT().Verify(gomock.Any(), "cs_123").Return(payment.Verification{Status: checkoutevents.CheckoutStatusPending}, nil)
		nower.EXPECT().Now().Return(mytime.ExampleTime)

		// when
		response := doRequest(router, http.MethodGet, "/api/order/callback?reference="+reference, "")

		// then
		assert.Equal(t, 200, response.Code)
		order, _, _ := orderStore.Get(c, reference)
		assert.Equal(t, checkoutevents.CheckoutStatusPending, order.Status)
		assert.Nil(t, order.PaidAt)
	})

	t.Run("Missing reference", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _, _, _ := setup(t, ctrl)

		// when
		response := doRequest(router, http.MethodGet, "/api/order/callback", "")

		// then
		assert.Equal(t, 400, response.Code)
	})

	t.Run("Unknown reference", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _, _, _ := setup(t, ctrl)

		// when
		response := doRequest(router, http.MethodGet, "/api/order/callback?reference=ref_0_000000000000", "")

		// then
		assert.Equal(t, 404, response.Code)
	})

	t.Run("Payment system still loading", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, router, attemptStore, _, widget, _, _ := setup(t, ctrl)

		// given
		_ = attemptStore.Put(c, reference, attempt)
		widget.EXPECT().Verify(gomock.Any(), "cs_123").Return(payment.Verification{}, payment.ErrNotReady)

		// when
		response := doRequest(router, http.MethodGet, "/api/order/callback?reference="+reference, "")

		// then
		assert.Equal(t, 503, response.Code)
	})
}

func TestOrderQueries(t *testing.T) {

	t.Run("Get order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, router, _, orderStore, _, _, _ := setup(t, ctrl)

		// given
		_ = orderStore.Put(c, reference, Order{UID: reference, Status: checkoutevents.CheckoutStatusSuccess})

		// when
		response := doRequest(router, http.MethodGet, "/api/order/"+reference, "")

		// then
		assert.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), `"status":"success"`)
	})

	t.Run("Get unknown order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _, _, _ := setup(t, ctrl)

		// when
		response := doRequest(router, http.MethodGet, "/api/order/"+reference, "")

		// then
		assert.Equal(t, 404, response.Code)
	})
}

func TestOrderNotifications(t *testing.T) {

	t.Run("Provider webhook reconciles", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, router, attemptStore, orderStore, widget, nower, publisher := setup(t, ctrl)

		// given
		_ = attemptStore.Put(c, reference, attempt)
		widget.EXPECT().Verify(gomock.Any(), "cs_123").Return(paid, nil)
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		publisher.EXPECT().Publish(gomock.Any(), orderevents.TopicName, gomock.Any()).Return(nil)

		// when
		response := doRequest(router, http.MethodPost, "/api/order/webhook/"+reference, "id=tr_WDqYK6vllg")

		// then
		assert.Equal(t, 200, response.Code)
		order, _, _ := orderStore.Get(c, reference)
		assert.True(t, order.IsPaid())
	})

	t.Run("Payment completed event reconciles", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, router, attemptStore, orderStore, widget, nower, publisher := setup(t, ctrl)

		// given
		_ = attemptStore.Put(c, reference, attempt)
		widget.EXPECT().Verify(gomock.Any(), "cs_123").Return(paid, nil)
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		publisher.EXPECT().Publish(gomock.Any(), orderevents.TopicName, gomock.Any()).Return(nil)
		body, err := myevents.NewPushRequest(checkoutevents.TopicName, "evt_1", mytime.ExampleTime, checkoutevents.PaymentCompleted{
			Reference:      reference,
			SessionUID:     "s1",
			ProviderName:   "stripe",
			CheckoutStatus: checkoutevents.CheckoutStatusSuccess,
		})
		assert.NoError(t, err)

		// when
		response := doRequest(router, http.MethodPost, "/api/order/event", string(body))

		// then
		assert.Equal(t, 200, response.Code)
		order, _, _ := orderStore.Get(c, reference)
		assert.True(t, order.IsPaid())
	})

	t.Run("Other checkout events are ignored", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _, _, _ := setup(t, ctrl)

		// given
		body, err := myevents.NewPushRequest(checkoutevents.TopicName, "evt_2", mytime.ExampleTime, checkoutevents.PaymentClosed{
			Reference: reference,
		})
		assert.NoError(t, err)

		// when
		response := doRequest(router, http.MethodPost, "/api/order/event", string(body))

		// then
		assert.Equal(t, 200, response.Code)
	})
}

func doRequest(router *mux.Router, method string, path string, body string) *httptest.ResponseRecorder {
	request, _ := http.NewRequest(method, path, strings.NewReader(body))
	request.Host = "localhost:8888"
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}

func setup(t *testing.T, ctrl *gomock.Controller) (context.Context, *mux.Router, *mystore.InMemoryStore[checkoutapi.PaymentAttempt], *mystore.InMemoryStore[Order],
	*payment.MockWidget, *mytime.MockNower, *mypublisher.MockPublisher) {
	c := context.TODO()
	attemptStore, _, err := mystore.NewInMemoryStore[checkoutapi.PaymentAttempt](c)
	assert.NoError(t, err)
	orderStore, _, err := mystore.NewInMemoryStore[Order](c)
	assert.NoError(t, err)
	widget := payment.NewMockWidget(ctrl)
	nower := mytime.NewMockNower(ctrl)
	subscriber := mypubsub.NewMockPubSub(ctrl)
	publisher := mypublisher.NewMockPublisher(ctrl)

	publisher.EXPECT().CreateTopic(gomock.Any(), orderevents.TopicName).Return(nil)
	subscriber.EXPECT().Subscribe(gomock.Any(), checkoutevents.TopicName, "http://localhost:8080/api/order/event").Return(nil)

	sut := NewWebService("http://localhost:8080", widget, attemptStore, orderStore, nower, subscriber, publisher)
	router := mux.NewRouter()
	err = sut.RegisterEndpoints(c, router)
	assert.NoError(t, err)

	return c, router, attemptStore, orderStore, widget, nower, publisher
}
