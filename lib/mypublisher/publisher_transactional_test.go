package mypublisher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/storefront/lib/myevents"
	"github.com/MarcGrol/storefront/lib/mypubsub"
	"github.com/MarcGrol/storefront/lib/myqueue"
	"github.com/MarcGrol/storefront/lib/mystore"
	"github.com/MarcGrol/storefront/lib/mytime"
)

type cartCleared struct {
	SessionUID string
}

func (e cartCleared) GetEventTypeName() string {
	return "cart.cleared"
}

func (e cartCleared) GetAggregateName() string {
	return e.SessionUID
}

func TestTransactionalPublisher(t *testing.T) {

	t.Run("Same event twice ends up as single envelope", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, _, outbox, queue, _, nower, sut := setup(t, ctrl)

		// given
		nower.EXPECT().Now().Return(mytime.ExampleTime).Times(2)
		queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		// when
		assert.NoError(t, sut.Publish(c, "cart", cartCleared{SessionUID: "abc"}))
		assert.NoError(t, sut.Publish(c, "cart", cartCleared{SessionUID: "abc"}))

		// then
		envelopes, err := outbox.List(c)
		assert.NoError(t, err)
		assert.Len(t, envelopes, 1)
		assert.Equal(t, "cart", envelopes[0].Topic)
		assert.Equal(t, "abc", envelopes[0].AggregateUID)
		assert.Equal(t, "cart.cleared", envelopes[0].EventTypeName)
		assert.Equal(t, `{"SessionUID":"abc"}`, envelopes[0].EventPayload)
		assert.False(t, envelopes[0].Published)
	})

	t.Run("Queue failure is reported", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, _, _, queue, _, nower, sut := setup(t, ctrl)

		// given
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(assert.AnError)

		// when
		err := sut.Publish(c, "cart", cartCleared{SessionUID: "abc"})

		// then
		assert.Error(t, err)
	})

	t.Run("Trigger publishes pending envelopes once", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, router, outbox, queue, pubsub, nower, sut := setup(t, ctrl)

		// given
		var task myqueue.Task
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).DoAndReturn(func(c context.Context, t myqueue.Task) error {
			task = t
			return nil
		})
		assert.NoError(t, sut.Publish(c, "cart", cartCleared{SessionUID: "abc"}))
		pubsub.EXPECT().Publish(gomock.Any(), "cart", gomock.Any()).Return(nil)

		// when
		request, err := http.NewRequest(http.MethodPut, task.WebhookURLPath, nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), "Successfully published 1 events")

		envelopes, err := outbox.List(c)
		assert.NoError(t, err)
		assert.Len(t, envelopes, 1)
		assert.True(t, envelopes[0].Published)

		// when triggered again
		response = httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then nothing is published twice
		assert.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), "Successfully published 0 events")
	})

	t.Run("Trigger fails when pubsub fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		c, router, outbox, _, pubsub, _, _ := setup(t, ctrl)

		// given
		_ = outbox.Put(c, "123", myevents.EventEnvelope{UID: "123", Topic: "cart", CreatedAt: mytime.ExampleTime})
		pubsub.EXPECT().Publish(gomock.Any(), "cart", gomock.Any()).Return(assert.AnError)

		// when
		request, err := http.NewRequest(http.MethodPut, "/pubsub/cart/123", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 500, response.Code)
		envelope, _, _ := outbox.Get(c, "123")
		assert.False(t, envelope.Published)
	})
}

func setup(t *testing.T, ctrl *gomock.Controller) (context.Context, *mux.Router, mystore.Store[myevents.EventEnvelope], *myqueue.MockTaskQueuer, *mypubsub.MockPubSub, *mytime.MockNower, *transactionalPublisher) {
	c := context.TODO()
	outbox, _, _ := mystore.NewInMemoryStore[myevents.EventEnvelope](c)
	queue := myqueue.NewMockTaskQueuer(ctrl)
	pubsub := mypubsub.NewMockPubSub(ctrl)
	nower := mytime.NewMockNower(ctrl)

	sut := newTransactionalPublisher(outbox, pubsub, queue, nower)
	router := mux.NewRouter()
	err := sut.RegisterEndpoints(c, router)
	assert.NoError(t, err)

	return c, router, outbox, queue, pubsub, nower, sut
}
