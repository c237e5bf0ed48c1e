package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MarcGrol/storefront/lib/myerrors"
	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/lib/mypublisher"
	"github.com/MarcGrol/storefront/lib/mypubsub"
	"github.com/MarcGrol/storefront/lib/mystore"
	"github.com/MarcGrol/storefront/lib/mytime"
	"github.com/MarcGrol/storefront/services/checkoutapi"
	"github.com/MarcGrol/storefront/services/checkoutevents"
	"github.com/MarcGrol/storefront/services/order/orderevents"
	"github.com/MarcGrol/storefront/services/payment"
)

type service struct {
	selfURL      string
	logger       mylog.Logger
	nower        mytime.Nower
	widget       payment.Widget
	attemptStore mystore.Store[checkoutapi.PaymentAttempt]
	orderStore   mystore.Store[Order]
	subscriber   mypubsub.PubSub
	publisher    mypublisher.Publisher
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(selfURL string, logger mylog.Logger, nower mytime.Nower, widget payment.Widget, attemptStore mystore.Store[checkoutapi.PaymentAttempt],
	orderStore mystore.Store[Order], subscriber mypubsub.PubSub, publisher mypublisher.Publisher) *service {
	return &service{
		selfURL:      selfURL,
		logger:       logger,
		nower:        nower,
		widget:       widget,
		attemptStore: attemptStore,
		orderStore:   orderStore,
		subscriber:   subscriber,
		publisher:    publisher,
	}
}

func (s *service) CreateTopics(c context.Context) error {
	return s.publisher.CreateTopic(c, orderevents.TopicName)
}

func (s *service) Subscribe(c context.Context) error {
	err := s.subscriber.Subscribe(c, checkoutevents.TopicName, s.selfURL+"/api/order/event")
	if err != nil {
		return fmt.Errorf("error subscribing to topic %s: %s", checkoutevents.TopicName, err)
	}

	return nil
}

func (s *service) OnInfoSubmitted(c context.Context, topic string, event checkoutevents.InfoSubmitted) error {
	return nil
}

func (s *service) OnPaymentStarted(c context.Context, topic string, event checkoutevents.PaymentStarted) error {
	return nil
}

// OnPaymentCompleted is the asynchronous path: it covers buyers whose callback never reached us
func (s *service) OnPaymentCompleted(c context.Context, topic string, event checkoutevents.PaymentCompleted) error {
	return s.reconcile(c, event.Reference)
}

func (s *service) OnPaymentClosed(c context.Context, topic string, event checkoutevents.PaymentClosed) error {
	return nil
}

// reconcile asks the provider what really happened to the attempt and records that as the order
func (s *service) reconcile(c context.Context, reference string) error {
	attempt, found, err := s.attemptStore.Get(c, reference)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error fetching payment attempt %s: %s", reference, err))
	}
	if !found {
		return myerrors.NewNotFoundError(fmt.Errorf("payment attempt %s not found", reference))
	}

	verification, err := s.widget.Verify(c, attempt.SessionID)
	if err != nil {
		if errors.Is(err, payment.ErrNotReady) {
			return myerrors.NewUnavailableError(err)
		}
		return err
	}

	s.logger.Log(c, reference, mylog.SeverityInfo, "Reconcile: %s payment %s -> %s (%s)", attempt.Provider, reference, verification.Status, verification.Details)

	now := s.nower.Now()

	err = s.orderStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent

		order, found, err := s.orderStore.Get(c, reference)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if !found {
			order = newOrder(attempt, now)
		} else {
			order.LastModified = &now
		}

		if order.IsPaid() {
			return nil
		}

		order.Status = verification.Status
		order.StatusDetails = verification.Details
		order.PaymentMethod = verification.PaymentMethod
		if order.IsPaid() {
			order.PaidAt = &now
		}

		err = s.orderStore.Put(c, reference, order)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		if !order.IsPaid() {
			return nil
		}

		err = s.publisher.Publish(c, orderevents.TopicName, orderevents.Reconciled{
			OrderUID:           order.UID,
			SessionUID:         order.SessionUID,
			ProviderName:       order.Provider,
			PaymentMethod:      order.PaymentMethod,
			AmountInMinorUnits: order.AmountMinor,
			Currency:           order.Currency,
		})
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	return nil
}

func (s *service) getOrder(c context.Context, reference string) (Order, error) {
	order, found, err := s.orderStore.Get(c, reference)
	if err != nil {
		return order, myerrors.NewInternalError(err)
	}
	if !found {
		return order, myerrors.NewNotFoundError(fmt.Errorf("order %s not found", reference))
	}
	return order, nil
}

func newOrder(attempt checkoutapi.PaymentAttempt, now time.Time) Order {
	return Order{
		UID:         attempt.Reference,
		SessionUID:  attempt.SessionUID,
		Provider:    attempt.Provider,
		SessionID:   attempt.SessionID,
		AmountMinor: attempt.AmountMinor,
		Currency:    attempt.Currency,
		Email:       attempt.Contact.Email,
		Name:        attempt.Contact.FullName(),
		CartItems:   attempt.CartItems,
		CreatedAt:   now,
	}
}
