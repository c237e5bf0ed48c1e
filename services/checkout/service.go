package checkout

import (
	"context"
	"fmt"

	"github.com/MarcGrol/storefront/lib/myerrors"
	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/lib/mymoney"
	"github.com/MarcGrol/storefront/lib/mypublisher"
	"github.com/MarcGrol/storefront/lib/mystore"
	"github.com/MarcGrol/storefront/lib/mytime"
	"github.com/MarcGrol/storefront/lib/myuuid"
	"github.com/MarcGrol/storefront/services/cart"
	"github.com/MarcGrol/storefront/services/checkoutapi"
	"github.com/MarcGrol/storefront/services/checkoutevents"
	"github.com/MarcGrol/storefront/services/payment"
)

type service struct {
	logger       mylog.Logger
	nower        mytime.Nower
	uuider       myuuid.UUIDer
	cartStore    *cart.Store
	widget       payment.Widget
	attemptStore mystore.Store[checkoutapi.PaymentAttempt]
	publisher    mypublisher.Publisher
	notifier     Notifier
	currency     string
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(logger mylog.Logger, nower mytime.Nower, uuider myuuid.UUIDer, cartStore *cart.Store, widget payment.Widget,
	attemptStore mystore.Store[checkoutapi.PaymentAttempt], publisher mypublisher.Publisher, notifier Notifier, currency string) *service {
	return &service{
		logger:       logger,
		nower:        nower,
		uuider:       uuider,
		cartStore:    cartStore,
		widget:       widget,
		attemptStore: attemptStore,
		publisher:    publisher,
		notifier:     notifier,
		currency:     currency,
	}
}

func (s *service) CreateTopics(c context.Context) error {
	return s.publisher.CreateTopic(c, checkoutevents.TopicName)
}

// submitInfo only moves the buyer forward: nothing is stored and no provider is involved yet
func (s *service) submitInfo(c context.Context, sessionUID string, info checkoutapi.ContactInfo) (checkoutapi.Stage, error) {
	err := info.Validate()
	if err != nil {
		return checkoutapi.StageInfo, err
	}

	err = s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.InfoSubmitted{
		SessionUID: sessionUID,
		Email:      info.Email,
	})
	if err != nil {
		return checkoutapi.StageInfo, myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
	}

	s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Contact info submitted for session %s", sessionUID)

	return checkoutapi.StagePayment, nil
}

type returnURLs struct {
	success string
	close   string
	webhook string
}

func newReturnURLs(baseURL string, reference string) returnURLs {
	return returnURLs{
		success: fmt.Sprintf("%s/checkout/payment/%s/status/%s", baseURL, reference, payment.OutcomeSuccess),
		close:   fmt.Sprintf("%s/checkout/payment/%s/status/%s", baseURL, reference, payment.OutcomeClosed),
		webhook: fmt.Sprintf("%s/api/order/webhook/%s", baseURL, reference),
	}
}

// initiatePayment opens the widget for the current cart and returns the hosted page to redirect to
func (s *service) initiatePayment(c context.Context, sessionUID string, info checkoutapi.ContactInfo, channel payment.Channel, baseURL string) (string, error) {
	if !s.widget.Ready() {
		return "", myerrors.NewUnavailableError(payment.ErrNotReady)
	}

	err := info.Validate()
	if err != nil {
		return "", err
	}

	current, err := s.cartStore.Get(c, sessionUID)
	if err != nil {
		return "", myerrors.NewInternalError(fmt.Errorf("error fetching cart of session %s: %s", sessionUID, err))
	}
	if current.IsEmpty() {
		return "", myerrors.NewInvalidInputError(fmt.Errorf("cart is empty"))
	}

	cartItems, err := cart.Serialize(current)
	if err != nil {
		return "", myerrors.NewInternalError(err)
	}

	now := s.nower.Now()
	reference := newReference(now, s.uuider)
	urls := newReturnURLs(baseURL, reference)
	amountMinor := mymoney.ToMinorUnits(current.TotalAmount())

	s.logger.Log(c, reference, mylog.SeverityInfo, "Start payment %s of %s for session %s", reference, mymoney.FormatMinorUnits(amountMinor, s.currency), sessionUID)

	session, err := s.widget.Open(c, payment.Config{
		Reference:   reference,
		Email:       info.Email,
		AmountMinor: amountMinor,
		Currency:    s.currency,
		Metadata: payment.Metadata{
			FirstName: info.FirstName,
			LastName:  info.LastName,
			Phone:     info.Phone,
			Street:    info.Street,
			City:      info.City,
			Country:   info.Country,
			CartItems: cartItems,
		},
		Channel:    channel,
		SuccessURL: urls.success,
		CloseURL:   urls.close,
		WebhookURL: urls.webhook,
	})
	if err != nil {
		return "", fmt.Errorf("error opening %s payment %s: %w", s.widget.Provider(), reference, err)
	}

	err = s.attemptStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent

		err := s.attemptStore.Put(c, reference, checkoutapi.PaymentAttempt{
			Reference:   reference,
			SessionUID:  sessionUID,
			CreatedAt:   now,
			Provider:    s.widget.Provider(),
			SessionID:   session.ID,
			SessionData: session.Data,
			Channel:     string(channel),
			AmountMinor: amountMinor,
			Currency:    s.currency,
			Contact:     info,
			CartItems:   cartItems,
			Status:      checkoutevents.CheckoutStatusPending,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing payment attempt: %s", err))
		}

		err = s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.PaymentStarted{
			Reference:          reference,
			SessionUID:         sessionUID,
			ProviderName:       s.widget.Provider(),
			Channel:            string(channel),
			AmountInMinorUnits: amountMinor,
			Currency:           s.currency,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	return session.RedirectURL, nil
}

// onSuccess trusts the widget and lets the order service confirm with the provider afterwards
func (s *service) onSuccess(c context.Context, reference string) (string, error) {
	s.logger.Log(c, reference, mylog.SeverityInfo, "Redirect (start): payment %s succeeded", reference)

	now := s.nower.Now()

	attempt := checkoutapi.PaymentAttempt{}
	err := s.attemptStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent

		var err error
		attempt, err = s.getAttempt(c, reference)
		if err != nil {
			return err
		}
		if attempt.Status == checkoutevents.CheckoutStatusSuccess {
			return nil
		}

		attempt.Status = checkoutevents.CheckoutStatusSuccess
		attempt.LastModified = &now

		err = s.attemptStore.Put(c, reference, attempt)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing payment attempt: %s", err))
		}

		err = s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.PaymentCompleted{
			Reference:      reference,
			SessionUID:     attempt.SessionUID,
			ProviderName:   attempt.Provider,
			CheckoutStatus: attempt.Status,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	result := s.notifier.NotifyServer(c, reference)
	if result.Err != nil {
		s.logger.Log(c, reference, mylog.SeverityWarn, "Reconciliation of %s not confirmed: %s", result.Reference, result.Err)
	}

	_, err = s.cartStore.Clear(c, attempt.SessionUID)
	if err != nil {
		s.logger.Log(c, reference, mylog.SeverityWarn, "Error clearing cart of session %s: %s", attempt.SessionUID, err)
	}

	s.logger.Log(c, reference, mylog.SeverityInfo, "Redirect (done): payment %s succeeded", reference)

	return fmt.Sprintf("/checkout/success/%s", reference), nil
}

// onClose leaves the cart untouched so the buyer can try again
func (s *service) onClose(c context.Context, reference string) (string, error) {
	s.logger.Log(c, reference, mylog.SeverityInfo, "Redirect: payment %s closed", reference)

	now := s.nower.Now()

	err := s.attemptStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent

		attempt, err := s.getAttempt(c, reference)
		if err != nil {
			return err
		}
		if attempt.Status == checkoutevents.CheckoutStatusSuccess || attempt.Status == checkoutevents.CheckoutStatusClosed {
			return nil
		}

		attempt.Status = checkoutevents.CheckoutStatusClosed
		attempt.LastModified = &now

		err = s.attemptStore.Put(c, reference, attempt)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing payment attempt: %s", err))
		}

		err = s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.PaymentClosed{
			Reference:    reference,
			SessionUID:   attempt.SessionUID,
			ProviderName: attempt.Provider,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("/checkout/payment/%s", reference), nil
}

func (s *service) getAttempt(c context.Context, reference string) (checkoutapi.PaymentAttempt, error) {
	attempt, found, err := s.attemptStore.Get(c, reference)
	if err != nil {
		return attempt, myerrors.NewInternalError(fmt.Errorf("error fetching payment attempt %s: %s", reference, err))
	}
	if !found {
		return attempt, myerrors.NewNotFoundError(fmt.Errorf("payment attempt %s not found", reference))
	}
	return attempt, nil
}

// getOwnAttempt hides attempts of other sessions: they carry contact details of another buyer
func (s *service) getOwnAttempt(c context.Context, sessionUID string, reference string) (checkoutapi.PaymentAttempt, error) {
	attempt, err := s.getAttempt(c, reference)
	if err != nil {
		return checkoutapi.PaymentAttempt{}, err
	}
	if attempt.SessionUID != sessionUID {
		return checkoutapi.PaymentAttempt{}, myerrors.NewNotFoundError(fmt.Errorf("payment attempt %s not found", reference))
	}
	return attempt, nil
}

// resumePayment gives what is needed to render the payment stage again after the buyer closed the widget
func (s *service) resumePayment(c context.Context, sessionUID string, reference string) (checkoutapi.PaymentAttempt, cart.Cart, error) {
	attempt, err := s.getOwnAttempt(c, sessionUID, reference)
	if err != nil {
		return attempt, cart.Cart{}, err
	}

	current, err := s.cartStore.Get(c, attempt.SessionUID)
	if err != nil {
		return attempt, cart.Cart{}, myerrors.NewInternalError(fmt.Errorf("error fetching cart of session %s: %s", attempt.SessionUID, err))
	}

	return attempt, current, nil
}
