package checkoutevents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/MarcGrol/storefront/lib/myerrors"
	"github.com/MarcGrol/storefront/lib/myevents"
)

const (
	TopicName            = "checkout"
	infoSubmittedName    = TopicName + ".infoSubmitted"
	paymentStartedName   = TopicName + ".paymentStarted"
	paymentCompletedName = TopicName + ".paymentCompleted"
	paymentClosedName    = TopicName + ".paymentClosed"
)

//go:generate mockgen -source=events.go -package checkoutevents -destination event_service_mock.go CheckoutEventService
type CheckoutEventService interface {
	Subscribe(c context.Context) error
	OnInfoSubmitted(c context.Context, topic string, event InfoSubmitted) error
	OnPaymentStarted(c context.Context, topic string, event PaymentStarted) error
	OnPaymentCompleted(c context.Context, topic string, event PaymentCompleted) error
	OnPaymentClosed(c context.Context, topic string, event PaymentClosed) error
}

func DispatchEvent(c context.Context, reader io.Reader, service CheckoutEventService) error {
	envelope, err := myevents.ParseEventEnvelope(reader)
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}

	switch envelope.EventTypeName {
	case infoSubmittedName:
		{
			event := InfoSubmitted{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnInfoSubmitted(c, envelope.Topic, event)
		}
	case paymentStartedName:
		{
			event := PaymentStarted{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnPaymentStarted(c, envelope.Topic, event)
		}
	case paymentCompletedName:
		{
			event := PaymentCompleted{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnPaymentCompleted(c, envelope.Topic, event)
		}
	case paymentClosedName:
		{
			event := PaymentClosed{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnPaymentClosed(c, envelope.Topic, event)
		}
	default:
		return myerrors.NewNotImplementedError(fmt.Errorf("unknown event type %s", envelope.EventTypeName))
	}
}

type CheckoutStatus string

const (
	CheckoutStatusUndefined CheckoutStatus = ""
	CheckoutStatusSuccess   CheckoutStatus = "success"
	CheckoutStatusCancelled CheckoutStatus = "cancelled"
	CheckoutStatusPending   CheckoutStatus = "pending"
	CheckoutStatusExpired   CheckoutStatus = "expired"
	CheckoutStatusFailed    CheckoutStatus = "failed"
	CheckoutStatusError     CheckoutStatus = "error"
	CheckoutStatusFraud     CheckoutStatus = "fraud"
	CheckoutStatusOther     CheckoutStatus = "other"
	CheckoutStatusClosed    CheckoutStatus = "closed"
)

// IsFinal tells if a provider will not change its mind anymore
func (s CheckoutStatus) IsFinal() bool {
	switch s {
	case CheckoutStatusUndefined, CheckoutStatusPending, CheckoutStatusOther:
		return false
	default:
		return true
	}
}

type InfoSubmitted struct {
	SessionUID string
	Email      string
}

func (e InfoSubmitted) GetEventTypeName() string {
	return infoSubmittedName
}

func (e InfoSubmitted) GetAggregateName() string {
	return e.SessionUID
}

type PaymentStarted struct {
	Reference          string
	SessionUID         string
	ProviderName       string
	Channel            string
	AmountInMinorUnits int64
	Currency           string
}

func (e PaymentStarted) GetEventTypeName() string {
	return paymentStartedName
}

func (e PaymentStarted) GetAggregateName() string {
	return e.Reference
}

type PaymentCompleted struct {
	Reference      string
	SessionUID     string
	ProviderName   string
	CheckoutStatus CheckoutStatus
}

func (e PaymentCompleted) GetEventTypeName() string {
	return paymentCompletedName
}

func (e PaymentCompleted) GetAggregateName() string {
	return e.Reference
}

type PaymentClosed struct {
	Reference    string
	SessionUID   string
	ProviderName string
}

func (e PaymentClosed) GetEventTypeName() string {
	return paymentClosedName
}

func (e PaymentClosed) GetAggregateName() string {
	return e.Reference
}
