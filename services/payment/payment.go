package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/MarcGrol/storefront/services/checkoutevents"
)

var ErrNotReady = errors.New("payment system loading")

type Channel string

const (
	ChannelAny          Channel = ""
	ChannelCard         Channel = "card"
	ChannelBankTransfer Channel = "bank_transfer"
	ChannelBank         Channel = "bank"
	ChannelUSSD         Channel = "ussd"
	ChannelMobileMoney  Channel = "mobile_money"
	ChannelOpay         Channel = "opay"
	ChannelPalmpay      Channel = "palmpay"
)

var Channels = []Channel{
	ChannelCard,
	ChannelBankTransfer,
	ChannelBank,
	ChannelUSSD,
	ChannelMobileMoney,
	ChannelOpay,
	ChannelPalmpay,
}

func ParseChannel(s string) (Channel, error) {
	if s == "" {
		return ChannelAny, nil
	}
	for _, ch := range Channels {
		if string(ch) == s {
			return ch, nil
		}
	}
	return ChannelAny, fmt.Errorf("unsupported payment channel '%s'", s)
}

// Config is everything a widget needs to open a payment for one attempt
type Config struct {
	Reference   string
	Email       string
	AmountMinor int64
	Currency    string
	Metadata    Metadata
	Channel     Channel
	SuccessURL  string
	CloseURL    string
	WebhookURL  string
}

type Metadata struct {
	FirstName string
	LastName  string
	Phone     string
	Street    string
	City      string
	Country   string
	CartItems string
}

func (m Metadata) AsMap() map[string]string {
	return map[string]string{
		"firstName": m.FirstName,
		"lastName":  m.LastName,
		"phone":     m.Phone,
		"street":    m.Street,
		"city":      m.City,
		"country":   m.Country,
		"cartItems": m.CartItems,
	}
}

type Session struct {
	ID          string
	Data        string
	RedirectURL string
}

type Verification struct {
	Status        checkoutevents.CheckoutStatus
	Details       string
	PaymentMethod string
}

//go:generate mockgen -source=payment.go -package payment -destination widget_mock.go Widget
type Widget interface {
	Provider() string
	Ready() bool
	Open(c context.Context, cfg Config) (Session, error)
	Verify(c context.Context, sessionID string) (Verification, error)
}

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeClosed  Outcome = "closed"
)

// ParseOutcome treats everything that is not an explicit success as the buyer closing the widget
func ParseOutcome(status string) Outcome {
	if status == string(OutcomeSuccess) {
		return OutcomeSuccess
	}
	return OutcomeClosed
}
