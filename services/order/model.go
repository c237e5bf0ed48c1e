package order

import (
	"time"

	"github.com/MarcGrol/storefront/services/checkoutevents"
)

// Order is the server side view of a payment attempt, confirmed with the provider
type Order struct {
	UID           string                        `json:"uid"`
	SessionUID    string                        `json:"sessionUid"`
	Provider      string                        `json:"provider"`
	SessionID     string                        `json:"sessionId"`
	AmountMinor   int64                         `json:"amountMinor"`
	Currency      string                        `json:"currency"`
	Email         string                        `json:"email"`
	Name          string                        `json:"name"`
	CartItems     string                        `json:"cartItems" datastore:",noindex"`
	Status        checkoutevents.CheckoutStatus `json:"status"`
	StatusDetails string                        `json:"statusDetails,omitempty"`
	PaymentMethod string                        `json:"paymentMethod,omitempty"`
	CreatedAt     time.Time                     `json:"createdAt"`
	LastModified  *time.Time                    `json:"lastModified,omitempty"`
	PaidAt        *time.Time                    `json:"paidAt,omitempty"`
}

func (o Order) IsPaid() bool {
	return o.Status == checkoutevents.CheckoutStatusSuccess
}
