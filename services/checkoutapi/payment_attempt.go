package checkoutapi

import (
	"time"

	"github.com/MarcGrol/storefront/services/checkoutevents"
)

// PaymentAttempt is stored per widget session; its reference is what the buyer and the provider refer to
type PaymentAttempt struct {
	Reference     string
	SessionUID    string
	CreatedAt     time.Time
	LastModified  *time.Time
	Provider      string
	SessionID     string
	SessionData   string `datastore:",noindex"`
	Channel       string
	AmountMinor   int64
	Currency      string
	Contact       ContactInfo
	CartItems     string `datastore:",noindex"`
	Status        checkoutevents.CheckoutStatus
	StatusDetails string
}
