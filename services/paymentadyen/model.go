package paymentadyen

import (
	"time"

	"github.com/MarcGrol/storefront/services/checkoutevents"
)

type Config struct {
	Environment     string
	MerchantAccount string
	ClientKey       string
	APIKey          string
}

// DropIn is what the drop-in page needs to resume an adyen session, plus what the webhook reported
type DropIn struct {
	SessionID     string
	Reference     string
	SessionData   string `datastore:",noindex"`
	AmountMinor   int64
	Currency      string
	SuccessURL    string
	CloseURL      string
	CreatedAt     time.Time
	LastModified  *time.Time
	Status        checkoutevents.CheckoutStatus
	StatusDetails string
	PaymentMethod string
}

type DropInPageInfo struct {
	Environment string
	ClientKey   string
	DropIn      DropIn
}

type WebhookNotification struct {
	Live              string             `json:"live"`
	NotificationItems []NotificationItem `json:"notificationItems"`
}

type WebhookNotificationResponse struct {
	Status string `json:"status"`
}

type NotificationItem struct {
	NotificationRequestItem NotificationRequestItem `json:"NotificationRequestItem"`
}

type NotificationRequestItem struct {
	AdditionalData      AdditionalData `json:"additionalData"`
	Amount              Amount         `json:"amount"`
	EventCode           string         `json:"eventCode"`
	EventDate           time.Time      `json:"eventDate"`
	MerchantAccountCode string         `json:"merchantAccountCode"`
	MerchantReference   string         `json:"merchantReference"`
	PaymentMethod       string         `json:"paymentMethod"`
	PspReference        string         `json:"pspReference"`
	Reason              string         `json:"reason"`
	Success             string         `json:"success"`
}

type AdditionalData struct {
	CheckoutSessionId string `json:"checkoutSessionId"`
}

type Amount struct {
	Currency string `json:"currency"`
	Value    int64  `json:"value"`
}
