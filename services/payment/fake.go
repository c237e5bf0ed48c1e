package payment

import (
	"context"

	"github.com/MarcGrol/storefront/services/checkoutevents"
)

const FakeProviderName = "fake"

// FakeWidget is used during development: every payment succeeds immediately
type FakeWidget struct{}

func NewFakeWidget() *FakeWidget {
	return &FakeWidget{}
}

func (w *FakeWidget) Provider() string {
	return FakeProviderName
}

func (w *FakeWidget) Ready() bool {
	return true
}

func (w *FakeWidget) Open(c context.Context, cfg Config) (Session, error) {
	return Session{
		ID:          "fake_" + cfg.Reference,
		RedirectURL: cfg.SuccessURL,
	}, nil
}

func (w *FakeWidget) Verify(c context.Context, sessionID string) (Verification, error) {
	return Verification{
		Status:        checkoutevents.CheckoutStatusSuccess,
		PaymentMethod: FakeProviderName,
	}, nil
}
