package checkout

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/MarcGrol/storefront/lib/myhttpclient"
)

// BestEffort reports the outcome of a call whose failure must not stop the buyer
type BestEffort struct {
	Reference string
	Err       error
}

//go:generate mockgen -source=notifier.go -package checkout -destination notifier_mock.go Notifier
type Notifier interface {
	NotifyServer(c context.Context, reference string) BestEffort
}

type httpNotifier struct {
	baseURL string
	sender  myhttpclient.HTTPSender
}

// NewNotifier asks the order service to reconcile a reference that the widget reported as paid
func NewNotifier(baseURL string, sender myhttpclient.HTTPSender) Notifier {
	return &httpNotifier{
		baseURL: baseURL,
		sender:  sender,
	}
}

func (n *httpNotifier) NotifyServer(c context.Context, reference string) BestEffort {
	callbackURL := fmt.Sprintf("%s/api/order/callback?reference=%s", n.baseURL, url.QueryEscape(reference))

	httpStatus, _, err := n.sender.Send(c, http.MethodGet, callbackURL, nil)
	if err != nil {
		return BestEffort{Reference: reference, Err: fmt.Errorf("error notifying server on %s: %s", reference, err)}
	}
	if httpStatus < 200 || httpStatus >= 300 {
		return BestEffort{Reference: reference, Err: fmt.Errorf("error notifying server on %s: http-status %d", reference, httpStatus)}
	}

	return BestEffort{Reference: reference}
}
