package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/lib/myvault"
)

type LoadFunc func(c context.Context, credential string) (Widget, error)

// Loader is the widget the checkout talks to: it stays not-ready until the provider client has been constructed
type Loader struct {
	sync.RWMutex
	loading  sync.Mutex
	provider string
	apiKey   string
	vault    myvault.VaultReader
	load     LoadFunc
	widget   Widget
	logger   mylog.Logger
}

func NewLoader(provider string, apiKey string, vault myvault.VaultReader, load LoadFunc) *Loader {
	return &Loader{
		provider: provider,
		apiKey:   apiKey,
		vault:    vault,
		load:     load,
		logger:   mylog.New("payment"),
	}
}

// Load is idempotent; a failed load can be retried.
// Only concurrent loads wait for each other: Ready, Open and Verify keep reporting not-ready meanwhile.
func (l *Loader) Load(c context.Context) error {
	l.loading.Lock()
	defer l.loading.Unlock()

	if l.current() != nil {
		return nil
	}

	credential, err := l.resolveCredential(c)
	if err != nil {
		return err
	}

	widget, err := l.load(c, credential)
	if err != nil {
		return fmt.Errorf("error loading %s payment widget: %s", l.provider, err)
	}
	l.Lock()
	l.widget = widget
	l.Unlock()

	l.logger.Log(c, "", mylog.SeverityInfo, "Payment widget %s loaded", l.provider)

	return nil
}

func (l *Loader) resolveCredential(c context.Context) (string, error) {
	if l.vault == nil {
		return l.apiKey, nil
	}

	token, found, err := l.vault.Get(c, myvault.TokenUID(l.provider))
	if err != nil {
		return "", fmt.Errorf("error fetching %s token from vault: %s", l.provider, err)
	}
	if !found || token.AccessToken == "" {
		return l.apiKey, nil
	}

	l.logger.Log(c, "", mylog.SeverityDebug, "Using %s access token from vault", l.provider)

	return token.AccessToken, nil
}

func (l *Loader) current() Widget {
	l.RLock()
	defer l.RUnlock()

	return l.widget
}

func (l *Loader) Provider() string {
	return l.provider
}

func (l *Loader) Ready() bool {
	w := l.current()
	return w != nil && w.Ready()
}

func (l *Loader) Open(c context.Context, cfg Config) (Session, error) {
	w := l.current()
	if w == nil || !w.Ready() {
		return Session{}, ErrNotReady
	}
	return w.Open(c, cfg)
}

func (l *Loader) Verify(c context.Context, sessionID string) (Verification, error) {
	w := l.current()
	if w == nil || !w.Ready() {
		return Verification{}, ErrNotReady
	}
	return w.Verify(c, sessionID)
}
