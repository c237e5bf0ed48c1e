package myvault

import (
	"context"

	"github.com/MarcGrol/storefront/lib/mystore"
)

const (
	CurrentToken = "currentToken"
)

// Token holds the credentials a payment provider granted to this shop
type Token struct {
	ProviderName string
	ClientID     string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

func TokenUID(providerName string) string {
	return CurrentToken + "_" + providerName
}

type VaultReader interface {
	Get(c context.Context, uid string) (Token, bool, error)
}

type VaultReadWriter interface {
	VaultReader
	Put(c context.Context, uid string, value Token) error
}

func New(c context.Context) (VaultReadWriter, func(), error) {
	return mystore.New[Token](c)
}
