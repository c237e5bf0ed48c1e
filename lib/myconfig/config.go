package myconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ProviderFake   = "fake"
	ProviderStripe = "stripe"
	ProviderMollie = "mollie"
	ProviderAdyen  = "adyen"
)

type Config struct {
	Port     string
	BaseURL  string
	Currency string

	PaymentProvider      string
	StripeAPIKey         string
	MollieAPIKey         string
	AdyenAPIKey          string
	AdyenClientKey       string
	AdyenMerchantAccount string
	AdyenEnvironment     string

	RedisAddr string
	CartTTL   time.Duration

	ReconcileTimeout time.Duration
}

// Load reads the optional env-files first; real environment variables take precedence
func Load(envFiles ...string) (Config, error) {
	err := godotenv.Load(envFiles...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("error loading env-file: %s", err)
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("CURRENCY", "NGN")
	v.SetDefault("PAYMENT_PROVIDER", ProviderFake)
	v.SetDefault("ADYEN_ENVIRONMENT", "test")
	v.SetDefault("CART_TTL", 30*24*time.Hour)
	v.SetDefault("RECONCILE_TIMEOUT", 5*time.Second)

	cfg := Config{
		Port:                 v.GetString("PORT"),
		BaseURL:              v.GetString("BASE_URL"),
		Currency:             strings.ToUpper(v.GetString("CURRENCY")),
		PaymentProvider:      strings.ToLower(v.GetString("PAYMENT_PROVIDER")),
		StripeAPIKey:         v.GetString("STRIPE_API_KEY"),
		MollieAPIKey:         v.GetString("MOLLIE_API_KEY"),
		AdyenAPIKey:          v.GetString("ADYEN_API_KEY"),
		AdyenClientKey:       v.GetString("ADYEN_CLIENT_KEY"),
		AdyenMerchantAccount: v.GetString("ADYEN_MERCHANT_ACCOUNT"),
		AdyenEnvironment:     v.GetString("ADYEN_ENVIRONMENT"),
		RedisAddr:            v.GetString("REDIS_ADDR"),
		CartTTL:              v.GetDuration("CART_TTL"),
		ReconcileTimeout:     v.GetDuration("RECONCILE_TIMEOUT"),
	}
	err = cfg.validate()
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// SelfURL is how this server reaches itself; BaseURL stays empty when unset so request hosts can be used
func (cfg Config) SelfURL() string {
	if cfg.BaseURL != "" {
		return cfg.BaseURL
	}
	return "http://localhost:" + cfg.Port
}

func (cfg Config) validate() error {
	switch cfg.PaymentProvider {
	case ProviderFake:
		return nil
	case ProviderStripe:
		if cfg.StripeAPIKey == "" {
			return fmt.Errorf("missing STRIPE_API_KEY for payment provider %s", cfg.PaymentProvider)
		}
	case ProviderMollie:
		if cfg.MollieAPIKey == "" {
			return fmt.Errorf("missing MOLLIE_API_KEY for payment provider %s", cfg.PaymentProvider)
		}
	case ProviderAdyen:
		if cfg.AdyenAPIKey == "" || cfg.AdyenClientKey == "" || cfg.AdyenMerchantAccount == "" {
			return fmt.Errorf("missing ADYEN_API_KEY, ADYEN_CLIENT_KEY or ADYEN_MERCHANT_ACCOUNT for payment provider %s", cfg.PaymentProvider)
		}
	default:
		return fmt.Errorf("unknown payment provider '%s'", cfg.PaymentProvider)
	}
	return nil
}
