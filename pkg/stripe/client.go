// Package stripe owns the Stripe credentials and the two calls the service
// makes: creating payment intents and verifying webhook events.
package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"
	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/delish-app/tiffin-backend/pkg/config"
	"github.com/delish-app/tiffin-backend/pkg/logger"
)

const (
	ModeTest = "test"
	ModeLive = "live"
)

// key prefixes accepted per mode; restricted keys (rk_) are allowed
var keyPrefixes = map[string][]string{
	ModeTest: {"sk_test_", "rk_test_"},
	ModeLive: {"sk_live_", "rk_live_"},
}

type Client struct {
	mode          string
	signingSecret string
}

// NewClient checks the configured credentials against the configured mode
// and installs the API key for the stripe-go resource packages.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	mode := cfg.Environment()
	apiKey := strings.TrimSpace(cfg.APIKey)
	secret := strings.TrimSpace(cfg.Secret)
	if err := checkCredentials(mode, apiKey, secret); err != nil {
		return nil, err
	}

	stripe.Key = apiKey
	if logg != nil {
		logg.Info(logg.WithField(ctx, "stripe_mode", mode), "stripe client ready")
	}
	return &Client{mode: mode, signingSecret: secret}, nil
}

func checkCredentials(mode, apiKey, secret string) error {
	prefixes, ok := keyPrefixes[mode]
	if !ok {
		return fmt.Errorf("stripe: unknown mode %q (want %q or %q)", mode, ModeTest, ModeLive)
	}
	if apiKey == "" {
		return errors.New("stripe: api key is required")
	}
	matched := false
	for _, prefix := range prefixes {
		matched = matched || strings.HasPrefix(apiKey, prefix)
	}
	if !matched {
		return fmt.Errorf("stripe: %s mode needs a key starting with %s", mode, strings.Join(prefixes, " or "))
	}
	if secret == "" {
		return errors.New("stripe: webhook signing secret is required")
	}
	return nil
}

// Mode is "test" or "live".
func (c *Client) Mode() string {
	if c == nil {
		return ""
	}
	return c.mode
}

func (c *Client) CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	if params == nil {
		return nil, errors.New("stripe: payment intent params required")
	}
	params.Context = ctx
	return paymentintent.New(params)
}

// VerifyEvent checks the Stripe-Signature header against the webhook secret
// and decodes the event. Stale timestamps and API version mismatches fail.
func (c *Client) VerifyEvent(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, signature, c.signingSecret)
}
