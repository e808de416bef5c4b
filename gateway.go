// Package coingate integrates a host commerce system with the CoinGate
// payment processor. It creates remote payment orders at checkout, redirects
// the shopper to the hosted payment page, and reconciles order state when
// the processor calls back asynchronously.
package coingate

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/commercekit/coingate-gateway/api"
)

// GatewayID is the payment-method identifier recorded on orders paid
// through this gateway.
const GatewayID = "coingate"

// MethodTitle is the gateway's display name.
const MethodTitle = "CoinGate"

// OrderTokenMetaKey is the order metadata key holding the callback
// authentication token.
const OrderTokenMetaKey = "coingate_order_token"

// CallbackPath is the well-known inbound notification endpoint the
// processor calls.
const CallbackPath = "/payments/coingate/callback"

// Dispatcher action names the gateway registers at construction.
const (
	ActionPaymentCallback = "coingate_payment_callback"
	ActionSettingsSaved   = "coingate_settings_saved"
	ActionThankYou        = "coingate_thankyou"
)

// Config wires the gateway's external collaborators.
type Config struct {
	Orders   OrderStore
	Host     Host
	Mailer   Mailer
	Settings SettingsRepository

	// Logger is optional; zap.NewNop is used when absent.
	Logger *zap.Logger

	// ClientFactory is optional; the real API client is used when absent.
	ClientFactory ClientFactory

	// Tester is optional; the real connectivity test is used when absent.
	Tester ConnectionTester

	// Recorder is optional; callback events are not persisted when absent.
	Recorder CallbackRecorder

	// AppInfo identifies this integration to the processor (optional).
	AppInfo string
}

// Gateway orchestrates checkout initiation, callback reconciliation and
// settings management for the CoinGate payment method.
type Gateway struct {
	orders   OrderStore
	host     Host
	mailer   Mailer
	repo     SettingsRepository
	log      *zap.Logger
	factory  ClientFactory
	tester   ConnectionTester
	recorder CallbackRecorder

	settings *Settings
}

// NewGateway builds a gateway and loads its settings from the repository.
// Missing settings fall back to defaults.
func NewGateway(ctx context.Context, cfg Config) (*Gateway, error) {
	if cfg.Orders == nil {
		return nil, errors.New("coingate: order store is required")
	}
	if cfg.Host == nil {
		return nil, errors.New("coingate: host is required")
	}
	if cfg.Mailer == nil {
		return nil, errors.New("coingate: mailer is required")
	}
	if cfg.Settings == nil {
		return nil, errors.New("coingate: settings repository is required")
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	appInfo := cfg.AppInfo
	if appInfo == "" {
		appInfo = "coingate-gateway/go"
	}

	factory := cfg.ClientFactory
	if factory == nil {
		factory = func(token string, sandbox bool) APIClient {
			return api.NewClient(&api.Config{
				Token:   token,
				Sandbox: sandbox,
				AppInfo: appInfo,
			})
		}
	}

	tester := cfg.Tester
	if tester == nil {
		tester = api.TestConnection
	}

	settings, err := cfg.Settings.Load(ctx, SettingsKey)
	if err != nil {
		return nil, fmt.Errorf("coingate: load settings: %w", err)
	}
	if settings == nil {
		settings = DefaultSettings()
	}
	if settings.OrderStatuses == nil {
		settings.OrderStatuses = DefaultStatusMapping()
	}

	return &Gateway{
		orders:   cfg.Orders,
		host:     cfg.Host,
		mailer:   cfg.Mailer,
		repo:     cfg.Settings,
		log:      log,
		factory:  factory,
		tester:   tester,
		recorder: cfg.Recorder,
		settings: settings,
	}, nil
}

// RegisterActions wires the gateway's handlers into the host dispatcher.
func (g *Gateway) RegisterActions(d Dispatcher) {
	d.RegisterAction(ActionPaymentCallback, func(ctx context.Context, payload any) error {
		req, ok := payload.(CallbackRequest)
		if !ok {
			return fmt.Errorf("coingate: unexpected payload %T for %s", payload, ActionPaymentCallback)
		}
		return g.PaymentCallback(ctx, req)
	})
	d.RegisterAction(ActionSettingsSaved, func(ctx context.Context, payload any) error {
		submitted, ok := payload.(map[RemoteStatus]string)
		if !ok {
			return fmt.Errorf("coingate: unexpected payload %T for %s", payload, ActionSettingsSaved)
		}
		return g.SaveOrderStatuses(ctx, submitted)
	})
	d.RegisterAction(ActionThankYou, func(ctx context.Context, payload any) error {
		return nil
	})
}

// ThankYouMessage returns the description shown on the host's thank-you
// page, or "" when no description is configured.
func (g *Gateway) ThankYouMessage() string {
	return g.settings.Description
}

// Enabled reports whether the operator has enabled the payment method.
func (g *Gateway) Enabled() bool {
	return g.settings.Enabled
}

// client builds an API client from the current credentials and mode.
func (g *Gateway) client() APIClient {
	return g.factory(g.settings.AuthToken(), g.settings.Test)
}

// record persists a callback event when a recorder is configured. Recorder
// failures are logged, never propagated.
func (g *Gateway) record(ctx context.Context, event CallbackEvent) {
	if g.recorder == nil {
		return
	}
	if err := g.recorder.Record(ctx, event); err != nil {
		g.log.Warn("failed to record callback event",
			zap.Int64("order_id", event.OrderID),
			zap.Error(err))
	}
}
