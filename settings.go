package coingate

import (
	"context"

	"go.uber.org/zap"
)

// SettingsKey is the fixed key the gateway settings live under in the host
// options store.
const SettingsKey = "coingate_gateway_settings"

// ReceiveCurrencies lists the payout currencies the processor supports.
var ReceiveCurrencies = []string{"BTC", "USDT", "EUR", "USD", "DO_NOT_CONVERT"}

// Settings holds the operator-configured gateway options, including the
// nested remote→local status mapping.
type Settings struct {
	Enabled     bool   `json:"enabled"`
	Title       string `json:"title"`
	Description string `json:"description"`

	// APIAuthToken is the merchant API credential. When empty, the legacy
	// APISecret is used instead.
	APIAuthToken string `json:"api_auth_token"`
	APISecret    string `json:"api_secret"`

	ReceiveCurrency string `json:"receive_currency"`
	Test            bool   `json:"test"`

	OrderStatuses StatusMapping `json:"order_statuses"`
}

// DefaultSettings returns the settings applied before the operator has
// configured anything.
func DefaultSettings() *Settings {
	return &Settings{
		Enabled:         false,
		Title:           "Cryptocurrencies via CoinGate (more than 50 supported)",
		Description:     "Pay with BTC, LTC, ETH, XMR, XRP, BCH and other cryptocurrencies. Powered by CoinGate.",
		ReceiveCurrency: "BTC",
		OrderStatuses:   DefaultStatusMapping(),
	}
}

// AuthToken returns the effective API credential: the dedicated auth token
// when set, the legacy secret otherwise.
func (s *Settings) AuthToken() string {
	if s.APIAuthToken != "" {
		return s.APIAuthToken
	}
	return s.APISecret
}

// clone returns a deep copy.
func (s *Settings) clone() *Settings {
	out := *s
	out.OrderStatuses = s.OrderStatuses.clone()
	return &out
}

// FormField describes one settings-form input for the host admin screen.
type FormField struct {
	Key         string
	Title       string
	Type        string
	Label       string
	Description string
	Default     string
	Options     []string
}

// FormFields returns the admin form layout for the gateway settings screen.
// The order-status mapping renders as one select per remote status.
func FormFields() []FormField {
	fields := []FormField{
		{
			Key:     "enabled",
			Title:   "Enable CoinGate",
			Type:    "checkbox",
			Label:   "Enable cryptocurrency payments via CoinGate",
			Default: "no",
		},
		{
			Key:         "title",
			Title:       "Title",
			Type:        "text",
			Description: "The payment method title which a customer sees at the checkout of your store.",
			Default:     DefaultSettings().Title,
		},
		{
			Key:         "description",
			Title:       "Description",
			Type:        "textarea",
			Description: "The payment method description which a user sees at the checkout of your store.",
			Default:     DefaultSettings().Description,
		},
		{
			Key:         "api_auth_token",
			Title:       "API Auth Token",
			Type:        "text",
			Description: "CoinGate API auth token. Validated against the API on save.",
		},
		{
			Key:         "receive_currency",
			Title:       "Payout Currency",
			Type:        "select",
			Description: "Currency in which payouts are made.",
			Default:     "BTC",
			Options:     ReceiveCurrencies,
		},
		{
			Key:         "test",
			Title:       "Test (Sandbox)",
			Type:        "checkbox",
			Label:       "Enable test mode (sandbox)",
			Default:     "no",
			Description: "Sandbox credentials are separate from live ones.",
		},
	}

	for _, rs := range RemoteStatuses() {
		fields = append(fields, FormField{
			Key:     "order_statuses." + string(rs),
			Title:   rs.Title(),
			Type:    "select",
			Default: DefaultStatusMapping()[rs],
		})
	}
	return fields
}

// SaveOrderStatuses applies the submitted status mapping and persists the
// settings. For each of the six remote statuses, the submitted target is
// kept only when it is StatusIgnore or a status the host recognizes;
// anything else is dropped silently and the previously stored value stands.
func (g *Gateway) SaveOrderStatuses(ctx context.Context, submitted map[RemoteStatus]string) error {
	known := make(map[string]bool)
	for _, s := range g.host.OrderStatuses() {
		known[s] = true
	}

	if g.settings.OrderStatuses == nil {
		g.settings.OrderStatuses = DefaultStatusMapping()
	}
	for _, rs := range RemoteStatuses() {
		target, ok := submitted[rs]
		if !ok {
			continue
		}
		if target == StatusIgnore || known[target] {
			g.settings.OrderStatuses[rs] = target
		}
	}

	return g.repo.Store(ctx, SettingsKey, g.settings)
}

// ValidateAuthToken runs the connectivity test for a submitted token and
// mode. It returns the token when the processor accepts it, and "" with an
// error otherwise so the host can surface the rejection and keep the field
// empty.
func (g *Gateway) ValidateAuthToken(ctx context.Context, token string, test bool) (string, error) {
	if token != "" {
		ok, err := g.tester(ctx, token, test)
		if err != nil {
			g.log.Warn("auth token connectivity test failed", zap.Error(err))
		}
		if err == nil && ok {
			return token, nil
		}
	}
	return "", NewGatewayError(ErrCodeInvalidAuthToken, "API auth token is invalid, changes have not been saved")
}

// SaveSettings replaces the stored settings with s after normalizing the
// status mapping, and keeps the in-memory copy in sync.
func (g *Gateway) SaveSettings(ctx context.Context, s *Settings) error {
	if s.OrderStatuses == nil {
		s.OrderStatuses = DefaultStatusMapping()
	}
	if err := g.repo.Store(ctx, SettingsKey, s); err != nil {
		return err
	}
	g.settings = s.clone()
	return nil
}

// Settings returns a copy of the current gateway settings.
func (g *Gateway) Settings() *Settings {
	return g.settings.clone()
}
