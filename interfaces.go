package coingate

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/commercekit/coingate-gateway/api"
)

// LineItem is one purchasable line of a local order.
type LineItem struct {
	Quantity int
	Name     string
}

// Order is the narrow view of a host order this gateway reads and mutates.
// The order itself is owned by the host commerce system; the gateway only
// touches the status field, the audit trail, and a single metadata key.
type Order interface {
	ID() int64
	OrderKey() string
	Total() decimal.Decimal
	Currency() string
	Status() string
	PaymentMethod() string
	Items() []LineItem

	// Meta returns the value stored under key, or "" when unset.
	Meta(key string) string
	SetMeta(ctx context.Context, key, value string) error

	UpdateStatus(ctx context.Context, status string) error
	PaymentComplete(ctx context.Context) error
	AddNote(ctx context.Context, note string) error
}

// OrderStore resolves local orders by identifier.
type OrderStore interface {
	Order(ctx context.Context, id int64) (Order, error)
}

// Host exposes the storefront capabilities the gateway needs beyond order
// access: URL construction and the set of recognized local order statuses.
type Host interface {
	SiteName() string
	SiteURL() string

	// CancelOrderURL builds the host's signed cancel URL for an unpaid order.
	CancelOrderURL(o Order) string

	// ReturnURL builds the host's post-checkout return URL for an order.
	ReturnURL(o Order) string

	// OrderStatuses returns every local status an order may hold. Submitted
	// mapping targets outside this set are dropped on save.
	OrderStatuses() []string
}

// Mailer dispatches the host's transactional emails. Both triggers fire only
// on recoveries, when a paid callback revives an expired or canceled order.
type Mailer interface {
	CustomerProcessingOrder(ctx context.Context, orderID int64) error
	NewOrder(ctx context.Context, orderID int64) error
}

// SettingsRepository persists gateway settings in the host's generic
// key-value options store.
type SettingsRepository interface {
	Load(ctx context.Context, key string) (*Settings, error)
	Store(ctx context.Context, key string, s *Settings) error
}

// ActionHandler handles one dispatched host action.
type ActionHandler func(ctx context.Context, payload any) error

// Dispatcher is the host's event dispatcher. The gateway registers its
// handlers explicitly instead of relying on process-global hook tables.
type Dispatcher interface {
	RegisterAction(name string, handler ActionHandler)
}

// APIClient is the subset of the processor client the gateway calls during
// checkout and reconciliation.
type APIClient interface {
	CreateOrder(ctx context.Context, req api.CreateOrderRequest) (*api.Order, error)
	GetOrder(ctx context.Context, id int64) (*api.Order, error)
}

// ClientFactory builds an API client for the given credentials. The gateway
// constructs a fresh client per call so credential changes take effect
// without re-registering the gateway.
type ClientFactory func(token string, sandbox bool) APIClient

// ConnectionTester checks whether an auth token is accepted by the
// processor. Used by settings-save validation.
type ConnectionTester func(ctx context.Context, token string, sandbox bool) (bool, error)

// CallbackEvent is one processed (or rejected) inbound notification,
// recorded for auditing.
type CallbackEvent struct {
	OrderID       int64
	RemoteOrderID int64
	RemoteStatus  string
	Outcome       string
}

// CallbackRecorder persists callback events. Recording is best effort; a
// recorder failure never fails the callback itself.
type CallbackRecorder interface {
	Record(ctx context.Context, event CallbackEvent) error
}
