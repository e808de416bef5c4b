// Package memstore provides in-memory implementations of the gateway's
// storage contracts.
//
// Suitable for tests and single-instance deployments where state doesn't
// need to survive restarts. Production hosts back these interfaces with
// their own storage (see store/gormstore for a database-backed settings
// repository).
package memstore

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	coingate "github.com/commercekit/coingate-gateway"
)

// ============================================================================
// Settings repository
// ============================================================================

// SettingsRepository is a thread-safe in-memory settings store.
type SettingsRepository struct {
	mu       sync.Mutex
	settings map[string]*coingate.Settings
}

// NewSettingsRepository creates an empty in-memory settings repository.
func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{
		settings: make(map[string]*coingate.Settings),
	}
}

// Load returns the settings stored under key, or nil when nothing has been
// stored yet.
func (r *SettingsRepository) Load(_ context.Context, key string) (*coingate.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.settings[key]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

// Store persists the settings under key.
func (r *SettingsRepository) Store(_ context.Context, key string, s *coingate.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *s
	r.settings[key] = &copied
	return nil
}

// ============================================================================
// Order store
// ============================================================================

// Order is an in-memory order satisfying the gateway's Order contract.
// Mutating calls are recorded so tests and examples can observe the
// gateway's side effects.
type Order struct {
	mu sync.Mutex

	OrderID  int64
	Key      string
	Amount   decimal.Decimal
	Curr     string
	State    string
	Method   string
	Lines    []coingate.LineItem
	Metadata map[string]string

	Notes []string
	Paid  bool
}

func (o *Order) ID() int64                  { return o.OrderID }
func (o *Order) OrderKey() string           { return o.Key }
func (o *Order) Total() decimal.Decimal     { return o.Amount }
func (o *Order) Currency() string           { return o.Curr }
func (o *Order) PaymentMethod() string      { return o.Method }
func (o *Order) Items() []coingate.LineItem { return o.Lines }

func (o *Order) Status() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.State
}

func (o *Order) Meta(key string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Metadata[key]
}

func (o *Order) SetMeta(_ context.Context, key, value string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Metadata == nil {
		o.Metadata = make(map[string]string)
	}
	o.Metadata[key] = value
	return nil
}

func (o *Order) UpdateStatus(_ context.Context, status string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.State = status
	return nil
}

func (o *Order) PaymentComplete(_ context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Paid = true
	return nil
}

func (o *Order) AddNote(_ context.Context, note string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Notes = append(o.Notes, note)
	return nil
}

// OrderStore is a thread-safe in-memory order store.
type OrderStore struct {
	mu     sync.Mutex
	orders map[int64]*Order
}

// NewOrderStore creates an empty in-memory order store.
func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[int64]*Order)}
}

// Put adds or replaces an order.
func (s *OrderStore) Put(o *Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.OrderID] = o
}

// Order resolves an order by id. Unknown ids return a nil order with no
// error, matching hosts that report absence rather than failure.
func (s *OrderStore) Order(_ context.Context, id int64) (coingate.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	return o, nil
}

var (
	_ coingate.SettingsRepository = (*SettingsRepository)(nil)
	_ coingate.OrderStore         = (*OrderStore)(nil)
	_ coingate.Order              = (*Order)(nil)
)
