// Package gormstore persists gateway settings and callback audit events in
// a relational database through GORM.
package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	coingate "github.com/commercekit/coingate-gateway"
)

// SettingsRecord is one settings document, keyed by the gateway settings
// key. The whole settings struct, including the nested status mapping, is
// stored as a single JSON document so the schema follows the Go type.
type SettingsRecord struct {
	Key       string         `gorm:"primaryKey;size:128"`
	Document  datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName keeps the table under the gateway's own prefix.
func (SettingsRecord) TableName() string { return "coingate_settings" }

// CallbackRecord is one inbound payment notification and its outcome.
type CallbackRecord struct {
	ID            string `gorm:"primaryKey;size:36"`
	OrderID       int64  `gorm:"index"`
	RemoteOrderID int64
	RemoteStatus  string `gorm:"size:32"`
	Outcome       string `gorm:"size:512"`
	CreatedAt     time.Time
}

// TableName keeps the table under the gateway's own prefix.
func (CallbackRecord) TableName() string { return "coingate_callback_events" }

// Store backs the gateway's SettingsRepository and CallbackRecorder
// contracts with a GORM database.
type Store struct {
	db *gorm.DB
}

// New creates a store on db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the store's tables.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&SettingsRecord{}, &CallbackRecord{})
}

// Load returns the settings stored under key, or nil when no row exists.
func (s *Store) Load(ctx context.Context, key string) (*coingate.Settings, error) {
	var record SettingsRecord
	err := s.db.WithContext(ctx).First(&record, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load settings %q: %w", key, err)
	}

	var settings coingate.Settings
	if err := json.Unmarshal(record.Document, &settings); err != nil {
		return nil, fmt.Errorf("decode settings %q: %w", key, err)
	}
	return &settings, nil
}

// Store upserts the settings document under key.
func (s *Store) Store(ctx context.Context, key string, settings *coingate.Settings) error {
	doc, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings %q: %w", key, err)
	}

	record := SettingsRecord{Key: key, Document: doc}
	err = s.db.WithContext(ctx).Save(&record).Error
	if err != nil {
		return fmt.Errorf("store settings %q: %w", key, err)
	}
	return nil
}

// Record appends one callback event to the audit log.
func (s *Store) Record(ctx context.Context, event coingate.CallbackEvent) error {
	record := CallbackRecord{
		ID:            uuid.NewString(),
		OrderID:       event.OrderID,
		RemoteOrderID: event.RemoteOrderID,
		RemoteStatus:  event.RemoteStatus,
		Outcome:       event.Outcome,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("record callback event: %w", err)
	}
	return nil
}

// Events returns the audit trail for one local order, newest first.
func (s *Store) Events(ctx context.Context, orderID int64) ([]CallbackRecord, error) {
	var records []CallbackRecord
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list callback events: %w", err)
	}
	return records, nil
}

var (
	_ coingate.SettingsRepository = (*Store)(nil)
	_ coingate.CallbackRecorder   = (*Store)(nil)
)
