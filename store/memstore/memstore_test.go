package memstore

import (
	"context"
	"testing"

	coingate "github.com/commercekit/coingate-gateway"
)

func TestSettingsRepository(t *testing.T) {
	repo := NewSettingsRepository()
	ctx := context.Background()

	loaded, err := repo.Load(ctx, coingate.SettingsKey)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if loaded != nil {
		t.Fatal("Expected nil for missing settings")
	}

	settings := coingate.DefaultSettings()
	settings.APIAuthToken = "secret"
	if err := repo.Store(ctx, coingate.SettingsKey, settings); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	loaded, err = repo.Load(ctx, coingate.SettingsKey)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if loaded == nil || loaded.APIAuthToken != "secret" {
		t.Fatalf("Round trip lost settings: %+v", loaded)
	}

	// Mutating the caller's struct after Store must not leak into the repo.
	settings.APIAuthToken = "changed"
	loaded, _ = repo.Load(ctx, coingate.SettingsKey)
	if loaded.APIAuthToken != "secret" {
		t.Error("Stored settings must be isolated from caller mutation")
	}
}

func TestOrderStore(t *testing.T) {
	store := NewOrderStore()
	ctx := context.Background()

	o, err := store.Order(ctx, 1)
	if err != nil || o != nil {
		t.Fatalf("Expected nil, nil for unknown order, got %v, %v", o, err)
	}

	store.Put(&Order{OrderID: 1, State: "pending"})

	o, err = store.Order(ctx, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if o == nil || o.ID() != 1 {
		t.Fatal("Expected stored order back")
	}

	if err := o.UpdateStatus(ctx, "processing"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if o.Status() != "processing" {
		t.Errorf("Expected processing, got %q", o.Status())
	}

	if err := o.SetMeta(ctx, coingate.OrderTokenMetaKey, "tok"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if o.Meta(coingate.OrderTokenMetaKey) != "tok" {
		t.Error("Expected metadata round trip")
	}
}
