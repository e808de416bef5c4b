package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewClient(t *testing.T) {
	// Test with default config
	client := NewClient(nil)
	if client == nil {
		t.Fatal("Expected client to be created")
	}
	if client.baseURL != LiveBaseURL {
		t.Errorf("Expected live base URL, got %s", client.baseURL)
	}

	// Sandbox mode
	client = NewClient(&Config{Sandbox: true})
	if client.baseURL != SandboxBaseURL {
		t.Errorf("Expected sandbox base URL, got %s", client.baseURL)
	}

	// Explicit override
	client = NewClient(&Config{BaseURL: "https://proxy.example", Sandbox: true})
	if client.baseURL != "https://proxy.example" {
		t.Errorf("Expected override to win, got %s", client.baseURL)
	}
}

func TestClientCreateOrder(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders" {
			t.Errorf("Expected path /orders, got %s", r.URL.Path)
		}
		if r.Method != "POST" {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.Header.Get("Authorization") != "Token secret" {
			t.Errorf("Expected token auth header, got %q", r.Header.Get("Authorization"))
		}

		var requestBody map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if requestBody["order_id"] != "1" {
			t.Errorf("Expected order_id 1, got %v", requestBody["order_id"])
		}
		if requestBody["receive_currency"] != "EUR" {
			t.Errorf("Expected receive_currency EUR, got %v", requestBody["receive_currency"])
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":          9000,
			"token":       "invoice-token",
			"payment_url": "https://pay.example/invoice/abc",
			"order_id":    "1",
			"status":      "new",
		})
	}))
	defer server.Close()

	client := NewClient(&Config{Token: "secret", BaseURL: server.URL})

	order, err := client.CreateOrder(ctx, CreateOrderRequest{
		OrderID:         "1",
		PriceAmount:     decimal.RequireFromString("100.00"),
		PriceCurrency:   "USD",
		ReceiveCurrency: "EUR",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if order.ID != 9000 {
		t.Errorf("Expected order id 9000, got %d", order.ID)
	}
	if order.Token != "invoice-token" {
		t.Errorf("Expected invoice token, got %q", order.Token)
	}
	if order.PaymentURL != "https://pay.example/invoice/abc" {
		t.Errorf("Expected payment URL, got %q", order.PaymentURL)
	}
}

func TestClientGetOrder(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/9000" {
			t.Errorf("Expected path /orders/9000, got %s", r.URL.Path)
		}
		if r.Method != "GET" {
			t.Errorf("Expected GET, got %s", r.Method)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":           9000,
			"order_id":     "1",
			"status":       "paid",
			"price_amount": "100.00",
		})
	}))
	defer server.Close()

	client := NewClient(&Config{Token: "secret", BaseURL: server.URL})

	order, err := client.GetOrder(ctx, 9000)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if order.Status != "paid" {
		t.Errorf("Expected status paid, got %q", order.Status)
	}
	if !order.PriceAmount.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("Expected amount 100.00, got %s", order.PriceAmount)
	}
}

func TestClientAPIError(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"reason":  "OrderNotFound",
			"message": "Order does not exist",
		})
	}))
	defer server.Close()

	client := NewClient(&Config{Token: "secret", BaseURL: server.URL})

	_, err := client.GetOrder(ctx, 1)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", apiErr.Status)
	}
	if apiErr.Reason != "OrderNotFound" {
		t.Errorf("Expected reason from body, got %q", apiErr.Reason)
	}
}

func TestClientTestConnection(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		statusCode int
		want       bool
		wantErr    bool
	}{
		{"accepted", http.StatusOK, true, false},
		{"rejected", http.StatusUnauthorized, false, false},
		{"unexpected", http.StatusBadGateway, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/auth/test" {
					t.Errorf("Expected path /auth/test, got %s", r.URL.Path)
				}
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			client := NewClient(&Config{Token: "t", BaseURL: server.URL})

			ok, err := client.TestConnection(ctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unexpected error state: %v", err)
			}
			if ok != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, ok)
			}
		})
	}
}
