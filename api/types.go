package api

import "github.com/shopspring/decimal"

// CreateOrderRequest is the payload for creating a payment order at the
// processor.
type CreateOrderRequest struct {
	OrderID         string          `json:"order_id"`
	PriceAmount     decimal.Decimal `json:"price_amount"`
	PriceCurrency   string          `json:"price_currency"`
	ReceiveCurrency string          `json:"receive_currency"`
	Title           string          `json:"title,omitempty"`
	Description     string          `json:"description,omitempty"`
	CallbackURL     string          `json:"callback_url,omitempty"`
	CancelURL       string          `json:"cancel_url,omitempty"`
	SuccessURL      string          `json:"success_url,omitempty"`
}

// Order is the processor-side payment order. Only the fields the gateway
// consumes are modeled.
type Order struct {
	ID          int64           `json:"id"`
	Token       string          `json:"token"`
	PaymentURL  string          `json:"payment_url"`
	OrderID     string          `json:"order_id"`
	Status      string          `json:"status"`
	PriceAmount decimal.Decimal `json:"price_amount"`

	PriceCurrency   string `json:"price_currency,omitempty"`
	ReceiveCurrency string `json:"receive_currency,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
}
