package coingate

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/commercekit/coingate-gateway/api"
)

// Checkout result indicators.
const (
	ResultSuccess = "success"
	ResultFail    = "fail"
)

// CheckoutResult is the outcome of a checkout attempt. On success, Redirect
// points at the processor's hosted payment page.
type CheckoutResult struct {
	Result   string `json:"result"`
	Redirect string `json:"redirect,omitempty"`
}

// ProcessPayment creates a remote payment order for the given local order
// and returns the redirect outcome. API failures are logged and degrade to a
// fail result so the shopper sees a payment-failed message instead of a
// crash; the shopper re-attempts checkout, which creates a new remote order
// and overwrites the stored token.
func (g *Gateway) ProcessPayment(ctx context.Context, orderID int64) *CheckoutResult {
	fail := &CheckoutResult{Result: ResultFail}

	order, err := g.orders.Order(ctx, orderID)
	if err != nil || order == nil {
		g.log.Error("checkout: order lookup failed",
			zap.Int64("order_id", orderID),
			zap.Error(err))
		return fail
	}

	req := api.CreateOrderRequest{
		OrderID:         strconv.FormatInt(order.ID(), 10),
		PriceAmount:     order.Total(),
		PriceCurrency:   order.Currency(),
		ReceiveCurrency: g.settings.ReceiveCurrency,
		CallbackURL:     strings.TrimRight(g.host.SiteURL(), "/") + CallbackPath,
		CancelURL:       g.host.CancelOrderURL(order),
		SuccessURL:      successURL(g.host.ReturnURL(order), order),
		Title:           fmt.Sprintf("%s Order #%d", g.host.SiteName(), order.ID()),
		Description:     orderDescription(order),
	}

	remote, err := g.client().CreateOrder(ctx, req)
	if err != nil {
		g.log.Error("checkout: create order failed",
			zap.Int64("order_id", orderID),
			zap.Error(err))
		return fail
	}

	if err := order.SetMeta(ctx, OrderTokenMetaKey, remote.Token); err != nil {
		g.log.Error("checkout: failed to store order token",
			zap.Int64("order_id", orderID),
			zap.Error(err))
		return fail
	}

	return &CheckoutResult{
		Result:   ResultSuccess,
		Redirect: remote.PaymentURL,
	}
}

// orderDescription concatenates "qty × name" for every line item.
func orderDescription(order Order) string {
	parts := make([]string, 0, len(order.Items()))
	for _, item := range order.Items() {
		parts = append(parts, fmt.Sprintf("%d × %s", item.Quantity, item.Name))
	}
	return strings.Join(parts, ", ")
}

// successURL augments the host return URL with the order id and order key.
func successURL(returnURL string, order Order) string {
	u, err := url.Parse(returnURL)
	if err != nil {
		return returnURL
	}
	q := u.Query()
	q.Set("order-received", strconv.FormatInt(order.ID(), 10))
	q.Set("key", order.OrderKey())
	u.RawQuery = q.Encode()
	return u.String()
}
