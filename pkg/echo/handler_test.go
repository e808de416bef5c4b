package echo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coingate "github.com/commercekit/coingate-gateway"
	"github.com/commercekit/coingate-gateway/api"
	"github.com/commercekit/coingate-gateway/store/memstore"
)

type fakeHost struct{}

func (fakeHost) SiteName() string                       { return "Demo Store" }
func (fakeHost) SiteURL() string                        { return "https://shop.example" }
func (fakeHost) CancelOrderURL(o coingate.Order) string { return "https://shop.example/cancel" }
func (fakeHost) ReturnURL(o coingate.Order) string      { return "https://shop.example/thanks" }
func (fakeHost) OrderStatuses() []string                { return []string{"pending", "processing"} }

type fakeMailer struct{}

func (fakeMailer) CustomerProcessingOrder(context.Context, int64) error { return nil }
func (fakeMailer) NewOrder(context.Context, int64) error                { return nil }

type fakeAPIClient struct {
	remote *api.Order
}

func (c *fakeAPIClient) CreateOrder(_ context.Context, _ api.CreateOrderRequest) (*api.Order, error) {
	return &api.Order{ID: 9000, Token: "tok", PaymentURL: "https://pay.example/tok"}, nil
}

func (c *fakeAPIClient) GetOrder(_ context.Context, _ int64) (*api.Order, error) {
	if c.remote == nil {
		return nil, &api.APIError{Status: 404, Message: "not found"}
	}
	return c.remote, nil
}

func newTestServer(t *testing.T, client *fakeAPIClient) (*echo.Echo, *memstore.Order) {
	t.Helper()

	order := &memstore.Order{
		OrderID:  1,
		Key:      "wc_order_abc",
		Amount:   decimal.RequireFromString("100.00"),
		Curr:     "USD",
		State:    "pending",
		Method:   coingate.GatewayID,
		Metadata: map[string]string{coingate.OrderTokenMetaKey: "xyz"},
	}
	orders := memstore.NewOrderStore()
	orders.Put(order)

	g, err := coingate.NewGateway(context.Background(), coingate.Config{
		Orders:   orders,
		Host:     fakeHost{},
		Mailer:   fakeMailer{},
		Settings: memstore.NewSettingsRepository(),
		ClientFactory: func(_ string, _ bool) coingate.APIClient {
			return client
		},
	})
	require.NoError(t, err)

	e := echo.New()
	RegisterRoutes(e, g, nil)
	return e, order
}

func TestCallbackHandler(t *testing.T) {
	client := &fakeAPIClient{remote: &api.Order{
		ID:          9000,
		OrderID:     "1",
		Status:      "paid",
		PriceAmount: decimal.RequireFromString("100.00"),
	}}
	e, order := newTestServer(t, client)

	body := `{"order_id": 1, "token": "xyz", "id": 9000}`
	req := httptest.NewRequest("POST", coingate.CallbackPath, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "processing", order.Status())
	assert.True(t, order.Paid)
}

func TestCallbackHandlerTokenMismatch(t *testing.T) {
	e, order := newTestServer(t, &fakeAPIClient{})

	body := `{"order_id": 1, "token": "wrong", "id": 9000}`
	req := httptest.NewRequest("POST", coingate.CallbackPath, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "pending", order.Status())
}

func TestCheckoutHandler(t *testing.T) {
	e, order := newTestServer(t, &fakeAPIClient{})

	req := httptest.NewRequest("POST", "/payments/coingate/checkout/1", nil)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"result":"success"`)
	assert.Equal(t, "tok", order.Meta(coingate.OrderTokenMetaKey))
}
