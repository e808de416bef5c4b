// Package echo exposes the gateway's HTTP endpoints as Echo handlers,
// mirroring the Gin adapter for hosts built on Echo.
package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	coingate "github.com/commercekit/coingate-gateway"
)

// CallbackHandler returns the handler for the processor's asynchronous
// payment notifications.
func CallbackHandler(g *coingate.Gateway, log *zap.Logger) echo.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c echo.Context) error {
		var req coingate.CallbackRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid callback payload")
		}

		if err := g.PaymentCallback(c.Request().Context(), req); err != nil {
			log.Warn("payment callback rejected",
				zap.Int64("order_id", req.OrderID),
				zap.Error(err))
			return echo.NewHTTPError(statusForError(err), err.Error())
		}

		return c.NoContent(http.StatusOK)
	}
}

// CheckoutHandler returns the handler that initiates a checkout for the
// order named in the URL and responds with the redirect contract.
func CheckoutHandler(g *coingate.Gateway) echo.HandlerFunc {
	return func(c echo.Context) error {
		var params struct {
			OrderID int64 `param:"order_id"`
		}
		if err := c.Bind(&params); err != nil || params.OrderID == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
		}

		result := g.ProcessPayment(c.Request().Context(), params.OrderID)
		if result.Result != coingate.ResultSuccess {
			return c.JSON(http.StatusBadGateway, result)
		}
		return c.JSON(http.StatusOK, result)
	}
}

// RegisterRoutes mounts the gateway endpoints on the router.
func RegisterRoutes(e *echo.Echo, g *coingate.Gateway, log *zap.Logger) {
	e.POST(coingate.CallbackPath, CallbackHandler(g, log))
	e.POST("/payments/coingate/checkout/:order_id", CheckoutHandler(g))
}

// statusForError maps gateway error codes to HTTP response codes.
func statusForError(err error) int {
	switch coingate.ErrorCode(err) {
	case coingate.ErrCodeOrderNotFound:
		return http.StatusNotFound
	case coingate.ErrCodeTokenMismatch:
		return http.StatusUnauthorized
	case coingate.ErrCodeMethodMismatch,
		coingate.ErrCodeRemoteOrderMismatch,
		coingate.ErrCodeAmountMismatch:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
