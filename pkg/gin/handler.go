// Package gin exposes the gateway's HTTP endpoints as Gin handlers: the
// processor-facing payment callback and the shopper-facing checkout entry
// point.
package gin

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	coingate "github.com/commercekit/coingate-gateway"
)

// callbackSchema constrains the inbound notification body. Only the three
// fields the reconciler reads are accepted as input; everything else in the
// payload is ignored.
const callbackSchema = `{
	"type": "object",
	"required": ["order_id", "token", "id"],
	"properties": {
		"order_id": {"type": "integer", "minimum": 1},
		"token": {"type": "string", "minLength": 1},
		"id": {"type": "integer", "minimum": 1}
	}
}`

var callbackSchemaLoader = gojsonschema.NewStringLoader(callbackSchema)

// CallbackHandler returns the handler for the processor's asynchronous
// payment notifications. JSON bodies are validated against the callback
// schema before binding; form bodies bind directly. Validation failures from
// the reconciler map to HTTP statuses by error code.
func CallbackHandler(g *coingate.Gateway, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		var req coingate.CallbackRequest

		if strings.Contains(c.ContentType(), "application/json") {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
				return
			}
			result, err := gojsonschema.Validate(callbackSchemaLoader, gojsonschema.NewBytesLoader(body))
			if err != nil || !result.Valid() {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid callback payload"})
				return
			}
			if err := json.Unmarshal(body, &req); err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid callback payload"})
				return
			}
		} else {
			if err := c.ShouldBind(&req); err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid callback payload"})
				return
			}
		}

		if err := g.PaymentCallback(c.Request.Context(), req); err != nil {
			log.Warn("payment callback rejected",
				zap.Int64("order_id", req.OrderID),
				zap.Error(err))
			c.AbortWithStatusJSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}

		c.Status(http.StatusOK)
	}
}

// CheckoutHandler returns the handler that initiates a checkout for the
// order named in the URL and responds with the redirect contract.
func CheckoutHandler(g *coingate.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params struct {
			OrderID int64 `uri:"order_id" binding:"required"`
		}
		if err := c.ShouldBindUri(&params); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}

		result := g.ProcessPayment(c.Request.Context(), params.OrderID)
		if result.Result != coingate.ResultSuccess {
			c.JSON(http.StatusBadGateway, result)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// RegisterRoutes mounts the gateway endpoints on the router: the callback
// endpoint at its well-known path and the checkout endpoint under
// /payments/coingate.
func RegisterRoutes(r gin.IRouter, g *coingate.Gateway, log *zap.Logger) {
	r.POST(coingate.CallbackPath, CallbackHandler(g, log))
	r.POST("/payments/coingate/checkout/:order_id", CheckoutHandler(g))
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
