package coingate

import (
	"errors"
	"fmt"
)

// GatewayError represents a gateway-specific processing error
type GatewayError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Common error codes
const (
	ErrCodeOrderNotFound       = "order_not_found"
	ErrCodeTokenMismatch       = "token_mismatch"
	ErrCodeMethodMismatch      = "payment_method_mismatch"
	ErrCodeRemoteOrderMismatch = "remote_order_mismatch"
	ErrCodeAmountMismatch      = "amount_mismatch"
	ErrCodeInvalidAuthToken    = "invalid_auth_token"
)

// NewGatewayError creates a new gateway error
func NewGatewayError(code, message string) *GatewayError {
	return &GatewayError{
		Code:    code,
		Message: message,
	}
}

// ErrorCode extracts the gateway error code from err, or "" if err is not a
// GatewayError.
func ErrorCode(err error) string {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}
