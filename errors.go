package x402

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredentials is returned when facilitator API credentials are not configured.
	// It is a configuration error and is never worth retrying.
	ErrMissingCredentials = errors.New("x402: missing credentials: CDP_API_KEY_ID and CDP_API_KEY_SECRET must be set")

	// ErrSigningFailed wraps failures of the local token signer
	ErrSigningFailed = errors.New("x402: failed to sign facilitator token")

	// ErrNotTranslatable marks a payment-required body that cannot be rewritten
	ErrNotTranslatable = errors.New("x402: payment required body is not translatable")
)

// PaymentError represents a payment-specific error reported by a facilitator
type PaymentError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Common error codes
const (
	ErrCodeInvalidResponse  = "invalid_response"
	ErrCodeSettlementFailed = "settlement_failed"
)

// NewPaymentError creates a new payment error
func NewPaymentError(code, message string, details map[string]interface{}) *PaymentError {
	return &PaymentError{
		Code:    code,
		Message: message,
		Details: details,
	}
}
