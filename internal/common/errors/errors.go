// Package errors provides standardized error handling for the delivery engine.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeStorageReadFailed  ErrorCode = "STORAGE_READ_FAILED"
	ErrCodeStorageWriteFailed ErrorCode = "STORAGE_WRITE_FAILED"
	ErrCodeStateDecodeFailed  ErrorCode = "STATE_DECODE_FAILED"

	ErrCodeCatalogSourceFailed     ErrorCode = "CATALOG_SOURCE_FAILED"
	ErrCodeCatalogValidationFailed ErrorCode = "CATALOG_VALIDATION_FAILED"
	ErrCodeRecordNotFound          ErrorCode = "RECORD_NOT_FOUND"

	ErrCodeIssueSubmissionFailed    ErrorCode = "ISSUE_SUBMISSION_FAILED"
	ErrCodeIssueSubmissionCancelled ErrorCode = "ISSUE_SUBMISSION_CANCELLED"
	ErrCodeIssueValidationFailed    ErrorCode = "ISSUE_VALIDATION_FAILED"
	ErrCodeInvalidIssueTransition   ErrorCode = "INVALID_ISSUE_TRANSITION"

	ErrCodeEmptyCart              ErrorCode = "EMPTY_CART"
	ErrCodeOrderNotFound          ErrorCode = "ORDER_NOT_FOUND"
	ErrCodeInvalidOrderTransition ErrorCode = "INVALID_ORDER_TRANSITION"
	ErrCodeReceiptEncodingFailed  ErrorCode = "RECEIPT_ENCODING_FAILED"

	ErrCodePromoNotFound    ErrorCode = "PROMO_NOT_FOUND"
	ErrCodePromoInactive    ErrorCode = "PROMO_INACTIVE"
	ErrCodePromoExpired     ErrorCode = "PROMO_EXPIRED"
	ErrCodePromoMinSubtotal ErrorCode = "PROMO_MIN_SUBTOTAL"

	ErrCodePaymentMethodInvalid  ErrorCode = "PAYMENT_METHOD_INVALID"
	ErrCodePaymentMethodNotFound ErrorCode = "PAYMENT_METHOD_NOT_FOUND"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeTokenInvalid       ErrorCode = "TOKEN_INVALID"

	ErrCodeEventPublishFailed ErrorCode = "EVENT_PUBLISH_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewStorageReadFailedError creates a retryable device-storage read error.
func NewStorageReadFailedError(key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorageReadFailed,
		Message:   "Device storage read failed",
		Details:   fmt.Sprintf("key: %s, error: %s", key, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStorageWriteFailedError creates a retryable device-storage write error.
func NewStorageWriteFailedError(key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorageWriteFailed,
		Message:   "Device storage write failed",
		Details:   fmt.Sprintf("key: %s, error: %s", key, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStateDecodeFailedError creates a non-retryable error for a structurally
// incompatible persisted value. There is no migration layer.
func NewStateDecodeFailedError(key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStateDecodeFailed,
		Message:   "Persisted state is not decodable",
		Details:   fmt.Sprintf("key: %s, error: %s", key, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogSourceFailedError creates a retryable catalog backend error.
func NewCatalogSourceFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogSourceFailed,
		Message:   "Catalog source query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogValidationFailedError creates a non-retryable fixture schema error.
func NewCatalogValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogValidationFailed,
		Message:   "Catalog data failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecordNotFoundError creates a non-retryable missing-record error.
func NewRecordNotFoundError(kind, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordNotFound,
		Message:   fmt.Sprintf("%s not found", kind),
		Details:   fmt.Sprintf("id: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewIssueSubmissionFailedError creates a retryable issue gateway error.
func NewIssueSubmissionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIssueSubmissionFailed,
		Message:   "Issue submission failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIssueSubmissionCancelledError creates a non-retryable cancellation error.
func NewIssueSubmissionCancelledError() *StandardError {
	return &StandardError{
		Code:      ErrCodeIssueSubmissionCancelled,
		Message:   "Issue submission cancelled by caller",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewIssueValidationFailedError creates a non-retryable issue input error.
func NewIssueValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIssueValidationFailed,
		Message:   "Issue submission input is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidIssueTransitionError creates a non-retryable lifecycle error.
func NewInvalidIssueTransitionError(from, to string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidIssueTransition,
		Message:   "Issue status transition not allowed",
		Details:   fmt.Sprintf("from: %s, to: %s", from, to),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmptyCartError creates a non-retryable checkout error.
func NewEmptyCartError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyCart,
		Message:   "Cannot check out an empty cart",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOrderNotFoundError creates a non-retryable missing-order error.
func NewOrderNotFoundError(orderID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOrderNotFound,
		Message:   "Order not found",
		Details:   fmt.Sprintf("orderId: %s", orderID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidOrderTransitionError creates a non-retryable lifecycle error.
func NewInvalidOrderTransitionError(from, to string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidOrderTransition,
		Message:   "Order status transition not allowed",
		Details:   fmt.Sprintf("from: %s, to: %s", from, to),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewReceiptEncodingFailedError creates a retryable QR encoding error.
func NewReceiptEncodingFailedError(orderID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReceiptEncodingFailed,
		Message:   "Receipt QR encoding failed",
		Details:   fmt.Sprintf("orderId: %s, error: %s", orderID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPromoNotFoundError creates a non-retryable promo error.
func NewPromoNotFoundError(code string) *StandardError {
	return &StandardError{
		Code:      ErrCodePromoNotFound,
		Message:   "Promo code not recognized",
		Details:   fmt.Sprintf("code: %s", code),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPromoInactiveError creates a non-retryable promo error.
func NewPromoInactiveError(code string) *StandardError {
	return &StandardError{
		Code:      ErrCodePromoInactive,
		Message:   "Promo code is not active",
		Details:   fmt.Sprintf("code: %s", code),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPromoExpiredError creates a non-retryable promo error.
func NewPromoExpiredError(code string) *StandardError {
	return &StandardError{
		Code:      ErrCodePromoExpired,
		Message:   "Promo code has expired",
		Details:   fmt.Sprintf("code: %s", code),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPromoMinSubtotalError creates a non-retryable promo error.
func NewPromoMinSubtotalError(code string, min, subtotal float64) *StandardError {
	return &StandardError{
		Code:      ErrCodePromoMinSubtotal,
		Message:   "Order subtotal below promo minimum",
		Details:   fmt.Sprintf("code: %s, min: %.2f, subtotal: %.2f", code, min, subtotal),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPaymentMethodInvalidError creates a non-retryable payment input error.
func NewPaymentMethodInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodePaymentMethodInvalid,
		Message:   "Payment method data validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPaymentMethodNotFoundError creates a non-retryable missing-method error.
func NewPaymentMethodNotFoundError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodePaymentMethodNotFound,
		Message:   "Payment method not found",
		Details:   fmt.Sprintf("id: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidCredentialsError creates a non-retryable sign-in error. Details
// stay generic so callers cannot probe which field was wrong.
func NewInvalidCredentialsError() *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidCredentials,
		Message:   "Email or password is incorrect",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTokenInvalidError creates a non-retryable session token error.
func NewTokenInvalidError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTokenInvalid,
		Message:   "Session token is invalid or expired",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEventPublishFailedError creates a retryable event sink error.
func NewEventPublishFailedError(eventType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEventPublishFailed,
		Message:   "Event publish failed",
		Details:   fmt.Sprintf("type: %s, error: %s", eventType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeStorageReadFailed,
		ErrCodeStorageWriteFailed,
		ErrCodeCatalogSourceFailed,
		ErrCodeIssueSubmissionFailed,
		ErrCodeReceiptEncodingFailed,
		ErrCodeEventPublishFailed:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "STORAGE") || strings.Contains(codeStr, "STATE"):
		return "STORAGE"
	case strings.Contains(codeStr, "CATALOG") || strings.Contains(codeStr, "RECORD"):
		return "CATALOG"
	case strings.Contains(codeStr, "ISSUE"):
		return "ISSUE"
	case strings.Contains(codeStr, "ORDER") || strings.Contains(codeStr, "CART") || strings.Contains(codeStr, "RECEIPT"):
		return "ORDER"
	case strings.Contains(codeStr, "PROMO"):
		return "PROMO"
	case strings.Contains(codeStr, "PAYMENT"):
		return "PAYMENT"
	case strings.Contains(codeStr, "CREDENTIALS") || strings.Contains(codeStr, "TOKEN"):
		return "AUTH"
	case strings.Contains(codeStr, "EVENT"):
		return "EVENTS"
	default:
		return "OTHER"
	}
}
