package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"strings"
)

// ErrorCategory represents the kind of failure an operation hit
type ErrorCategory string

const (
	// Caller-side problems: malformed time, non-numeric quantity, missing field
	ErrorCategoryInvalidInput  ErrorCategory = "INVALID_INPUT"
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"

	// Exchange-side problems
	ErrorCategoryAuth     ErrorCategory = "AUTH"
	ErrorCategoryRejected ErrorCategory = "REJECTED"

	// Transport problems: connectivity, timeouts, bodies that are not JSON
	ErrorCategoryNetwork ErrorCategory = "NETWORK"
	ErrorCategoryParse   ErrorCategory = "PARSE"
)

// TradeError represents a categorized error with context.
// Message is what the user sees; for rejected orders it is the exchange text verbatim.
type TradeError struct {
	Category   ErrorCategory
	Component  string
	Operation  string
	Message    string
	Code       int
	HTTPStatus int
	Underlying error
}

// Error implements the error interface
func (e *TradeError) Error() string {
	if e.Underlying != nil && e.Underlying.Error() != e.Message {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Category, e.Component, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Component, e.Operation, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *TradeError) Unwrap() error {
	return e.Underlying
}

// IsFatal returns whether the process should stop instead of returning to the prompt
func (e *TradeError) IsFatal() bool {
	return e.Category == ErrorCategoryConfiguration
}

// WithCode records the exchange error code
func (e *TradeError) WithCode(code int) *TradeError {
	e.Code = code
	return e
}

// WithHTTPStatus records the HTTP status of the failed response
func (e *TradeError) WithHTTPStatus(status int) *TradeError {
	e.HTTPStatus = status
	return e
}

// NewTradeError creates a new categorized error
func NewTradeError(category ErrorCategory, component, operation, message string) *TradeError {
	return &TradeError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
	}
}

// WrapError wraps an existing error with trade error context
func WrapError(err error, category ErrorCategory, component, operation string) *TradeError {
	if err == nil {
		return nil
	}

	return &TradeError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    err.Error(),
		Underlying: err,
	}
}

// CategorizeError turns an arbitrary error into a TradeError.
// Errors that already carry a category are returned untouched.
func CategorizeError(err error, component, operation string) *TradeError {
	if err == nil {
		return nil
	}

	var tradeErr *TradeError
	if stderrors.As(err, &tradeErr) {
		return tradeErr
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return &TradeError{
			Category:   ErrorCategoryNetwork,
			Component:  component,
			Operation:  operation,
			Message:    "request timed out",
			Underlying: err,
		}
	}
	if stderrors.Is(err, context.Canceled) {
		return &TradeError{
			Category:   ErrorCategoryNetwork,
			Component:  component,
			Operation:  operation,
			Message:    "request cancelled",
			Underlying: err,
		}
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		if netErr.Timeout() {
			return &TradeError{
				Category:   ErrorCategoryNetwork,
				Component:  component,
				Operation:  operation,
				Message:    "request timed out",
				Underlying: err,
			}
		}
		return WrapError(err, ErrorCategoryNetwork, component, operation)
	}

	errMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errMsg, "api key") || strings.Contains(errMsg, "signature") ||
		strings.Contains(errMsg, "unauthorized"):
		return WrapError(err, ErrorCategoryAuth, component, operation)
	case strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "dial") ||
		strings.Contains(errMsg, "dns") || strings.Contains(errMsg, "eof"):
		return WrapError(err, ErrorCategoryNetwork, component, operation)
	}

	return WrapError(err, ErrorCategoryNetwork, component, operation)
}

// CategoryOf returns the category carried by err, or "" when err is not a TradeError
func CategoryOf(err error) ErrorCategory {
	var tradeErr *TradeError
	if stderrors.As(err, &tradeErr) {
		return tradeErr.Category
	}
	return ""
}

// Is reports whether err is a TradeError of the given category
func Is(err error, category ErrorCategory) bool {
	return err != nil && CategoryOf(err) == category
}

// UserMessage returns the text that should be shown to the user for err
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var tradeErr *TradeError
	if stderrors.As(err, &tradeErr) && tradeErr.Message != "" {
		return tradeErr.Message
	}
	return err.Error()
}

// Common error constructors
func NewInvalidInputError(component, operation, message string) *TradeError {
	return NewTradeError(ErrorCategoryInvalidInput, component, operation, message)
}

func NewConfigurationError(component, operation, message string) *TradeError {
	return NewTradeError(ErrorCategoryConfiguration, component, operation, message)
}

func NewAuthError(component, operation, message string) *TradeError {
	return NewTradeError(ErrorCategoryAuth, component, operation, message)
}

func NewRejectedError(component, operation, message string) *TradeError {
	return NewTradeError(ErrorCategoryRejected, component, operation, message)
}

func NewNetworkError(component, operation string, err error) *TradeError {
	return CategorizeNetwork(err, component, operation)
}

func NewParseError(component, operation string, err error) *TradeError {
	return &TradeError{
		Category:   ErrorCategoryParse,
		Component:  component,
		Operation:  operation,
		Message:    "malformed response body",
		Underlying: err,
	}
}

// CategorizeNetwork is CategorizeError restricted to transport failures:
// the result is always NETWORK, with a friendlier message for timeouts and cancellation.
func CategorizeNetwork(err error, component, operation string) *TradeError {
	if err == nil {
		return nil
	}
	tradeErr := CategorizeError(err, component, operation)
	if tradeErr.Category != ErrorCategoryNetwork && tradeErr.Underlying == err {
		tradeErr.Category = ErrorCategoryNetwork
	}
	return tradeErr
}
