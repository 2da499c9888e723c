package bybit

import (
	"fmt"

	traderrors "github.com/ducminhle1904/timed-spot-trader/internal/errors"
)

// Common Bybit retCodes
const (
	ErrCodeInvalidAPIKey       = 10003
	ErrCodeInvalidSignature    = 10004
	ErrCodePermissionDenied    = 10005
	ErrCodeUnmatchedIP         = 10010
	ErrCodeAPIKeyExpired       = 33004
	ErrCodeInsufficientBalance = 170131
	ErrCodeOrderPriceTooHigh   = 170134
)

// IsAuthenticationCode checks if the retCode is related to authentication
func IsAuthenticationCode(code int) bool {
	switch code {
	case ErrCodeInvalidAPIKey, ErrCodeInvalidSignature, ErrCodePermissionDenied,
		ErrCodeUnmatchedIP, ErrCodeAPIKeyExpired:
		return true
	}
	return false
}

// ParseAPIError converts a non-zero retCode into a categorized error.
// retMsg is surfaced verbatim; an empty retMsg falls back to the code.
func ParseAPIError(operation string, retCode int, retMsg string) error {
	if retCode == 0 {
		return nil
	}

	message := retMsg
	if message == "" {
		message = fmt.Sprintf("Bybit error code %d", retCode)
	}

	if IsAuthenticationCode(retCode) {
		return traderrors.NewAuthError(component, operation, message).WithCode(retCode)
	}
	return traderrors.NewRejectedError(component, operation, message).WithCode(retCode)
}
