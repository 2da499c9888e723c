package binance

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	traderrors "github.com/ducminhle1904/timed-spot-trader/internal/errors"
)

// APIError is the error body Binance returns on non-2xx responses
type APIError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Common Binance error codes
const (
	ErrCodeUnauthorized     = -1002
	ErrCodeInvalidTimestamp = -1021
	ErrCodeInvalidSignature = -1022
	ErrCodeNewOrderRejected = -2010
	ErrCodeBadAPIKeyFormat  = -2014
	ErrCodeRejectedMbxKey   = -2015
)

// IsAuthenticationCode checks if the code is related to authentication
func IsAuthenticationCode(code int) bool {
	switch code {
	case ErrCodeUnauthorized, ErrCodeInvalidTimestamp, ErrCodeInvalidSignature,
		ErrCodeBadAPIKeyFormat, ErrCodeRejectedMbxKey:
		return true
	}
	return false
}

// ParseAPIError converts a non-2xx response into a categorized error.
// When the body carries a msg field it becomes the error message verbatim;
// otherwise a generic transport description is used.
func ParseAPIError(operation string, status int, body []byte) error {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Msg != "" {
		if IsAuthenticationCode(apiErr.Code) || status == http.StatusUnauthorized {
			return traderrors.NewAuthError(component, operation, apiErr.Msg).
				WithCode(apiErr.Code).
				WithHTTPStatus(status)
		}
		return traderrors.NewRejectedError(component, operation, apiErr.Msg).
			WithCode(apiErr.Code).
			WithHTTPStatus(status)
	}

	description := fmt.Sprintf("HTTP %d %s", status, http.StatusText(status))
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return traderrors.NewAuthError(component, operation, description).WithHTTPStatus(status)
	}
	return traderrors.NewTradeError(traderrors.ErrorCategoryNetwork, component, operation, description).
		WithHTTPStatus(status)
}
