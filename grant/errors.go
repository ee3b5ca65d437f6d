package grant

import (
	"errors"
	"net/http"

	oauthErrors "github.com/go-oauth2/oauth2/v4/errors"
	"github.com/jrsteele09/go-token-server/issuance"
)

// statusCodes follows RFC 6749 section 5.2; codes not listed are 400.
var statusCodes = map[string]int{
	"invalid_client":          http.StatusUnauthorized,
	"access_denied":           http.StatusForbidden,
	"server_error":            http.StatusInternalServerError,
	"temporarily_unavailable": http.StatusServiceUnavailable,
}

// grantErrors are manager errors the server normally reports as invalid_grant.
var grantErrors = []error{
	oauthErrors.ErrInvalidRefreshToken,
	oauthErrors.ErrExpiredRefreshToken,
	oauthErrors.ErrInvalidAccessToken,
	oauthErrors.ErrExpiredAccessToken,
	oauthErrors.ErrInvalidAuthorizeCode,
}

func statusFor(code string) int {
	if s, ok := statusCodes[code]; ok {
		return s
	}
	return http.StatusBadRequest
}

// classify turns go-oauth2 errors into issuance errors. Errors go-oauth2 does
// not describe are returned as is.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, oauthErrors.ErrAccessDenied) {
		return &issuance.AccessDeniedError{
			Description: oauthErrors.Descriptions[oauthErrors.ErrAccessDenied],
			StatusCode:  http.StatusForbidden,
			Err:         err,
		}
	}
	for _, ge := range grantErrors {
		if errors.Is(err, ge) {
			return protocolError(oauthErrors.ErrInvalidGrant, err)
		}
	}
	for known := range oauthErrors.Descriptions {
		if errors.Is(err, known) {
			return protocolError(known, err)
		}
	}
	return err
}

func protocolError(known, cause error) *issuance.ProtocolError {
	code := known.Error()
	return &issuance.ProtocolError{
		Code:        code,
		Description: oauthErrors.Descriptions[known],
		StatusCode:  statusFor(code),
		Err:         cause,
	}
}
