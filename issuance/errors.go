package issuance

import (
	"fmt"
	"net/http"

	apperrors "github.com/jrsteele09/go-token-server/internal/errors"
)

// ProtocolError is an OAuth2 error raised by the grant delegate, e.g.
// invalid_grant or invalid_client. StatusCode is the status the delegate
// wants the caller to see.
type ProtocolError struct {
	Code        string
	Description string
	StatusCode  int
	Err         error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("(%s) %s", e.Code, e.Description)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// AccessDeniedError is raised when the resource owner or the server refuses
// the grant. It is always answered with 403, whatever StatusCode says.
type AccessDeniedError struct {
	Description string
	StatusCode  int
	Err         error
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("(access_denied) %s", e.Description)
}

func (e *AccessDeniedError) Unwrap() error { return e.Err }

// TranslateError converts a delegate error into a TokenResponse. Errors that
// are neither access-denied nor protocol errors are returned unchanged for
// the caller to handle.
func TranslateError(uri string, err error) (TokenResponse, error) {
	var denied *AccessDeniedError
	if apperrors.As(err, &denied) {
		return errorResponse(uri, denied.Error(), http.StatusForbidden), nil
	}
	var pe *ProtocolError
	if apperrors.As(err, &pe) {
		return errorResponse(uri, pe.Error(), pe.StatusCode), nil
	}
	return TokenResponse{}, err
}
