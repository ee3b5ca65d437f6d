package issuance

import "net/http"

// ExpiredRefreshTokenMessage is the body returned when a refresh grant names a
// stored token that has outlived its TTL.
const ExpiredRefreshTokenMessage = "The refresh token has expired."

// TokenResponse is the result of every token request, successful or not.
type TokenResponse struct {
	URI     string // Location of the response, empty when the delegate sets none
	Headers http.Header
	Body    string
	Status  int
}

func errorResponse(uri, body string, status int) TokenResponse {
	return TokenResponse{
		URI:     uri,
		Headers: http.Header{},
		Body:    body,
		Status:  status,
	}
}
