package transport

import (
	"errors"
	"fmt"
)

// ErrTokenAbsent is returned when no bearer token is stored for the origin.
var ErrTokenAbsent = errors.New("no stored access token")

// ValidationError blocks a submission before it reaches the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CredentialError is a non-2xx answer from the authorization server.
type CredentialError struct {
	Op          string // "authorize", "login", ...
	StatusCode  int
	ErrorCode   string // RFC 6749 "error"
	Description string // "error_description" or server message
	URI         string // "error_uri"
	RawBody     string
}

func (e *CredentialError) Error() string {
	msg := fmt.Sprintf("%s: server returned status %d", e.Op, e.StatusCode)
	if e.ErrorCode != "" {
		msg += ": " + e.ErrorCode
	}
	if e.Description != "" {
		msg += ": " + e.Description
	}
	return msg
}

// NetworkError is a transport failure before any HTTP status was received.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// TokenAbsentError ends the current page and sends the user to the login page.
// Reason is ErrTokenAbsent or the failure of the request that used the token.
type TokenAbsentError struct {
	Reason error
}

func (e *TokenAbsentError) Error() string {
	return "token unusable: " + e.Reason.Error()
}

func (e *TokenAbsentError) Unwrap() error {
	return e.Reason
}

// IsRecoverable reports whether err is a credential or network failure, the
// two failures a user can retry by starting the flow over.
func IsRecoverable(err error) bool {
	var credErr *CredentialError
	var netErr *NetworkError
	return errors.As(err, &credErr) || errors.As(err, &netErr)
}
