package qbit

import (
	"errors"
	"fmt"
)

// Error types used to classify client failures.
const (
	ErrTypeAuthentication     = "Authentication"
	ErrTypeBanned             = "Banned"
	ErrTypeBadCredentials     = "BadCredentials"
	ErrTypeMissingCredentials = "MissingCredentials"
	ErrTypeBadStatus          = "BadStatus"
	ErrTypeInvalidURL         = "InvalidURL"
)

// ClientError is the base error type for qBittorrent client errors.
type ClientError struct {
	Type    string
	Message string
}

// Error implements the error interface
func (e *ClientError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// NewAuthenticationError creates an error for requests rejected with 403.
func NewAuthenticationError(op string) error {
	return &ClientError{
		Type:    ErrTypeAuthentication,
		Message: fmt.Sprintf("no permission to %s, session may have expired", op),
	}
}

// NewBannedError creates an error for login attempts from a banned IP.
func NewBannedError() error {
	return &ClientError{
		Type:    ErrTypeBanned,
		Message: "this IP is banned for too many failed login attempts",
	}
}

// NewBadCredentialsError creates an error for rejected credentials.
func NewBadCredentialsError(username string) error {
	return &ClientError{
		Type:    ErrTypeBadCredentials,
		Message: fmt.Sprintf("could not log in as %s", username),
	}
}

// NewMissingCredentialsError creates an error for login attempts
// without configured credentials.
func NewMissingCredentialsError() error {
	return &ClientError{
		Type:    ErrTypeMissingCredentials,
		Message: "username and password are not set",
	}
}

// NewBadStatusError creates an error for unexpected HTTP statuses.
func NewBadStatusError(op string, status int) error {
	return &ClientError{
		Type:    ErrTypeBadStatus,
		Message: fmt.Sprintf("%s returned unexpected status %d", op, status),
	}
}

// NewInvalidURLError creates an error for unusable server addresses.
func NewInvalidURLError(address string) error {
	return &ClientError{
		Type:    ErrTypeInvalidURL,
		Message: fmt.Sprintf("%q is not a valid http(s) base URL", address),
	}
}

func isErrType(err error, typ string) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Type == typ
}

// IsAuthenticationError reports whether err means the session is no
// longer accepted and a re-login is needed.
func IsAuthenticationError(err error) bool {
	return isErrType(err, ErrTypeAuthentication)
}

// IsMissingCredentials reports whether err means no credentials are
// configured, which callers may treat as "server needs no auth".
func IsMissingCredentials(err error) bool {
	return isErrType(err, ErrTypeMissingCredentials)
}
