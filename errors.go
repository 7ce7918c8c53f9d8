package forceoauth

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error kinds, usable with errors.Is
var (
	// ErrBadOAuthToken means the token is invalid, expired, issued for another
	// org or points at a missing identity. Callers should re-authenticate.
	ErrBadOAuthToken = errors.New("bad oauth token")

	// ErrRemote means the userinfo endpoint answered with an unexpected status.
	ErrRemote = errors.New("userinfo response error")

	// ErrTransport means no response was obtained at all.
	ErrTransport = errors.New("userinfo transport error")

	// ErrConfiguration means a successful response lacked the partner URL.
	ErrConfiguration = errors.New("userinfo configuration error")
)

// BadOAuthTokenError is returned when Salesforce rejects the access token.
type BadOAuthTokenError struct {
	Code             string // Salesforce error code, e.g. "Bad_OAuth_Token"
	StatusCode       int    // HTTP status; zero when rejected before any request
	TokenFingerprint string // truncated SHA-256 of the token, never the token itself
}

// Error implements the error interface
func (e *BadOAuthTokenError) Error() string {
	return fmt.Sprintf("bad oauth token (%s, fingerprint %s)", e.Code, e.TokenFingerprint)
}

// Is reports whether target is ErrBadOAuthToken
func (e *BadOAuthTokenError) Is(target error) bool {
	return target == ErrBadOAuthToken
}

// RemoteError is returned for any other non-2xx response, or for a 2xx body
// that could not be decoded.
type RemoteError struct {
	StatusCode int
	Body       string // truncated response body
	Err        error  // decode failure for 2xx bodies, nil otherwise
}

// Error implements the error interface
func (e *RemoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("response error: %d %s: %v", e.StatusCode, e.Body, e.Err)
	}
	return fmt.Sprintf("response error: %d %s", e.StatusCode, e.Body)
}

// Unwrap returns the decode failure, if any
func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrRemote
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemote
}

// TransportError is returned when the request never produced a response:
// connection refused, DNS failure, timeout or caller cancellation.
type TransportError struct {
	Err error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	return fmt.Sprintf("io error: %v", e.Err)
}

// Unwrap returns the underlying transport failure
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrTransport
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// ConfigurationError is returned when the identity payload has no partner URL.
// It points at an integration defect and is never retried.
type ConfigurationError struct {
	URLs map[string]string
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	if e.URLs == nil {
		return "user info doesn't contain partner URL: no urls"
	}
	keys := make([]string, 0, len(e.URLs))
	for k := range e.URLs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("user info doesn't contain partner URL: available keys [%s]", strings.Join(keys, ", "))
}

// Is reports whether target is ErrConfiguration
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// isLookupError reports whether err already belongs to one of the error kinds.
func isLookupError(err error) bool {
	return errors.Is(err, ErrBadOAuthToken) ||
		errors.Is(err, ErrRemote) ||
		errors.Is(err, ErrTransport) ||
		errors.Is(err, ErrConfiguration)
}

// errorKind names the error class for logs and metrics.
func errorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrBadOAuthToken):
		return "bad_token"
	case errors.Is(err, ErrRemote):
		return "remote"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	default:
		return "unknown"
	}
}
