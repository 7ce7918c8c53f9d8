package forceoauth

import (
	"net/http"
	"strings"

	"github.com/giantswarm/force-oauth/internal/util"
)

// attemptResult is what a single HTTP attempt observed. The body is read once
// and every classification step works on this copy. It is created per
// attempt and never stored on the Client.
type attemptResult struct {
	statusCode int
	body       string

	// readErr is set when the status line arrived but the body could not be
	// read in full. body then holds whatever was read before the failure.
	readErr error
}

func (r attemptResult) successful() bool {
	return r.readErr == nil && r.statusCode >= 200 && r.statusCode < 300
}

// transient reports whether the response is worth retrying: any 5xx, or a 404
// whose body admits an internal error. A truncated body is only trusted for
// its status.
func (r attemptResult) transient() bool {
	if r.statusCode/100 == 5 {
		return true
	}
	if r.readErr != nil {
		return false
	}
	return r.statusCode == http.StatusNotFound && containsFold(r.body, internalErrorMarker)
}

// badTokenCode returns the Salesforce error code when the response rejects the
// token itself. Every 403 code is gated on the 403 status; a Wrong_Org body on
// any other status is a generic remote error.
func (r attemptResult) badTokenCode() (string, bool) {
	switch r.statusCode {
	case http.StatusForbidden:
		return matchCode(r.body, forbiddenTokenCodes)
	case http.StatusNotFound:
		return matchCode(r.body, notFoundTokenCodes)
	default:
		return "", false
	}
}

// classify turns a terminal or exhausted unsuccessful result into an error.
func (r attemptResult) classify(accessToken string) error {
	if r.readErr != nil {
		return &RemoteError{
			StatusCode: r.statusCode,
			Body:       util.SafeTruncate(r.body, maxLoggedBodyLength),
			Err:        r.readErr,
		}
	}
	if code, ok := r.badTokenCode(); ok {
		return &BadOAuthTokenError{
			Code:             code,
			StatusCode:       r.statusCode,
			TokenFingerprint: util.Fingerprint(accessToken, tokenFingerprintLength),
		}
	}
	return &RemoteError{
		StatusCode: r.statusCode,
		Body:       util.SafeTruncate(r.body, maxLoggedBodyLength),
	}
}

func matchCode(body string, codes []string) (string, bool) {
	for _, code := range codes {
		if strings.EqualFold(body, code) {
			return code, true
		}
	}
	return "", false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
