package forceoauth

import "time"

// Environment selects which Salesforce login host serves the userinfo endpoint.
type Environment int

const (
	// Production is login.salesforce.com.
	Production Environment = iota
	// Sandbox is test.salesforce.com.
	Sandbox
)

// EnvironmentFor maps the sandbox flag onto an Environment.
func EnvironmentFor(sandbox bool) Environment {
	if sandbox {
		return Sandbox
	}
	return Production
}

// String returns the lowercase environment name used in logs and metrics.
func (e Environment) String() string {
	switch e {
	case Production:
		return "production"
	case Sandbox:
		return "sandbox"
	default:
		return "unknown"
	}
}

// Userinfo endpoints
const (
	ProductionUserInfoURL = "https://login.salesforce.com/services/oauth2/userinfo"
	SandboxUserInfoURL    = "https://test.salesforce.com/services/oauth2/userinfo"
)

// userInfoEndpoints is the environment to endpoint table.
var userInfoEndpoints = map[Environment]string{
	Production: ProductionUserInfoURL,
	Sandbox:    SandboxUserInfoURL,
}

// EndpointFor returns the userinfo URL for env. Unknown values fall back to production.
func EndpointFor(env Environment) string {
	if u, ok := userInfoEndpoints[env]; ok {
		return u
	}
	return ProductionUserInfoURL
}

// Partner URL derivation
const (
	// APIVersion replaces VersionPlaceholder in the partner URL template.
	APIVersion = "43"

	// VersionPlaceholder is the token Salesforce leaves in its URL templates.
	VersionPlaceholder = "{version}"

	// PartnerURLKey is the key of the partner SOAP endpoint in UserInfo.URLs.
	PartnerURLKey = "partner"

	// httpsPrefix is stripped before the instance is parsed from the host.
	httpsPrefix = "https://"
)

// Salesforce error bodies. The userinfo endpoint answers with a bare code
// rather than a JSON error document.
const (
	ErrorCodeBadOAuthToken     = "Bad_OAuth_Token"
	ErrorCodeMissingOAuthToken = "Missing_OAuth_Token"
	ErrorCodeWrongOrg          = "Wrong_Org"
	ErrorCodeBadID             = "Bad_Id"

	// internalErrorMarker appears in 404 bodies that are really server failures.
	internalErrorMarker = "Internal Error"
)

// forbiddenTokenCodes are the 403 bodies that mean the token itself is unusable.
var forbiddenTokenCodes = []string{
	ErrorCodeBadOAuthToken,
	ErrorCodeMissingOAuthToken,
	ErrorCodeWrongOrg,
}

// notFoundTokenCodes are the 404 bodies that mean the token points at a missing identity.
var notFoundTokenCodes = []string{
	ErrorCodeBadID,
}

// Retry policy defaults
const (
	DefaultInitialInterval     = 500 * time.Millisecond
	DefaultMultiplier          = 1.5
	DefaultRandomizationFactor = 0.5
	DefaultMaxInterval         = 10 * time.Second
	DefaultMaxElapsedTime      = 30 * time.Second
	DefaultMaxRetries          = 10
)

// Transport defaults
const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultReadTimeout    = 30 * time.Second

	// maxResponseBodySize caps how much of a response is buffered for parsing and classification.
	maxResponseBodySize = 1 << 20

	// maxLoggedBodyLength caps the body excerpt carried by RemoteError.
	maxLoggedBodyLength = 512

	// tokenFingerprintLength is the number of hex characters logged in place of a token.
	tokenFingerprintLength = 16
)
